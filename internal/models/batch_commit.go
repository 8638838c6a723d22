package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	CommitCompleted = "completed"
	CommitAborted   = "aborted"
)

// BatchCommit is the audit trail of one commit run. Rows themselves are never
// persisted; Outcomes keeps their per-row result as JSON.
type BatchCommit struct {
	ID             uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID      uuid.UUID       `gorm:"type:varchar(36);index" json:"session_id"`
	Kind           string          `gorm:"type:varchar(16);not null" json:"kind"`
	CampaignID     *int64          `json:"campaign_id,omitempty"`
	RowCount       int             `json:"row_count"`
	SucceededCount int             `json:"succeeded_count"`
	FailedCount    int             `json:"failed_count"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"`
	Outcomes       datatypes.JSON  `json:"outcomes"`
	Status         string          `gorm:"type:varchar(16);index" json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (BatchCommit) TableName() string {
	return "batch_commit"
}

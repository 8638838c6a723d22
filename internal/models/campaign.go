package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Campaign struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         string           `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_campaign_uuid;not null" json:"uuid"`
	CampaignCode string           `gorm:"uniqueIndex:idx_campaign_code;not null" json:"campaign_code"`
	Name         string           `gorm:"index:idx_campaign_name;not null" json:"name"`
	Description  *string          `json:"description,omitempty"`
	StartDate    *datatypes.Date  `gorm:"index:idx_campaign_dates,priority:1" json:"start_date,omitempty"`
	EndDate      *datatypes.Date  `gorm:"index:idx_campaign_dates,priority:2" json:"end_date,omitempty"`
	Status       CampaignStatus   `gorm:"type:varchar(16);index:idx_campaign_status;not null;default:DRAFT" json:"status"`
	Goal         *decimal.Decimal `gorm:"type:decimal(14,2)" json:"goal,omitempty"`
	CreatedAt    time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaign"
}

func (c *Campaign) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.CampaignCode = strings.TrimSpace(c.CampaignCode)
	normalizeAll(&c.Description)
	if c.Status == "" {
		c.Status = CampaignDraft
	}
}

func (c *Campaign) Validate() error {
	if c.Name == "" {
		return invalid("name", "campaign name cannot be empty")
	}
	if c.CampaignCode == "" {
		return invalid("campaign_code", "campaign code cannot be empty")
	}
	if !c.Status.Valid() {
		return invalid("status", "unknown campaign status "+string(c.Status))
	}
	if c.StartDate != nil && c.EndDate != nil && time.Time(*c.EndDate).Before(time.Time(*c.StartDate)) {
		return invalid("end_date", "end date must be after start date")
	}
	if c.Goal != nil && !c.Goal.IsPositive() {
		return invalid("goal", "goal amount must be greater than zero")
	}
	return nil
}

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DonationIncentive is a premium offered for giving at or above a dollar
// amount. Donations may point at the incentive they earned.
type DonationIncentive struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         string          `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_incentive_uuid;not null" json:"uuid"`
	Name         string          `gorm:"index:idx_incentive_name;not null" json:"name"`
	Description  *string         `json:"description,omitempty"`
	DollarAmount decimal.Decimal `gorm:"type:decimal(14,2);index:idx_incentive_amount;not null" json:"dollar_amount"`
	Status       IncentiveStatus `gorm:"type:varchar(16);index:idx_incentive_status;not null;default:active" json:"status"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (DonationIncentive) TableName() string {
	return "donation_incentive"
}

func (i *DonationIncentive) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	normalizeAll(&i.Description)
	if i.Status == "" {
		i.Status = IncentiveActive
	}
}

func (i *DonationIncentive) Validate() error {
	if i.Name == "" {
		return invalid("name", "incentive name cannot be empty")
	}
	if !i.DollarAmount.IsPositive() {
		return invalid("dollar_amount", "dollar amount must be greater than zero")
	}
	if !i.Status.Valid() {
		return invalid("status", "unknown incentive status "+string(i.Status))
	}
	return nil
}

package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Donor struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_donor_uuid;not null" json:"uuid"`
	Company     *string   `gorm:"index:idx_donor_name,priority:3" json:"company,omitempty"`
	Salutation  *string   `json:"salutation,omitempty"`
	FirstName   *string   `gorm:"index:idx_donor_name,priority:2" json:"first_name,omitempty"`
	LastName    *string   `gorm:"index:idx_donor_name,priority:1" json:"last_name,omitempty"`
	JewishName  *string   `json:"jewish_name,omitempty"`
	Address     *string   `json:"address,omitempty"`
	AddlLine    *string   `gorm:"column:addl_line" json:"addl_line,omitempty"`
	Suite       *string   `json:"suite,omitempty"`
	City        *string   `json:"city,omitempty"`
	State       *string   `json:"state,omitempty"`
	Zip         *string   `json:"zip,omitempty"`
	Email       *string   `gorm:"index:idx_donor_email" json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	DonorSource *string   `json:"donor_source,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Donor) TableName() string {
	return "donor"
}

var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// Normalize trims every optional text field and turns blanks into NULLs.
func (d *Donor) Normalize() {
	normalizeAll(&d.Company, &d.Salutation, &d.FirstName, &d.LastName, &d.JewishName,
		&d.Address, &d.AddlLine, &d.Suite, &d.City, &d.State, &d.Zip,
		&d.Email, &d.Phone, &d.DonorSource, &d.Notes)
}

// Validate expects a normalized donor.
func (d *Donor) Validate() error {
	if d.LastName == nil && d.Company == nil {
		return invalid("last_name", "donor needs a last name or a company")
	}
	if d.Email != nil && !emailPattern.MatchString(*d.Email) {
		return invalid("email", "invalid email format")
	}
	return nil
}

// FullName joins first and last name, with the company on its own line.
func (d *Donor) FullName() string {
	var parts []string
	for _, p := range []*string{d.FirstName, d.LastName} {
		if v := strings.TrimSpace(Deref(p)); v != "" {
			parts = append(parts, v)
		}
	}
	name := strings.Join(parts, " ")
	if c := strings.TrimSpace(Deref(d.Company)); c != "" {
		if name == "" {
			return c
		}
		return name + "\n" + c
	}
	return name
}

// DisplayText is the name-and-address line shown next to a batch row.
func (d *Donor) DisplayText() string {
	name := d.FullName()
	if name == "" {
		name = fmt.Sprintf("ID: %d", d.ID)
	}
	var addr []string
	for _, p := range []*string{d.Address, d.City, d.State} {
		if v := strings.TrimSpace(Deref(p)); v != "" {
			addr = append(addr, v)
		}
	}
	return strings.Trim(name+"\n"+strings.Join(addr, ", "), "\n")
}

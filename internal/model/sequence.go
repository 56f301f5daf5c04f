package model

import "time"

// InvoiceSequence persists the next value of an invoice-number counter per prefix,
// so numbers are not reissued after a restart.
type InvoiceSequence struct {
	Prefix    string    `gorm:"type:varchar(30);primaryKey" json:"prefix"`
	NextValue int64     `gorm:"not null" json:"next_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

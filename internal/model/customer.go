package model

import (
	"time"
)

// Customer is the billed party. Updates bump Revision; invoices keep their own
// snapshot so an issued document never changes when the customer does.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	TaxID     string    `gorm:"type:varchar(50)" json:"tax_id,omitempty"` // VAT ID
	Revision  int       `gorm:"not null;default:1" json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

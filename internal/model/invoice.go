package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormatXLSX is the only export format.
const FormatXLSX = "xlsx"

// Invoice is an issued, immutable invoice. Issuer, customer and items are
// snapshots taken at creation; subtotal, tax and total are always recomputed.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	IssuerID      uint            `gorm:"index" json:"issuer_id"`
	Issuer        IssuerProfile   `gorm:"type:text;serializer:json" json:"issuer"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	Customer      Customer        `gorm:"type:text;serializer:json" json:"customer"`
	Items         []BillableEntry `gorm:"type:text;serializer:json" json:"items"` // row order of the document
	TaxRate       float64         `gorm:"not null" json:"tax_rate"`               // percent
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	Notes         string          `gorm:"type:text" json:"notes"`
	PaymentTerms  string          `gorm:"type:text" json:"payment_terms"`
	Format        string          `gorm:"type:varchar(10);not null;default:'xlsx'" json:"format"`
	FilePath      string          `gorm:"type:text" json:"file_path"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the primary key so the record works on databases without gen_random_uuid.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enum constants
const (
	NotificationInvoiceCreated = "invoice_created"
)

// Notification records an event delivered to a user (and pushed over websocket when connected).
type Notification struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Type          string    `gorm:"type:varchar(50);not null" json:"type"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	InvoiceNumber string    `gorm:"type:varchar(50);index" json:"invoice_number"`
	CustomerID    uint      `json:"customer_id"`
	Read          bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the primary key.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package model

import "time"

// IssuerProfile holds the biller's own company details printed in the invoice header.
// Built once from configuration and shared read-only by every invoice.
type IssuerProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Company   string    `gorm:"type:varchar(255);not null" json:"company"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Website   string    `gorm:"type:varchar(255)" json:"website,omitempty"`
	TaxID     string    `gorm:"type:varchar(50)" json:"tax_id,omitempty"`
	LogoPath  string    `gorm:"type:text" json:"logo_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

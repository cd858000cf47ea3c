package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber int       `gorm:"not null;uniqueIndex" json:"invoice_number"`
	CreatorID     int64     `gorm:"not null;index" json:"creator_id"`
	CompanyName   string    `gorm:"size:255;not null" json:"company_name"`
	OrgAddress    string    `gorm:"type:text" json:"org_address"`
	WorkType      string    `gorm:"type:text" json:"work_type"`
	Quantity      int       `gorm:"not null;default:1" json:"quantity"`
	UnitAmount    float64   `gorm:"type:decimal(12,2);not null" json:"unit_amount"`
	Total         float64   `gorm:"type:decimal(12,2);not null" json:"total"`
	FileName      string    `gorm:"size:255" json:"file_name"`
	InvoiceDate   time.Time `gorm:"type:date" json:"invoice_date"`
	CreatedAt     time.Time `json:"created_at"`
}

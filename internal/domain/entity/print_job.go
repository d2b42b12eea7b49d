package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/enum"
	"gorm.io/gorm"
)

// Document kinds recorded on a print job
const (
	DocumentBill = "bill"
	DocumentKOT  = "kot"
)

// PrintJob is the audit row written for every dispatched document.
type PrintJob struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Document    string              `gorm:"size:10;not null;index" json:"document"`
	Reference   string              `gorm:"size:100;index" json:"reference"`
	Role        enum.PrinterRole    `gorm:"not null" json:"role"`
	PrinterID   *uuid.UUID          `gorm:"type:uuid" json:"printer_id,omitempty"`
	PrinterName string              `gorm:"size:100" json:"printer_name,omitempty"`
	Method      string              `gorm:"size:20" json:"method"`
	Status      enum.PrintJobStatus `gorm:"not null;default:0;index" json:"status"`
	Error       string              `gorm:"type:text" json:"error,omitempty"`
	Bytes       int                 `json:"bytes"`
	Attempts    int                 `gorm:"default:0" json:"attempts"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a job
func (j *PrintJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PrintJob model
func (PrintJob) TableName() string {
	return "print_jobs"
}

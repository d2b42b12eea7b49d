package entity

import "time"

// BillSequence holds the last bill number issued for an outlet.
type BillSequence struct {
	Name      string    `gorm:"primaryKey;size:50" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the BillSequence model
func (BillSequence) TableName() string {
	return "bill_sequences"
}

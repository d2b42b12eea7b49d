package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessProfile is the outlet identity used when a bill arrives without one.
type BusinessProfile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"size:200;not null" json:"name"`
	Address string `gorm:"size:500" json:"address"`
	Phone   string `gorm:"size:30" json:"phone"`
	GSTIN   string `gorm:"size:20" json:"gstin"`
	FSSAI   string `gorm:"size:20" json:"fssai"`
	Footer  string `gorm:"size:200;default:'Thank you! Visit again'" json:"footer"`

	CurrencySymbol string `gorm:"size:10;default:'₹'" json:"currency_symbol"`
	ShowGST        bool   `gorm:"default:true" json:"show_gst"`
	IsPureVeg      bool   `gorm:"default:false" json:"is_pure_veg"`
}

// BeforeCreate generates a UUID before creating the profile
func (p *BusinessProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BusinessProfile model
func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// Info returns the header block printed on bills.
func (p *BusinessProfile) Info() BusinessInfo {
	return BusinessInfo{
		Name:    p.Name,
		Address: p.Address,
		Phone:   p.Phone,
		GSTIN:   p.GSTIN,
		FSSAI:   p.FSSAI,
		Footer:  p.Footer,
	}
}

// Apply fills the outlet fields the bill left empty.
func (p *BusinessProfile) Apply(b *BillData) {
	if b.Business.Name == "" {
		b.Business = p.Info()
	} else if b.Business.Footer == "" {
		b.Business.Footer = p.Footer
	}
	if b.CurrencySymbol == "" {
		b.CurrencySymbol = p.CurrencySymbol
	}
	if b.ShowGST == nil {
		show := p.ShowGST
		b.ShowGST = &show
	}
	if !b.IsPureVeg {
		b.IsPureVeg = p.IsPureVeg
	}
}

package receipt

import (
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleBill: 500.00 sub total, 10% discount, 5% GST split, 473.00 final.
func sampleBill() *entity.BillData {
	return &entity.BillData{
		BillID:      "b-1",
		BillNumber:  41,
		TableNumber: "4",
		Items: []entity.LineItem{
			{Name: "Paneer Butter Masala", UnitPrice: dec("200"), Quantity: 2},
			{Name: "Butter Naan", UnitPrice: dec("25"), Quantity: 4, Notes: "extra butter"},
		},
		SubTotal:       dec("500"),
		DiscountAmount: dec("50"),
		DiscountType:   enum.DiscountTypePercentage,
		DiscountValue:  dec("10"),
		GSTMode:        enum.GSTModeCGSTSGST,
		GSTRate:        dec("5"),
		CGSTAmount:     dec("11.25"),
		SGSTAmount:     dec("11.25"),
		FinalAmount:    dec("473"),
		PaymentMethod:  "cash",
		Business: entity.BusinessInfo{
			Name:    "Spice Route",
			Address: "12 MG Road\nBengaluru",
			GSTIN:   "29ABCDE1234F1Z5",
			FSSAI:   "11223344556677",
		},
		CreatedAt: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
	}
}

func sampleKOT() *entity.KOTData {
	return &entity.KOTData{
		TableNumber: "4",
		KOTNumber:   7,
		Items: []entity.KOTItem{
			{Name: "Paneer Tikka", Quantity: 2, Notes: "less spicy"},
			{Name: "Dal Makhani", Portion: "Half", Quantity: 1},
		},
		OrderNotes: "serve together",
		CreatedAt:  time.Date(2026, 3, 14, 19, 31, 0, 0, time.UTC),
	}
}

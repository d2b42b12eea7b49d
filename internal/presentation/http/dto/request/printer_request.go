package request

import (
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

// PrintBillRequest is the request body for printing a bill. Role defaults to counter.
type PrintBillRequest struct {
	Role string           `json:"role" binding:"omitempty,oneof=kitchen counter"`
	Bill *entity.BillData `json:"bill" binding:"required"`
}

// PrintKOTRequest is the request body for printing a kitchen ticket. Role defaults to kitchen.
type PrintKOTRequest struct {
	Role string          `json:"role" binding:"omitempty,oneof=kitchen counter"`
	KOT  *entity.KOTData `json:"kot" binding:"required"`
}

// CartKOTRequest prints whatever part of the cart has not reached the kitchen yet.
type CartKOTRequest struct {
	Role   string            `json:"role" binding:"omitempty,oneof=kitchen counter"`
	Header entity.KOTData    `json:"header" binding:"-"`
	Cart   []entity.CartItem `json:"cart" binding:"required,min=1"`
}

// QueuePrintRequest enqueues a bill or KOT for the print worker.
type QueuePrintRequest struct {
	Document string           `json:"document" binding:"required,oneof=bill kot"`
	Role     string           `json:"role" binding:"omitempty,oneof=kitchen counter"`
	Bill     *entity.BillData `json:"bill"`
	KOT      *entity.KOTData  `json:"kot"`
}

// PreviewQuery selects the preview paper width and output.
type PreviewQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=58mm 76mm 80mm"`
	Output string `form:"output" binding:"omitempty,oneof=html png escpos"`
}

// PaperFormat returns the requested roll width, 58mm when unset.
func (q PreviewQuery) PaperFormat() enum.PaperFormat {
	f, _ := enum.ParsePaperFormat(q.Format)
	return f
}

// PrintJobQuery filters the print job log.
type PrintJobQuery struct {
	Document string `form:"document" binding:"omitempty,oneof=bill kot"`
	Status   string `form:"status" binding:"omitempty,oneof=queued printed failed"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// UpdateBusinessProfileRequest is the request body for the outlet profile.
type UpdateBusinessProfileRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	Address        string `json:"address" binding:"max=500"`
	Phone          string `json:"phone" binding:"max=30"`
	GSTIN          string `json:"gstin" binding:"omitempty,len=15"`
	FSSAI          string `json:"fssai" binding:"omitempty,len=14,numeric"`
	Footer         string `json:"footer" binding:"max=200"`
	CurrencySymbol string `json:"currency_symbol" binding:"max=10"`
	ShowGST        bool   `json:"show_gst"`
	IsPureVeg      bool   `json:"is_pure_veg"`
}

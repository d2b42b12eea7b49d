package entity

import (
	"strings"
	"time"

	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// BusinessInfo is the outlet header printed at the top of a bill.
type BusinessInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	FSSAI   string `json:"fssai,omitempty"`
	Footer  string `json:"footer,omitempty"`
}

// LineItem is one billed dish.
type LineItem struct {
	Name      string          `json:"name" binding:"required"`
	Portion   string          `json:"portion,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
	Notes     string          `json:"notes,omitempty"`
}

// TaxRate returns the item's GST rate, or billRate when the item has none.
func (i LineItem) TaxRate(billRate decimal.Decimal) decimal.Decimal {
	if i.GSTRate.IsPositive() {
		return i.GSTRate
	}
	return billRate
}

// Amount returns UnitPrice x Quantity.
func (i LineItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DisplayName joins the dish name and its portion, e.g. "Dal Makhani (Half)".
func (i LineItem) DisplayName() string {
	if strings.TrimSpace(i.Portion) == "" {
		return i.Name
	}
	return i.Name + " (" + i.Portion + ")"
}

// SplitPayment is one tender of a bill settled by several methods.
type SplitPayment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// BillData is a finalized bill snapshot handed to the printer. It is NOT a
// database entity and is never modified by rendering.
type BillData struct {
	BillID      string `json:"bill_id"`
	BillNumber  int64  `json:"bill_number"`
	IsParcel    bool   `json:"is_parcel"`
	TableNumber string `json:"table_number,omitempty"`
	TokenNumber int    `json:"token_number,omitempty"`

	Items []LineItem `json:"items" binding:"required,min=1,dive"`

	SubTotal       decimal.Decimal   `json:"sub_total"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	DiscountType   enum.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal   `json:"discount_value"`
	DiscountReason string            `json:"discount_reason,omitempty"`

	GSTMode    enum.GSTMode    `json:"gst_mode"`
	GSTRate    decimal.Decimal `json:"gst_rate"`
	CGSTAmount decimal.Decimal `json:"cgst_amount"`
	SGSTAmount decimal.Decimal `json:"sgst_amount"`

	FinalAmount   decimal.Decimal `json:"final_amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	SplitPayments []SplitPayment  `json:"split_payments,omitempty"`

	Business       BusinessInfo `json:"business"`
	ShowGST        *bool        `json:"show_gst,omitempty"`
	IsPureVeg      bool         `json:"is_pure_veg"`
	IsReprint      bool         `json:"is_reprint"`
	CurrencySymbol string       `json:"currency_symbol,omitempty"`

	CashierName string    `json:"cashier_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GSTVisible reports whether tax lines are printed. Only an explicit false hides them.
func (b *BillData) GSTVisible() bool {
	return b.ShowGST == nil || *b.ShowGST
}

// DefaultCurrency is printed when a bill carries no currency symbol.
const DefaultCurrency = "₹"

// Currency returns the symbol printed before amounts.
func (b *BillData) Currency() string {
	if b.CurrencySymbol == "" {
		return DefaultCurrency
	}
	return b.CurrencySymbol
}

// IsCashSale reports whether the bill was settled fully or partly in cash.
func (b *BillData) IsCashSale() bool {
	if strings.EqualFold(b.PaymentMethod, "cash") {
		return true
	}
	for _, p := range b.SplitPayments {
		if strings.EqualFold(p.Method, "cash") {
			return true
		}
	}
	return false
}

// SeatLabel returns "Table 4" for dine-in and "Token 17" for parcels.
func (b *BillData) SeatLabel() string {
	return seatLabel(b.IsParcel, b.TableNumber, b.TokenNumber)
}

func seatLabel(parcel bool, table string, token int) string {
	if parcel {
		return "Token " + itoa(token)
	}
	if table == "" {
		return "Table -"
	}
	return "Table " + table
}

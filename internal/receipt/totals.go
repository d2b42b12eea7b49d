package receipt

import (
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	two           = decimal.NewFromInt(2)
	roundOffFloor = decimal.RequireFromString("0.01")
)

// TotalsBreakdown is the arithmetic shared by every renderer.
type TotalsBreakdown struct {
	SubTotal  decimal.Decimal
	Discount  decimal.Decimal
	CGST      decimal.Decimal
	SGST      decimal.Decimal
	Computed  decimal.Decimal
	RoundOff  decimal.Decimal
	Final     decimal.Decimal
	ShowGST   bool
	Mode      enum.GSTMode
	GSTRate   decimal.Decimal
	DiscLabel string
}

// ComputeTotals derives the printed totals of a bill. Computed is
// SubTotal - Discount + CGST + SGST and RoundOff is Final - Computed.
func ComputeTotals(bill *entity.BillData) TotalsBreakdown {
	t := TotalsBreakdown{
		SubTotal: bill.SubTotal,
		Discount: bill.DiscountAmount,
		CGST:     bill.CGSTAmount,
		SGST:     bill.SGSTAmount,
		Final:    bill.FinalAmount,
		ShowGST:  bill.GSTVisible(),
		Mode:     bill.GSTMode,
		GSTRate:  labelRate(bill),
	}
	t.Computed = t.SubTotal.Sub(t.Discount).Add(t.CGST).Add(t.SGST)
	t.RoundOff = t.Final.Sub(t.Computed)

	label := "Discount"
	if bill.DiscountType == enum.DiscountTypePercentage && bill.DiscountValue.IsPositive() {
		label += " (" + bill.DiscountValue.String() + "%)"
	}
	if r := strings.TrimSpace(bill.DiscountReason); r != "" {
		label += " " + r
	}
	t.DiscLabel = label
	return t
}

// labelRate is the GST rate named on the tax rows. Items carry their own rate
// when set and fall back to the bill rate; when they disagree no single rate
// describes the tax, so it is left off the label.
func labelRate(bill *entity.BillData) decimal.Decimal {
	if len(bill.Items) == 0 {
		return bill.GSTRate
	}
	rate := bill.Items[0].TaxRate(bill.GSTRate)
	for _, it := range bill.Items[1:] {
		if !it.TaxRate(bill.GSTRate).Equal(rate) {
			return decimal.Zero
		}
	}
	return rate
}

// HasDiscount reports whether the discount row is printed.
func (t TotalsBreakdown) HasDiscount() bool {
	return t.Discount.IsPositive()
}

// HasRoundOff reports whether the round-off row is printed.
func (t TotalsBreakdown) HasRoundOff() bool {
	return t.RoundOff.Abs().GreaterThanOrEqual(roundOffFloor)
}

// IGST is the single integrated tax amount.
func (t TotalsBreakdown) IGST() decimal.Decimal {
	return t.CGST.Add(t.SGST)
}

// Lines returns the totals rows in print order; the last row is the bold net total.
func (t TotalsBreakdown) Lines(currency string) []TotalLine {
	lines := []TotalLine{{Label: "Sub Total", Value: money(t.SubTotal)}}
	if t.HasDiscount() {
		lines = append(lines, TotalLine{Label: t.DiscLabel, Value: "-" + money(t.Discount)})
	}
	if t.ShowGST {
		if t.Mode == enum.GSTModeIGST {
			lines = append(lines, TotalLine{Label: "IGST" + rateSuffix(t.GSTRate), Value: money(t.IGST())})
		} else {
			half := t.GSTRate.Div(two)
			lines = append(lines,
				TotalLine{Label: "CGST" + rateSuffix(half), Value: money(t.CGST)},
				TotalLine{Label: "SGST" + rateSuffix(half), Value: money(t.SGST)},
			)
		}
	}
	if t.HasRoundOff() {
		lines = append(lines, TotalLine{Label: "Round Off", Value: signed(t.RoundOff)})
	}
	lines = append(lines, TotalLine{Label: "NET TOTAL", Value: currency + money(t.Final), Bold: true})
	return lines
}

func rateSuffix(rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return " @" + rate.String() + "%"
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + money(d.Abs())
	}
	return "+" + money(d)
}

var paymentAcronyms = map[string]string{"upi": "UPI", "nfc": "NFC", "neft": "NEFT"}

// A Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if a, ok := paymentAcronyms[strings.ToLower(s)]; ok {
		return a
	}
	return cases.Title(language.English).String(s)
}

// Package receipt turns bills and kitchen tickets into one printable layout
// and renders that layout as ESC/POS bytes, a bitmap, or an HTML document.
package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

// BillNumberer issues the display number of a new bill.
type BillNumberer interface {
	NextBillNumber(ctx context.Context) (int64, error)
}

// BillNumbererFunc adapts a function to BillNumberer.
type BillNumbererFunc func(ctx context.Context) (int64, error)

func (f BillNumbererFunc) NextBillNumber(ctx context.Context) (int64, error) { return f(ctx) }

// Layout is the renderer-neutral description of one printed document.
type Layout struct {
	Format   enum.PaperFormat
	Document string
	Sections []Section
	// OpenDrawer asks the ESC/POS renderer to pulse the cash drawer after the cut.
	OpenDrawer bool
}

// Section is one block of a layout. The set of kinds is closed.
type Section interface {
	section()
}

// Header is the outlet block at the top of a bill.
type Header struct {
	Name    string
	Address string
	Phone   string
	PureVeg bool
}

// InvoiceBox is the boxed document title, with a duplicate marker on reprints.
type InvoiceBox struct {
	Title     string
	Duplicate bool
}

// BillInfo carries the bill number, seat and time lines.
type BillInfo struct {
	BillNumber string
	Seat       string
	Parcel     bool
	Date       time.Time
	Cashier    string
}

// ItemRow is one priced line of the item table.
type ItemRow struct {
	Name   string
	Qty    string
	Rate   string
	Amount string
	Notes  string
}

// ItemsTable is the four column item grid.
type ItemsTable struct {
	Rows []ItemRow
}

// Columns sizes the grid for a line of chars columns so every rate and
// amount prints in full and the header lines up with the rows.
func (t ItemsTable) Columns(chars int) [4]int {
	nums := make([][3]string, 0, len(t.Rows)+1)
	nums = append(nums, [3]string{"Qty", "Rate", "Amt"})
	for _, r := range t.Rows {
		nums = append(nums, [3]string{r.Qty, r.Rate, r.Amount})
	}
	return printer.FitFourColumns(chars, nums...)
}

// TotalLine is a label/value row in the totals block.
type TotalLine struct {
	Label string
	Value string
	Bold  bool
}

// Totals is the sums block followed by payment rows.
type Totals struct {
	Lines    []TotalLine
	Payments []TotalLine
}

// Footer carries licence numbers and the closing message.
type Footer struct {
	FSSAI   string
	GSTIN   string
	Message string
}

// KOTHeader is the banner of a kitchen ticket.
type KOTHeader struct {
	Title  string
	Number string
	Seat   string
	Parcel bool
	Date   time.Time
	Server string
}

// KOTRow is one dish on a kitchen ticket.
type KOTRow struct {
	Name  string
	Qty   string
	Notes string
}

// KOTItems is the quantity/name list of a kitchen ticket.
type KOTItems struct {
	Rows       []KOTRow
	OrderNotes string
}

func (Header) section()     {}
func (InvoiceBox) section() {}
func (BillInfo) section()   {}
func (ItemsTable) section() {}
func (Totals) section()     {}
func (Footer) section()     {}
func (KOTHeader) section()  {}
func (KOTItems) section()   {}

const (
	defaultFooter = "Thank you! Visit again"
	dateLayout    = "02/01/2006 03:04 PM"
)

// BuildBillLayout lays out a bill. A new display number is taken from numbers
// unless the bill is a reprint or numbers is nil. The bill is not modified.
func BuildBillLayout(ctx context.Context, bill *entity.BillData, format enum.PaperFormat, numbers BillNumberer) (*Layout, error) {
	if bill == nil {
		return nil, fmt.Errorf("receipt: nil bill")
	}

	number := bill.BillNumber
	if !bill.IsReprint && numbers != nil {
		n, err := numbers.NextBillNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("receipt: assign bill number: %w", err)
		}
		number = n
	}

	title := "BILL"
	if bill.GSTVisible() && bill.Business.GSTIN != "" {
		title = "TAX INVOICE"
	}

	cur := bill.Currency()
	rows := make([]ItemRow, 0, len(bill.Items))
	for _, it := range bill.Items {
		rows = append(rows, ItemRow{
			Name:   printer.SingleLine(it.DisplayName()),
			Qty:    fmt.Sprintf("%d", it.Quantity),
			Rate:   money(it.UnitPrice),
			Amount: money(it.Amount()),
			Notes:  printer.SingleLine(it.Notes),
		})
	}

	footer := bill.Business.Footer
	if footer == "" {
		footer = defaultFooter
	}
	gstin := ""
	if bill.GSTVisible() {
		gstin = bill.Business.GSTIN
	}

	created := bill.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	t := ComputeTotals(bill)
	l := &Layout{
		Format:   format,
		Document: entity.DocumentBill,
		Sections: []Section{
			Header{
				Name:    bill.Business.Name,
				Address: bill.Business.Address,
				Phone:   bill.Business.Phone,
				PureVeg: bill.IsPureVeg,
			},
			InvoiceBox{Title: title, Duplicate: bill.IsReprint},
			BillInfo{
				BillNumber: fmt.Sprintf("%d", number),
				Seat:       bill.SeatLabel(),
				Parcel:     bill.IsParcel,
				Date:       created,
				Cashier:    bill.CashierName,
			},
			ItemsTable{Rows: rows},
			Totals{Lines: t.Lines(cur), Payments: paymentLines(bill)},
			Footer{FSSAI: bill.Business.FSSAI, GSTIN: gstin, Message: footer},
		},
	}
	logger().Debug("bill layout built", "bill_id", bill.BillID, "bill_number", number, "items", len(rows))
	return l, nil
}

// BuildKOTLayout lays out a kitchen ticket.
func BuildKOTLayout(kot *entity.KOTData, format enum.PaperFormat) (*Layout, error) {
	if kot == nil {
		return nil, fmt.Errorf("receipt: nil kot")
	}
	title := "KOT"
	if kot.IsParcel {
		title = "PARCEL KOT"
	}
	created := kot.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	rows := make([]KOTRow, 0, len(kot.Items))
	for _, it := range kot.Items {
		name := it.Name
		if it.Portion != "" {
			name += " (" + it.Portion + ")"
		}
		rows = append(rows, KOTRow{Name: printer.SingleLine(name), Qty: fmt.Sprintf("%d", it.Quantity), Notes: printer.SingleLine(it.Notes)})
	}
	return &Layout{
		Format:   format,
		Document: entity.DocumentKOT,
		Sections: []Section{
			KOTHeader{
				Title:  title,
				Number: kot.DisplayNumber(),
				Seat:   kot.SeatLabel(),
				Parcel: kot.IsParcel,
				Date:   created,
				Server: kot.ServerName,
			},
			KOTItems{Rows: rows, OrderNotes: kot.OrderNotes},
		},
	}, nil
}

func paymentLines(bill *entity.BillData) []TotalLine {
	if len(bill.SplitPayments) > 0 {
		lines := make([]TotalLine, 0, len(bill.SplitPayments))
		for _, p := range bill.SplitPayments {
			lines = append(lines, TotalLine{Label: titleCase(p.Method), Value: money(p.Amount)})
		}
		return lines
	}
	if bill.PaymentMethod == "" {
		return nil
	}
	return []TotalLine{{Label: "Paid by", Value: titleCase(bill.PaymentMethod)}}
}

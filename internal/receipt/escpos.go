package receipt

import (
	"strings"

	"github.com/sangkips/posprint/pkg/printer"
)

const tailFeed = 4

// RenderESCPOS renders the layout as a complete ESC/POS job ending in a cut.
func RenderESCPOS(l *Layout) []byte {
	b := printer.NewBuilder(printer.PaperWidth(l.Format.Chars()))
	b.Init().CodePage(printer.CodePagePC437)
	writeSections(b, l)
	b.Feed(tailFeed).Cut()
	if l.OpenDrawer {
		b.OpenDrawer()
	}
	return b.Build()
}

func writeSections(b *printer.Builder, l *Layout) {
	w := b.Width()
	for _, sec := range l.Sections {
		switch s := sec.(type) {
		case Header:
			b.Align(printer.AlignCenter).Bold(true)
			if printer.TextWidth(s.Name)*2 <= w {
				b.FontSize(printer.FontDouble)
			} else {
				b.FontSize(printer.FontTall)
			}
			b.Line(printer.Truncate(s.Name, w))
			b.FontSize(printer.FontNormal).Bold(false)
			for _, line := range splitLines(s.Address) {
				b.Line(printer.Truncate(line, w))
			}
			if s.Phone != "" {
				b.Line(printer.Truncate("Ph: "+s.Phone, w))
			}
			if s.PureVeg {
				b.Bold(true).Line("PURE VEG").Bold(false)
			}
		case InvoiceBox:
			b.Align(printer.AlignLeft).Separator('=')
			b.Align(printer.AlignCenter).Bold(true).Line(s.Title).Bold(false)
			if s.Duplicate {
				b.Line("** DUPLICATE **")
			}
			b.Align(printer.AlignLeft).Separator('=')
		case BillInfo:
			b.Align(printer.AlignLeft)
			b.TwoColumns("Bill No: "+s.BillNumber, s.Seat)
			b.TwoColumns("Date: "+s.Date.Format("02/01/2006"), s.Date.Format("03:04 PM"))
			if s.Cashier != "" {
				b.Line(printer.Truncate("Cashier: "+s.Cashier, w))
			}
		case ItemsTable:
			b.Align(printer.AlignLeft).Separator('-')
			cols := s.Columns(w)
			b.Bold(true)
			for _, line := range printer.FourColumnRow(cols, w, "Item", "Qty", "Rate", "Amt") {
				b.Line(line)
			}
			b.Bold(false).Separator('-')
			for _, r := range s.Rows {
				for _, line := range printer.FourColumnRow(cols, w, r.Name, r.Qty, r.Rate, r.Amount) {
					b.Line(line)
				}
				if r.Notes != "" {
					b.Line(printer.Truncate("  - "+r.Notes, w))
				}
			}
			b.Separator('-')
		case Totals:
			b.Align(printer.AlignLeft)
			for _, t := range s.Lines {
				if t.Bold {
					b.Separator('-')
					b.Bold(true).FontSize(printer.FontTall).TwoColumns(t.Label, t.Value)
					b.FontSize(printer.FontNormal).Bold(false)
					continue
				}
				b.TwoColumns(t.Label, t.Value)
			}
			if len(s.Payments) > 0 {
				b.Separator('-')
				for _, p := range s.Payments {
					b.TwoColumns(p.Label, p.Value)
				}
			}
		case Footer:
			b.Align(printer.AlignLeft).Separator('-')
			b.Align(printer.AlignCenter)
			if s.FSSAI != "" {
				b.Line(printer.Truncate("FSSAI Lic No: "+s.FSSAI, w))
			}
			if s.GSTIN != "" {
				b.Line(printer.Truncate("GSTIN: "+s.GSTIN, w))
			}
			b.Bold(true).Line(printer.Truncate(s.Message, w)).Bold(false)
		case KOTHeader:
			b.Align(printer.AlignCenter).Bold(true).FontSize(printer.FontDouble).Line(s.Title)
			b.FontSize(printer.FontNormal).Line("KOT #" + s.Number)
			b.FontSize(printer.FontTall).Line(s.Seat).FontSize(printer.FontNormal).Bold(false)
			b.Align(printer.AlignLeft)
			b.TwoColumns(s.Date.Format("02/01/2006"), s.Date.Format("03:04 PM"))
			if s.Server != "" {
				b.Line(printer.Truncate("Server: "+s.Server, w))
			}
			b.Separator('-')
		case KOTItems:
			b.Align(printer.AlignLeft)
			b.Bold(true).TwoColumns("Item", "Qty").Bold(false)
			b.Separator('-')
			b.Bold(true).FontSize(printer.FontTall)
			for _, r := range s.Rows {
				b.TwoColumns(r.Name, r.Qty)
				if r.Notes != "" {
					b.FontSize(printer.FontNormal).Bold(false)
					b.Line(printer.Truncate("  >> "+r.Notes, w))
					b.Bold(true).FontSize(printer.FontTall)
				}
			}
			b.FontSize(printer.FontNormal).Bold(false)
			b.Separator('-')
			if s.OrderNotes != "" {
				b.Line(printer.Truncate("Note: "+s.OrderNotes, w))
			}
		}
	}
}

func splitLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

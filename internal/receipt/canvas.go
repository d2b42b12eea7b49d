package receipt

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
)

const (
	// DPI is the head resolution of common 58/80mm thermal printers.
	DPI = 203

	renderScale = 2
	marginDots  = 8
	bigFactor   = 1.5
)

// PrintableWidthDots returns the printable head width in dots for a paper format.
func PrintableWidthDots(f enum.PaperFormat) int {
	return int(math.Floor(f.PrintableMM() / 25.4 * DPI))
}

type fontSet struct {
	regular *text.FontSource
	bold    *text.FontSource
	// advance of one monospace column per point of face size
	advance float64
}

var (
	fontsOnce sync.Once
	fonts     *fontSet
	fontsErr  error
)

func loadFonts() (*fontSet, error) {
	fontsOnce.Do(func() {
		regular, err := text.NewFontSource(gomono.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("receipt: load mono font: %w", err)
			return
		}
		bold, err := text.NewFontSource(gomonobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("receipt: load mono bold font: %w", err)
			return
		}
		w, _ := text.Measure("0000000000", regular.Face(100))
		if w <= 0 {
			fontsErr = fmt.Errorf("receipt: mono font has no advance")
			return
		}
		fonts = &fontSet{regular: regular, bold: bold, advance: w / 1000}
	})
	return fonts, fontsErr
}

type rowKind int

const (
	rowText rowKind = iota
	rowRule
	rowDoubleRule
	rowGap
)

type canvasRow struct {
	kind  rowKind
	text  string
	align int
	bold  bool
	big   bool
}

type faces struct {
	regular, bold, bigRegular, bigBold text.Face
	lineH                              float64
	bigCols                            int
}

func (f *faces) pick(r canvasRow) text.Face {
	switch {
	case r.big && r.bold:
		return f.bigBold
	case r.big:
		return f.bigRegular
	case r.bold:
		return f.bold
	default:
		return f.regular
	}
}

func (f *faces) height(r canvasRow) float64 {
	switch r.kind {
	case rowGap:
		return f.lineH / 2
	case rowText:
		return f.pick(r).Metrics().LineHeight()
	default:
		return f.lineH
	}
}

// RenderCanvas draws the layout as a grayscale bitmap at the printer's native
// width in dots. The image is drawn at twice the resolution and downsampled.
func RenderCanvas(l *Layout) (*image.Gray, error) {
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}

	width := PrintableWidthDots(l.Format)
	W := float64(width * renderScale)
	margin := float64(marginDots * renderScale)
	chars := l.Format.Chars()

	size := (W - 2*margin) / float64(chars) / fs.advance
	ff := &faces{
		regular:    fs.regular.Face(size),
		bold:       fs.bold.Face(size),
		bigRegular: fs.regular.Face(size * bigFactor),
		bigBold:    fs.bold.Face(size * bigFactor),
		bigCols:    int(float64(chars) / bigFactor),
	}
	ff.lineH = ff.regular.Metrics().LineHeight()

	rows := planRows(l, chars, ff.bigCols)

	est := 2 * margin
	for _, r := range rows {
		est += ff.height(r)
	}

	dc := gg.NewContext(int(W), int(math.Ceil(est)))
	defer dc.Close()
	dc.ClearWithColor(gg.White)
	dc.SetRGB(0, 0, 0)

	y := margin
	for _, r := range rows {
		h := ff.height(r)
		switch r.kind {
		case rowText:
			face := ff.pick(r)
			dc.SetFont(face)
			base := y + face.Metrics().Ascent
			x, ax := margin, 0.0
			switch r.align {
			case printer.AlignCenter:
				x, ax = W/2, 0.5
			case printer.AlignRight:
				x, ax = W-margin, 1
			}
			dc.DrawStringAnchored(printer.Normalize(r.text), x, base, ax, 0)
		case rowRule:
			dc.SetLineWidth(renderScale)
			dc.SetDash(6*renderScale, 4*renderScale)
			dc.DrawLine(margin, y+h/2, W-margin, y+h/2)
			if err := dc.Stroke(); err != nil {
				return nil, fmt.Errorf("receipt: draw rule: %w", err)
			}
			dc.ClearDash()
		case rowDoubleRule:
			dc.SetLineWidth(renderScale)
			for _, dy := range []float64{-2 * renderScale, 2 * renderScale} {
				dc.DrawLine(margin, y+h/2+dy, W-margin, y+h/2+dy)
				if err := dc.Stroke(); err != nil {
					return nil, fmt.Errorf("receipt: draw rule: %w", err)
				}
			}
		}
		y += h
	}

	contentH := math.Min(y+margin, est)

	// border last so nothing paints over it
	dc.SetLineWidth(2 * renderScale)
	dc.DrawRectangle(renderScale, renderScale, W-2*renderScale, contentH-2*renderScale)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("receipt: draw border: %w", err)
	}

	srcH := int(math.Ceil(contentH))
	out := image.NewGray(image.Rect(0, 0, width, (srcH+renderScale-1)/renderScale))
	draw.CatmullRom.Scale(out, out.Bounds(), dc.Image(), image.Rect(0, 0, int(W), srcH), draw.Src, nil)

	logger().Debug("canvas rendered", "document", l.Document, "width", width, "height", out.Bounds().Dy())
	return out, nil
}

// planRows flattens the layout into the text rows the canvas draws. Each text
// row already fits chars columns, big rows fit bigCols.
func planRows(l *Layout, chars, bigCols int) []canvasRow {
	var rows []canvasRow
	add := func(r canvasRow) { rows = append(rows, r) }
	txt := func(s string, align int, bold bool) {
		add(canvasRow{kind: rowText, text: printer.Truncate(s, chars), align: align, bold: bold})
	}

	for _, sec := range l.Sections {
		switch s := sec.(type) {
		case Header:
			if printer.TextWidth(s.Name) <= bigCols {
				add(canvasRow{kind: rowText, text: s.Name, align: printer.AlignCenter, bold: true, big: true})
			} else {
				txt(s.Name, printer.AlignCenter, true)
			}
			for _, line := range splitLines(s.Address) {
				txt(line, printer.AlignCenter, false)
			}
			if s.Phone != "" {
				txt("Ph: "+s.Phone, printer.AlignCenter, false)
			}
			if s.PureVeg {
				txt("PURE VEG", printer.AlignCenter, true)
			}
		case InvoiceBox:
			add(canvasRow{kind: rowDoubleRule})
			txt(s.Title, printer.AlignCenter, true)
			if s.Duplicate {
				txt("** DUPLICATE **", printer.AlignCenter, false)
			}
			add(canvasRow{kind: rowDoubleRule})
		case BillInfo:
			txt(printer.TwoColumnLine(chars, "Bill No: "+s.BillNumber, s.Seat), printer.AlignLeft, false)
			txt(printer.TwoColumnLine(chars, "Date: "+s.Date.Format("02/01/2006"), s.Date.Format("03:04 PM")), printer.AlignLeft, false)
			if s.Cashier != "" {
				txt("Cashier: "+s.Cashier, printer.AlignLeft, false)
			}
		case ItemsTable:
			add(canvasRow{kind: rowRule})
			cols := s.Columns(chars)
			for _, line := range printer.FourColumnRow(cols, chars, "Item", "Qty", "Rate", "Amt") {
				txt(line, printer.AlignLeft, true)
			}
			add(canvasRow{kind: rowRule})
			for _, r := range s.Rows {
				for _, line := range printer.FourColumnRow(cols, chars, r.Name, r.Qty, r.Rate, r.Amount) {
					txt(line, printer.AlignLeft, false)
				}
				if r.Notes != "" {
					txt("  - "+r.Notes, printer.AlignLeft, false)
				}
			}
			add(canvasRow{kind: rowRule})
		case Totals:
			for _, t := range s.Lines {
				if t.Bold {
					add(canvasRow{kind: rowRule})
					add(canvasRow{kind: rowText, text: printer.TwoColumnLine(bigCols, t.Label, t.Value), bold: true, big: true})
					continue
				}
				txt(printer.TwoColumnLine(chars, t.Label, t.Value), printer.AlignLeft, false)
			}
			if len(s.Payments) > 0 {
				add(canvasRow{kind: rowRule})
				for _, p := range s.Payments {
					txt(printer.TwoColumnLine(chars, p.Label, p.Value), printer.AlignLeft, false)
				}
			}
		case Footer:
			add(canvasRow{kind: rowRule})
			if s.FSSAI != "" {
				txt("FSSAI Lic No: "+s.FSSAI, printer.AlignCenter, false)
			}
			if s.GSTIN != "" {
				txt("GSTIN: "+s.GSTIN, printer.AlignCenter, false)
			}
			txt(s.Message, printer.AlignCenter, true)
		case KOTHeader:
			add(canvasRow{kind: rowText, text: printer.Truncate(s.Title, bigCols), align: printer.AlignCenter, bold: true, big: true})
			txt("KOT #"+s.Number, printer.AlignCenter, true)
			add(canvasRow{kind: rowText, text: printer.Truncate(s.Seat, bigCols), align: printer.AlignCenter, bold: true, big: true})
			txt(printer.TwoColumnLine(chars, s.Date.Format("02/01/2006"), s.Date.Format("03:04 PM")), printer.AlignLeft, false)
			if s.Server != "" {
				txt("Server: "+s.Server, printer.AlignLeft, false)
			}
			add(canvasRow{kind: rowRule})
		case KOTItems:
			txt(printer.TwoColumnLine(chars, "Item", "Qty"), printer.AlignLeft, true)
			add(canvasRow{kind: rowRule})
			for _, r := range s.Rows {
				add(canvasRow{kind: rowText, text: printer.TwoColumnLine(bigCols, r.Name, r.Qty), bold: true, big: true})
				if r.Notes != "" {
					txt("  >> "+r.Notes, printer.AlignLeft, false)
				}
			}
			add(canvasRow{kind: rowRule})
			if s.OrderNotes != "" {
				txt("Note: "+s.OrderNotes, printer.AlignLeft, false)
			}
		}
		add(canvasRow{kind: rowGap})
	}
	return rows
}

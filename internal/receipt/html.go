package receipt

import (
	"bytes"
	"fmt"
	"html/template"
)

type htmlView struct {
	Title    string
	PageCSS  template.CSS
	WidthCSS template.CSS
	Sections []htmlSection
}

// htmlSection holds exactly one non-nil field.
type htmlSection struct {
	Header     *Header
	InvoiceBox *InvoiceBox
	BillInfo   *BillInfo
	Items      *ItemsTable
	Totals     *Totals
	Footer     *Footer
	KOTHeader  *KOTHeader
	KOTItems   *KOTItems
}

var htmlTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { {{.PageCSS}} }
* { box-sizing: border-box; }
body { margin: 0; font-family: "Courier New", monospace; font-size: 12px; color: #000; }
.receipt { {{.WidthCSS}} padding: 2mm; }
.center { text-align: center; }
.bold { font-weight: bold; }
.big { font-size: 18px; font-weight: bold; }
.rule { border-top: 1px dashed #000; margin: 4px 0; }
.double { border-top: 3px double #000; margin: 4px 0; }
table { width: 100%; border-collapse: collapse; }
td, th { padding: 1px 0; vertical-align: top; }
.num { text-align: right; white-space: nowrap; }
.note { font-size: 11px; font-style: italic; padding-left: 8px; }
.row { display: flex; justify-content: space-between; }
.total { font-size: 15px; font-weight: bold; }
</style>
</head>
<body>
<div class="receipt">
{{- range .Sections}}
{{- with .Header}}
<div class="center big">{{.Name}}</div>
{{- if .Address}}<div class="center">{{.Address}}</div>{{end}}
{{- if .Phone}}<div class="center">Ph: {{.Phone}}</div>{{end}}
{{- if .PureVeg}}<div class="center bold">PURE VEG</div>{{end}}
{{- end}}
{{- with .InvoiceBox}}
<div class="double"></div>
<div class="center bold">{{.Title}}</div>
{{- if .Duplicate}}<div class="center">** DUPLICATE **</div>{{end}}
<div class="double"></div>
{{- end}}
{{- with .BillInfo}}
<div class="row"><span>Bill No: {{.BillNumber}}</span><span>{{.Seat}}</span></div>
<div class="row"><span>Date: {{.Date.Format "02/01/2006"}}</span><span>{{.Date.Format "03:04 PM"}}</span></div>
{{- if .Cashier}}<div>Cashier: {{.Cashier}}</div>{{end}}
{{- end}}
{{- with .Items}}
<div class="rule"></div>
<table>
<tr><th align="left">Item</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amt</th></tr>
{{- range .Rows}}
<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{.Rate}}</td><td class="num">{{.Amount}}</td></tr>
{{- if .Notes}}<tr><td colspan="4" class="note">- {{.Notes}}</td></tr>{{end}}
{{- end}}
</table>
<div class="rule"></div>
{{- end}}
{{- with .Totals}}
{{- range .Lines}}
{{- if .Bold}}<div class="rule"></div><div class="row total"><span>{{.Label}}</span><span>{{.Value}}</span></div>
{{- else}}<div class="row"><span>{{.Label}}</span><span>{{.Value}}</span></div>{{end}}
{{- end}}
{{- if .Payments}}<div class="rule"></div>{{range .Payments}}<div class="row"><span>{{.Label}}</span><span>{{.Value}}</span></div>{{end}}{{end}}
{{- end}}
{{- with .Footer}}
<div class="rule"></div>
{{- if .FSSAI}}<div class="center">FSSAI Lic No: {{.FSSAI}}</div>{{end}}
{{- if .GSTIN}}<div class="center">GSTIN: {{.GSTIN}}</div>{{end}}
<div class="center bold">{{.Message}}</div>
{{- end}}
{{- with .KOTHeader}}
<div class="center big">{{.Title}}</div>
<div class="center bold">KOT #{{.Number}}</div>
<div class="center big">{{.Seat}}</div>
<div class="row"><span>{{.Date.Format "02/01/2006"}}</span><span>{{.Date.Format "03:04 PM"}}</span></div>
{{- if .Server}}<div>Server: {{.Server}}</div>{{end}}
<div class="rule"></div>
{{- end}}
{{- with .KOTItems}}
<table>
<tr><th align="left">Item</th><th class="num">Qty</th></tr>
{{- range .Rows}}
<tr class="big"><td>{{.Name}}</td><td class="num">{{.Qty}}</td></tr>
{{- if .Notes}}<tr><td colspan="2" class="note">&gt;&gt; {{.Notes}}</td></tr>{{end}}
{{- end}}
</table>
<div class="rule"></div>
{{- if .OrderNotes}}<div>Note: {{.OrderNotes}}</div>{{end}}
{{- end}}
{{- end}}
</div>
</body>
</html>
`))

// RenderHTML renders the layout as a standalone HTML document sized for the roll.
func RenderHTML(l *Layout) (string, error) {
	mm := l.Format.PaperMM()
	view := htmlView{
		Title:    titleFor(l),
		PageCSS:  template.CSS(fmt.Sprintf("size: %dmm auto; margin: 0;", mm)),
		WidthCSS: template.CSS(fmt.Sprintf("width: %dmm;", mm)),
	}
	for _, sec := range l.Sections {
		var hs htmlSection
		switch s := sec.(type) {
		case Header:
			hs.Header = &s
		case InvoiceBox:
			hs.InvoiceBox = &s
		case BillInfo:
			hs.BillInfo = &s
		case ItemsTable:
			hs.Items = &s
		case Totals:
			hs.Totals = &s
		case Footer:
			hs.Footer = &s
		case KOTHeader:
			hs.KOTHeader = &s
		case KOTItems:
			hs.KOTItems = &s
		}
		view.Sections = append(view.Sections, hs)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("receipt: render html: %w", err)
	}
	return buf.String(), nil
}

func titleFor(l *Layout) string {
	for _, sec := range l.Sections {
		switch s := sec.(type) {
		case BillInfo:
			return "Bill " + s.BillNumber
		case KOTHeader:
			return "KOT " + s.Number
		}
	}
	return "Receipt"
}

package receipt

import (
	"bytes"
	"context"
	"testing"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexAfter returns the position of needle in data at or after from, or -1.
func indexAfter(data []byte, needle string, from int) int {
	i := bytes.Index(data[from:], []byte(needle))
	if i < 0 {
		return -1
	}
	return from + i
}

func TestRenderESCPOSBillOrdering(t *testing.T) {
	l, err := BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat80mm, nil)
	require.NoError(t, err)
	out := RenderESCPOS(l)

	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x74, 0x00}, out[:5], "init then code page")
	assert.Equal(t, []byte{0x1B, 0x64, tailFeed, 0x1D, 0x56, 0x00}, out[len(out)-6:], "feed then full cut")

	pos := 0
	for _, want := range []string{
		"Spice Route",
		"TAX INVOICE",
		"Bill No: 41",
		"Paneer Butter Masala",
		"  - extra butter",
		"Sub Total",
		"Discount (10%)",
		"-50.00",
		"CGST @2.5%",
		"11.25",
		"SGST @2.5%",
		"Round Off",
		"+0.50",
		"NET TOTAL",
		"Rs.473.00",
		"Paid by",
		"FSSAI Lic No: 11223344556677",
		"GSTIN: 29ABCDE1234F1Z5",
		"Thank you! Visit again",
	} {
		next := indexAfter(out, want, pos)
		require.GreaterOrEqual(t, next, 0, "%q missing or out of order", want)
		pos = next
	}

	boldTotal := append([]byte{0x1B, 0x45, 0x01, 0x1D, 0x21, 0x01}, []byte("NET TOTAL")...)
	assert.True(t, bytes.Contains(out, boldTotal), "net total is printed bold")
	assert.False(t, bytes.Contains(out, []byte{0x1B, 0x70, 0x00}), "no drawer pulse unless asked")
}

func TestRenderESCPOSOpenDrawer(t *testing.T) {
	l, err := BuildBillLayout(context.Background(), sampleBill(), enum.PaperFormat58mm, nil)
	require.NoError(t, err)
	l.OpenDrawer = true
	out := RenderESCPOS(l)
	assert.Equal(t, []byte{0x1D, 0x56, 0x00, 0x1B, 0x70, 0x00, 0x19, 0xFA}, out[len(out)-8:])
}

func TestRenderESCPOSIsDeterministic(t *testing.T) {
	l, err := BuildKOTLayout(sampleKOT(), enum.PaperFormat76mm)
	require.NoError(t, err)
	assert.Equal(t, RenderESCPOS(l), RenderESCPOS(l))
}

func TestRenderESCPOSKOT(t *testing.T) {
	l, err := BuildKOTLayout(sampleKOT(), enum.PaperFormat58mm)
	require.NoError(t, err)
	out := RenderESCPOS(l)

	pos := 0
	for _, want := range []string{"KOT", "KOT #07", "Table 4", "Paneer Tikka", "  >> less spicy", "Dal Makhani (Half)", "Note: serve together"} {
		next := indexAfter(out, want, pos)
		require.GreaterOrEqual(t, next, 0, "%q missing or out of order", want)
		pos = next
	}
	assert.False(t, bytes.Contains(out, []byte("NET TOTAL")))
}

func TestPlannedRowsFitWidth(t *testing.T) {
	bill := sampleBill()
	bill.Items[0].Name = "Hyderabadi Dum Chicken Biryani Family Pack With Raita"
	bill.Items[0].Notes = "no onion, no garlic, pack gravy separately please"
	bill.CashierName = "Srinivasa Raghavan Venkataraman Iyer"

	for _, f := range []enum.PaperFormat{enum.PaperFormat58mm, enum.PaperFormat76mm, enum.PaperFormat80mm} {
		bl, err := BuildBillLayout(context.Background(), bill, f, nil)
		require.NoError(t, err)
		kl, err := BuildKOTLayout(sampleKOT(), f)
		require.NoError(t, err)

		chars := f.Chars()
		bigCols := int(float64(chars) / bigFactor)
		for _, l := range []*Layout{bl, kl} {
			for _, r := range planRows(l, chars, bigCols) {
				if r.kind != rowText {
					continue
				}
				limit := chars
				if r.big {
					limit = bigCols
				}
				assert.LessOrEqual(t, printer.TextWidth(r.text), limit, "%s %q", f, r.text)
			}
		}
	}
}

func TestRenderESCPOSKeepsLinesWithinPaper(t *testing.T) {
	bill := sampleBill()
	bill.Business.Phone = "+91 80 4000 1234 / +91 98450 12345 / +91 98450 67890"
	bill.Business.FSSAI = "112233445566778899001122334455"
	bill.Items = append(bill.Items, entity.LineItem{Name: "Mutton\nBiryani\tFamily", UnitPrice: dec("12500"), Quantity: 12})

	l, err := BuildBillLayout(context.Background(), bill, enum.PaperFormat58mm, nil)
	require.NoError(t, err)
	out := RenderESCPOS(l)

	for _, line := range printableLines(out) {
		assert.LessOrEqual(t, len(line), 32, "%q", line)
	}
	assert.True(t, bytes.Contains(out, []byte("Ph: +91 80 4000 1234 / +91 984..")))
	assert.True(t, bytes.Contains(out, []byte(" 12500.00 150000.00\n")), "rate and amount print in full")
	assert.False(t, bytes.Contains(out, []byte("\t")))
}

// printableLines splits an ESC/POS job on line feeds and drops the command
// bytes, leaving what the printer puts on paper.
func printableLines(job []byte) []string {
	var lines []string
	for _, raw := range bytes.Split(job, []byte{0x0A}) {
		var b []byte
		for i := 0; i < len(raw); i++ {
			switch raw[i] {
			case 0x1B, 0x1D:
				i += escArgs(raw[i+1:])
				continue
			}
			b = append(b, raw[i])
		}
		lines = append(lines, string(b))
	}
	return lines
}

// escArgs returns how many bytes follow ESC or GS for the commands the
// renderer emits.
func escArgs(rest []byte) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case '@', '2':
		return 1
	case 'd', 'a', 'E', '-', 't', '!', 'B', 'V', '3':
		return 2
	case 'p':
		return 4
	}
	return 1
}

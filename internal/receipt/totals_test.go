package receipt

import (
	"testing"

	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func labels(lines []TotalLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Label
	}
	return out
}

func TestComputeTotalsSampleBill(t *testing.T) {
	tot := ComputeTotals(sampleBill())

	assert.Equal(t, "472.5", tot.Computed.String())
	assert.Equal(t, "0.5", tot.RoundOff.String())
	assert.True(t, tot.HasRoundOff())

	lines := tot.Lines("₹")
	assert.Equal(t, []string{"Sub Total", "Discount (10%)", "CGST @2.5%", "SGST @2.5%", "Round Off", "NET TOTAL"}, labels(lines))
	assert.Equal(t, "-50.00", lines[1].Value)
	assert.Equal(t, "+0.50", lines[4].Value)
	assert.Equal(t, "₹473.00", lines[5].Value)
	assert.True(t, lines[5].Bold)
}

func TestRoundOffVisibility(t *testing.T) {
	tests := []struct {
		final string
		shown bool
		value string
	}{
		{"472.50", false, ""},
		{"472.505", false, ""},
		{"472.51", true, "+0.01"},
		{"472.20", true, "-0.30"},
		{"472.49", true, "-0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.final, func(t *testing.T) {
			bill := sampleBill()
			bill.FinalAmount = dec(tt.final)
			tot := ComputeTotals(bill)
			assert.Equal(t, tt.shown, tot.HasRoundOff())

			var got string
			for _, l := range tot.Lines("₹") {
				if l.Label == "Round Off" {
					got = l.Value
				}
			}
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestGSTModes(t *testing.T) {
	igst := sampleBill()
	igst.GSTMode = enum.GSTModeIGST
	lines := ComputeTotals(igst).Lines("₹")
	assert.Equal(t, []string{"Sub Total", "Discount (10%)", "IGST @5%", "Round Off", "NET TOTAL"}, labels(lines))
	assert.Equal(t, "22.50", lines[2].Value)

	hidden := sampleBill()
	off := false
	hidden.ShowGST = &off
	assert.NotContains(t, labels(ComputeTotals(hidden).Lines("₹")), "CGST @2.5%")
	assert.NotContains(t, labels(ComputeTotals(hidden).Lines("₹")), "IGST @5%")
}

func TestDiscountLabel(t *testing.T) {
	flat := sampleBill()
	flat.DiscountType = enum.DiscountTypeFlat
	flat.DiscountReason = "Staff"
	assert.Equal(t, "Discount Staff", ComputeTotals(flat).DiscLabel)

	none := sampleBill()
	none.DiscountAmount = dec("0")
	assert.NotContains(t, labels(ComputeTotals(none).Lines("₹")), "Discount (10%)")
}

func TestGSTRateFromItems(t *testing.T) {
	t.Run("items override an unset bill rate", func(t *testing.T) {
		bill := sampleBill()
		bill.GSTRate = dec("0")
		for i := range bill.Items {
			bill.Items[i].GSTRate = dec("12")
		}
		assert.Equal(t, []string{"Sub Total", "Discount (10%)", "CGST @6%", "SGST @6%", "Round Off", "NET TOTAL"},
			labels(ComputeTotals(bill).Lines("₹")))
	})

	t.Run("items without a rate use the bill rate", func(t *testing.T) {
		bill := sampleBill()
		bill.Items[0].GSTRate = dec("5")
		assert.Equal(t, "5", ComputeTotals(bill).GSTRate.String())
	})

	t.Run("mixed rates drop the rate from the label", func(t *testing.T) {
		bill := sampleBill()
		bill.Items[0].GSTRate = dec("5")
		bill.Items[1].GSTRate = dec("18")
		tot := ComputeTotals(bill)
		assert.True(t, tot.GSTRate.IsZero())
		assert.Equal(t, []string{"Sub Total", "Discount (10%)", "CGST", "SGST", "Round Off", "NET TOTAL"}, labels(tot.Lines("₹")))
		assert.Equal(t, "11.25", tot.Lines("₹")[2].Value, "amounts come from the bill")
	})
}

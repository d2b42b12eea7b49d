package printer

import (
	"strconv"
	"time"
)

// TestPage returns a short self-test job: the printer name, the paper width
// ruler, a bold/large sample and a cut.
func TestPage(width PaperWidth, name string, at time.Time) []byte {
	b := NewBuilder(width)
	w := b.Width()
	ruler := make([]byte, w)
	for i := range ruler {
		ruler[i] = byte('0' + (i+1)%10)
	}
	b.Init().CodePage(CodePagePC437).
		Align(AlignCenter).Bold(true).FontSize(FontDouble).Line("TEST PRINT").
		FontSize(FontNormal).Bold(false).
		Line(Truncate(name, w)).
		Line(at.Format("02/01/2006 15:04:05")).
		Align(AlignLeft).Separator('=').
		Line(string(ruler)).
		TwoColumns("Paper", PaperLabel(width)).
		TwoColumns("Columns", strconv.Itoa(w)).
		Separator('-').
		Bold(true).Line("Bold text").Bold(false).
		Underline(true).Line("Underlined text").Underline(false).
		FontSize(FontTall).Line("Tall text").FontSize(FontNormal).
		Separator('=').
		Feed(4).Cut()
	return b.Build()
}

// PaperLabel returns "58mm", "76mm" or "80mm".
func PaperLabel(w PaperWidth) string {
	switch w {
	case Paper80mm:
		return "80mm"
	case Paper76mm:
		return "76mm"
	default:
		return "58mm"
	}
}

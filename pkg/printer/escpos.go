package printer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// PaperWidth is the printable width of a roll in characters of the default font.
type PaperWidth int

const (
	Paper58mm PaperWidth = 32
	Paper76mm PaperWidth = 42
	Paper80mm PaperWidth = 48
)

// ParsePaperWidth maps "58mm", "76mm" and "80mm" to a width. Anything else is 58mm.
func ParsePaperWidth(format string) PaperWidth {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "80mm", "80":
		return Paper80mm
	case "76mm", "76":
		return Paper76mm
	default:
		return Paper58mm
	}
}

// Chars returns the character budget of a line.
func (w PaperWidth) Chars() int {
	switch w {
	case Paper58mm, Paper76mm, Paper80mm:
		return int(w)
	}
	return int(Paper58mm)
}

// Builder builds an ESC/POS byte stream for thermal printers.
type Builder struct {
	buf   bytes.Buffer
	width PaperWidth
}

// NewBuilder returns an empty builder for the given paper width. Call Init
// to emit the printer reset sequence.
func NewBuilder(width PaperWidth) *Builder {
	return &Builder{width: PaperWidth(width.Chars())}
}

// Width returns the character budget used by the column helpers.
func (b *Builder) Width() int {
	return b.width.Chars()
}

// Init sends the ESC @ (initialize printer) command.
func (b *Builder) Init() *Builder {
	b.buf.Write([]byte{ESC, '@'})
	return b
}

// Align sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (b *Builder) Align(align int) *Builder {
	if align < AlignLeft || align > AlignRight {
		align = AlignLeft
	}
	b.buf.Write([]byte{ESC, 'a', byte(align)})
	return b
}

// Bold enables or disables emphasized text.
func (b *Builder) Bold(on bool) *Builder {
	b.buf.Write([]byte{ESC, 'E', flag(on)})
	return b
}

// Underline enables or disables single-dot underline.
func (b *Builder) Underline(on bool) *Builder {
	b.buf.Write([]byte{ESC, '-', flag(on)})
	return b
}

// Inverse enables or disables white-on-black printing.
func (b *Builder) Inverse(on bool) *Builder {
	b.buf.Write([]byte{GS, 'B', flag(on)})
	return b
}

// FontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (b *Builder) FontSize(size byte) *Builder {
	b.buf.Write([]byte{GS, '!', size})
	return b
}

// LineSpacing sets line spacing to n motion units.
func (b *Builder) LineSpacing(n byte) *Builder {
	b.buf.Write([]byte{ESC, '3', n})
	return b
}

// ResetLineSpacing restores the default line spacing.
func (b *Builder) ResetLineSpacing() *Builder {
	b.buf.Write([]byte{ESC, '2'})
	return b
}

// CodePage selects the character table used for bytes above 0x7F.
func (b *Builder) CodePage(n byte) *Builder {
	b.buf.Write([]byte{ESC, 't', n})
	return b
}

// Text writes s without a line feed.
func (b *Builder) Text(s string) *Builder {
	b.buf.Write(EncodeText(s))
	return b
}

// Line writes s followed by a line feed.
func (b *Builder) Line(s string) *Builder {
	b.buf.Write(EncodeText(s))
	b.buf.WriteByte(LF)
	return b
}

// LineF writes a formatted line followed by a line feed.
func (b *Builder) LineF(format string, args ...any) *Builder {
	return b.Line(fmt.Sprintf(format, args...))
}

// NewLine sends a single line feed.
func (b *Builder) NewLine() *Builder {
	b.buf.WriteByte(LF)
	return b
}

// Feed prints the buffer and feeds n lines (ESC d n).
func (b *Builder) Feed(n int) *Builder {
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	b.buf.Write([]byte{ESC, 'd', byte(n)})
	return b
}

// Separator prints a full-width rule made of ch.
func (b *Builder) Separator(ch byte) *Builder {
	b.buf.WriteString(strings.Repeat(string(ch), b.Width()))
	b.buf.WriteByte(LF)
	return b
}

// TwoColumns prints left and right on one line with right flush to the width.
// Example: "Subtotal                  500.00"
func (b *Builder) TwoColumns(left, right string) *Builder {
	return b.Line(TwoColumnLine(b.Width(), left, right))
}

// ThreeColumns prints a left column and two right-aligned columns.
func (b *Builder) ThreeColumns(left, middle, right string) *Builder {
	return b.Line(ThreeColumnLine(b.Width(), left, middle, right))
}

// FourColumns prints an item row: name, quantity, rate and amount. A name
// that leaves no room beside the numbers gets a line of its own.
func (b *Builder) FourColumns(name, qty, rate, amount string) *Builder {
	for _, line := range FourColumnLines(b.Width(), name, qty, rate, amount) {
		b.Line(line)
	}
	return b
}

// Cut sends the paper cut command (full cut).
func (b *Builder) Cut() *Builder {
	b.buf.Write([]byte{GS, 'V', 0x00})
	return b
}

// PartialCut sends the partial cut command.
func (b *Builder) PartialCut() *Builder {
	b.buf.Write([]byte{GS, 'V', 0x01})
	return b
}

// OpenDrawer pulses drawer pin 2 (ESC p 0 25 250).
func (b *Builder) OpenDrawer() *Builder {
	b.buf.Write([]byte{ESC, 'p', 0x00, 0x19, 0xFA})
	return b
}

// Beep sounds the buzzer n times for t x 100ms.
func (b *Builder) Beep(n, t byte) *Builder {
	b.buf.Write([]byte{ESC, 'B', n, t})
	return b
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Build returns a copy of the accumulated ESC/POS byte stream.
func (b *Builder) Build() []byte {
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// ToBase64 returns the byte stream base64 encoded, for hosts that take a string payload.
func (b *Builder) ToBase64() string {
	return base64.StdEncoding.EncodeToString(b.buf.Bytes())
}

// Reset clears the buffer.
func (b *Builder) Reset() *Builder {
	b.buf.Reset()
	return b
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

package printer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Code pages selectable with ESC t n.
const (
	CodePagePC437 byte = 0
	CodePagePC850 byte = 2
	CodePagePC858 byte = 19
)

// Glyphs thermal printers cannot render from CP437, replaced before encoding.
var glyphReplacer = strings.NewReplacer(
	"₹", "Rs.",
	"€", "EUR",
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"…", "...",
	" ", " ",
)

// EncodeText converts s to Code Page 437 bytes. Runes without a CP437
// mapping are written as '?'.
func EncodeText(s string) []byte {
	s = glyphReplacer.Replace(s)
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if b, ok := charmap.CodePage437.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// TextWidth returns the number of printed columns s occupies once encoded.
func TextWidth(s string) int {
	return utf8.RuneCountInString(glyphReplacer.Replace(s))
}

// Normalize applies the glyph replacements EncodeText uses, keeping the result as UTF-8.
func Normalize(s string) string {
	return glyphReplacer.Replace(s)
}

// SingleLine turns line breaks and tabs into spaces and drops any other
// control characters, so s prints on one row.
func SingleLine(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

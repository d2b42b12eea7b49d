package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// PaperFormat is the roll width a printer is loaded with
type PaperFormat int

const (
	PaperFormat58mm PaperFormat = 0
	PaperFormat76mm PaperFormat = 1
	PaperFormat80mm PaperFormat = 2
)

var paperFormatNames = [...]string{"58mm", "76mm", "80mm"}

func (p PaperFormat) String() string {
	if int(p) < 0 || int(p) >= len(paperFormatNames) {
		return "58mm"
	}
	return paperFormatNames[p]
}

// Chars returns the characters per line of the default font
func (p PaperFormat) Chars() int {
	switch p {
	case PaperFormat76mm:
		return 42
	case PaperFormat80mm:
		return 48
	default:
		return 32
	}
}

// PrintableMM returns the printable width of the head in millimetres
func (p PaperFormat) PrintableMM() float64 {
	switch p {
	case PaperFormat76mm:
		return 64
	case PaperFormat80mm:
		return 72
	default:
		return 48
	}
}

// PaperMM returns the physical roll width in millimetres
func (p PaperFormat) PaperMM() int {
	switch p {
	case PaperFormat76mm:
		return 76
	case PaperFormat80mm:
		return 80
	default:
		return 58
	}
}

// ParsePaperFormat accepts "58mm", "76mm", "80mm" (case-insensitive, "mm" optional)
func ParsePaperFormat(s string) (PaperFormat, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "mm")
	switch s {
	case "58":
		return PaperFormat58mm, true
	case "76":
		return PaperFormat76mm, true
	case "80":
		return PaperFormat80mm, true
	}
	return PaperFormat58mm, false
}

func (p PaperFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PaperFormat) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*p = PaperFormat(i)
		return nil
	}
	*p, _ = ParsePaperFormat(str)
	return nil
}

func (p PaperFormat) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PaperFormat) Scan(value interface{}) error {
	if value == nil {
		*p = PaperFormat58mm
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = PaperFormat(v)
	case int:
		*p = PaperFormat(v)
	}
	return nil
}

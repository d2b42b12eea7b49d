package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// PrinterRole is the station a printer serves
type PrinterRole int

const (
	PrinterRoleKitchen PrinterRole = 0
	PrinterRoleCounter PrinterRole = 1
)

func (r PrinterRole) String() string {
	names := [...]string{"kitchen", "counter"}
	if int(r) < 0 || int(r) >= len(names) {
		return "kitchen"
	}
	return names[r]
}

// ParsePrinterRole accepts "kitchen" or "counter"
func ParsePrinterRole(s string) (PrinterRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kitchen":
		return PrinterRoleKitchen, true
	case "counter":
		return PrinterRoleCounter, true
	}
	return PrinterRoleKitchen, false
}

func (r PrinterRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *PrinterRole) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*r = PrinterRole(i)
		return nil
	}
	*r, _ = ParsePrinterRole(str)
	return nil
}

func (r PrinterRole) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *PrinterRole) Scan(value interface{}) error {
	if value == nil {
		*r = PrinterRoleKitchen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = PrinterRole(v)
	case int:
		*r = PrinterRole(v)
	}
	return nil
}

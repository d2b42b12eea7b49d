package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// TransportType is how a printer is attached
type TransportType int

const (
	TransportUSB       TransportType = 0
	TransportBluetooth TransportType = 1
	TransportNetwork   TransportType = 2
	TransportSystem    TransportType = 3
	TransportSerial    TransportType = 4
)

var transportNames = [...]string{"usb", "bluetooth", "network", "system", "serial"}

func (t TransportType) String() string {
	if int(t) < 0 || int(t) >= len(transportNames) {
		return "usb"
	}
	return transportNames[t]
}

// ParseTransportType accepts the lower-case transport names
func ParseTransportType(s string) (TransportType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range transportNames {
		if s == name {
			return TransportType(i), true
		}
	}
	return TransportUSB, false
}

func (t TransportType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TransportType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TransportType(i)
		return nil
	}
	*t, _ = ParseTransportType(str)
	return nil
}

func (t TransportType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TransportType) Scan(value interface{}) error {
	if value == nil {
		*t = TransportUSB
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TransportType(v)
	case int:
		*t = TransportType(v)
	}
	return nil
}

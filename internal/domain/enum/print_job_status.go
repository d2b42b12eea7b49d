package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PrintJobStatus tracks a dispatched document
type PrintJobStatus int

const (
	PrintJobQueued  PrintJobStatus = 0
	PrintJobPrinted PrintJobStatus = 1
	PrintJobFailed  PrintJobStatus = 2
)

func (s PrintJobStatus) String() string {
	names := [...]string{"Queued", "Printed", "Failed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Queued"
	}
	return names[s]
}

func (s PrintJobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PrintJobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PrintJobStatus(i)
		return nil
	}
	switch str {
	case "Queued":
		*s = PrintJobQueued
	case "Printed":
		*s = PrintJobPrinted
	case "Failed":
		*s = PrintJobFailed
	}
	return nil
}

func (s PrintJobStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PrintJobStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PrintJobQueued
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PrintJobStatus(v)
	case int:
		*s = PrintJobStatus(v)
	}
	return nil
}

package enum

import (
	"encoding/json"
	"strings"
)

// DiscountType says how DiscountValue on a bill is interpreted
type DiscountType int

const (
	DiscountTypeFlat       DiscountType = 0
	DiscountTypePercentage DiscountType = 1
)

func (d DiscountType) String() string {
	if d == DiscountTypePercentage {
		return "percentage"
	}
	return "flat"
}

func (d DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*d = DiscountType(i)
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "percentage", "percent", "%":
		*d = DiscountTypePercentage
	default:
		*d = DiscountTypeFlat
	}
	return nil
}

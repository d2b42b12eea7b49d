package enum

import (
	"encoding/json"
	"strings"
)

// GSTMode selects how tax lines are printed
type GSTMode int

const (
	// GSTModeCGSTSGST prints central and state tax as two lines
	GSTModeCGSTSGST GSTMode = 0
	// GSTModeIGST prints one integrated tax line
	GSTModeIGST GSTMode = 1
)

func (g GSTMode) String() string {
	if g == GSTModeIGST {
		return "igst"
	}
	return "cgst_sgst"
}

func (g GSTMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *GSTMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*g = GSTMode(i)
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(str), "igst") {
		*g = GSTModeIGST
	} else {
		*g = GSTModeCGSTSGST
	}
	return nil
}

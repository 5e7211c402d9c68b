package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexID is an identifier that upstream systems emit interchangeably as a
// JSON string or a JSON number. It normalizes to a canonical string so that
// lookups never depend on the wire representation.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*f = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexID) String() string {
	return string(f)
}

// IsZero reports whether the id carries no value.
func (f FlexID) IsZero() bool {
	return strings.TrimSpace(string(f)) == ""
}

// Equal compares two ids after normalization.
func (f FlexID) Equal(other FlexID) bool {
	return strings.TrimSpace(string(f)) == strings.TrimSpace(string(other))
}

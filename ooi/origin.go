package ooi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OriginType says how a fact entered the graph.
type OriginType int

const (
	// OriginDeclaration is a fact declared by a user.
	OriginDeclaration OriginType = iota + 1

	// OriginObservation is a fact produced by a scan task and its normalizer.
	OriginObservation

	// OriginInference is a fact derived by a business rule.
	OriginInference
)

// String returns the wire form of the origin type.
func (t OriginType) String() string {
	switch t {
	case OriginDeclaration:
		return "declaration"
	case OriginObservation:
		return "observation"
	case OriginInference:
		return "inference"
	default:
		return fmt.Sprintf("OriginType(%d)", int(t))
	}
}

// ParseOriginType parses the wire form, case-insensitively.
func ParseOriginType(s string) (OriginType, error) {
	switch strings.ToLower(s) {
	case "declaration":
		return OriginDeclaration, nil
	case "observation":
		return OriginObservation, nil
	case "inference":
		return OriginInference, nil
	default:
		return 0, fmt.Errorf("invalid origin type: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t OriginType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OriginType) UnmarshalText(text []byte) error {
	parsed, err := ParseOriginType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Origin is a read-only provenance record: Source, through Method, produced Result.
type Origin struct {
	Type   OriginType  `json:"origin_type"`
	Method string      `json:"method"`
	Source Reference   `json:"source"`
	Result []Reference `json:"result"`

	// TaskID identifies the scan task for observations. Empty otherwise.
	TaskID string `json:"task_id,omitempty"`
}

// UnmarshalJSON accepts a null task_id.
func (o *Origin) UnmarshalJSON(data []byte) error {
	type alias Origin
	var raw struct {
		alias
		TaskID *string `json:"task_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Origin(raw.alias)
	if raw.TaskID != nil {
		o.TaskID = *raw.TaskID
	}
	return nil
}

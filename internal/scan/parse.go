// Package scan turns decoded QR strings into scan candidates.
package scan

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tags how a payload was interpreted.
type Kind int

const (
	Invalid Kind = iota
	Delimited
	Structured
	RawFallback
)

func (k Kind) String() string {
	switch k {
	case Delimited:
		return "delimited"
	case Structured:
		return "structured"
	case RawFallback:
		return "raw"
	default:
		return "invalid"
	}
}

// Candidate is the (name, identifier) pair extracted from one payload.
// Only Name and StudentID are meaningful to callers; Kind and Raw are kept
// for logging.
type Candidate struct {
	Kind      Kind
	Name      string
	StudentID string
	Raw       string
}

// Valid reports whether the candidate may be handed to the decision engine.
func (c Candidate) Valid() bool {
	return c.Kind != Invalid
}

var (
	nameKeys = []string{"name", "studentName", "student_name"}
	idKeys   = []string{"id", "studentId", "student_id"}
)

// Parse interprets raw as, in order: "name|id[|...]", a JSON object with
// aliased name/id fields, or a bare identifier. The result has Kind Invalid
// when either resolved field is empty.
func Parse(raw string) Candidate {
	c := resolve(raw)
	c.Raw = raw
	if c.Name == "" || c.StudentID == "" {
		c.Kind = Invalid
	}
	return c
}

func resolve(raw string) Candidate {
	if strings.Contains(raw, "|") {
		parts := strings.SplitN(raw, "|", 3)
		return Candidate{
			Kind:      Delimited,
			Name:      strings.TrimSpace(parts[0]),
			StudentID: strings.TrimSpace(parts[1]),
		}
	}

	if fields, ok := decodeObject(raw); ok {
		return Candidate{
			Kind:      Structured,
			Name:      firstAlias(fields, nameKeys),
			StudentID: firstAlias(fields, idKeys),
		}
	}

	id := strings.TrimSpace(raw)
	return Candidate{
		Kind:      RawFallback,
		Name:      "Student " + id,
		StudentID: id,
	}
}

// decodeObject succeeds only for a JSON object; scalars and arrays are not
// structured records and fall through to the raw interpretation.
func decodeObject(raw string) (map[string]json.RawMessage, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// firstAlias returns the first alias whose value is non-empty text.
func firstAlias(fields map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

func text(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// numbers, booleans and nested values keep their literal JSON text
	return strings.TrimSpace(string(v))
}

package importer

import (
	"encoding/json"
	"time"
)

// Document is the decoded controller export.
//
// Top-level sections that are missing or malformed decode to empty
// collections; a structurally broken section never fails the parse, only
// genuinely invalid JSON does.
type Document struct {
	// Timestamp is the export's own timestamp, when present and parseable.
	Timestamp *time.Time

	// HAVersion is the controller software version, when present.
	HAVersion *string

	Areas    []Record
	Devices  []Record
	Entities map[string][]Record
	Services map[string]map[string]Record
}

// Record is one loosely-typed record from the export. Accessor methods
// tolerate missing keys and wrong types by returning zero values.
type Record map[string]any

// ParseDocument decodes an export document from raw JSON.
func ParseDocument(data []byte) (*Document, error) {
	var raw struct {
		Timestamp json.RawMessage `json:"timestamp"`
		HAVersion json.RawMessage `json:"home_assistant_version"`
		Areas     json.RawMessage `json:"areas"`
		Devices   json.RawMessage `json:"devices"`
		Entities  json.RawMessage `json:"entities"`
		Services  json.RawMessage `json:"services"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidDocument
	}

	doc := &Document{
		Entities: map[string][]Record{},
		Services: map[string]map[string]Record{},
	}

	if len(raw.Timestamp) > 0 {
		var ts string
		if err := json.Unmarshal(raw.Timestamp, &ts); err == nil {
			if parsed, err := parseExportTime(ts); err == nil {
				doc.Timestamp = parsed
			}
		}
	}
	if len(raw.HAVersion) > 0 {
		var v string
		if err := json.Unmarshal(raw.HAVersion, &v); err == nil {
			doc.HAVersion = &v
		}
	}

	// Sections default to empty on absence or shape mismatch.
	_ = json.Unmarshal(raw.Areas, &doc.Areas)
	_ = json.Unmarshal(raw.Devices, &doc.Devices)
	_ = json.Unmarshal(raw.Entities, &doc.Entities)
	_ = json.Unmarshal(raw.Services, &doc.Services)

	return doc, nil
}

// parseExportTime parses the timestamp formats controller exports use.
func parseExportTime(s string) (*time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// String returns the value for key when it is a string, else "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// StringPtr returns the value for key as an optional string.
func (r Record) StringPtr(key string) *string {
	if s, ok := r[key].(string); ok {
		return &s
	}
	return nil
}

// FloatPtr returns the value for key as an optional float.
func (r Record) FloatPtr(key string) *float64 {
	if f, ok := r[key].(float64); ok {
		return &f
	}
	return nil
}

// IntPtr returns the value for key as an optional int, truncating the
// JSON float representation.
func (r Record) IntPtr(key string) *int {
	if f, ok := r[key].(float64); ok {
		i := int(f)
		return &i
	}
	return nil
}

// Int returns the value for key as an int, defaulting to 0.
func (r Record) Int(key string) int {
	if f, ok := r[key].(float64); ok {
		return int(f)
	}
	return 0
}

// Bool returns the value for key as a bool, defaulting to false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Strings returns the value for key as a string list. Non-string
// elements are dropped.
func (r Record) Strings(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// List returns the value for key as a raw list.
func (r Record) List(key string) []any {
	list, _ := r[key].([]any)
	return list
}

// Map returns the value for key as a nested record.
func (r Record) Map(key string) Record {
	m, ok := r[key].(map[string]any)
	if !ok {
		return nil
	}
	return Record(m)
}

// TimePtr parses the value for key as an optional timestamp.
// A missing or non-string value yields nil with no error; a present but
// unparseable string is an error, surfaced so the run can fail.
func (r Record) TimePtr(key string) (*time.Time, error) {
	s, ok := r[key].(string)
	if !ok {
		return nil, nil
	}
	return parseExportTime(s)
}

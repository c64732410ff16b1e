package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	scrapeerrors "sjsage522/productscraper/pkg/errors"
)

var errNotObject = errors.New("options must be a JSON object")

// FieldRequest is the immutable set of fields a caller asked for
type FieldRequest struct {
	enabled map[Field]bool
}

// NewFieldRequest enables exactly the given fields
func NewFieldRequest(fields ...Field) FieldRequest {
	enabled := make(map[Field]bool, len(fields))
	for _, f := range fields {
		enabled[f] = true
	}
	return FieldRequest{enabled: enabled}
}

// ParseFieldRequest decodes a JSON object of field toggles. Input that is not
// a JSON object is reported as an Invalid JSON configuration error.
func ParseFieldRequest(data []byte) (FieldRequest, error) {
	return ParseFieldOptions(data, nil)
}

// ParseFieldOptions is ParseFieldRequest with alternative option names
func ParseFieldOptions(data []byte, aliases map[string]Field) (FieldRequest, error) {
	var raw interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return FieldRequest{}, scrapeerrors.NewInvalidJSON(err)
	}

	options, ok := raw.(map[string]interface{})
	if !ok {
		return FieldRequest{}, scrapeerrors.NewInvalidJSON(errNotObject)
	}
	return FieldRequestFromMap(options, aliases), nil
}

// FieldRequestFromMap builds a request from decoded toggles. aliases maps
// alternative option names onto fields; unrecognised keys are ignored.
func FieldRequestFromMap(options map[string]interface{}, aliases map[string]Field) FieldRequest {
	enabled := make(map[Field]bool)
	for key, value := range options {
		field, ok := lookupField(key, aliases)
		if !ok || !truthy(value) {
			continue
		}
		enabled[field] = true
	}
	return FieldRequest{enabled: enabled}
}

func lookupField(key string, aliases map[string]Field) (Field, bool) {
	for _, f := range canonicalFields {
		if string(f) == key {
			return f, true
		}
	}
	f, ok := aliases[key]
	return f, ok
}

// truthy follows JSON truthiness: false, 0, "", [], {} and null are off
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// Enabled reports whether field was requested
func (r FieldRequest) Enabled(field Field) bool {
	return r.enabled[field]
}

// Fields returns the requested fields in canonical order
func (r FieldRequest) Fields() []Field {
	var fields []Field
	for _, f := range canonicalFields {
		if r.enabled[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

// Empty reports whether no field was requested
func (r FieldRequest) Empty() bool {
	return len(r.enabled) == 0
}

func (r FieldRequest) String() string {
	return fmt.Sprint(r.Fields())
}

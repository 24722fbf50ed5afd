package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// JSONDoc is a semi-structured column (job requirements, specifications)
// stored as JSON text. It scans from and writes to TEXT, and marshals as the
// decoded document so API callers never see the encoded string.
type JSONDoc []byte

var jsonNull = []byte("null")

// IsZero reports whether the document is absent or JSON null.
func (d JSONDoc) IsZero() bool {
	t := bytes.TrimSpace(d)
	return len(t) == 0 || bytes.Equal(t, jsonNull)
}

// Decode unmarshals the document into v.
func (d JSONDoc) Decode(v any) error {
	if d.IsZero() {
		return nil
	}

	return json.Unmarshal(d, v)
}

// NewJSONDoc encodes v as a document.
func NewJSONDoc(v any) (JSONDoc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return JSONDoc(b), nil
}

func (d JSONDoc) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return jsonNull, nil
	}
	if !json.Valid(d) {
		// legacy free-text rows: expose them as a JSON string
		return json.Marshal(string(d))
	}

	return d, nil
}

func (d *JSONDoc) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], b...)

	return nil
}

// Value stores the document as TEXT, or NULL when empty.
func (d JSONDoc) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}

	return string(d), nil
}

func (d *JSONDoc) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case string:
		*d = JSONDoc(v)
	case []byte:
		*d = append(JSONDoc(nil), v...)
	default:
		return fmt.Errorf("jsondoc: cannot scan %T", src)
	}

	return nil
}

// NormalizeStatus returns the display form of a job status: the stored value
// lower-cased with its first letter capitalized ("IN-PROGRESS" -> "In-progress").
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(r)) + s[size:]
}

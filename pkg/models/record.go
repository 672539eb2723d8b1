package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ServiceRequestRecord is one row of the service request dataset.
// Columns is shared between all records of a dataset.
type ServiceRequestRecord struct {
	Columns []string
	Values  []string
}

// Get returns the value of column name, or "" if the column does not exist
func (r ServiceRequestRecord) Get(name string) string {
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) {
			if i < len(r.Values) {
				return r.Values[i]
			}
			return ""
		}
	}
	return ""
}

// ZipCode returns the trimmed zip code of the record
func (r ServiceRequestRecord) ZipCode() string {
	return strings.TrimSpace(r.Get(ColumnZipCode))
}

// MarshalJSON writes the record as an object in column order.
// Empty cells become null, numeric cells numbers; zip_code always stays a string.
func (r ServiceRequestRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v string
		if i < len(r.Values) {
			v = r.Values[i]
		}
		val, err := cellJSON(col, v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cellJSON(col, v string) ([]byte, error) {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, "nan") {
		return []byte("null"), nil
	}
	if strings.EqualFold(col, ColumnZipCode) {
		return json.Marshal(s)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && isDecimal(s) {
		return json.Marshal(f)
	}
	return json.Marshal(v)
}

// isDecimal rejects forms ParseFloat accepts but a CSV reader wouldn't treat as numbers (hex, "Inf", "1_000")
func isDecimal(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return true
}

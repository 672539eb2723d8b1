package models

import (
	"bytes"
	"encoding/json"
)

// Column names shared by the dataset, the mapping files and the trainer
const (
	ColumnZipCode             = "zip_code"
	ColumnIssueType           = "issue_type_reduced"
	ColumnActualCompletedDays = "actual_completed_days"
	ColumnZipCodeCode         = "zip_code_code"
	ColumnRequestTypeCode     = "request_type_code"
)

// PredictRequest holds the trimmed inputs of POST /api/predict.
// The handler decodes the body loosely so a missing or non-string field
// ends up here as an empty/stringified value instead of a bind error.
type PredictRequest struct {
	ZipCode   string `json:"zip_code"`
	IssueType string `json:"issue_type_reduced"`
}

// PredictResponse represents a successful prediction
type PredictResponse struct {
	PredictedDays float64 `json:"predicted_days"`
}

// PredictError is returned when either lookup key is unknown
type PredictError struct {
	Error           string   `json:"error"`
	ValidZipCodes   []string `json:"valid_zip_codes"`   // 先頭5件のみ
	ValidIssueTypes []string `json:"valid_issue_types"` // 先頭5件のみ
}

// HelpResponse lists valid lookup keys in mapping order
type HelpResponse struct {
	ValidZipCodes   []string `json:"valid_zip_codes"`
	ValidIssueTypes []string `json:"valid_issue_types"`
}

// IssueCount is the number of requests for one issue type
type IssueCount struct {
	IssueType string `json:"issue_type"`
	Count     int    `json:"count"`
}

// TopIssues is serialized as a single JSON object (label -> count)
// whose keys keep slice order, most frequent first.
type TopIssues []IssueCount

// MarshalJSON implements json.Marshaler
func (t TopIssues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ic := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ic.IssueType)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(ic.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

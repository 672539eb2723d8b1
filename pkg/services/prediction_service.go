package services

import (
	"errors"
	"fmt"
	"strings"

	"fixnow-api/pkg/models"
)

// ErrUnknownKey is returned when the zip code or issue type has no code
var ErrUnknownKey = errors.New("invalid ZIP code or request type")

// PredictionService 郵便番号と種別から解決日数を予測するサービス
type PredictionService struct {
	zipCodes   *CodeMapping
	issueTypes *CodeMapping
	model      *models.LinearModel
}

// NewPredictionService checks the model matches the two code features
func NewPredictionService(zipCodes, issueTypes *CodeMapping, model *models.LinearModel) (*PredictionService, error) {
	if zipCodes == nil || issueTypes == nil || model == nil {
		return nil, fmt.Errorf("prediction service needs both mappings and a model")
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	if len(model.Coefficients) != 2 {
		return nil, fmt.Errorf("model has %d features, want 2 (%s, %s)",
			len(model.Coefficients), models.ColumnZipCodeCode, models.ColumnRequestTypeCode)
	}
	return &PredictionService{zipCodes: zipCodes, issueTypes: issueTypes, model: model}, nil
}

// Predict returns the expected days to resolution rounded to 2 decimals.
// Both inputs are trimmed before lookup.
func (s *PredictionService) Predict(zipCode, issueType string) (float64, error) {
	zipCode = strings.TrimSpace(zipCode)
	issueType = strings.TrimSpace(issueType)

	zipCodeCode, okZip := s.zipCodes.Lookup(zipCode)
	typeCode, okType := s.issueTypes.Lookup(issueType)
	if !okZip || !okType {
		return 0, ErrUnknownKey
	}

	days, err := s.model.Predict(float64(zipCodeCode), float64(typeCode))
	if err != nil {
		return 0, err
	}
	return roundTo(days, 2), nil
}

// IsValidZipCode reports whether the zip code has a code
func (s *PredictionService) IsValidZipCode(zipCode string) bool {
	_, ok := s.zipCodes.Lookup(zipCode)
	return ok
}

// IsValidIssueType reports whether the issue type has a code
func (s *PredictionService) IsValidIssueType(issueType string) bool {
	_, ok := s.issueTypes.Lookup(issueType)
	return ok
}

// ValidZipCodes returns the first n zip codes in mapping order
func (s *PredictionService) ValidZipCodes(n int) []string { return s.zipCodes.Keys(n) }

// ValidIssueTypes returns the first n issue types in mapping order
func (s *PredictionService) ValidIssueTypes(n int) []string { return s.issueTypes.Keys(n) }

package services

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/models"
)

// Artifact file names written by the training job and read by the server
const (
	ModelFileName   = "model.json"
	ZipMapFileName  = "zip_code_map.csv"
	TypeMapFileName = "request_type_map.csv"
)

// TrainingResult is everything the training job produces
type TrainingResult struct {
	Model      *models.LinearModel
	ZipCodes   *CodeMapping
	IssueTypes *CodeMapping
	RowsRead   int
	RowsUsed   int
}

// TrainingService fits the days-to-resolution model from historical requests
type TrainingService struct {
	logger logger.Logger
}

// NewTrainingService 新しい学習サービスを作成
func NewTrainingService(l logger.Logger) *TrainingService {
	return &TrainingService{logger: l}
}

// Run loads the raw dataset, trains and writes the three artifacts into outDir
func (s *TrainingService) Run(dataPath, outDir string) (*TrainingResult, error) {
	ds, err := LoadDataset(dataPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("path", dataPath).Int("rows", ds.Len()).Msg("raw dataset loaded")

	res, err := s.Train(ds)
	if err != nil {
		return nil, err
	}
	if err := s.WriteArtifacts(res, outDir); err != nil {
		return nil, err
	}
	return res, nil
}

// Train drops incomplete rows, encodes zip codes and issue types as sorted
// category codes and fits an OLS model on (zip_code_code, request_type_code).
func (s *TrainingService) Train(ds *Dataset) (*TrainingResult, error) {
	if !ds.HasColumn(models.ColumnActualCompletedDays) {
		return nil, fmt.Errorf("dataset: column %q not found", models.ColumnActualCompletedDays)
	}

	type sample struct {
		zip   string
		issue string
		days  float64
	}

	samples := make([]sample, 0, ds.Len())
	dropped := 0
	for _, rec := range ds.Records() {
		zip, ok := normalizeZip(rec.Get(models.ColumnZipCode))
		issue := strings.TrimSpace(rec.Get(models.ColumnIssueType))
		days, okDays := parseNumber(rec.Get(models.ColumnActualCompletedDays))
		if !ok || issue == "" || !okDays {
			dropped++
			continue
		}
		samples = append(samples, sample{zip: zip, issue: issue, days: days})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no complete rows to train on (%d dropped)", dropped)
	}

	zips := make([]string, len(samples))
	issues := make([]string, len(samples))
	for i, smp := range samples {
		zips[i] = smp.zip
		issues[i] = smp.issue
	}
	zipCodes := categoryCodes(zips)
	issueCodes := categoryCodes(issues)

	// マッピングはデータ中の初出順で書き出す
	zipMap := NewCodeMapping(models.ColumnZipCode)
	typeMap := NewCodeMapping(models.ColumnIssueType)
	X := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, smp := range samples {
		zc, ic := zipCodes[smp.zip], issueCodes[smp.issue]
		if _, ok := zipMap.Lookup(smp.zip); !ok {
			zipMap.Set(smp.zip, zc)
		}
		if _, ok := typeMap.Lookup(smp.issue); !ok {
			typeMap.Set(smp.issue, ic)
		}
		X[i] = []float64{float64(zc), float64(ic)}
		y[i] = smp.days
	}

	model, err := FitLinearRegression([]string{models.ColumnZipCodeCode, models.ColumnRequestTypeCode}, X, y)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("rows_used", len(samples)).
		Int("rows_dropped", dropped).
		Int("zip_codes", zipMap.Len()).
		Int("issue_types", typeMap.Len()).
		Float64("intercept", model.Intercept).
		Floats64("coefficients", model.Coefficients).
		Float64("r_squared", model.RSquared).
		Msg("model trained")

	return &TrainingResult{
		Model:      model,
		ZipCodes:   zipMap,
		IssueTypes: typeMap,
		RowsRead:   ds.Len(),
		RowsUsed:   len(samples),
	}, nil
}

// WriteArtifacts persists the model and both mappings into outDir
func (s *TrainingService) WriteArtifacts(res *TrainingResult, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", outDir, err)
	}

	modelPath := filepath.Join(outDir, ModelFileName)
	if err := SaveLinearModel(modelPath, res.Model); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	zipPath := filepath.Join(outDir, ZipMapFileName)
	if err := res.ZipCodes.WriteCSV(zipPath, models.ColumnZipCode, models.ColumnZipCodeCode); err != nil {
		return fmt.Errorf("failed to save zip code map: %w", err)
	}
	typePath := filepath.Join(outDir, TypeMapFileName)
	if err := res.IssueTypes.WriteCSV(typePath, models.ColumnIssueType, models.ColumnRequestTypeCode); err != nil {
		return fmt.Errorf("failed to save request type map: %w", err)
	}

	s.logger.Info().
		Str("model", modelPath).
		Str("zip_map", zipPath).
		Str("type_map", typePath).
		Msg("✅ model and mappings saved")
	return nil
}

// categoryCodes assigns 0..n-1 to the distinct values in ascending byte order
func categoryCodes(values []string) map[string]int {
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)

	codes := make(map[string]int, len(distinct))
	for i, v := range distinct {
		codes[v] = i
	}
	return codes
}

// normalizeZip turns "10001", "10001.0" or " 10001 " into "10001".
// Anything that isn't a number counts as missing.
func normalizeZip(s string) (string, bool) {
	f, ok := parseNumber(s)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(int64(f), 10), true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

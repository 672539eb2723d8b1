package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/models"
	"fixnow-api/pkg/observability"
	"fixnow-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const (
	errorHintLimit = 5
	helpKeyLimit   = 45
)

// PredictionHandler は解決日数の予測とヘルプのハンドラです。
type PredictionHandler struct {
	svc     *services.PredictionService
	metrics *observability.Metrics
	logger  logger.Logger
}

// NewPredictionHandler は新しいPredictionHandlerを生成します。
func NewPredictionHandler(svc *services.PredictionService, metrics *observability.Metrics, l logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		svc:     svc,
		metrics: metrics,
		logger:  l,
	}
}

// Predict は郵便番号と種別から解決までの日数を予測します。
// ボディが読めない場合やフィールドが欠けている場合は空文字として扱い、400を返します。
func (h *PredictionHandler) Predict(c *gin.Context) {
	req := decodePredictRequest(c)

	validZip := h.svc.IsValidZipCode(req.ZipCode)
	validType := h.svc.IsValidIssueType(req.IssueType)
	h.logger.Debug().
		Str("zip_code", req.ZipCode).
		Str("issue_type", req.IssueType).
		Bool("valid_zip", validZip).
		Bool("valid_issue_type", validType).
		Msg("predicting")

	days, err := h.svc.Predict(req.ZipCode, req.IssueType)
	if errors.Is(err, services.ErrUnknownKey) {
		h.countPrediction("unknown_key")
		c.JSON(http.StatusBadRequest, models.PredictError{
			Error:           "Invalid ZIP code or request type",
			ValidZipCodes:   h.svc.ValidZipCodes(errorHintLimit),
			ValidIssueTypes: h.svc.ValidIssueTypes(errorHintLimit),
		})
		return
	}
	if err != nil {
		h.countPrediction("error")
		h.logger.Error().Err(err).Msg("prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	h.countPrediction("success")
	c.JSON(http.StatusOK, models.PredictResponse{PredictedDays: days})
}

// Help は有効な郵便番号と種別をそれぞれ最大45件返します。
func (h *PredictionHandler) Help(c *gin.Context) {
	resp := models.HelpResponse{
		ValidZipCodes:   h.svc.ValidZipCodes(helpKeyLimit),
		ValidIssueTypes: h.svc.ValidIssueTypes(helpKeyLimit),
	}
	h.logger.Info().
		Strs("sample_zip_codes", head(resp.ValidZipCodes, 3)).
		Strs("sample_issue_types", head(resp.ValidIssueTypes, 3)).
		Msg("help accessed")
	c.JSON(http.StatusOK, resp)
}

func (h *PredictionHandler) countPrediction(outcome string) {
	if h.metrics != nil {
		h.metrics.Predictions.WithLabelValues(outcome).Inc()
	}
}

// decodePredictRequest reads the body loosely: any JSON value is accepted
// for either field and converted to its text form.
func decodePredictRequest(c *gin.Context) models.PredictRequest {
	body := map[string]interface{}{}
	if c.Request.Body != nil {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			body = map[string]interface{}{}
		}
	}
	return models.PredictRequest{
		ZipCode:   stringField(body, models.ColumnZipCode),
		IssueType: stringField(body, models.ColumnIssueType),
	}
}

func stringField(body map[string]interface{}, key string) string {
	var s string
	switch v := body[key].(type) {
	case nil:
		s = ""
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	return strings.TrimSpace(s)
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package handlers

import (
	"net/http"
	"strings"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/observability"
	"fixnow-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const (
	topIssuesLimit = 10
	zipResultLimit = 50
)

// IssuesHandler は過去の311リクエストに関する参照系エンドポイントのハンドラです。
type IssuesHandler struct {
	dataset *services.Dataset
	metrics *observability.Metrics
	logger  logger.Logger
}

// NewIssuesHandler は新しいIssuesHandlerを生成します。
func NewIssuesHandler(dataset *services.Dataset, metrics *observability.Metrics, l logger.Logger) *IssuesHandler {
	return &IssuesHandler{
		dataset: dataset,
		metrics: metrics,
		logger:  l,
	}
}

// TopIssues は件数の多い上位10種別を {種別: 件数} のオブジェクトで返します。
func (h *IssuesHandler) TopIssues(c *gin.Context) {
	c.JSON(http.StatusOK, h.dataset.TopIssues(topIssuesLimit))
}

// IssuesByZip は郵便番号の前方一致で最大50件のレコードを返します。
// 一致がなければ空配列と404を返します。
func (h *IssuesHandler) IssuesByZip(c *gin.Context) {
	prefix := strings.TrimSpace(c.Param("zip_code"))

	h.logger.Debug().Str("zip_code", prefix).Msg("zip searched")

	records, total := h.dataset.FindByZipPrefix(prefix, zipResultLimit)
	if total == 0 {
		h.countLookup("not_found")
		h.logger.Warn().Str("zip_code", prefix).Msg("no records found for zip")
		c.JSON(http.StatusNotFound, records)
		return
	}

	h.countLookup("found")
	h.logger.Info().Str("zip_code", prefix).Int("matches", total).Int("returned", len(records)).Msg("records found for zip")
	c.JSON(http.StatusOK, records)
}

func (h *IssuesHandler) countLookup(outcome string) {
	if h.metrics != nil {
		h.metrics.ZipLookups.WithLabelValues(outcome).Inc()
	}
}

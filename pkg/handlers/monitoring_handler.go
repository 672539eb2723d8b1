package handlers

import (
	"net/http"

	"fixnow-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	svc *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(svc *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{svc: svc}
}

// periods maps the period query value to a window in hours
var periods = map[string]int{
	"1h":  1,
	"24h": 24,
	"7d":  24 * 7,
}

// GetLogs は指定期間（1h, 24h, 7d）のリクエストログ集計を返します。
// 不明な期間は24hとして扱います。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours, ok := periods[c.DefaultQuery("period", "24h")]
	if !ok {
		hours = periods["24h"]
	}
	c.JSON(http.StatusOK, h.svc.GetDashboardData(hours))
}

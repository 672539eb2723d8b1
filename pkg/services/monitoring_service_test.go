package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonitoredRouter(s *MonitoringService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.LoggingMiddleware())
	r.GET("/api/top-issues", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/api/monitoring/logs", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "") })
	return r
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	s := NewMonitoringService(nil, logger.Nop())
	r := newMonitoredRouter(s)

	// ヘッダーがなければ生成する
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/top-issues", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	// 受け取ったIDはそのまま返す
	req := httptest.NewRequest(http.MethodGet, "/api/top-issues", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.logs, 2)
	assert.Equal(t, generated, s.logs[0].RequestID)
	assert.Equal(t, "abc-123", s.logs[1].RequestID)
}

func TestLoggingMiddlewareSkipsMonitoringPaths(t *testing.T) {
	s := NewMonitoringService(nil, logger.Nop())
	r := newMonitoredRouter(s)

	for _, path := range []string{"/api/monitoring/logs", "/metrics", "/api/top-issues"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.logs, 1)
	assert.Equal(t, "/api/top-issues", s.logs[0].Path)
}

func TestLoggingMiddlewareMetrics(t *testing.T) {
	m := observability.NewMetrics(nil)
	s := NewMonitoringService(m, logger.Nop())
	r := newMonitoredRouter(s)

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/top-issues", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/top-issues", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/boom", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestLogRequestTrimsToCapacity(t *testing.T) {
	s := NewMonitoringService(nil, logger.Nop())
	for i := 0; i < maxLogEntries+5; i++ {
		s.LogRequest(LogEntry{StatusCode: i})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.logs, maxLogEntries)
	assert.Equal(t, 5, s.logs[0].StatusCode)
	assert.Equal(t, maxLogEntries+4, s.logs[len(s.logs)-1].StatusCode)
}

func TestGetDashboardData(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	s := NewMonitoringService(nil, logger.Nop())
	s.now = func() time.Time { return now }

	s.LogRequest(LogEntry{Timestamp: now.Add(-48 * time.Hour), Path: "/api/help", StatusCode: 200})
	s.LogRequest(LogEntry{Timestamp: now.Add(-2 * time.Hour), Path: "/api/predict", StatusCode: 400, ResponseTime: 4 * time.Millisecond})
	s.LogRequest(LogEntry{Timestamp: now.Add(-20 * time.Minute), Path: "/api/predict", StatusCode: 200, ResponseTime: 2 * time.Millisecond})
	s.LogRequest(LogEntry{Timestamp: now.Add(-10 * time.Minute), Path: "/api/issues/10001", StatusCode: 500, ResponseTime: 10 * time.Millisecond})

	data := s.GetDashboardData(24)

	require.Len(t, data.RequestsOverTime, 24)
	last := data.RequestsOverTime[23]
	assert.Equal(t, "12:00", last["time"])
	assert.Equal(t, 2, last["requests"])
	assert.Equal(t, 1, data.RequestsOverTime[21]["requests"])

	assert.Equal(t, map[string]int{"/api/predict": 2, "/api/issues/10001": 1}, data.Endpoints)

	require.Len(t, data.StatusCodes, 3)
	assert.Equal(t, "2xx Success", data.StatusCodes[0]["name"])
	assert.Equal(t, 1, data.StatusCodes[0]["value"])
	assert.Equal(t, 1, data.StatusCodes[1]["value"])
	assert.Equal(t, 1, data.StatusCodes[2]["value"])

	avg := map[string]interface{}{}
	for _, row := range data.AvgResponseTimes {
		avg[row["endpoint"].(string)] = row["responseTime"]
	}
	assert.Equal(t, int64(3), avg["/api/predict"])
	assert.Equal(t, int64(10), avg["/api/issues/10001"])

	require.Len(t, data.RecentErrors, 1)
	assert.Equal(t, "/api/issues/10001", data.RecentErrors[0].Path)

	hour := s.GetDashboardData(1)
	assert.Len(t, hour.RequestsOverTime, 1)
	assert.Equal(t, 2, hour.Endpoints["/api/predict"]+hour.Endpoints["/api/issues/10001"])
}

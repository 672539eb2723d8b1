package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	config "fixnow-api/configs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{Host: "0.0.0.0", Port: "5000"}

	r := gin.New()
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	srv := newHTTPServer(cfg, r)
	assert.Equal(t, "0.0.0.0:5000", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)

	// ハンドラがそのまま使われることを確認
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewHTTPServerIPv6(t *testing.T) {
	srv := newHTTPServer(&config.Config{Host: "::1", Port: "8080"}, http.NotFoundHandler())
	assert.Equal(t, "[::1]:8080", srv.Addr)
}

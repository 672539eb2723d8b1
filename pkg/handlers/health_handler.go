package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessMessage is the plain text body of GET /
const ReadinessMessage = "✅ 311FixNow Backend is running"

// Home はサービスが起動していることを示すテキストを返します。
func Home(c *gin.Context) {
	c.String(http.StatusOK, ReadinessMessage)
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

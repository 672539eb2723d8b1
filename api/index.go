package handler

import (
	"net/http"
	"sync"

	config "fixnow-api/configs"
	"fixnow-api/pkg/app"
	"fixnow-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

var (
	engine   *gin.Engine
	setupErr error
	once     sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		logger.Init(logger.Options{Level: cfg.LogLevel, Format: "json", Service: "fixnow-api"})
		log := logger.Get()

		gin.SetMode(gin.ReleaseMode)

		a, err := app.Load(cfg, *log, nil)
		if err != nil {
			log.Error().Err(err).Msg("serverless setup failed")
			setupErr = err
			return
		}
		engine = a.Router()
	})
	return engine, setupErr
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	e, err := setupApp()
	if err != nil {
		http.Error(w, "service unavailable: data files could not be loaded", http.StatusServiceUnavailable)
		return
	}
	e.ServeHTTP(w, r)
}

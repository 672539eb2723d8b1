// Package app wires the loaded data, the model and the HTTP routes together.
package app

import (
	"fmt"
	"net/http"
	"time"

	config "fixnow-api/configs"
	"fixnow-api/pkg/handlers"
	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/models"
	"fixnow-api/pkg/observability"
	"fixnow-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App holds everything a request handler may read. All of it is read-only
// once Load returns, except the monitoring log.
type App struct {
	Config     *config.Config
	Dataset    *services.Dataset
	ZipCodes   *services.CodeMapping
	IssueTypes *services.CodeMapping
	Model      *models.LinearModel
	Predictor  *services.PredictionService
	Monitoring *services.MonitoringService
	Metrics    *observability.Metrics
	Logger     logger.Logger

	gatherer prometheus.Gatherer
}

// Load reads the dataset, both code mappings and the model artifact.
// Any error here means the server cannot start.
func Load(cfg *config.Config, l logger.Logger, reg *prometheus.Registry) (*App, error) {
	var metrics *observability.Metrics
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		metrics = observability.NewMetrics(reg)
		gatherer = reg
	} else {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
	}

	ds, err := services.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.DatasetPath, err)
	}
	l.Info().Str("path", cfg.DatasetPath).Int("rows", ds.Len()).Int("columns", len(ds.Columns())).Msg("dataset loaded")

	zips, err := loadMapping(l, cfg.ZipMapPath, models.ColumnZipCode, models.ColumnZipCodeCode)
	if err != nil {
		return nil, err
	}
	types, err := loadMapping(l, cfg.TypeMapPath, models.ColumnIssueType, models.ColumnRequestTypeCode)
	if err != nil {
		return nil, err
	}

	model, err := services.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	predictor, err := services.NewPredictionService(zips, types, model)
	if err != nil {
		return nil, err
	}
	l.Info().
		Str("path", cfg.ModelPath).
		Float64("intercept", model.Intercept).
		Floats64("coefficients", model.Coefficients).
		Float64("r_squared", model.RSquared).
		Msg("model loaded")

	metrics.DatasetRows.Set(float64(ds.Len()))
	metrics.MappingSize.WithLabelValues("zip_code").Set(float64(zips.Len()))
	metrics.MappingSize.WithLabelValues("issue_type").Set(float64(types.Len()))

	return &App{
		Config:     cfg,
		Dataset:    ds,
		ZipCodes:   zips,
		IssueTypes: types,
		Model:      model,
		Predictor:  predictor,
		Monitoring: services.NewMonitoringService(metrics, l),
		Metrics:    metrics,
		Logger:     l,
		gatherer:   gatherer,
	}, nil
}

func loadMapping(l logger.Logger, path, labelColumn, codeColumn string) (*services.CodeMapping, error) {
	m, dups, err := services.LoadCodeMapping(path, labelColumn, codeColumn)
	if err != nil {
		return nil, fmt.Errorf("load mapping %s: %w", path, err)
	}
	for _, d := range dups {
		l.Warn().
			Str("path", path).
			Str("label", d.Label).
			Int("previous_code", d.Previous).
			Int("code", d.Code).
			Msg("duplicate label in mapping, last code wins")
	}
	l.Info().Str("path", path).Int("labels", m.Len()).Strs("sample", m.Keys(3)).Msg("mapping loaded")
	return m, nil
}

// Router builds the gin engine with every route registered
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// ミドルウェアの登録
	r.Use(a.Monitoring.LoggingMiddleware())
	r.Use(corsMiddleware(a.Config.CORSAllowedOrigins))

	issuesHandler := handlers.NewIssuesHandler(a.Dataset, a.Metrics, a.Logger)
	predictionHandler := handlers.NewPredictionHandler(a.Predictor, a.Metrics, a.Logger)
	monitoringHandler := handlers.NewMonitoringHandler(a.Monitoring)

	r.GET("/", handlers.Home)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/top-issues", issuesHandler.TopIssues)
		api.GET("/issues/:zip_code", issuesHandler.IssuesByZip)
		api.POST("/predict", predictionHandler.Predict)
		api.GET("/help", predictionHandler.Help)

		// モニタリングAPI
		api.GET("/monitoring/logs", monitoringHandler.GetLogs)
	}

	return r
}

// corsMiddleware allows every origin unless an explicit list is configured
func corsMiddleware(origins []string) gin.HandlerFunc {
	methods := []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	headers := []string{"Origin", "Content-Type", services.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    methods,
			AllowHeaders:    headers,
			ExposeHeaders:   []string{"Content-Length", services.RequestIDHeader},
			MaxAge:          12 * time.Hour,
		})
	}

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  methods,
		AllowHeaders:  headers,
		ExposeHeaders: []string{"Content-Length", services.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/scrubd/scrubd/internal/api/http"
	"github.com/scrubd/scrubd/internal/cleaner"
	"github.com/scrubd/scrubd/internal/config"
	"github.com/scrubd/scrubd/internal/dataset"
	"github.com/scrubd/scrubd/internal/logging"
	"github.com/scrubd/scrubd/internal/middleware"
	"github.com/scrubd/scrubd/internal/monitoring"
	"github.com/scrubd/scrubd/internal/pipeline"
)

// Server wraps the router and its dependencies. It does not own a
// listener: the supervisor binds one per launch via Factory.
type Server struct {
	router  *gin.Engine
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer assembles stores, cleaner, middleware and routes.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing scrubd server",
		zap.Int("port", cfg.Server.Port),
		zap.String("host", cfg.Server.Host),
		zap.String("storage_dir", cfg.Storage.Dir),
	)

	// Per-server registry so repeated construction (tests, relaunches)
	// never collides on collector registration.
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	features, err := dataset.NewStore(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("init feature set store: %w", err)
	}
	pipelines, err := pipeline.NewStore(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("init pipeline store: %w", err)
	}
	cl := cleaner.New(logger)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(features, pipelines, cl, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.POST("/process", handlers.Process)

	router.POST("/feature_sets", handlers.CreateFeatureSet)
	router.GET("/feature_sets", handlers.ListFeatureSets)
	router.GET("/feature_sets/:id", handlers.GetFeatureSet)
	router.PUT("/feature_sets/:id", handlers.UpdateFeatureSet)

	router.GET("/pipelines", handlers.ListPipelines)
	router.GET("/pipelines/:id", handlers.GetPipeline)
	router.PUT("/pipelines/:id", handlers.UpdatePipeline)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized")

	return &Server{
		router:  router,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Router exposes the assembled router, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *monitoring.Metrics { return s.metrics }

// Logger exposes the server's logger.
func (s *Server) Logger() *logging.Logger { return s.logger }

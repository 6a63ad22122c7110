package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/OldStager01/energy-forecaster/api/handlers"
	"github.com/OldStager01/energy-forecaster/api/middleware"
	"github.com/OldStager01/energy-forecaster/api/websocket"
	"github.com/OldStager01/energy-forecaster/docs"
	"github.com/OldStager01/energy-forecaster/internal/auth"
	"github.com/OldStager01/energy-forecaster/internal/events"
	"github.com/OldStager01/energy-forecaster/internal/metrics"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/pkg/config"
)

const docsPrefix = "/swagger"

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	pipeline    *pipeline.Pipeline
	authService *auth.Service
	cors        middleware.CORSConfig
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

// NewServer wires routes over p. bus may be nil, in which case websocket
// clients connect but never receive events.
func NewServer(cfg *config.Config, p *pipeline.Pipeline, bus *events.EventBus, m *metrics.Metrics) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if m == nil {
		m = metrics.Get()
	}

	authService := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTDuration).WithIssuer(cfg.API.JWTIssuer)

	wsHub := websocket.NewHub(&cfg.WebSocket)
	wsHub.OnClientCountChange(m.SetWebSocketClients)

	s := &Server{
		router:      gin.New(),
		config:      cfg,
		pipeline:    p,
		authService: authService,
		cors:        middleware.CORSFromConfig(cfg.API.CORS),
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(s.cors))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.SecurityHeaders(docsPrefix))

	// zero disables the global limiter
	if s.config.API.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute, s.config.API.RateBurst)
		s.router.Use(middleware.RateLimit(rateLimiter))
	}
}

func (s *Server) setupRoutes() {
	st := s.pipeline.Store()
	limits := handlers.LimitsFromConfig(&s.config.API)

	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{"store": st})
	authHandler := handlers.NewAuthHandler(st, s.authService, s.config.App.Mode == "production")
	datasetHandler := handlers.NewDatasetHandler(s.pipeline, limits)
	forecastHandler := handlers.NewForecastHandler(s.pipeline, s.config.Forecast.DefaultHorizon)
	resultsHandler := handlers.NewResultsHandler(st, limits)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	authGroup := s.router.Group("/auth")
	authGroup.Use(middleware.AuthRateLimiter())
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub, s.cors.AllowOrigins))

	docs.SwaggerInfo.BasePath = "/"
	s.router.GET(docsPrefix+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Comparing every model is the expensive path.
	endpointLimiter := middleware.NewEndpointRateLimiter()
	endpointLimiter.AddEndpoint("/api/predict/all", 10, time.Minute)

	apiGroup := s.router.Group("/api")
	apiGroup.Use(middleware.RequestSizeLimit(s.config.API.MaxUploadBytes))
	if s.config.API.AuthEnabled {
		apiGroup.Use(middleware.JWTAuth(s.authService))
	}
	apiGroup.Use(endpointLimiter.Middleware())
	{
		apiGroup.POST("/upload", datasetHandler.Upload)
		apiGroup.POST("/upload/url", datasetHandler.UploadURL)
		apiGroup.GET("/dataset/info", datasetHandler.Info)
		apiGroup.GET("/dataset/features/export", datasetHandler.ExportFeatures)
		apiGroup.GET("/datasets", datasetHandler.List)
		apiGroup.DELETE("/data", datasetHandler.Clear)

		apiGroup.POST("/predict", forecastHandler.Predict)
		apiGroup.POST("/predict/all", forecastHandler.PredictAll)
		apiGroup.GET("/forecast/latest", forecastHandler.Latest)
		apiGroup.GET("/forecast/latest/export", forecastHandler.ExportLatest)
		apiGroup.GET("/models", forecastHandler.Models)

		apiGroup.GET("/results", resultsHandler.List)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	idle := s.config.API.IdleTimeout
	if idle <= 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

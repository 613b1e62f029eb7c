package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mqttlog/internal/api"
	"mqttlog/internal/broker"
	"mqttlog/internal/config"
	"mqttlog/internal/constants"
	"mqttlog/internal/ingest"
	"mqttlog/internal/logger"
	"mqttlog/internal/query"
	"mqttlog/internal/store"
	"mqttlog/pkg/health"
	"mqttlog/pkg/metrics"
	"mqttlog/pkg/middleware"
	"mqttlog/pkg/ratelimit"
	"mqttlog/pkg/retry"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	store      *store.SQLiteStore
	client     *broker.PahoClient
	controller *ingest.Controller
	engine     *query.Engine
	server     *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize event store: %w", err)
	}

	a.initIngest()
	a.engine = query.NewEngine(a.store)

	metrics.RegisterIngestMetrics()
	metrics.RegisterQueryMetrics()
	metrics.RegisterHTTPMetrics()

	a.initHTTPServer()

	return nil
}

func (a *App) initStore(ctx context.Context) error {
	st, err := store.Open(ctx, a.Config.Database)
	if err != nil {
		return err
	}
	a.store = st
	a.Logger.Infow("Event database ready",
		"path", a.Config.Database.Path,
	)
	return nil
}

func (a *App) initIngest() {
	a.client = broker.NewPahoClient(a.Config.Broker, a.Logger)

	var flood *ingest.FloodDetector
	if a.Config.Flood.Enabled {
		flood = ingest.NewFloodDetector(
			a.Config.Flood.WindowSec*time.Second,
			a.Config.Flood.Threshold,
			a.Config.Flood.CooldownSec*time.Second,
		)
	}

	policy := retry.Policy{
		InitialInterval: a.Config.Broker.Reconnect.InitialInterval,
		MaxInterval:     a.Config.Broker.Reconnect.MaxInterval,
		Multiplier:      a.Config.Broker.Reconnect.Multiplier,
	}

	a.controller = ingest.NewController(a.client, a.store, flood, a.Logger, policy)
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recovery(a.Logger))
	router.Use(middleware.RequestLogger(a.Logger))
	router.Use(middleware.RequestID())

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewSQLiteChecker(a.store.DB()))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Use(ratelimit.Middleware(ratelimit.DefaultConfig()))

	handler := api.NewHandler(a.engine, a.Logger)
	handler.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Infow("HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		a.Logger.Infow("Ingest controller starting",
			"broker", fmt.Sprintf("%s:%d", a.Config.Broker.Host, a.Config.Broker.Port),
		)
		return a.controller.Run(gCtx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Infow("Shutting down application")

	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.Logger.Infow("Application exited successfully")
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Hub topics.
const (
	TopicPrices    = "prices"
	TopicPortfolio = "portfolio"
)

// PriceSource serves the current interval buckets.
type PriceSource interface {
	Snapshot() models.MIntervalBatch
	ProcessingMetrics() models.MProcessingMetrics
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	hubs     map[string]*Hub
	hubsOnce sync.Once
	broker   interfaces.IBroker
	prices   PriceSource
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewDashboardServer wires the REST and websocket routes. broker and prices
// may be nil; the routes depending on them then answer 503.
func NewDashboardServer(cfg *models.MConfig, broker interfaces.IBroker, prices PriceSource, log *logger.Logger) *DashboardServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config: cfg,
		Logger: log,
		engine: gin.New(),
		hubs: map[string]*Hub{
			TopicPrices:    NewHub(TopicPrices, log),
			TopicPortfolio: NewHub(TopicPortfolio, log),
		},
		broker: broker,
		prices: prices,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	s.engine.GET("/account", s.getAccount)
	s.engine.GET("/positions", s.getPositions)
	s.engine.GET("/settings", s.getSettings)
	s.engine.GET("/portfoliovalue", s.getPortfolioValue)
	s.engine.GET("/data", s.getData)

	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.engine.GET("/ws/prices", s.hubs[TopicPrices].serveWebSocket)
	s.engine.GET("/ws/portfolio", s.hubs[TopicPortfolio].serveWebSocket)
}

// AttachPrices sets the price source after construction, for sources that
// publish through this server. Call it before Start.
func (s *DashboardServer) AttachPrices(prices PriceSource) {
	s.prices = prices
}

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

func (s *DashboardServer) Broadcast(topic string, payload interface{}) {
	hub, ok := s.hubs[topic]
	if !ok {
		s.Logger.Warning("Broadcast to unknown topic %q", topic)
		return
	}
	hub.Publish(payload)
}

func (s *DashboardServer) UpdateSnapshot(topic string, payload interface{}) {
	hub, ok := s.hubs[topic]
	if !ok {
		s.Logger.Warning("Snapshot for unknown topic %q", topic)
		return
	}
	hub.SetSnapshot(payload)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.StartHubs()

	s.http = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// StartHubs launches the hub loops. Start calls it; safe to call twice.
func (s *DashboardServer) StartHubs() {
	s.hubsOnce.Do(func() {
		for _, hub := range s.hubs {
			go hub.run()
		}
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	for _, hub := range s.hubs {
		hub.Close()
	}
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cabinet/pkg/flight"
	"cabinet/pkg/inference"
	"cabinet/pkg/schema"
	"cabinet/pkg/utils"
)

// Config carries the values main resolves from the environment.
// Injected explicitly so handlers never read ambient globals.
type Config struct {
	// Production suppresses verbose error details and disables the
	// offline fallback path.
	Production bool
	// Offline serves the deterministic fallback narrative without any
	// upstream call. Never set in production.
	Offline bool
	// Timeout bounds one upstream generation call.
	Timeout time.Duration
	// MaxOutputTokens is the output budget requested from the model.
	MaxOutputTokens int64
	// ReportsPath is where completed analyses persist across restarts.
	ReportsPath string
	// CacheTTL is how long a finished narrative stays reusable.
	CacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 45 * time.Second
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 2000
	}
	if c.ReportsPath == "" {
		c.ReportsPath = "Reports.json"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	return c
}

type Server struct {
	Echo       *echo.Echo
	Inferencer inference.Inferencer
	Reports    *utils.SyncMap[map[string]schema.Report, string, schema.Report]
	Ctx        context.Context
	Config     Config

	generations flight.Cache[string, json.RawMessage]
}

func NewServer(ctx context.Context, inf inference.Inferencer, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	cfg = cfg.withDefaults()
	s := &Server{
		Echo:        e,
		Inferencer:  inf,
		Reports:     utils.NewSyncMap[map[string]schema.Report](),
		Ctx:         ctx,
		Config:      cfg,
		generations: flight.NewCache[string, json.RawMessage](cfg.CacheTTL),
	}

	s.loadReports()
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/analyze", s.handlePostAnalyze) // regimen -> generated narrative
	api.GET("/reports", s.handleGetReports)   // completed analyses
}

func (s *Server) loadReports() {
	if !utils.Exists(s.Config.ReportsPath) {
		return
	}
	reports, err := utils.Load[map[string]schema.Report](s.Config.ReportsPath)
	if err != nil {
		log.Warn("could not load report history", "path", s.Config.ReportsPath, "err", err)
		return
	}
	s.Reports.Replace(reports)
	log.Info("loaded report history", "path", s.Config.ReportsPath, "reports", s.Reports.Len())
}

// boundedCtx derives the deadline for one upstream generation from the
// server context so a coalesced result outlives any single request.
func (s *Server) boundedCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.Ctx, s.Config.Timeout)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")

	saveErr := utils.Save(s.Config.ReportsPath, s.Reports.Map())
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return saveErr
}

// handleGetRoot, handleGetReports — defined in get.go
// handlePostAnalyze — defined in analyze.go

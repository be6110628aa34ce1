// Package api provides the REST API and websocket server for timebuddy.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/timebuddy/internal/db"
	"github.com/randalmurphal/timebuddy/internal/events"
	"github.com/randalmurphal/timebuddy/internal/ml"
	"github.com/randalmurphal/timebuddy/internal/schedule"
)

// DateFormat is the calendar-day key used throughout the API.
const DateFormat = "2006-01-02"

// Oracle is the slice of the ML client the server needs.
type Oracle interface {
	CreateSchedule(ctx context.Context, req *ml.ScheduleRequest) (*db.Schedule, error)
	Predict(ctx context.Context, taskName string) ml.Prediction
}

// Server is the timebuddy API server.
type Server struct {
	addr          string
	allowedOrigin string
	mux           *http.ServeMux
	logger        *slog.Logger

	engine *schedule.Engine
	oracle Oracle

	publisher events.Publisher
	wsHandler *WSHandler

	// now is injectable so handler tests can pin "today".
	now func() time.Time

	httpServer *http.Server
}

// Config holds server configuration.
type Config struct {
	Addr          string
	AllowedOrigin string
	Engine        *schedule.Engine
	Oracle        Oracle
	Publisher     events.Publisher
	Logger        *slog.Logger
}

// New creates a new API server.
func New(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pub := cfg.Publisher
	if pub == nil {
		pub = events.NewNopPublisher()
	}

	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	s := &Server{
		addr:          cfg.Addr,
		allowedOrigin: origin,
		mux:           http.NewServeMux(),
		logger:        logger,
		engine:        cfg.Engine,
		oracle:        cfg.Oracle,
		publisher:     pub,
		now:           time.Now,
	}

	s.wsHandler = NewWSHandler(pub, logger)

	s.registerRoutes()
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("api server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.wsHandler.CloseAll()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// today returns the current calendar day key.
func (s *Server) today() string {
	return s.now().Format(DateFormat)
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{
		"status":  "ok",
		"service": "timebuddy",
	})
}

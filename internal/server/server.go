package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/config"
	"github.com/voyagen/radiodir/internal/metrics"
	"github.com/voyagen/radiodir/internal/service"
	"github.com/voyagen/radiodir/internal/store"
)

// Server holds dependencies for the HTTP API.
type Server struct {
	store     store.Store
	countries *service.Countries
	genres    *service.Genres
	stations  *service.Stations
	cfg       *config.Config
	log       *zap.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	validate  *validator.Validate
	mux       *http.ServeMux
}

// New creates a Server and registers routes. m and gatherer may be nil, in
// which case requests are not measured and /metrics is not served.
func New(s store.Store, cfg *config.Config, log *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	countries := service.NewCountries(s)
	srv := &Server{
		store:     s,
		countries: countries,
		genres:    service.NewGenres(s),
		stations:  service.NewStations(s, countries),
		cfg:       cfg,
		log:       log.With(zap.String("pkg", "server")),
		metrics:   m,
		gatherer:  gatherer,
		validate:  newValidator(),
		mux:       http.NewServeMux(),
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	// Countries
	s.mux.HandleFunc("GET /api/countries", s.handleListCountries)
	s.mux.HandleFunc("GET /api/countries/{code}", s.handleGetCountry)
	s.mux.HandleFunc("GET /api/countries/{code}/stations", s.handleCountryStations)
	s.mux.HandleFunc("GET /api/countries/{code}/genres", s.handleCountryGenres)

	// Genres
	s.mux.HandleFunc("GET /api/genres", s.handleListGenres)
	s.mux.HandleFunc("GET /api/genres/{slug}", s.handleGetGenre)

	// Stations
	s.mux.HandleFunc("GET /api/stations", s.handleListStations)
	s.mux.HandleFunc("GET /api/stations/search", s.handleSearchStations)
	s.mux.HandleFunc("GET /api/stations/slugs/all", s.handleAllSlugs)
	s.mux.HandleFunc("GET /api/stations/{slug}", s.handleGetStation)
	s.mux.HandleFunc("GET /api/stations/{slug}/full", s.handleGetStationFull)

	// Docs
	s.mux.HandleFunc("GET /api/docs", handleSwaggerUI)
	s.mux.HandleFunc("GET /api/docs/openapi.yaml", handleOpenAPISpec)

	// Static logos and flags
	if s.cfg.StaticDir != "" {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler returns the routes wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	return withCORS(s.cfg.CORSOrigin, s.withLogging(s))
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown", zap.Error(err))
		}
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/onokazu777/edinet-viewer/internal/store"
)

// Server is the JSON API server behind the dashboard views.
type Server struct {
	store   *store.Store
	logger  *slog.Logger
	port    int
	server  *http.Server
	devMode bool
}

// Option configures the API server.
type Option func(*Server)

// WithDevMode enables CORS for development.
func WithDevMode(dev bool) Option {
	return func(s *Server) {
		s.devMode = dev
	}
}

// New creates a new API server over an opened store.
func New(st *store.Store, logger *slog.Logger, port int, opts ...Option) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		port:   port,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = requestLogger(s.logger, mux)
	if s.devMode {
		handler = s.corsMiddleware(handler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: handler,
	}

	s.logger.Info("starting API server", "port", s.port, "dev_mode", s.devMode)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/capabilities", s.handleCapabilities)

	mux.HandleFunc("GET /api/companies", s.handleCompanyList)
	mux.HandleFunc("GET /api/companies/search", s.handleCompanySearch)
	mux.HandleFunc("GET /api/companies/{code}", s.handleCompanyInfo)
	mux.HandleFunc("GET /api/companies/{code}/documents", s.handleCompanyDocuments)
	mux.HandleFunc("GET /api/companies/{code}/financials", s.handleCompanyFinancials)
	mux.HandleFunc("GET /api/companies/{code}/financials.csv", s.handleCompanyFinancialsCSV)
	mux.HandleFunc("GET /api/companies/{code}/financials.xlsx", s.handleCompanyFinancialsXLSX)
	mux.HandleFunc("GET /api/companies/{code}/financials/details", s.handleFinancialDetails)
	mux.HandleFunc("GET /api/companies/{code}/textblocks", s.handleCompanyTextBlocks)

	mux.HandleFunc("GET /api/recent", s.handleRecentDocuments)

	mux.HandleFunc("GET /api/screening", s.handleScreening)
	mux.HandleFunc("GET /api/screening.csv", s.handleScreeningCSV)
	mux.HandleFunc("GET /api/screening.xlsx", s.handleScreeningXLSX)

	mux.HandleFunc("GET /api/compare", s.handleCompare)
	mux.HandleFunc("GET /api/compare.csv", s.handleCompareCSV)
	mux.HandleFunc("GET /api/compare/series", s.handleCompareSeries)

	mux.HandleFunc("GET /api/textblocks/sections", s.handleTextBlockSections)
	mux.HandleFunc("GET /api/textblocks/search", s.handleTextBlockSearch)
	mux.HandleFunc("GET /api/textblocks/search.csv", s.handleTextBlockSearchCSV)
	mux.HandleFunc("GET /api/textblocks/export", s.handleTextBlockExport)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

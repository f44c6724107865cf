// Package dashboard serves the air quality report over HTTP: an HTML page,
// a JSON API and Prometheus metrics.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"airquality-dashboard/models"
	"airquality-dashboard/services"
	"airquality-dashboard/utils"
)

//go:embed templates/index.html
var templates embed.FS

// TableSource returns the current derived table for a path.
type TableSource interface {
	Get(path string) (*models.Table, error)
}

// Server renders reports for one dataset path.
type Server struct {
	datasetPath string
	tables      TableSource
	insights    *services.InsightService
	logger      *utils.Logger
	metrics     *Metrics
	tmpl        *template.Template

	// Reports are memoized per load session; a reload yields a new session id.
	mu      sync.Mutex
	reports map[string]*models.InsightReport

	httpServer http.Server
}

// New creates a dashboard server listening on addr.
func New(addr, datasetPath string, tables TableSource, insights *services.InsightService, logger *utils.Logger) (*Server, error) {
	tmpl, err := template.New("index.html").Funcs(templateFuncs).ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse template: %w", err)
	}

	s := &Server{
		datasetPath: datasetPath,
		tables:      tables,
		insights:    insights,
		logger:      logger,
		metrics:     NewMetrics(),
		tmpl:        tmpl,
		reports:     make(map[string]*models.InsightReport),
	}
	s.httpServer = http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.metrics.middleware)

	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/api/report", s.serveReport).Methods(http.MethodGet)
	router.HandleFunc("/api/records", s.serveRecords).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[dashboard] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("[dashboard] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard: shutdown: %w", err)
	}
	return nil
}

// currentReport loads (or reuses) the table and its report.
func (s *Server) currentReport() (*models.Table, *models.InsightReport, error) {
	table, err := s.tables.Get(s.datasetPath)
	if err != nil {
		s.metrics.loadFailures.Inc()
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reports[table.SessionID]; ok {
		return table, r, nil
	}

	start := time.Now()
	report, err := s.insights.Generate(table)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.reportDuration.Observe(time.Since(start).Seconds())

	// Only the latest session is kept.
	s.reports = map[string]*models.InsightReport{table.SessionID: report}
	return table, report, nil
}

// Package http exposes health, readiness, and metrics endpoints plus a thin
// read-only API over the normalized dataset. It contains no normalization
// logic: every handler is a consumer of the pipeline's output schema.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmonti/air-quality-etl/internal/analysis"
	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/table"
)

// DatasetProvider supplies the latest normalized table and readiness state.
type DatasetProvider interface {
	CheckReadiness(ctx context.Context) error
	Dataset() (table.Table, bool)
}

// Server exposes the service's HTTP surface.
type Server struct {
	httpServer *http.Server
	provider   DatasetProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, metrics, and analysis routes.
func NewServer(addr string, provider DatasetProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/pollutants", s.handlePollutants)
	mux.HandleFunc("GET /api/daily", s.handleDaily)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.provider.Dataset()
	if !ok {
		writeNoData(w)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Summarize(t))
}

func (s *Server) handlePollutants(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.provider.Dataset()
	if !ok {
		writeNoData(w)
		return
	}
	writeJSON(w, http.StatusOK, analysis.PollutantMetrics(t))
}

// handleDaily serves per-date averages of every numeric column, optionally
// bounded by inclusive from/to query parameters in YYYY-MM-DD form.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	t, ok := s.provider.Dataset()
	if !ok {
		writeNoData(w)
		return
	}

	from, err := dateParam(r, "from")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from date, want YYYY-MM-DD"})
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to date, want YYYY-MM-DD"})
		return
	}

	daily := analysis.DailyAverages(analysis.FilterByDateRange(t, from, to))
	writeJSON(w, http.StatusOK, dailyRows(daily))
}

func dateParam(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// dailyRows flattens the averages table into JSON objects, one per date, with
// absent cells omitted so consumers render them as gaps.
func dailyRows(t table.Table) []map[string]any {
	rows := make([]map[string]any, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		row := make(map[string]any, t.NumColumns())
		for _, name := range t.ColumnNames() {
			c := t.Cell(name, r)
			if name == dataset.ColDate {
				if d, ok := c.Time(); ok {
					row["date"] = d.Format("2006-01-02")
				}
				continue
			}
			if f, ok := c.Float(); ok {
				row[name] = f
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeNoData(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no data"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

package server

import (
	"net/http"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	limit := workerLimit(s.workers, s.app.Metrics, s.logger)

	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// Analysis
	mux.HandleFunc("/api/analyze", limit(s.handleAnalyze))
	mux.HandleFunc("/api/analyze/", limit(s.handleAnalyze))
	mux.HandleFunc("/analyze", limit(s.handleAnalyze))
	mux.HandleFunc("/api/chart/", limit(s.handleChart))

	// Reference data
	mux.HandleFunc("/api/indices", s.handleIndices)
	mux.HandleFunc("/indices", s.handleIndices)
	mux.HandleFunc("/api/tickers", s.handleTickers)
}

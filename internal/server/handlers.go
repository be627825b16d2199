package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"commit":     common.GetGitCommit(),
		"provider":   s.app.Config.Provider,
		"commentary": s.app.GeminiClient != nil,
		"uptime":     time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// --- Analysis handlers ---

// handleAnalyze serves /api/analyze?symbol=X, /api/analyze/{X} and /analyze?symbol=X.
// Optional flags: commentary=true requests AI commentary, debate=false drops
// the transcript.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = r.URL.Query().Get("ticker")
	}
	if symbol == "" {
		symbol = PathParam(r, "/api/analyze/", "")
	}
	if strings.TrimSpace(symbol) == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "No symbol provided", "invalid_ticker")
		return
	}

	opts := models.AnalyzeOptions{
		Commentary: BoolParam(r, "commentary", false),
		Debate:     BoolParam(r, "debate", true),
	}

	analysis, err := s.app.Analysis.Analyze(r.Context(), symbol, opts)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}

// handleChart serves /api/chart/{X} as a PNG. The image is rendered to a
// buffer first so failures still produce a JSON error.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/chart/", "")
	symbol = strings.TrimSuffix(symbol, ".png")
	if symbol == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "No symbol provided", "invalid_ticker")
		return
	}

	var buf bytes.Buffer
	if err := s.app.Chart.Render(r.Context(), symbol, &buf); err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// --- Reference data handlers ---

// handleIndices returns {"nifty": {...}, "sp500": {...}}; an index that could
// not be fetched is simply absent.
func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Indices.Indices(r.Context()))
}

// handleTickers serves universe search for autocomplete.
func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	// The universe clamps the limit to its own bounds
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	results := s.app.Universe.Search(query, IntParam(r, "limit", 0))
	if results == nil {
		results = []models.UniverseEntry{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"tickers": results,
	})
}

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

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
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// analyzeRequest is the optional POST body for /api/analyze/{ticker}.
type analyzeRequest struct {
	Force     bool               `json:"force"`
	Benchmark string             `json:"benchmark"`
	CAPM      *models.CAPMParams `json:"capm"`
}

// handleAnalyze handles POST /api/analyze/{ticker}.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ticker := PathParam(r, "/api/analyze/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	var req analyzeRequest
	if r.ContentLength > 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	report, err := s.app.AnalysisService.AnalyzeTicker(r.Context(), ticker, interfaces.AnalyzeOptions{
		Force:     req.Force,
		CAPM:      req.CAPM,
		Benchmark: req.Benchmark,
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleStatements handles GET /api/statements/{ticker}.
func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/statements/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	balance, income, cashflow, err := s.app.AnalysisService.GetNormalizedStatements(r.Context(), ticker, force)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":           ticker,
		"balance_sheet":    balance,
		"income_statement": income,
		"cash_flow":        cashflow,
	})
}

// handleRatios handles GET /api/ratios/{ticker}.
func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/ratios/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	table, err := s.app.AnalysisService.ComputeRatios(r.Context(), ticker, force)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, table)
}

// handleBeta handles GET /api/beta/{ticker}.
func (s *Server) handleBeta(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/beta/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	result, err := s.app.AnalysisService.EstimateMarketRisk(r.Context(), ticker)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleValuation handles GET /api/valuation/{ticker}.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/valuation/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	result, err := s.app.AnalysisService.ValueCompany(r.Context(), ticker, nil)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleChart handles GET /api/charts/{ticker}.png.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := strings.TrimSuffix(PathParam(r, "/api/charts/", ""), ".png")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	png, err := s.app.AnalysisService.RenderValuationChart(r.Context(), ticker)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleReports handles GET /api/reports/{ticker} and
// GET /api/reports/{ticker}/latest.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	ticker, action, _ := strings.Cut(rest, "/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	reportStore := s.app.Storage.ReportStorage()

	if action == "latest" {
		report, err := reportStore.GetLatestReport(r.Context(), ticker)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, report)
		return
	}

	reports, err := reportStore.ListReports(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(reports),
		"reports": reports,
	})
}

// writeAnalysisError maps pipeline error types onto HTTP status codes.
// Typed computation failures are client-visible 422s; provider and
// infrastructure failures are 502/500.
func writeAnalysisError(w http.ResponseWriter, err error) {
	var structErr *models.InputStructureError
	var insufficient *models.InsufficientDataError
	var degenerate *models.DegenerateValuationError

	switch {
	case errors.As(err, &structErr):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "input_structure")
	case errors.As(err, &insufficient):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
	case errors.As(err, &degenerate):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "degenerate_valuation")
	default:
		WriteError(w, http.StatusBadGateway, err.Error())
	}
}

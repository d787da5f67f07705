package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/app"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage"
)

// stubAnalysisService records the last call and returns canned results.
type stubAnalysisService struct {
	report       *models.AnalysisReport
	ratios       *models.RatioTable
	regression   *models.RegressionResult
	valuation    *models.ValuationResult
	chart        []byte
	err          error
	lastTicker   string
	lastOptions  interfaces.AnalyzeOptions
	lastForce    bool
	lastCAPM     *models.CAPMParams
}

func (s *stubAnalysisService) AnalyzeTicker(ctx context.Context, ticker string, options interfaces.AnalyzeOptions) (*models.AnalysisReport, error) {
	s.lastTicker = ticker
	s.lastOptions = options
	return s.report, s.err
}

func (s *stubAnalysisService) GetNormalizedStatements(ctx context.Context, ticker string, force bool) (*models.NormalizedStatement, *models.NormalizedStatement, *models.NormalizedStatement, error) {
	s.lastTicker = ticker
	s.lastForce = force
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	return &models.NormalizedStatement{Type: models.StatementBalanceSheet},
		&models.NormalizedStatement{Type: models.StatementIncome},
		nil, nil
}

func (s *stubAnalysisService) ComputeRatios(ctx context.Context, ticker string, force bool) (*models.RatioTable, error) {
	s.lastTicker = ticker
	s.lastForce = force
	return s.ratios, s.err
}

func (s *stubAnalysisService) EstimateMarketRisk(ctx context.Context, ticker string) (*models.RegressionResult, error) {
	s.lastTicker = ticker
	return s.regression, s.err
}

func (s *stubAnalysisService) ValueCompany(ctx context.Context, ticker string, capm *models.CAPMParams) (*models.ValuationResult, error) {
	s.lastTicker = ticker
	s.lastCAPM = capm
	return s.valuation, s.err
}

func (s *stubAnalysisService) RenderValuationChart(ctx context.Context, ticker string) ([]byte, error) {
	s.lastTicker = ticker
	return s.chart, s.err
}

var _ interfaces.AnalysisService = (*stubAnalysisService)(nil)

func newTestServer(t *testing.T, svc interfaces.AnalysisService) *Server {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Market.Path = t.TempDir()
	config.Storage.Reports.Path = t.TempDir()

	logger := common.NewSilentLogger()
	mgr, err := storage.NewManager(logger, config)
	if err != nil {
		t.Fatalf("storage.NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	a := &app.App{
		Config:          config,
		Logger:          logger,
		Storage:         mgr,
		AnalysisService: svc,
		StartupTime:     time.Now(),
	}

	return &Server{app: a, logger: logger}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	s.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status=ok, got %q", body["status"])
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rr := httptest.NewRecorder()
	s.handleHealth(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("Expected Allow header to list GET, got %q", allow)
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	s.handleVersion(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["version"] == "" {
		t.Error("Expected version to be set")
	}
}

func TestHandleShutdown_ProductionForbidden(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})
	s.app.Config.Environment = "production"

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rr := httptest.NewRecorder()
	s.handleShutdown(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 in production, got %d", rr.Code)
	}
}

func TestHandleShutdown_SignalsChannel(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})
	ch := make(chan struct{}, 1)
	s.SetShutdownChannel(ch)

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rr := httptest.NewRecorder()
	s.handleShutdown(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected shutdown channel to be signaled")
	}
}

func TestHandleAnalyze(t *testing.T) {
	svc := &stubAnalysisService{
		report: &models.AnalysisReport{ID: "r1", Ticker: "AAPL.US", GeneratedAt: time.Now()},
	}
	s := newTestServer(t, svc)

	body := bytes.NewBufferString(`{"force":true,"benchmark":"GSPC.INDX"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/AAPL.US", body)
	rr := httptest.NewRecorder()
	s.handleAnalyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.lastTicker != "AAPL.US" {
		t.Errorf("Expected ticker AAPL.US, got %q", svc.lastTicker)
	}
	if !svc.lastOptions.Force {
		t.Error("Expected force option to be passed through")
	}
	if svc.lastOptions.Benchmark != "GSPC.INDX" {
		t.Errorf("Expected benchmark override, got %q", svc.lastOptions.Benchmark)
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if report.ID != "r1" {
		t.Errorf("Expected report r1, got %q", report.ID)
	}
}

func TestHandleAnalyze_NoBody(t *testing.T) {
	svc := &stubAnalysisService{
		report: &models.AnalysisReport{ID: "r2", Ticker: "BHP.AU"},
	}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/BHP.AU", nil)
	rr := httptest.NewRecorder()
	s.handleAnalyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 without a body, got %d", rr.Code)
	}
	if svc.lastOptions.Force {
		t.Error("Expected default options when no body supplied")
	}
}

func TestHandleAnalyze_MissingTicker(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/", nil)
	rr := httptest.NewRecorder()
	s.handleAnalyze(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestHandleStatements(t *testing.T) {
	svc := &stubAnalysisService{}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/statements/AAPL.US?force=true", nil)
	rr := httptest.NewRecorder()
	s.handleStatements(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !svc.lastForce {
		t.Error("Expected force query parameter to be honored")
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if _, ok := body["balance_sheet"]; !ok {
		t.Error("Expected balance_sheet in response")
	}
	if _, ok := body["income_statement"]; !ok {
		t.Error("Expected income_statement in response")
	}
}

func TestHandleRatios(t *testing.T) {
	svc := &stubAnalysisService{
		ratios: &models.RatioTable{Ticker: "AAPL.US"},
	}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/ratios/AAPL.US", nil)
	rr := httptest.NewRecorder()
	s.handleRatios(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var table models.RatioTable
	if err := json.Unmarshal(rr.Body.Bytes(), &table); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if table.Ticker != "AAPL.US" {
		t.Errorf("Expected ticker AAPL.US, got %q", table.Ticker)
	}
}

func TestHandleBeta(t *testing.T) {
	svc := &stubAnalysisService{
		regression: &models.RegressionResult{Ticker: "AAPL.US", Beta: 1.2, Points: 250},
	}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/beta/AAPL.US", nil)
	rr := httptest.NewRecorder()
	s.handleBeta(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var result models.RegressionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if result.Beta != 1.2 {
		t.Errorf("Expected beta 1.2, got %v", result.Beta)
	}
}

func TestHandleBeta_InsufficientData(t *testing.T) {
	svc := &stubAnalysisService{
		err: &models.InsufficientDataError{Computation: "regression", Points: 1, Reason: "need at least 2 aligned returns"},
	}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/beta/AAPL.US", nil)
	rr := httptest.NewRecorder()
	s.handleBeta(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422 for insufficient data, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Code != "insufficient_data" {
		t.Errorf("Expected error code insufficient_data, got %q", resp.Code)
	}
}

func TestHandleValuation_Degenerate(t *testing.T) {
	svc := &stubAnalysisService{
		err: &models.DegenerateValuationError{Reason: "wacc does not exceed terminal growth"},
	}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/AAPL.US", nil)
	rr := httptest.NewRecorder()
	s.handleValuation(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422 for degenerate valuation, got %d", rr.Code)
	}
}

func TestHandleChart(t *testing.T) {
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	svc := &stubAnalysisService{chart: pngMagic}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/AAPL.US.png", nil)
	rr := httptest.NewRecorder()
	s.handleChart(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if svc.lastTicker != "AAPL.US" {
		t.Errorf("Expected .png suffix stripped, got ticker %q", svc.lastTicker)
	}
	if !bytes.Equal(rr.Body.Bytes(), pngMagic) {
		t.Error("Expected raw PNG bytes in response body")
	}
}

func TestHandleReports(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	older := &models.AnalysisReport{ID: "a", Ticker: "AAPL.US", GeneratedAt: time.Now().Add(-time.Hour)}
	newer := &models.AnalysisReport{ID: "b", Ticker: "AAPL.US", GeneratedAt: time.Now()}
	ctx := context.Background()
	store := s.app.Storage.ReportStorage()
	if err := store.SaveReport(ctx, older); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if err := store.SaveReport(ctx, newer); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/AAPL.US", nil)
	rr := httptest.NewRecorder()
	s.handleReports(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Count   int                      `json:"count"`
		Reports []*models.AnalysisReport `json:"reports"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Count != 2 {
		t.Fatalf("Expected 2 reports, got %d", body.Count)
	}
	if body.Reports[0].ID != "b" {
		t.Errorf("Expected newest report first, got %q", body.Reports[0].ID)
	}

	// Latest
	req = httptest.NewRequest(http.MethodGet, "/api/reports/AAPL.US/latest", nil)
	rr = httptest.NewRecorder()
	s.handleReports(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for latest, got %d", rr.Code)
	}
	var latest models.AnalysisReport
	if err := json.Unmarshal(rr.Body.Bytes(), &latest); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if latest.ID != "b" {
		t.Errorf("Expected latest report b, got %q", latest.ID)
	}
}

func TestHandleReports_LatestMissing(t *testing.T) {
	s := newTestServer(t, &stubAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/NONE.US/latest", nil)
	rr := httptest.NewRecorder()
	s.handleReports(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for missing report, got %d", rr.Code)
	}
}

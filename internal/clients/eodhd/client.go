// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Compile-time interface checks
var (
	_ interfaces.StatementClient = (*Client)(nil)
	_ interfaces.BenchmarkClient = (*Client)(nil)
)

// Client implements the StatementClient and BenchmarkClient interfaces
// against the EODHD fundamentals and EOD endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// fundamentalsResponse holds the statement tables of the fundamentals
// endpoint. Each table maps a period-end date to the reported line items,
// keyed by whatever label the source uses.
type fundamentalsResponse struct {
	Financials struct {
		BalanceSheet struct {
			Quarterly map[string]map[string]json.RawMessage `json:"quarterly"`
			Yearly    map[string]map[string]json.RawMessage `json:"yearly"`
		} `json:"Balance_Sheet"`
		IncomeStatement struct {
			Quarterly map[string]map[string]json.RawMessage `json:"quarterly"`
			Yearly    map[string]map[string]json.RawMessage `json:"yearly"`
		} `json:"Income_Statement"`
		CashFlow struct {
			Quarterly map[string]map[string]json.RawMessage `json:"quarterly"`
			Yearly    map[string]map[string]json.RawMessage `json:"yearly"`
		} `json:"Cash_Flow"`
	} `json:"Financials"`
}

// GetStatements retrieves the raw statement tables for a ticker. Labels are
// passed through exactly as reported; values that don't parse as numbers
// (nulls, "N/A") are treated as absent.
func (c *Client) GetStatements(ctx context.Context, ticker string) (*models.StatementBundle, error) {
	path := fmt.Sprintf("/fundamentals/%s", ticker)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", ticker, err)
	}

	bundle := &models.StatementBundle{
		Ticker:       ticker,
		BalanceSheet: buildRawStatement(ticker, models.StatementBalanceSheet, resp.Financials.BalanceSheet.Quarterly),
		Income:       buildRawStatement(ticker, models.StatementIncome, resp.Financials.IncomeStatement.Quarterly),
		CashFlow:     buildRawStatement(ticker, models.StatementCashFlow, resp.Financials.CashFlow.Quarterly),
		FetchedAt:    time.Now(),
	}

	return bundle, nil
}

// buildRawStatement converts a date-keyed table into a chronological
// RawStatement. Labels are sorted per period since JSON objects carry no
// column order.
func buildRawStatement(ticker string, st models.StatementType, table map[string]map[string]json.RawMessage) *models.RawStatement {
	if len(table) == 0 {
		return nil
	}

	dates := make([]string, 0, len(table))
	for d := range table {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	raw := &models.RawStatement{
		Ticker:  ticker,
		Type:    st,
		Periods: make([]models.RawPeriod, 0, len(dates)),
	}

	for _, d := range dates {
		endDate, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		period := models.RawPeriod{
			EndDate: endDate,
			Items:   make(map[string]float64),
		}
		labels := make([]string, 0, len(table[d]))
		for label := range table[d] {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			if v, ok := parseReportedNumber(table[d][label]); ok {
				period.Labels = append(period.Labels, label)
				period.Items[label] = v
			}
		}
		raw.Periods = append(raw.Periods, period)
	}

	return raw
}

// parseReportedNumber decodes a reported value that may be a JSON number, a
// numeric string, null, or a placeholder like "N/A".
func parseReportedNumber(raw json.RawMessage) (float64, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// eodBarResponse represents a single EOD bar from the API
type eodBarResponse struct {
	Date          string  `json:"date"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
}

// GetPrices retrieves a daily closing-price history for a ticker.
// Adjusted close is preferred when present.
func (c *Client) GetPrices(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	urlParams := url.Values{}
	urlParams.Set("period", "d")
	urlParams.Set("order", "a")
	if !from.IsZero() {
		urlParams.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		urlParams.Set("to", to.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", ticker)

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}

	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		close := bar.AdjustedClose
		if close == 0 {
			close = bar.Close
		}
		points = append(points, models.PricePoint{Date: date, Close: close})
	}

	return points, nil
}

// GetIndexPrices retrieves a benchmark index price history. Index tickers
// use the same EOD endpoint with an INDX exchange suffix (e.g. "GSPC.INDX").
func (c *Client) GetIndexPrices(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	return c.GetPrices(ctx, ticker, from, to)
}

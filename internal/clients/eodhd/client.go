// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// optFloat64 is a fundamentals value that may be a number, a numeric string,
// "NA" or null. Anything that is not a number decodes as absent.
type optFloat64 struct {
	v *float64
}

func (f *optFloat64) UnmarshalJSON(data []byte) error {
	f.v = nil
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.v = &num
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "", "NA", "N/A", "NONE", "NULL":
			return nil
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			f.v = &num
		}
	}
	return nil
}

// Ptr returns the value or nil when absent
func (f optFloat64) Ptr() *float64 {
	return f.v
}

// earningsPtr is Ptr for P/E fields, where EODHD publishes 0 for companies
// without earnings
func (f optFloat64) earningsPtr() *float64 {
	if f.v == nil || *f.v == 0 {
		return nil
	}
	return f.v
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// exchangeBySuffix maps ticker suffixes to EODHD exchange codes
var exchangeBySuffix = map[string]string{
	"":   "US",
	"NS": "NSE",
	"BO": "BSE",
	"L":  "LSE",
	"AX": "AU",
	"TO": "TO",
}

// Symbol converts a ticker to EODHD's CODE.EXCHANGE form. Indices use the
// INDX exchange; unknown suffixes pass through unchanged.
func Symbol(t models.Ticker) string {
	if t.IsIndex() {
		return strings.TrimPrefix(t.Base(), "^") + ".INDX"
	}
	suffix := t.Suffix()
	if exchange, ok := exchangeBySuffix[suffix]; ok {
		return t.Base() + "." + exchange
	}
	return t.Base() + "." + suffix
}

// Client implements the MarketDataClient interface
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
		c.baseURL = strings.TrimRight(baseURL, "/")
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
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
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

// Is lets errors.Is(err, common.ErrSymbolNotFound) match a 404
func (e *APIError) Is(target error) bool {
	return target == common.ErrSymbolNotFound && e.StatusCode == http.StatusNotFound
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
		// *url.Error carries the full URL, api_token included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.baseURL + path
		}
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetEOD retrieves end-of-day price data in ascending date order
func (c *Client) GetEOD(ctx context.Context, ticker models.Ticker, opts ...interfaces.EODOption) (models.PriceSeries, error) {
	params := interfaces.NewEODParams(opts...)

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", params.Order)

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", url.PathEscape(Symbol(ticker)))

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil || bar.Close <= 0 {
			continue
		}
		series = append(series, models.EODBar{
			Date:     date,
			Open:     float64(bar.Open),
			High:     float64(bar.High),
			Low:      float64(bar.Low),
			Close:    float64(bar.Close),
			AdjClose: float64(bar.AdjustedClose),
			Volume:   int64(bar.Volume),
		})
	}

	// order=d is honoured by the API but callers always get ascending bars
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	return series, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// GetFundamentals retrieves fundamental data
func (c *Client) GetFundamentals(ctx context.Context, ticker models.Ticker) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", url.PathEscape(Symbol(ticker)))

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.General.Code == "" && resp.General.Name == "" {
		return nil, fmt.Errorf("fundamentals for %s: %w", ticker, common.ErrSymbolNotFound)
	}

	fundamentals := &models.Fundamentals{
		Ticker:         string(ticker),
		Name:           resp.General.Name,
		Sector:         resp.General.Sector,
		Industry:       resp.General.Industry,
		Currency:       resp.General.CurrencyCode,
		MarketCap:      resp.Highlights.MarketCapitalization.Ptr(),
		TrailingPE:     resp.Valuation.TrailingPE.earningsPtr(),
		ForwardPE:      resp.Valuation.ForwardPE.earningsPtr(),
		ReturnOnEquity: resp.Highlights.ReturnOnEquityTTM.Ptr(),
		ProfitMargin:   resp.Highlights.ProfitMargin.Ptr(),
		RevenueGrowth:  resp.Highlights.QuarterlyRevenueGrowthYOY.Ptr(),
		EarningsGrowth: resp.Highlights.QuarterlyEarningsGrowthYOY.Ptr(),
		LastUpdated:    time.Now(),
	}

	if fundamentals.TrailingPE == nil {
		fundamentals.TrailingPE = resp.Highlights.PERatio.earningsPtr()
	}

	if bs, ok := latestQuarter(resp.Financials.BalanceSheet.Quarterly); ok {
		debt, equity := bs.ShortLongTermDebtTotal.Ptr(), bs.TotalStockholderEquity.Ptr()
		// Negative equity makes the ratio meaningless
		if debt != nil && equity != nil && *equity > 0 {
			de := *debt / *equity
			fundamentals.DebtToEquity = &de
		}
	}

	if cf, ok := latestQuarter(resp.Financials.CashFlow.Quarterly); ok {
		fundamentals.FreeCashflow = cf.FreeCashFlow.Ptr()
	}

	return fundamentals, nil
}

// latestQuarter picks the entry with the most recent date key
func latestQuarter[T any](quarters map[string]T) (T, bool) {
	var latest string
	for date := range quarters {
		if date > latest {
			latest = date
		}
	}
	q, ok := quarters[latest]
	return q, ok && latest != ""
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Type         string `json:"Type"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization       optFloat64 `json:"MarketCapitalization"`
		PERatio                    optFloat64 `json:"PERatio"`
		ReturnOnEquityTTM          optFloat64 `json:"ReturnOnEquityTTM"`
		ProfitMargin               optFloat64 `json:"ProfitMargin"`
		QuarterlyRevenueGrowthYOY  optFloat64 `json:"QuarterlyRevenueGrowthYOY"`
		QuarterlyEarningsGrowthYOY optFloat64 `json:"QuarterlyEarningsGrowthYOY"`
	} `json:"Highlights"`
	Valuation struct {
		TrailingPE optFloat64 `json:"TrailingPE"`
		ForwardPE  optFloat64 `json:"ForwardPE"`
	} `json:"Valuation"`
	Financials struct {
		BalanceSheet struct {
			Quarterly map[string]balanceSheetEntry `json:"quarterly"`
		} `json:"Balance_Sheet"`
		CashFlow struct {
			Quarterly map[string]cashFlowEntry `json:"quarterly"`
		} `json:"Cash_Flow"`
	} `json:"Financials"`
}

type balanceSheetEntry struct {
	ShortLongTermDebtTotal optFloat64 `json:"shortLongTermDebtTotal"`
	TotalStockholderEquity optFloat64 `json:"totalStockholderEquity"`
}

type cashFlowEntry struct {
	FreeCashFlow optFloat64 `json:"freeCashFlow"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

// Package yahoo provides a client for the Yahoo Finance chart and
// quoteSummary endpoints
package yahoo

import (
	"context"
	"encoding/json"
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

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
	DefaultRange     = "2y"

	userAgent = "Mozilla/5.0 (compatible; mini-analyst)"

	maxResponseBytes = 8 << 20

	summaryModules = "price,summaryDetail,financialData,defaultKeyStatistics,assetProfile"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
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

// WithProxy routes requests through an HTTP proxy
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		if proxyURL == "" {
			return
		}
		if u, err := url.Parse(proxyURL); err == nil {
			c.httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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
	Code       string // Yahoo error code, e.g. "Not Found"
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is lets errors.Is(err, common.ErrSymbolNotFound) match an unknown symbol
func (e *APIError) Is(target error) bool {
	return target == common.ErrSymbolNotFound &&
		(e.StatusCode == http.StatusNotFound || strings.EqualFold(e.Code, "Not Found"))
}

// apiErrorBody is the error envelope shared by chart and quoteSummary
type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// get performs a rate-limited GET request. Non-200 bodies are inspected for
// Yahoo's error envelope so unknown symbols keep their "Not Found" code.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", reqURL).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
		if e := decodeErrorEnvelope(body); e != nil {
			apiErr.Code = e.Code
			apiErr.Message = e.Description
		}
		return apiErr
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func decodeErrorEnvelope(body []byte) *apiErrorBody {
	var env map[string]struct {
		Error *apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	for _, v := range env {
		if v.Error != nil {
			return v.Error
		}
	}
	return nil
}

// chartResponse is the response structure from the chart API.
// Missing bars arrive as null entries in the quote arrays.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				Symbol               string `json:"symbol"`
				GMTOffset            int    `json:"gmtoffset"` // seconds east of UTC
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"chart"`
}

// GetEOD retrieves daily bars. A date range maps to period1/period2,
// otherwise the last two years are requested.
func (c *Client) GetEOD(ctx context.Context, ticker models.Ticker, opts ...interfaces.EODOption) (models.PriceSeries, error) {
	params := interfaces.NewEODParams(opts...)

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("includeAdjustedClose", "true")
	if !params.From.IsZero() {
		to := params.To
		if to.IsZero() {
			to = time.Now()
		}
		q.Set("period1", strconv.FormatInt(params.From.Unix(), 10))
		q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	} else {
		q.Set("range", DefaultRange)
	}

	path := "/v8/finance/chart/" + url.PathEscape(string(ticker))

	var resp chartResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Code: e.Code, Message: e.Description, Endpoint: path}
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return models.PriceSeries{}, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)

	// Unreported open/high/low/volume stay zero rather than being invented
	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		cl := at(quote.Close, i)
		if cl == nil || *cl <= 0 {
			continue // skip null bars (holidays, halts)
		}
		bar := models.EODBar{
			Date:     sessionDate(ts, loc),
			Open:     value(at(quote.Open, i), 0),
			High:     value(at(quote.High, i), 0),
			Low:      value(at(quote.Low, i), 0),
			Close:    *cl,
			AdjClose: value(at(adj, i), *cl),
			Volume:   int64(value(at(quote.Volume, i), 0)),
		}
		series = append(series, bar)
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// exchangeLocation resolves the exchange timezone, falling back to the fixed
// offset Yahoo reports when the zone database lacks the name
func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone(name, gmtOffset)
}

// sessionDate returns the exchange-local trading day of a bar timestamp as a
// UTC midnight, matching how EODHD dates are parsed
func sessionDate(ts int64, loc *time.Location) time.Time {
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(xs []*float64, i int) *float64 {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func value(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; an empty
// object means the value is not reported.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) ptr() *float64 {
	if r == nil {
		return nil
	}
	return r.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName           string    `json:"longName"`
				ShortName          string    `json:"shortName"`
				Currency           string    `json:"currency"`
				RegularMarketPrice *rawValue `json:"regularMarketPrice"`
				MarketCap          *rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE *rawValue `json:"trailingPE"`
				ForwardPE  *rawValue `json:"forwardPE"`
				MarketCap  *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				CurrentPrice   *rawValue `json:"currentPrice"`
				ReturnOnEquity *rawValue `json:"returnOnEquity"`
				ProfitMargins  *rawValue `json:"profitMargins"`
				DebtToEquity   *rawValue `json:"debtToEquity"`
				RevenueGrowth  *rawValue `json:"revenueGrowth"`
				EarningsGrowth *rawValue `json:"earningsGrowth"`
				FreeCashflow   *rawValue `json:"freeCashflow"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				ForwardPE *rawValue `json:"forwardPE"`
			} `json:"defaultKeyStatistics"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"quoteSummary"`
}

// GetFundamentals retrieves fundamentals from quoteSummary. Missing modules
// leave their fields nil. Debt/equity is returned as Yahoo reports it
// (usually percent).
func (c *Client) GetFundamentals(ctx context.Context, ticker models.Ticker) (*models.Fundamentals, error) {
	path := "/v10/finance/quoteSummary/" + url.PathEscape(string(ticker))
	q := url.Values{}
	q.Set("modules", summaryModules)

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Code: e.Code, Message: e.Description, Endpoint: path}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quoteSummary for %s: %w", ticker, common.ErrSymbolNotFound)
	}

	r := resp.QuoteSummary.Result[0]
	f := &models.Fundamentals{
		Ticker:      string(ticker),
		LastUpdated: time.Now(),
	}

	if p := r.Price; p != nil {
		f.Name = p.LongName
		if f.Name == "" {
			f.Name = p.ShortName
		}
		f.Currency = p.Currency
		f.CurrentPrice = p.RegularMarketPrice.ptr()
		f.MarketCap = p.MarketCap.ptr()
	}
	if s := r.SummaryDetail; s != nil {
		f.TrailingPE = s.TrailingPE.ptr()
		f.ForwardPE = s.ForwardPE.ptr()
		if f.MarketCap == nil {
			f.MarketCap = s.MarketCap.ptr()
		}
	}
	if k := r.DefaultKeyStatistics; k != nil && f.ForwardPE == nil {
		f.ForwardPE = k.ForwardPE.ptr()
	}
	if fd := r.FinancialData; fd != nil {
		if cp := fd.CurrentPrice.ptr(); cp != nil {
			f.CurrentPrice = cp
		}
		f.ReturnOnEquity = fd.ReturnOnEquity.ptr()
		f.ProfitMargin = fd.ProfitMargins.ptr()
		f.DebtToEquity = fd.DebtToEquity.ptr()
		f.RevenueGrowth = fd.RevenueGrowth.ptr()
		f.EarningsGrowth = fd.EarningsGrowth.ptr()
		f.FreeCashflow = fd.FreeCashflow.ptr()
	}
	if a := r.AssetProfile; a != nil {
		f.Sector = a.Sector
		f.Industry = a.Industry
	}

	return f, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

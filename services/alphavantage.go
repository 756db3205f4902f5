package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"trend-watch/models"
	"trend-watch/observability"

	"github.com/shopspring/decimal"
)

// AlphaVantageService handles communication with Alpha Vantage API
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// Name identifies the provider in logs and metrics
func (s *AlphaVantageService) Name() string {
	return "alphavantage"
}

// DailySeriesResponse represents the TIME_SERIES_DAILY response from Alpha Vantage
type DailySeriesResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// GetDailySeries returns daily closing prices for a ticker in ascending date
// order, bounded by [start, end]. An unknown ticker yields an empty slice.
func (s *AlphaVantageService) GetDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	metrics := observability.GetMetrics()
	metrics.RecordProviderRequest(s.Name(), "daily_series")
	started := time.Now()
	defer func() { metrics.RecordProviderDuration(s.Name(), "daily_series", time.Since(started)) }()

	points, err := WithCircuitBreaker(ctx, BreakerAlphaVantage, func() ([]models.PricePoint, error) {
		var points []models.PricePoint

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("function", "TIME_SERIES_DAILY")
			params.Set("symbol", ticker)
			params.Set("outputsize", "full")
			params.Set("apikey", s.apiKey)

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
			if err != nil {
				return fmt.Errorf("failed to build daily series request: %w", err)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch daily series: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daily series request returned status %d", resp.StatusCode)
			}

			var seriesResp DailySeriesResponse
			if err := json.NewDecoder(resp.Body).Decode(&seriesResp); err != nil {
				return fmt.Errorf("failed to decode daily series: %w", err)
			}

			// Alpha Vantage reports throttling inside a 200 response
			if seriesResp.Note != "" || seriesResp.Information != "" {
				return fmt.Errorf("daily series request throttled for %s", ticker)
			}

			points = parseDailySeries(ticker, seriesResp, start, end)
			return nil
		})
		return points, err
	})

	if err != nil {
		metrics.RecordProviderError(s.Name(), "daily_series")
		return nil, err
	}

	return points, nil
}

// parseDailySeries converts the date-keyed response map into sorted points
// within [start, end]. An "Error Message" body means an unknown ticker and
// yields an empty slice.
func parseDailySeries(ticker string, resp DailySeriesResponse, start, end time.Time) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(resp.TimeSeries))

	for dateStr, fields := range resp.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			observability.Warn("skipping bar with unparseable date",
				"ticker", ticker, "date", dateStr)
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}

		closeStr, ok := fields["4. close"]
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			observability.Warn("skipping bar with unparseable close",
				"ticker", ticker, "date", dateStr, "close", closeStr)
			continue
		}

		points = append(points, models.PricePoint{Date: date, Close: closePrice})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points
}

// QuoteResponse represents a GLOBAL_QUOTE response from Alpha Vantage
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetQuote returns the latest quote for a ticker
func (s *AlphaVantageService) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	metrics := observability.GetMetrics()
	metrics.RecordProviderRequest(s.Name(), "quote")
	started := time.Now()
	defer func() { metrics.RecordProviderDuration(s.Name(), "quote", time.Since(started)) }()

	quote, err := WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.Quote, error) {
		params := url.Values{}
		params.Set("function", "GLOBAL_QUOTE")
		params.Set("symbol", ticker)
		params.Set("apikey", s.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build quote request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote: %w", err)
		}
		defer resp.Body.Close()

		var quoteResp QuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}

		if quoteResp.GlobalQuote.Symbol == "" {
			return nil, models.ErrNoMatch
		}

		price, err := decimal.NewFromString(quoteResp.GlobalQuote.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quote price %q: %w", quoteResp.GlobalQuote.Price, err)
		}
		prevClose, _ := decimal.NewFromString(quoteResp.GlobalQuote.PrevClose)

		var volume int64
		if quoteResp.GlobalQuote.Volume != "" {
			volume, err = strconv.ParseInt(quoteResp.GlobalQuote.Volume, 10, 64)
			if err != nil {
				observability.Warn("failed to parse quote volume",
					"ticker", ticker, "volume", quoteResp.GlobalQuote.Volume)
			}
		}

		return &models.Quote{
			Ticker:    ticker,
			Price:     price,
			PrevClose: prevClose,
			Volume:    volume,
			Timestamp: time.Now(),
		}, nil
	})

	if err != nil {
		metrics.RecordProviderError(s.Name(), "quote")
		return nil, err
	}

	return quote, nil
}

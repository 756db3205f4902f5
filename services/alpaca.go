package services

import (
	"context"
	"fmt"
	"time"

	"trend-watch/models"
	"trend-watch/observability"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// alpacaDataClient defines the marketdata calls we use (for testing)
type alpacaDataClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetSnapshot(symbol string, req marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error)
}

// AlpacaService handles communication with Alpaca market data
type AlpacaService struct {
	dataClient alpacaDataClient
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{dataClient: dataClient}
}

// Name identifies the provider in logs and metrics
func (s *AlpacaService) Name() string {
	return "alpaca"
}

// GetDailySeries returns daily closing prices for a ticker in ascending date
// order, bounded by [start, end]. Alpaca returns bars sorted ascending.
func (s *AlpacaService) GetDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	metrics := observability.GetMetrics()
	metrics.RecordProviderRequest(s.Name(), "daily_series")
	started := time.Now()
	defer func() { metrics.RecordProviderDuration(s.Name(), "daily_series", time.Since(started)) }()

	points, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]models.PricePoint, error) {
		var points []models.PricePoint

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			bars, err := s.dataClient.GetBars(ticker, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     start,
				End:       end,
			})
			if err != nil {
				return fmt.Errorf("failed to get bars for %s: %w", ticker, err)
			}

			points = make([]models.PricePoint, 0, len(bars))
			for _, bar := range bars {
				points = append(points, models.PricePoint{
					Date:  bar.Timestamp.UTC().Truncate(24 * time.Hour),
					Close: bar.Close,
				})
			}
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

// GetQuote returns the latest quote for a ticker
func (s *AlpacaService) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	metrics := observability.GetMetrics()
	metrics.RecordProviderRequest(s.Name(), "quote")
	started := time.Now()
	defer func() { metrics.RecordProviderDuration(s.Name(), "quote", time.Since(started)) }()

	quote, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() (*models.Quote, error) {
		snapshot, err := s.dataClient.GetSnapshot(ticker, marketdata.GetSnapshotRequest{})
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot for %s: %w", ticker, err)
		}
		if snapshot == nil || snapshot.LatestTrade == nil {
			return nil, models.ErrNoMatch
		}

		q := &models.Quote{
			Ticker:    ticker,
			Price:     decimal.NewFromFloat(snapshot.LatestTrade.Price),
			Timestamp: snapshot.LatestTrade.Timestamp,
		}
		if snapshot.PrevDailyBar != nil {
			q.PrevClose = decimal.NewFromFloat(snapshot.PrevDailyBar.Close)
		}
		if snapshot.DailyBar != nil {
			q.Volume = int64(snapshot.DailyBar.Volume)
		}
		return q, nil
	})

	if err != nil {
		metrics.RecordProviderError(s.Name(), "quote")
		return nil, err
	}

	return quote, nil
}

package services

import (
	"context"
	"time"

	"trend-watch/models"
)

// MarketDataProvider defines the interface for historical and live price data
type MarketDataProvider interface {
	// GetDailySeries returns daily closing prices for a ticker in ascending
	// date order, bounded by [start, end]. An empty slice with a nil error
	// means the provider knows no such ticker.
	GetDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)

	// GetQuote returns the most recent quote for a ticker.
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// MailSender defines the interface for outbound alert delivery
type MailSender interface {
	Send(ctx context.Context, alert *models.Alert) error
}

// Compile-time interface verification
var _ MarketDataProvider = (*AlphaVantageService)(nil)
var _ MarketDataProvider = (*AlpacaService)(nil)
var _ MailSender = (*SMTPMailer)(nil)

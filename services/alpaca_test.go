package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// mockAlpacaDataClient implements alpacaDataClient for testing
type mockAlpacaDataClient struct {
	bars        []marketdata.Bar
	barsErr     error
	snapshot    *marketdata.Snapshot
	snapshotErr error

	lastBarsRequest marketdata.GetBarsRequest
}

func (m *mockAlpacaDataClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.lastBarsRequest = req
	return m.bars, m.barsErr
}

func (m *mockAlpacaDataClient) GetSnapshot(symbol string, req marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error) {
	return m.snapshot, m.snapshotErr
}

func TestNewAlpacaService(t *testing.T) {
	service := NewAlpacaService("test-key", "test-secret")
	if service == nil {
		t.Fatal("NewAlpacaService should not return nil")
	}
	if service.dataClient == nil {
		t.Error("dataClient should not be nil")
	}
	if service.Name() != "alpaca" {
		t.Errorf("Name() = %v, want 'alpaca'", service.Name())
	}
}

func TestAlpacaGetDailySeries(t *testing.T) {
	mock := &mockAlpacaDataClient{
		bars: []marketdata.Bar{
			{Timestamp: time.Date(2026, 1, 2, 5, 0, 0, 0, time.UTC), Close: 100.5},
			{Timestamp: time.Date(2026, 1, 5, 5, 0, 0, 0, time.UTC), Close: 101.25},
		},
	}
	service := &AlpacaService{dataClient: mock}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	points, err := service.GetDailySeries(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("GetDailySeries() error = %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("GetDailySeries() returned %d points, want 2", len(points))
	}
	if points[0].Close != 100.5 || points[1].Close != 101.25 {
		t.Errorf("closes = %v, %v; want 100.5, 101.25", points[0].Close, points[1].Close)
	}
	if !points[0].Date.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first date = %v, want 2026-01-02 midnight UTC", points[0].Date)
	}
	if mock.lastBarsRequest.TimeFrame != marketdata.OneDay {
		t.Errorf("TimeFrame = %v, want OneDay", mock.lastBarsRequest.TimeFrame)
	}
	if !mock.lastBarsRequest.Start.Equal(start) || !mock.lastBarsRequest.End.Equal(end) {
		t.Errorf("request window = [%v, %v], want [%v, %v]",
			mock.lastBarsRequest.Start, mock.lastBarsRequest.End, start, end)
	}
}

func TestAlpacaGetDailySeries_Error(t *testing.T) {
	mock := &mockAlpacaDataClient{barsErr: errors.New("boom")}
	service := &AlpacaService{dataClient: mock}

	_, err := service.GetDailySeries(context.Background(), "AAPL",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Error("GetDailySeries() error = nil, want error")
	}
}

func TestAlpacaGetQuote(t *testing.T) {
	mock := &mockAlpacaDataClient{
		snapshot: &marketdata.Snapshot{
			LatestTrade: &marketdata.Trade{
				Price:     187.5,
				Timestamp: time.Date(2026, 1, 15, 20, 59, 0, 0, time.UTC),
			},
			DailyBar:     &marketdata.Bar{Close: 187.4, Volume: 50000000},
			PrevDailyBar: &marketdata.Bar{Close: 185.0},
		},
	}
	service := &AlpacaService{dataClient: mock}

	quote, err := service.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}

	if quote.Ticker != "AAPL" {
		t.Errorf("Ticker = %v, want 'AAPL'", quote.Ticker)
	}
	if quote.Price.String() != "187.5" {
		t.Errorf("Price = %v, want 187.5", quote.Price)
	}
	if quote.PrevClose.String() != "185" {
		t.Errorf("PrevClose = %v, want 185", quote.PrevClose)
	}
	if quote.Volume != 50000000 {
		t.Errorf("Volume = %v, want 50000000", quote.Volume)
	}
}

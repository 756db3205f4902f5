package models

import (
	"fmt"
	"time"
)

// PricePoint is a single daily close sourced from the market data provider.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// SeriesPoint is a price point augmented with rolling means. The averages
// are nil for the first window-1 points of the fetched range.
type SeriesPoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	SMA50  *float64  `json:"sma50,omitempty"`
	SMA200 *float64  `json:"sma200,omitempty"`
}

// HasBothAverages reports whether both rolling means are defined.
func (p SeriesPoint) HasBothAverages() bool {
	return p.SMA50 != nil && p.SMA200 != nil
}

// Crossed reports whether the fast average sits above the slow one.
// Only meaningful when HasBothAverages is true.
func (p SeriesPoint) Crossed() bool {
	return p.HasBothAverages() && *p.SMA50 > *p.SMA200
}

// Series is an ordered (date ascending) sequence of augmented points.
type Series struct {
	Ticker string        `json:"ticker"`
	Points []SeriesPoint `json:"points"`
}

// TrendSignal classifies the relation of the last point's averages.
type TrendSignal string

const (
	TrendUp   TrendSignal = "uptrend"
	TrendDown TrendSignal = "downtrend"
)

// CrossoverEvent describes a fast/slow average transition between the last
// two valid points of a series.
type CrossoverEvent string

const (
	CrossoverNone     CrossoverEvent = "none"
	CrossoverUpward   CrossoverEvent = "upward"
	CrossoverDownward CrossoverEvent = "downward"
)

// Timeframe is a symbolic display-range selector. It is distinct from the
// data-fetch lookback needed to warm up the moving averages.
type Timeframe string

const (
	Timeframe1Mo Timeframe = "1mo"
	Timeframe3Mo Timeframe = "3mo"
	Timeframe6Mo Timeframe = "6mo"
	Timeframe1Yr Timeframe = "1y"
	Timeframe5Yr Timeframe = "5y"
	TimeframeMax Timeframe = "max"
)

// ParseTimeframe validates a timeframe token, defaulting to 1y when empty.
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return Timeframe1Yr, nil
	}
	switch tf := Timeframe(s); tf {
	case Timeframe1Mo, Timeframe3Mo, Timeframe6Mo, Timeframe1Yr, Timeframe5Yr, TimeframeMax:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// AnalysisResult is what an analysis request returns to the caller.
type AnalysisResult struct {
	Ticker    string         `json:"ticker"`
	Timeframe Timeframe      `json:"timeframe"`
	Series    *Series        `json:"series"`
	Trend     TrendSignal    `json:"trend"`
	Crossover CrossoverEvent `json:"crossover"`
}

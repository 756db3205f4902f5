package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents the latest traded price for a ticker.
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	PrevClose decimal.Decimal `json:"prev_close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

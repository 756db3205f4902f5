package models

import (
	"fmt"
	"time"
)

// Alert is a composed crossover notification. Transport configuration is
// external; the core only builds the message.
type Alert struct {
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Ticker    string         `json:"ticker"`
	Event     CrossoverEvent `json:"event"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewCrossoverAlert composes the notification for a detected crossover,
// addressed to the watching user's stored email.
func NewCrossoverAlert(ticker string, event CrossoverEvent, recipient string) *Alert {
	var direction, meaning string
	switch event {
	case CrossoverUpward:
		direction = "crossed above"
		meaning = "a golden cross, often read as a bullish signal"
	case CrossoverDownward:
		direction = "crossed below"
		meaning = "a death cross, often read as a bearish signal"
	}

	return &Alert{
		Recipient: recipient,
		Subject:   fmt.Sprintf("Crossover alert: %s", ticker),
		Body: fmt.Sprintf(
			"The 50-day moving average for %s has %s the 200-day moving average.\n\n"+
				"This is %s. You are receiving this because %s is on your watch-list.\n",
			ticker, direction, meaning, ticker),
		Ticker:    ticker,
		Event:     event,
		CreatedAt: time.Now(),
	}
}

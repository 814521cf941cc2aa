package domain

import "time"

// Kline represents a single candlestick.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string
	Interval  string // e.g. "1m", "15m", "1h"
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	IsFinal   bool // Whether the interval has closed
}

package domain

import "time"

// Trade is the immutable journal record written when a position is closed.
// Amounts are expressed in the wallet's settlement currency.
type Trade struct {
	ID          int64 // Assigned by the journal store
	Wallet      string
	Symbol      string
	Side        Side
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	GrossPnL    float64 // Signed price move times quantity, before costs
	Commission  float64 // Closing commission paid on this trade
	NetPnL      float64 // GrossPnL converted to settlement currency, net of commission
	OpenedAt    time.Time
	ClosedAt    time.Time
	CloseReason CloseReason
}

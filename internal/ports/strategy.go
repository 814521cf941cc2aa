package ports

import (
	"context"

	"cryptoTradingBot/internal/domain"
)

// Strategy decides when to enter or leave a position based on candle data.
// Strategies never touch wallet state directly; the driver maps signals to
// wallet operations.
type Strategy interface {
	// Name identifies the strategy in logs and reports.
	Name() string

	// RequiredDataPoints returns the minimum number of klines needed before
	// Evaluate can produce a meaningful signal.
	RequiredDataPoints() int

	// Evaluate inspects the kline window (oldest first) and returns a signal.
	Evaluate(ctx context.Context, klines []*domain.Kline) (domain.Signal, error)
}

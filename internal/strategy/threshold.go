package strategy

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
)

// ThresholdConfig holds parameters for the price threshold strategy.
type ThresholdConfig struct {
	BuyLimit  float64 // enter long at or below this price
	SellLimit float64 // exit at or above this price
}

// Threshold buys dips below a fixed limit and exits above another. Useful for
// range-bound symbols where the bounds are picked by hand.
type Threshold struct {
	cfg    ThresholdConfig
	logger ports.Logger
}

// NewThreshold creates a new threshold strategy instance.
func NewThreshold(cfg ThresholdConfig, logger ports.Logger) (*Threshold, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.BuyLimit <= 0 || cfg.SellLimit <= 0 {
		return nil, fmt.Errorf("threshold limits must be positive")
	}
	if cfg.BuyLimit >= cfg.SellLimit {
		return nil, fmt.Errorf("buy limit must be below sell limit")
	}
	return &Threshold{cfg: cfg, logger: logger}, nil
}

// Name returns the name of the strategy.
func (s *Threshold) Name() string {
	return fmt.Sprintf("Threshold(%.8g,%.8g)", s.cfg.BuyLimit, s.cfg.SellLimit)
}

// RequiredDataPoints returns the minimum number of klines needed for the strategy.
func (s *Threshold) RequiredDataPoints() int {
	return 1
}

// Evaluate checks the latest close against the configured limits.
func (s *Threshold) Evaluate(ctx context.Context, klines []*domain.Kline) (domain.Signal, error) {
	if len(klines) < 1 {
		return domain.SignalNone, fmt.Errorf("not enough data for %s", s.Name())
	}

	price := klines[len(klines)-1].Close
	switch {
	case price <= s.cfg.BuyLimit:
		return domain.SignalEnterLong, nil
	case price >= s.cfg.SellLimit:
		return domain.SignalExit, nil
	default:
		return domain.SignalNone, nil
	}
}

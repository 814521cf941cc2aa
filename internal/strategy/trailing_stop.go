package strategy

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/strategy/indicators"
)

// StopAdjuster is the part of the wallet a trailing stop needs: it proposes a
// new stop level and the wallet decides whether it tightens the position.
type StopAdjuster interface {
	TightenStopLoss(symbol string, level float64) bool
}

// TrailingATRStopConfig holds parameters for the ATR trailing stop.
type TrailingATRStopConfig struct {
	ATRPeriod  int     // e.g., 14
	Multiplier float64 // e.g., 1.2
}

// TrailingATRStop ratchets a position's stop loss behind the current price by
// a multiple of the average true range. It is not a strategy: it never opens
// or closes anything, it only tightens stops on positions opened by one.
type TrailingATRStop struct {
	cfg    TrailingATRStopConfig
	atr    *indicators.ATR
	logger ports.Logger
}

// NewTrailingATRStop creates a new ATR trailing stop instance.
func NewTrailingATRStop(cfg TrailingATRStopConfig, logger ports.Logger) (*TrailingATRStop, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for trailing stop")
	}
	if cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("ATR period must be positive")
	}
	if cfg.Multiplier <= 0 {
		return nil, fmt.Errorf("ATR multiplier must be positive")
	}
	atr := indicators.NewATR(indicators.ATRConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ATRPeriod},
	})
	return &TrailingATRStop{cfg: cfg, atr: atr, logger: logger}, nil
}

// RequiredDataPoints returns the minimum number of klines needed for the ATR.
func (t *TrailingATRStop) RequiredDataPoints() int {
	return t.atr.RequiredDataPoints()
}

// StopLevel computes the stop level for the given side at the current price:
// price minus ATR*multiplier for longs, price plus it for shorts.
func (t *TrailingATRStop) StopLevel(ctx context.Context, klines []*domain.Kline, side domain.Side, currentPrice float64) (float64, error) {
	atr, err := t.atr.Calculate(ctx, klines)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate ATR: %w", err)
	}
	distance := atr * t.cfg.Multiplier
	if side == domain.Long {
		return currentPrice - distance, nil
	}
	return currentPrice + distance, nil
}

// Apply tightens the stop of the active position on the given symbol, if any.
// The wallet ignores levels that would loosen the stop, so Apply can be
// called on every candle.
func (t *TrailingATRStop) Apply(ctx context.Context, adjuster StopAdjuster, pos domain.Position, klines []*domain.Kline, currentPrice float64) error {
	level, err := t.StopLevel(ctx, klines, pos.Side, currentPrice)
	if err != nil {
		return err
	}
	if adjuster.TightenStopLoss(pos.Symbol, level) {
		t.logger.Debug(ctx, "trailing stop tightened", map[string]interface{}{
			"symbol": pos.Symbol, "side": string(pos.Side), "stopLoss": level,
		})
	}
	return nil
}

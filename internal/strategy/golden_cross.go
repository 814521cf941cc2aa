package strategy

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/strategy/indicators"
)

// GoldenCrossConfig holds parameters for the golden cross strategy.
type GoldenCrossConfig struct {
	FastPeriod int                          // e.g., 50
	SlowPeriod int                          // e.g., 200
	MAType     indicators.MovingAverageType // WMA by default
}

// GoldenCross enters long when the fast moving average crosses above the slow
// one and short when it crosses below.
type GoldenCross struct {
	cfg    GoldenCrossConfig
	fastMA *indicators.MovingAverage
	slowMA *indicators.MovingAverage
	logger ports.Logger
}

// NewGoldenCross creates a new golden cross strategy instance.
func NewGoldenCross(cfg GoldenCrossConfig, logger ports.Logger) (*GoldenCross, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 {
		return nil, fmt.Errorf("strategy periods must be positive")
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("fast MA period must be less than slow MA period")
	}
	if cfg.MAType == "" {
		cfg.MAType = indicators.WeightedMovingAverage
	}

	fastMA := indicators.NewMovingAverage(indicators.MovingAverageConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.FastPeriod},
		Type:            cfg.MAType,
	})
	slowMA := indicators.NewMovingAverage(indicators.MovingAverageConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.SlowPeriod},
		Type:            cfg.MAType,
	})

	return &GoldenCross{cfg: cfg, fastMA: fastMA, slowMA: slowMA, logger: logger}, nil
}

// Name returns the name of the strategy.
func (s *GoldenCross) Name() string {
	return fmt.Sprintf("GoldenCross(%s,%d,%d)", s.cfg.MAType, s.cfg.FastPeriod, s.cfg.SlowPeriod)
}

// RequiredDataPoints returns the minimum number of klines needed for the
// strategy. One extra candle is needed to see the previous MA values.
func (s *GoldenCross) RequiredDataPoints() int {
	return s.cfg.SlowPeriod + 1
}

// Evaluate compares the moving averages on the last two candles and signals
// an entry when they cross.
func (s *GoldenCross) Evaluate(ctx context.Context, klines []*domain.Kline) (domain.Signal, error) {
	if len(klines) < s.RequiredDataPoints() {
		return domain.SignalNone, fmt.Errorf("not enough data (%d) for %s: need %d", len(klines), s.Name(), s.RequiredDataPoints())
	}

	prev := klines[:len(klines)-1]

	fastPrev, err := s.fastMA.Calculate(ctx, prev)
	if err != nil {
		return domain.SignalNone, fmt.Errorf("failed to calculate previous fast MA: %w", err)
	}
	fastCur, err := s.fastMA.Calculate(ctx, klines)
	if err != nil {
		return domain.SignalNone, fmt.Errorf("failed to calculate fast MA: %w", err)
	}
	slowPrev, err := s.slowMA.Calculate(ctx, prev)
	if err != nil {
		return domain.SignalNone, fmt.Errorf("failed to calculate previous slow MA: %w", err)
	}
	slowCur, err := s.slowMA.Calculate(ctx, klines)
	if err != nil {
		return domain.SignalNone, fmt.Errorf("failed to calculate slow MA: %w", err)
	}

	if indicators.CrossUp(fastPrev, fastCur, slowPrev, slowCur) {
		s.logger.Debug(ctx, "fast MA crossed above slow MA", map[string]interface{}{
			"strategy": s.Name(), "fast": fastCur, "slow": slowCur,
		})
		return domain.SignalEnterLong, nil
	}
	if indicators.CrossDown(fastPrev, fastCur, slowPrev, slowCur) {
		s.logger.Debug(ctx, "fast MA crossed below slow MA", map[string]interface{}{
			"strategy": s.Name(), "fast": fastCur, "slow": slowCur,
		})
		return domain.SignalEnterShort, nil
	}
	return domain.SignalNone, nil
}

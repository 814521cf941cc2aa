package indicators

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
)

// MovingAverageType defines the type of moving average.
type MovingAverageType string

const (
	// SimpleMovingAverage weights all closes equally.
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage weights recent closes exponentially more.
	ExponentialMovingAverage MovingAverageType = "EMA"
	// WeightedMovingAverage weights closes linearly by recency.
	WeightedMovingAverage MovingAverageType = "WMA"
)

// MovingAverageConfig holds configuration for moving average indicators.
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements the SMA, EMA and WMA indicators.
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance.
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator.
func (m *MovingAverage) Name() string {
	return string(m.config.Type)
}

// Calculate computes the moving average value based on the configured type.
func (m *MovingAverage) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	switch m.config.Type {
	case SimpleMovingAverage:
		return m.calculateSMA(klines)
	case ExponentialMovingAverage:
		return m.calculateEMA(klines)
	case WeightedMovingAverage:
		return m.calculateWMA(klines)
	default:
		return 0, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}

func (m *MovingAverage) calculateSMA(klines []*domain.Kline) (float64, error) {
	if len(klines) < m.Config.Period {
		return 0, fmt.Errorf("not enough data (%d) to calculate SMA for period %d", len(klines), m.Config.Period)
	}

	total := 0.0
	for i := len(klines) - m.Config.Period; i < len(klines); i++ {
		total += klines[i].Close
	}
	return total / float64(m.Config.Period), nil
}

func (m *MovingAverage) calculateEMA(klines []*domain.Kline) (float64, error) {
	if len(klines) < m.Config.Period {
		return 0, fmt.Errorf("not enough data (%d) to calculate EMA for period %d", len(klines), m.Config.Period)
	}

	multiplier := 2.0 / float64(m.Config.Period+1)

	// Seed with the SMA of the first 'period' klines, then roll forward.
	ema, err := m.calculateSMA(klines[:m.Config.Period])
	if err != nil {
		return 0, fmt.Errorf("failed to seed EMA: %w", err)
	}
	for i := m.Config.Period; i < len(klines); i++ {
		ema = (klines[i].Close-ema)*multiplier + ema
	}
	return ema, nil
}

func (m *MovingAverage) calculateWMA(klines []*domain.Kline) (float64, error) {
	period := m.Config.Period
	if len(klines) < period {
		return 0, fmt.Errorf("not enough data (%d) to calculate WMA for period %d", len(klines), period)
	}

	// Linear weights 1..period, newest close weighted highest.
	weighted := 0.0
	start := len(klines) - period
	for i := 0; i < period; i++ {
		weighted += klines[start+i].Close * float64(i+1)
	}
	denominator := float64(period*(period+1)) / 2
	return weighted / denominator, nil
}

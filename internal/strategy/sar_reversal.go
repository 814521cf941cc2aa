package strategy

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/strategy/indicators"
)

// SARReversalConfig holds parameters for the parabolic SAR reversal strategy.
type SARReversalConfig struct {
	Acceleration float64 // e.g., 0.02
	Maximum      float64 // e.g., 0.2
	// MinDataPoints controls how much history the SAR is computed over.
	// Defaults to 50 when zero.
	MinDataPoints int
}

// SARReversal enters against the trend when the parabolic SAR flips to the
// other side of the price range.
type SARReversal struct {
	cfg    SARReversalConfig
	sar    *indicators.SAR
	logger ports.Logger
}

// NewSARReversal creates a new SAR reversal strategy instance.
func NewSARReversal(cfg SARReversalConfig, logger ports.Logger) (*SARReversal, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.Acceleration < 0 || cfg.Maximum < 0 {
		return nil, fmt.Errorf("SAR parameters must not be negative")
	}
	if cfg.MinDataPoints == 0 {
		cfg.MinDataPoints = 50
	}
	if cfg.MinDataPoints < 3 {
		return nil, fmt.Errorf("SAR needs at least 3 data points, got %d", cfg.MinDataPoints)
	}

	sar := indicators.NewSAR(indicators.SARConfig{
		Acceleration: cfg.Acceleration,
		Maximum:      cfg.Maximum,
	})
	return &SARReversal{cfg: cfg, sar: sar, logger: logger}, nil
}

// Name returns the name of the strategy.
func (s *SARReversal) Name() string {
	return "SARReversal"
}

// RequiredDataPoints returns the minimum number of klines needed for the strategy.
func (s *SARReversal) RequiredDataPoints() int {
	return s.cfg.MinDataPoints
}

// Evaluate signals a short entry when the SAR jumps above the latest candle
// after sitting below the previous one, and a long entry on the inverse flip.
func (s *SARReversal) Evaluate(ctx context.Context, klines []*domain.Kline) (domain.Signal, error) {
	if len(klines) < s.RequiredDataPoints() {
		return domain.SignalNone, fmt.Errorf("not enough data (%d) for %s: need %d", len(klines), s.Name(), s.RequiredDataPoints())
	}

	series, err := s.sar.Series(klines)
	if err != nil {
		return domain.SignalNone, fmt.Errorf("failed to calculate SAR: %w", err)
	}

	cur, prev := klines[len(klines)-1], klines[len(klines)-2]
	sarCur, sarPrev := series[len(series)-1], series[len(series)-2]

	if sarCur >= cur.High && sarPrev <= prev.Low {
		s.logger.Debug(ctx, "SAR flipped above price", map[string]interface{}{
			"strategy": s.Name(), "sar": sarCur, "high": cur.High,
		})
		return domain.SignalEnterShort, nil
	}
	if sarCur <= cur.Low && sarPrev >= prev.High {
		s.logger.Debug(ctx, "SAR flipped below price", map[string]interface{}{
			"strategy": s.Name(), "sar": sarCur, "low": cur.Low,
		})
		return domain.SignalEnterLong, nil
	}
	return domain.SignalNone, nil
}

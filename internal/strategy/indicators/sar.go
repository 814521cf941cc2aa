package indicators

import (
	"context"
	"fmt"

	"cryptoTradingBot/internal/domain"
)

// SARConfig holds configuration for the parabolic SAR indicator.
type SARConfig struct {
	// Acceleration is the step added to the acceleration factor on each new
	// extreme point. Defaults to 0.02 when zero.
	Acceleration float64
	// Maximum caps the acceleration factor. Defaults to 0.2 when zero.
	Maximum float64
}

// SAR implements Wilder's parabolic stop-and-reverse indicator.
type SAR struct {
	config SARConfig
}

// NewSAR creates a new parabolic SAR indicator instance.
func NewSAR(config SARConfig) *SAR {
	if config.Acceleration == 0 {
		config.Acceleration = 0.02
	}
	if config.Maximum == 0 {
		config.Maximum = 0.2
	}
	return &SAR{config: config}
}

// Name returns the name of the indicator.
func (s *SAR) Name() string {
	return "SAR"
}

// RequiredDataPoints returns the minimum number of klines needed for calculation.
func (s *SAR) RequiredDataPoints() int {
	return 2
}

// Calculate computes the latest SAR value for the kline window.
func (s *SAR) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	series, err := s.Series(klines)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series computes the SAR value for every kline after the first. The returned
// slice is aligned with klines: series[i] is the SAR for klines[i], and
// series[0] is seeded equal to series[1].
func (s *SAR) Series(klines []*domain.Kline) ([]float64, error) {
	if len(klines) < 2 {
		return nil, fmt.Errorf("not enough data points for SAR calculation: need 2, got %d", len(klines))
	}

	series := make([]float64, len(klines))

	// Seed direction from the first two candles.
	uptrend := klines[1].Close >= klines[0].Close
	af := s.config.Acceleration
	var sar, ep float64
	if uptrend {
		sar = klines[0].Low
		ep = klines[1].High
	} else {
		sar = klines[0].High
		ep = klines[1].Low
	}
	series[1] = sar

	for i := 2; i < len(klines); i++ {
		sar += af * (ep - sar)

		if uptrend {
			// SAR must not enter the range of the last two candles.
			if sar > klines[i-1].Low {
				sar = klines[i-1].Low
			}
			if sar > klines[i-2].Low {
				sar = klines[i-2].Low
			}
			if klines[i].Low < sar {
				// Reversal to downtrend.
				uptrend = false
				sar = ep
				ep = klines[i].Low
				af = s.config.Acceleration
			} else if klines[i].High > ep {
				ep = klines[i].High
				af += s.config.Acceleration
				if af > s.config.Maximum {
					af = s.config.Maximum
				}
			}
		} else {
			if sar < klines[i-1].High {
				sar = klines[i-1].High
			}
			if sar < klines[i-2].High {
				sar = klines[i-2].High
			}
			if klines[i].High > sar {
				// Reversal to uptrend.
				uptrend = true
				sar = ep
				ep = klines[i].High
				af = s.config.Acceleration
			} else if klines[i].Low < ep {
				ep = klines[i].Low
				af += s.config.Acceleration
				if af > s.config.Maximum {
					af = s.config.Maximum
				}
			}
		}
		series[i] = sar
	}

	series[0] = series[1]
	return series, nil
}

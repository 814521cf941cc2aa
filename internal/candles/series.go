package candles

import (
	"context"
	"fmt"
	"time"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
)

const (
	// defaultLimit is the number of klines fetched on the initial download.
	defaultLimit = 500
	// maxWindow caps the in-memory series to bound memory use.
	maxWindow = 1000
)

// Series holds a rolling window of candlesticks for one symbol/interval and
// refreshes it incrementally through a KlineProvider.
//
// With KeepLast the still-open candle stays at the tail of the window and is
// replaced on every update; without it only closed candles are retained.
type Series struct {
	symbol   string
	interval string
	keepLast bool
	provider ports.KlineProvider
	logger   ports.Logger

	klines []*domain.Kline
}

// Config holds the parameters for a candle series.
type Config struct {
	Symbol   string
	Interval string
	Limit    int  // Initial download size; defaults to 500
	KeepLast bool // Retain the still-open candle at the tail
	Provider ports.KlineProvider
	Logger   ports.Logger
}

// New downloads the initial window and returns the series.
func New(ctx context.Context, cfg Config) (*Series, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("kline provider is required for candle series")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for candle series")
	}
	if cfg.Symbol == "" || cfg.Interval == "" {
		return nil, fmt.Errorf("symbol and interval are required for candle series")
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	s := &Series{
		symbol:   cfg.Symbol,
		interval: cfg.Interval,
		keepLast: cfg.KeepLast,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}

	klines, err := cfg.Provider.GetKlines(ctx, cfg.Symbol, cfg.Interval, time.Time{}, limit)
	if err != nil {
		return nil, fmt.Errorf("initial kline download for %s %s: %w", cfg.Symbol, cfg.Interval, err)
	}
	if !cfg.KeepLast && len(klines) > 0 {
		klines = klines[:len(klines)-1]
	}
	s.klines = klines

	s.logger.Debug(ctx, "Candle series created", map[string]interface{}{
		"symbol": cfg.Symbol, "interval": cfg.Interval, "klines": len(klines),
	})
	return s, nil
}

// Update fetches klines from the last known candle onwards and merges them
// into the window. The still-open tail candle is replaced rather than
// duplicated.
func (s *Series) Update(ctx context.Context) error {
	if len(s.klines) == 0 {
		klines, err := s.provider.GetKlines(ctx, s.symbol, s.interval, time.Time{}, defaultLimit)
		if err != nil {
			return fmt.Errorf("kline update for %s %s: %w", s.symbol, s.interval, err)
		}
		s.klines = klines
		s.trim()
		return nil
	}

	last := s.klines[len(s.klines)-1]
	start := last.OpenTime
	if !s.keepLast {
		// The tail is final; resume strictly after it.
		start = last.OpenTime.Add(time.Millisecond)
	}

	fresh, err := s.provider.GetKlines(ctx, s.symbol, s.interval, start, maxWindow)
	if err != nil {
		return fmt.Errorf("kline update for %s %s: %w", s.symbol, s.interval, err)
	}

	for _, k := range fresh {
		if n := len(s.klines); n > 0 && s.klines[n-1].OpenTime.Equal(k.OpenTime) {
			s.klines[n-1] = k
			continue
		}
		s.klines = append(s.klines, k)
	}
	if !s.keepLast && len(s.klines) > 0 && !s.klines[len(s.klines)-1].IsFinal {
		s.klines = s.klines[:len(s.klines)-1]
	}
	s.trim()
	return nil
}

func (s *Series) trim() {
	if len(s.klines) > maxWindow {
		s.klines = s.klines[len(s.klines)-maxWindow:]
	}
}

// Symbol returns the series' symbol.
func (s *Series) Symbol() string { return s.symbol }

// Interval returns the series' candle interval.
func (s *Series) Interval() string { return s.interval }

// Len returns the number of candles currently in the window.
func (s *Series) Len() int { return len(s.klines) }

// Klines returns the current window, oldest first. The slice is shared;
// callers must not modify it.
func (s *Series) Klines() []*domain.Kline { return s.klines }

// LastClose returns the closing price of the newest candle, or false when
// the window is empty.
func (s *Series) LastClose() (float64, bool) {
	if len(s.klines) == 0 {
		return 0, false
	}
	return s.klines[len(s.klines)-1].Close, true
}

// HeikinAshi derives the Heikin-Ashi transform of the current window.
func (s *Series) HeikinAshi() []*domain.Kline {
	return HeikinAshi(s.klines)
}

// HeikinAshi computes Heikin-Ashi candles from raw candles sorted by open
// time ascending.
func HeikinAshi(raw []*domain.Kline) []*domain.Kline {
	if len(raw) == 0 {
		return nil
	}
	out := make([]*domain.Kline, len(raw))
	var prevOpen, prevClose float64
	for i, k := range raw {
		ha := *k
		ha.Close = (k.Open + k.High + k.Low + k.Close) / 4
		if i == 0 {
			ha.Open = (k.Open + k.Close) / 2
		} else {
			ha.Open = (prevOpen + prevClose) / 2
		}
		ha.High = max3(k.High, ha.Open, ha.Close)
		ha.Low = min3(k.Low, ha.Open, ha.Close)
		out[i] = &ha
		prevOpen = ha.Open
		prevClose = ha.Close
	}
	return out
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

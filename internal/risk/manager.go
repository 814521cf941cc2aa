package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"cryptoTradingBot/internal/wallet"
)

// Config holds configuration for risk management. Percent values use the
// same convention as the wallet: 5 means 5%.
type Config struct {
	// NotionalPercent sizes each entry as a percentage of the wallet balance.
	NotionalPercent float64
	// MaxNotional caps a single entry in settlement currency. Zero means no cap.
	MaxNotional float64
	// MaxOpenPositions gates new entries across the wallet. Zero means no gate.
	MaxOpenPositions int
	// MaxDailyLoss stops new entries once realized losses for the day reach
	// this amount of settlement currency. Zero means no gate.
	MaxDailyLoss float64

	// Default protective levels applied when a strategy sets none.
	DefaultTakeProfitPct float64
	DefaultStopLossPct   float64
}

// Manager sizes entries and gates them against loss limits.
type Manager struct {
	config Config

	mu        sync.Mutex
	dailyPnL  float64
	lastReset time.Time
}

// New creates a new risk manager instance.
func New(config Config) (*Manager, error) {
	if config.NotionalPercent <= 0 || config.NotionalPercent > 100 {
		return nil, fmt.Errorf("notional percent must be in (0, 100], got %f", config.NotionalPercent)
	}
	if config.MaxNotional < 0 || config.MaxDailyLoss < 0 {
		return nil, fmt.Errorf("risk limits must not be negative")
	}
	if config.DefaultTakeProfitPct < 0 || config.DefaultStopLossPct < 0 {
		return nil, fmt.Errorf("default TP/SL percents must not be negative")
	}
	return &Manager{config: config, lastReset: time.Now()}, nil
}

// Notional returns the settlement-currency amount to commit to a new entry.
func (m *Manager) Notional(balance float64) float64 {
	notional := balance * m.config.NotionalPercent / 100
	if m.config.MaxNotional > 0 {
		notional = math.Min(notional, m.config.MaxNotional)
	}
	return notional
}

// AllowEntry reports whether a new position may be opened given the number of
// positions already open.
func (m *Manager) AllowEntry(openPositions int) error {
	if m.config.MaxOpenPositions > 0 && openPositions >= m.config.MaxOpenPositions {
		return fmt.Errorf("open positions %d at maximum allowed %d", openPositions, m.config.MaxOpenPositions)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config.MaxDailyLoss > 0 && m.dailyPnL <= -m.config.MaxDailyLoss {
		return fmt.Errorf("daily loss %.2f at maximum allowed %.2f", -m.dailyPnL, m.config.MaxDailyLoss)
	}
	return nil
}

// EntryOptions returns the push options for a new entry, filling in the
// default protective levels where configured.
func (m *Manager) EntryOptions() wallet.PushOptions {
	opts := wallet.PushOptions{AsPercent: true}
	if m.config.DefaultTakeProfitPct > 0 {
		tp := m.config.DefaultTakeProfitPct
		opts.TakeProfit = &tp
	}
	if m.config.DefaultStopLossPct > 0 {
		sl := m.config.DefaultStopLossPct
		opts.StopLoss = &sl
	}
	return opts
}

// RecordResult folds a closed trade's net P&L into the daily tally.
func (m *Manager) RecordResult(netPnL float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL += netPnL
}

// DailyPnL returns the realized P&L recorded since the last reset.
func (m *Manager) DailyPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyPnL
}

// ResetDaily clears the daily tally. The app calls this at day rollover.
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL = 0
	m.lastReset = time.Now()
}

// MaybeResetDaily resets the tally when the last reset was on a previous
// calendar day (UTC).
func (m *Manager) MaybeResetDaily(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := m.lastReset.UTC()
	if now.UTC().YearDay() != last.YearDay() || now.UTC().Year() != last.Year() {
		m.dailyPnL = 0
		m.lastReset = now
	}
}

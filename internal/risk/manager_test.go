package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Notional(t *testing.T) {
	m, err := New(Config{NotionalPercent: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, m.Notional(10000), 1e-9)

	capped, err := New(Config{NotionalPercent: 10, MaxNotional: 500})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, capped.Notional(10000), 1e-9)
}

func TestManager_AllowEntry(t *testing.T) {
	m, err := New(Config{NotionalPercent: 10, MaxOpenPositions: 2})
	require.NoError(t, err)

	assert.NoError(t, m.AllowEntry(0))
	assert.NoError(t, m.AllowEntry(1))
	assert.Error(t, m.AllowEntry(2))
}

func TestManager_DailyLossGate(t *testing.T) {
	m, err := New(Config{NotionalPercent: 10, MaxDailyLoss: 100})
	require.NoError(t, err)

	m.RecordResult(-60)
	assert.NoError(t, m.AllowEntry(0))

	m.RecordResult(-40)
	assert.Error(t, m.AllowEntry(0))
	assert.InDelta(t, -100.0, m.DailyPnL(), 1e-9)

	m.ResetDaily()
	assert.NoError(t, m.AllowEntry(0))
}

func TestManager_MaybeResetDaily(t *testing.T) {
	m, err := New(Config{NotionalPercent: 10, MaxDailyLoss: 100})
	require.NoError(t, err)

	m.RecordResult(-100)
	require.Error(t, m.AllowEntry(0))

	// Same day: tally stays.
	m.MaybeResetDaily(time.Now())
	assert.Error(t, m.AllowEntry(0))

	// Next day: tally clears.
	m.MaybeResetDaily(time.Now().Add(24 * time.Hour))
	assert.NoError(t, m.AllowEntry(0))
}

func TestManager_EntryOptions(t *testing.T) {
	m, err := New(Config{NotionalPercent: 10, DefaultTakeProfitPct: 4, DefaultStopLossPct: 2})
	require.NoError(t, err)

	opts := m.EntryOptions()
	assert.True(t, opts.AsPercent)
	require.NotNil(t, opts.TakeProfit)
	require.NotNil(t, opts.StopLoss)
	assert.InDelta(t, 4.0, *opts.TakeProfit, 1e-9)
	assert.InDelta(t, 2.0, *opts.StopLoss, 1e-9)

	bare, err := New(Config{NotionalPercent: 10})
	require.NoError(t, err)
	opts = bare.EntryOptions()
	assert.Nil(t, opts.TakeProfit)
	assert.Nil(t, opts.StopLoss)
}

func TestManager_ConfigValidation(t *testing.T) {
	_, err := New(Config{NotionalPercent: 0})
	assert.Error(t, err)

	_, err = New(Config{NotionalPercent: 150})
	assert.Error(t, err)

	_, err = New(Config{NotionalPercent: 10, MaxDailyLoss: -1})
	assert.Error(t, err)
}

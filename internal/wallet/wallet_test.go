package wallet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
)

// Mock implementations

type mockLogger struct {
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockOracle struct {
	prices map[string]float64
	errs   map[string]error
	calls  int
}

func (m *mockOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	m.calls++
	if err, ok := m.errs[symbol]; ok {
		return 0, err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("get price for %s: %w", symbol, ports.ErrPriceUnavailable)
	}
	return price, nil
}

type mockMetadata struct {
	quotes map[string]string
}

func (m *mockMetadata) QuoteAsset(ctx context.Context, symbol string) (string, error) {
	quote, ok := m.quotes[symbol]
	if !ok {
		return "", fmt.Errorf("quote asset for %s: %w", symbol, ports.ErrSymbolNotFound)
	}
	return quote, nil
}

type mockExecutor struct {
	fill  ports.Fill
	err   error
	calls int
}

func (m *mockExecutor) MarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (ports.Fill, error) {
	m.calls++
	if m.err != nil {
		return ports.Fill{}, m.err
	}
	return m.fill, nil
}

type mockJournal struct {
	trades []*domain.Trade
	err    error
}

func (m *mockJournal) RecordTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.trades = append(m.trades, trade)
	return int64(len(m.trades)), nil
}
func (m *mockJournal) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	return nil, nil
}
func (m *mockJournal) FindByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	return m.trades, nil
}
func (m *mockJournal) TotalNetPnL(ctx context.Context, wallet string) (float64, error) {
	total := 0.0
	for _, tr := range m.trades {
		total += tr.NetPnL
	}
	return total, nil
}

func newTestWallet(t *testing.T, oracle *mockOracle, meta *mockMetadata, symbols ...string) *Wallet {
	t.Helper()
	w, err := New(Config{
		Name:               "test_wallet",
		SettlementCurrency: "USDT",
		Symbols:            symbols,
		TakerFeeRate:       0.04,
		PaperTrade:         true,
		Oracle:             oracle,
		Metadata:           meta,
		Logger:             &mockLogger{},
		Now:                func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return w
}

func floatPtr(v float64) *float64 { return &v }

func TestNew_Validation(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{}}
	meta := &mockMetadata{quotes: map[string]string{}}
	logger := &mockLogger{}

	base := Config{
		Name:               "w",
		SettlementCurrency: "USDT",
		Symbols:            []string{"BTCUSDT"},
		TakerFeeRate:       0.04,
		PaperTrade:         true,
		Oracle:             oracle,
		Metadata:           meta,
		Logger:             logger,
	}

	_, err := New(base)
	require.NoError(t, err)

	cfg := base
	cfg.Logger = nil
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.Symbols = nil
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.PaperTrade = false // no executor configured
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.TakerFeeRate = -1
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestPushOrder_OpensLongAndDebitsCommission(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	err := w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{})
	require.NoError(t, err)

	// quantity = 100/40000, commission = 0.0025*0.04*40000/100 = 0.04
	assert.InDelta(t, 0.0025, w.Quantity("BTCUSDT"), 1e-12)
	assert.InDelta(t, -0.04, w.Balance(), 1e-12)

	pos, ok := w.ActivePosition("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.Long, pos.Side)
	assert.Equal(t, 40000.0, pos.EntryPrice)
	assert.True(t, pos.Active)
}

func TestPushOrder_RejectsInvalidInput(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	err := w.PushOrder(context.Background(), "BTCUSDT", domain.Side("SIDEWAYS"), 100, PushOptions{})
	assert.ErrorIs(t, err, ports.ErrInvalidSide)

	err = w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 0, PushOptions{})
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	err = w.PushOrder(context.Background(), "DOGEUSDT", domain.Long, 100, PushOptions{})
	assert.ErrorIs(t, err, ports.ErrUnknownSymbol)

	assert.Zero(t, w.Balance())
}

func TestPushOrder_SameSideIsNoOp(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{}))
	balance := w.Balance()
	quantity := w.Quantity("BTCUSDT")
	realized := w.RealizedGain("BTCUSDT")

	// A second long push must not change any ledger state.
	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 500, PushOptions{}))
	assert.Equal(t, balance, w.Balance())
	assert.Equal(t, quantity, w.Quantity("BTCUSDT"))
	assert.Equal(t, realized, w.RealizedGain("BTCUSDT"))
	assert.Len(t, w.Positions(), 1)
}

func TestExitOrder_RealizesGain(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{}))

	oracle.prices["BTCUSDT"] = 41000
	require.NoError(t, w.ExitOrder(context.Background(), "BTCUSDT"))

	// gross = (41000-40000)*0.0025 = 2.5
	// closing commission = 0.0025*0.04*41000/100 = 0.41
	assert.InDelta(t, 2.5-0.41, w.RealizedGain("BTCUSDT"), 1e-9)
	// balance: -0.04 open commission + (40000*0.0025 + 2.5 - 0.41)
	assert.InDelta(t, -0.04+100+2.5-0.41, w.Balance(), 1e-9)
	assert.Zero(t, w.Quantity("BTCUSDT"))

	_, ok := w.ActivePosition("BTCUSDT")
	assert.False(t, ok)
}

func TestExitOrder_NoActivePositionIsNoOp(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	require.NoError(t, w.ExitOrder(context.Background(), "BTCUSDT"))
	assert.Zero(t, w.Balance())
}

func TestPushOrder_FlipClosesOppositeSide(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Short, 100, PushOptions{}))

	// Price falls: the short is in profit when the flip closes it.
	oracle.prices["BTCUSDT"] = 38000
	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{}))

	// Short gross = -1*(38000-40000)*0.0025 = 5
	// closing commission = 0.0025*0.04*38000/100 = 0.38
	assert.InDelta(t, 5-0.38, w.RealizedGain("BTCUSDT"), 1e-9)

	pos, ok := w.ActivePosition("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.Long, pos.Side)
	assert.Equal(t, 38000.0, pos.EntryPrice)

	// Tracked quantity reflects only the new long.
	assert.InDelta(t, 100.0/38000.0, w.Quantity("BTCUSDT"), 1e-12)

	// History holds both legs; only the long is active.
	history := w.Positions()
	require.Len(t, history, 2)
	assert.False(t, history[0].Active)
	assert.Equal(t, domain.CloseReasonFlip, history[0].CloseReason)
	assert.True(t, history[1].Active)
}

func TestWallet_NeverHoldsBothSides(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	sides := []domain.Side{domain.Long, domain.Short, domain.Short, domain.Long, domain.Long}
	for _, side := range sides {
		require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", side, 100, PushOptions{}))
		active := 0
		for _, p := range w.Positions() {
			if p.Active {
				active++
			}
		}
		assert.LessOrEqual(t, active, 1)
	}
}

func TestTotalProfit_ConstantPriceOnlyLosesCommission(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000, "ETHUSDT": 2000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC", "ETHUSDT": "ETH"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT", "ETHUSDT")

	ctx := context.Background()
	require.NoError(t, w.PushOrder(ctx, "BTCUSDT", domain.Long, 100, PushOptions{}))
	require.NoError(t, w.PushOrder(ctx, "ETHUSDT", domain.Short, 50, PushOptions{}))
	require.NoError(t, w.PushOrder(ctx, "BTCUSDT", domain.Short, 100, PushOptions{})) // flip
	require.NoError(t, w.ExitAll(ctx))

	// At constant prices gross PnL is zero everywhere; each of the three
	// closes paid commission qty*fee*price/100 = notional*fee/100.
	closingCommissions := (100 + 50 + 100) * 0.04 / 100

	total, err := w.TotalProfit(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -closingCommissions, total, 1e-9)
}

func TestCheckTakeProfitStopLoss(t *testing.T) {
	tests := []struct {
		name      string
		side      domain.Side
		opts      PushOptions
		price     float64
		wantExit  bool
		wantCause domain.CloseReason
	}{
		{
			name: "long stop loss hit",
			side: domain.Long,
			opts: PushOptions{StopLoss: floatPtr(39000)}, price: 38500,
			wantExit: true, wantCause: domain.CloseReasonStopLoss,
		},
		{
			name: "long take profit hit",
			side: domain.Long,
			opts: PushOptions{TakeProfit: floatPtr(42000)}, price: 42100,
			wantExit: true, wantCause: domain.CloseReasonTakeProfit,
		},
		{
			name: "short stop loss hit",
			side: domain.Short,
			opts: PushOptions{StopLoss: floatPtr(41000)}, price: 41500,
			wantExit: true, wantCause: domain.CloseReasonStopLoss,
		},
		{
			name: "short take profit hit",
			side: domain.Short,
			opts: PushOptions{TakeProfit: floatPtr(39000)}, price: 38000,
			wantExit: true, wantCause: domain.CloseReasonTakeProfit,
		},
		{
			name: "long inside bounds",
			side: domain.Long,
			opts: PushOptions{TakeProfit: floatPtr(42000), StopLoss: floatPtr(39000)}, price: 40500,
			wantExit: false,
		},
		{
			name: "no bounds never triggers on crash",
			side: domain.Long,
			opts: PushOptions{}, price: 1,
			wantExit: false,
		},
		{
			name: "no bounds never triggers on spike",
			side: domain.Short,
			opts: PushOptions{}, price: 1e9,
			wantExit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
			meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
			w := newTestWallet(t, oracle, meta, "BTCUSDT")

			require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", tt.side, 100, tt.opts))

			oracle.prices["BTCUSDT"] = tt.price
			require.NoError(t, w.CheckTakeProfitStopLoss(context.Background()))

			_, stillOpen := w.ActivePosition("BTCUSDT")
			assert.Equal(t, tt.wantExit, !stillOpen)
			if tt.wantExit {
				history := w.Positions()
				require.Len(t, history, 1)
				assert.Equal(t, tt.wantCause, history[0].CloseReason)
			}
		})
	}
}

func TestPushOrder_PercentTakeProfitStopLoss(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	opts := PushOptions{TakeProfit: floatPtr(20), StopLoss: floatPtr(1), AsPercent: true}
	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, opts))

	pos, ok := w.ActivePosition("BTCUSDT")
	require.True(t, ok)
	require.NotNil(t, pos.TakeProfit)
	require.NotNil(t, pos.StopLoss)
	assert.InDelta(t, 48000, *pos.TakeProfit, 1e-9) // 40000 + 20%
	assert.InDelta(t, 39600, *pos.StopLoss, 1e-9)   // 40000 - 1%
}

func TestConversionRatio_NonSettlementQuote(t *testing.T) {
	// LINKETH is quoted in ETH; proceeds must be converted via ETHUSDT.
	oracle := &mockOracle{prices: map[string]float64{"LINKETH": 0.005, "ETHUSDT": 2000}}
	meta := &mockMetadata{quotes: map[string]string{"LINKETH": "ETH"}}
	w := newTestWallet(t, oracle, meta, "LINKETH")

	require.NoError(t, w.PushOrder(context.Background(), "LINKETH", domain.Long, 1, PushOptions{}))

	// quantity = 1/0.005 = 200, commission = 200*0.04*0.005/100 = 0.004 ETH
	// debited as 0.004 * 2000 = 8 USDT
	assert.InDelta(t, -8, w.Balance(), 1e-9)
}

func TestPushOrder_AbortsOnUnknownMetadata(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"LINKETH": 0.005}}
	meta := &mockMetadata{quotes: map[string]string{}} // symbol missing from exchange info
	w := newTestWallet(t, oracle, meta, "LINKETH")

	err := w.PushOrder(context.Background(), "LINKETH", domain.Long, 1, PushOptions{})
	assert.ErrorIs(t, err, ports.ErrSymbolNotFound)

	// No default ratio: the push left no trace.
	assert.Zero(t, w.Balance())
	assert.Zero(t, w.Quantity("LINKETH"))
	assert.Empty(t, w.Positions())
}

func TestClose_ConversionFailureLeavesLedgerPending(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"LINKETH": 0.005, "ETHUSDT": 2000}}
	meta := &mockMetadata{quotes: map[string]string{"LINKETH": "ETH"}}
	w := newTestWallet(t, oracle, meta, "LINKETH")

	require.NoError(t, w.PushOrder(context.Background(), "LINKETH", domain.Long, 1, PushOptions{}))
	balanceAfterOpen := w.Balance()

	// Metadata disappears between open and close.
	meta.quotes = map[string]string{}
	err := w.ExitOrder(context.Background(), "LINKETH")
	assert.ErrorIs(t, err, ports.ErrSymbolNotFound)

	// The position is closed but the ledger was not credited.
	_, stillOpen := w.ActivePosition("LINKETH")
	assert.False(t, stillOpen)
	assert.Equal(t, balanceAfterOpen, w.Balance())
	assert.Zero(t, w.RealizedGain("LINKETH"))
	assert.Equal(t, 1, w.PendingReconciliations())
}

func TestExitAll_IsolatesPerSymbolFailures(t *testing.T) {
	oracle := &mockOracle{
		prices: map[string]float64{"BTCUSDT": 40000, "ETHUSDT": 2000},
		errs:   map[string]error{},
	}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC", "ETHUSDT": "ETH"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT", "ETHUSDT")

	ctx := context.Background()
	require.NoError(t, w.PushOrder(ctx, "BTCUSDT", domain.Long, 100, PushOptions{}))
	require.NoError(t, w.PushOrder(ctx, "ETHUSDT", domain.Long, 100, PushOptions{}))

	oracle.errs["BTCUSDT"] = fmt.Errorf("feed down: %w", ports.ErrPriceUnavailable)

	err := w.ExitAll(ctx)
	assert.ErrorIs(t, err, ports.ErrPriceUnavailable)

	// ETHUSDT closed despite the BTCUSDT failure.
	_, btcOpen := w.ActivePosition("BTCUSDT")
	_, ethOpen := w.ActivePosition("ETHUSDT")
	assert.True(t, btcOpen)
	assert.False(t, ethOpen)
}

func TestUnrealizedProfit_SignedBySide(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000, "ETHUSDT": 2000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC", "ETHUSDT": "ETH"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT", "ETHUSDT")

	ctx := context.Background()
	require.NoError(t, w.PushOrder(ctx, "BTCUSDT", domain.Long, 100, PushOptions{}))
	require.NoError(t, w.PushOrder(ctx, "ETHUSDT", domain.Short, 100, PushOptions{}))

	// BTC up 2.5% (long gains), ETH up 1% (short loses).
	oracle.prices["BTCUSDT"] = 41000
	oracle.prices["ETHUSDT"] = 2020

	unrealized, err := w.UnrealizedProfit(ctx)
	require.NoError(t, err)

	long := (41000.0 - 40000.0) * (100.0 / 40000.0)
	short := -1 * (2020.0 - 2000.0) * (100.0 / 2000.0)
	assert.InDelta(t, long+short, unrealized, 1e-9)

	// Read operations do not mutate state.
	assert.Len(t, w.Positions(), 2)
	assert.InDelta(t, -(0.04 + 0.04), w.Balance(), 1e-9)
}

func TestLiveMode_UsesExecutorFill(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	executor := &mockExecutor{fill: ports.Fill{Price: 40010, Quantity: 0.0024, Time: time.Now()}}

	w, err := New(Config{
		Name:               "live_wallet",
		SettlementCurrency: "USDT",
		Symbols:            []string{"BTCUSDT"},
		TakerFeeRate:       0.04,
		PaperTrade:         false,
		Oracle:             oracle,
		Metadata:           meta,
		Executor:           executor,
		Logger:             &mockLogger{},
	})
	require.NoError(t, err)

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{}))
	require.Equal(t, 1, executor.calls)

	pos, ok := w.ActivePosition("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 40010.0, pos.EntryPrice)
	assert.Equal(t, 0.0024, pos.Quantity)
	assert.InDelta(t, 0.0024, w.Quantity("BTCUSDT"), 1e-12)
}

func TestLiveMode_ExecutionFailureAbortsPush(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	executor := &mockExecutor{err: fmt.Errorf("rejected: %w", ports.ErrExecutionFailed)}

	w, err := New(Config{
		Name:               "live_wallet",
		SettlementCurrency: "USDT",
		Symbols:            []string{"BTCUSDT"},
		TakerFeeRate:       0.04,
		PaperTrade:         false,
		Oracle:             oracle,
		Metadata:           meta,
		Executor:           executor,
		Logger:             &mockLogger{},
	})
	require.NoError(t, err)

	err = w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{})
	assert.ErrorIs(t, err, ports.ErrExecutionFailed)
	assert.Zero(t, w.Balance())
	assert.Empty(t, w.Positions())
}

func TestTightenStopLoss(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT")

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100,
		PushOptions{StopLoss: floatPtr(39000)}))

	// Raising the stop is allowed, lowering it is not.
	assert.True(t, w.TightenStopLoss("BTCUSDT", 39500))
	assert.False(t, w.TightenStopLoss("BTCUSDT", 39200))

	pos, ok := w.ActivePosition("BTCUSDT")
	require.True(t, ok)
	require.NotNil(t, pos.StopLoss)
	assert.Equal(t, 39500.0, *pos.StopLoss)

	// No active position: nothing to tighten.
	require.NoError(t, w.ExitOrder(context.Background(), "BTCUSDT"))
	assert.False(t, w.TightenStopLoss("BTCUSDT", 39900))
}

func TestCloseRecordsTradeInJournal(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC"}}
	journal := &mockJournal{}

	w, err := New(Config{
		Name:               "journaled",
		SettlementCurrency: "USDT",
		Symbols:            []string{"BTCUSDT"},
		TakerFeeRate:       0.04,
		PaperTrade:         true,
		Oracle:             oracle,
		Metadata:           meta,
		Journal:            journal,
		Logger:             &mockLogger{},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.PushOrder(ctx, "BTCUSDT", domain.Long, 100, PushOptions{}))
	oracle.prices["BTCUSDT"] = 41000
	require.NoError(t, w.ExitOrder(ctx, "BTCUSDT"))

	require.Len(t, journal.trades, 1)
	tr := journal.trades[0]
	assert.Equal(t, "journaled", tr.Wallet)
	assert.Equal(t, "BTCUSDT", tr.Symbol)
	assert.Equal(t, domain.Long, tr.Side)
	assert.Equal(t, 40000.0, tr.EntryPrice)
	assert.Equal(t, 41000.0, tr.ExitPrice)
	assert.InDelta(t, 2.5, tr.GrossPnL, 1e-9)
	assert.InDelta(t, 0.41, tr.Commission, 1e-9)
	assert.InDelta(t, 2.09, tr.NetPnL, 1e-9)
	assert.Equal(t, domain.CloseReasonManual, tr.CloseReason)
}

func TestStatus_ReportsExposures(t *testing.T) {
	oracle := &mockOracle{prices: map[string]float64{"BTCUSDT": 40000, "ETHUSDT": 2000}}
	meta := &mockMetadata{quotes: map[string]string{"BTCUSDT": "BTC", "ETHUSDT": "ETH"}}
	w := newTestWallet(t, oracle, meta, "BTCUSDT", "ETHUSDT")

	require.NoError(t, w.PushOrder(context.Background(), "BTCUSDT", domain.Long, 100, PushOptions{}))
	require.NoError(t, w.PushOrder(context.Background(), "ETHUSDT", domain.Short, 100, PushOptions{}))

	status := w.Status()
	assert.Contains(t, status, "test_wallet")
	assert.Contains(t, status, "BTCUSDT")
	assert.Contains(t, status, "[L]")
	assert.Contains(t, status, "[S]")
}

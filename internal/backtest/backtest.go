package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptoTradingBot/internal/analytics"
	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/strategy"
	"cryptoTradingBot/internal/wallet"
)

// Config holds configuration for a backtest run.
type Config struct {
	Symbol             string
	SettlementCurrency string  // e.g. "USDT"
	InitialBalance     float64 // Reporting baseline, the wallet itself starts at zero
	Notional           float64 // Settlement amount committed per entry
	TakerFeeRate       float64 // Percent, e.g. 0.04

	// Optional protective levels applied to every entry, in percent.
	TakeProfitPct float64
	StopLossPct   float64

	Strategy     ports.Strategy
	TrailingStop *strategy.TrailingATRStop // Optional

	Logger ports.Logger
}

// Result holds the outcome of a backtest run.
type Result struct {
	Trades                 []*domain.Trade
	Metrics                *analytics.PerformanceMetrics
	RealizedProfit         float64
	FinalBalance           float64
	PendingReconciliations int
}

// replayOracle serves the close price of the candle currently being replayed.
// It doubles as exchange metadata: every symbol quotes in the settlement
// currency, so no conversion leg is ever needed.
type replayOracle struct {
	mu         sync.Mutex
	price      float64
	settlement string
}

func (o *replayOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.price <= 0 {
		return 0, ports.ErrPriceUnavailable
	}
	return o.price, nil
}

func (o *replayOracle) QuoteAsset(ctx context.Context, symbol string) (string, error) {
	return o.settlement, nil
}

func (o *replayOracle) setPrice(p float64) {
	o.mu.Lock()
	o.price = p
	o.mu.Unlock()
}

// memoryJournal collects closed trades in memory for post-run analytics.
type memoryJournal struct {
	mu     sync.Mutex
	trades []*domain.Trade
}

func (j *memoryJournal) RecordTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	trade.ID = int64(len(j.trades) + 1)
	j.trades = append(j.trades, trade)
	return trade.ID, nil
}

func (j *memoryJournal) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.Trade
	for i := len(j.trades) - 1; i >= 0; i-- {
		if j.trades[i].Symbol != symbol {
			continue
		}
		out = append(out, j.trades[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (j *memoryJournal) FindByWallet(ctx context.Context, walletName string) ([]*domain.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.Trade
	for _, t := range j.trades {
		if t.Wallet == walletName {
			out = append(out, t)
		}
	}
	return out, nil
}

func (j *memoryJournal) TotalNetPnL(ctx context.Context, walletName string) (float64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total float64
	for _, t := range j.trades {
		if t.Wallet == walletName {
			total += t.NetPnL
		}
	}
	return total, nil
}

// Run replays the klines through the strategy against a paper wallet. Each
// candle first settles TP/SL triggers at its close price, then the strategy
// is evaluated over the window ending at that candle.
func Run(ctx context.Context, cfg Config, klines []*domain.Kline) (*Result, error) {
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("strategy is required for backtest")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for backtest")
	}
	if cfg.Notional <= 0 {
		return nil, fmt.Errorf("notional must be positive")
	}
	warmup := cfg.Strategy.RequiredDataPoints()
	if len(klines) <= warmup {
		return nil, fmt.Errorf("not enough data points (%d) for strategy %s: need more than %d", len(klines), cfg.Strategy.Name(), warmup)
	}

	oracle := &replayOracle{settlement: cfg.SettlementCurrency}
	journal := &memoryJournal{}

	// The clock follows the replayed candles so trade timestamps line up
	// with the data instead of the wall clock.
	var candleTime time.Time
	w, err := wallet.New(wallet.Config{
		Name:               "backtest",
		SettlementCurrency: cfg.SettlementCurrency,
		Symbols:            []string{cfg.Symbol},
		TakerFeeRate:       cfg.TakerFeeRate,
		PaperTrade:         true,
		Oracle:             oracle,
		Metadata:           oracle,
		Journal:            journal,
		Logger:             cfg.Logger,
		Now:                func() time.Time { return candleTime },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backtest wallet: %w", err)
	}

	opts := wallet.PushOptions{AsPercent: true}
	if cfg.TakeProfitPct > 0 {
		tp := cfg.TakeProfitPct
		opts.TakeProfit = &tp
	}
	if cfg.StopLossPct > 0 {
		sl := cfg.StopLossPct
		opts.StopLoss = &sl
	}

	for i := warmup; i < len(klines); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		window := klines[:i+1]
		candle := klines[i]
		candleTime = candle.CloseTime
		oracle.setPrice(candle.Close)

		if err := w.CheckTakeProfitStopLoss(ctx); err != nil {
			return nil, fmt.Errorf("TP/SL check failed at %s: %w", candle.CloseTime, err)
		}

		signal, err := cfg.Strategy.Evaluate(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("strategy evaluation failed at %s: %w", candle.CloseTime, err)
		}

		switch signal {
		case domain.SignalEnterLong:
			err = w.PushOrder(ctx, cfg.Symbol, domain.Long, cfg.Notional, opts)
		case domain.SignalEnterShort:
			err = w.PushOrder(ctx, cfg.Symbol, domain.Short, cfg.Notional, opts)
		case domain.SignalExit:
			if _, active := w.ActivePosition(cfg.Symbol); active {
				err = w.ExitOrder(ctx, cfg.Symbol)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("order failed at %s: %w", candle.CloseTime, err)
		}

		if cfg.TrailingStop != nil {
			if pos, active := w.ActivePosition(cfg.Symbol); active && len(window) >= cfg.TrailingStop.RequiredDataPoints() {
				if err := cfg.TrailingStop.Apply(ctx, w, pos, window, candle.Close); err != nil {
					return nil, fmt.Errorf("trailing stop failed at %s: %w", candle.CloseTime, err)
				}
			}
		}
	}

	trades, err := journal.FindByWallet(ctx, w.Name())
	if err != nil {
		return nil, err
	}

	return &Result{
		Trades:                 trades,
		Metrics:                analytics.AnalyzePerformance(trades, cfg.InitialBalance),
		RealizedProfit:         w.RealizedProfit(),
		FinalBalance:           cfg.InitialBalance + w.Balance(),
		PendingReconciliations: w.PendingReconciliations(),
	}, nil
}

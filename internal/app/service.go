package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoTradingBot/internal/candles"
	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/risk"
	"cryptoTradingBot/internal/strategy"
	"cryptoTradingBot/internal/wallet"
)

// Runner binds one wallet to the strategy that drives it and the risk
// settings that gate it.
type Runner struct {
	Wallet       *wallet.Wallet
	Strategy     ports.Strategy
	Risk         *risk.Manager
	TrailingStop *strategy.TrailingATRStop // Optional

	// InitialBalance anchors position sizing. The wallet ledger tracks
	// deltas from zero, so equity is InitialBalance plus the ledger balance.
	InitialBalance float64
}

// Config holds the dependencies and timing of the trading service.
type Config struct {
	Interval       string        // Kline interval driving the strategies
	PollInterval   time.Duration // Candle refresh and strategy evaluation cadence
	TickInterval   time.Duration // TP/SL trigger check cadence
	StatusInterval time.Duration // Wallet status report cadence; defaults to 1h

	Provider ports.KlineProvider
	Registry *wallet.Registry
	Runners  []Runner
	Logger   ports.Logger
}

// Service orchestrates the wallets: it refreshes candle series, evaluates
// each runner's strategy, routes the resulting orders into the wallets and
// settles TP/SL triggers between candles.
type Service struct {
	cfg    Config
	logger ports.Logger

	// One series per runner and symbol; strategies of different runners never
	// share a window even when they track the same symbol.
	series []map[string]*candles.Series
}

// NewService creates a new trading service instance.
func NewService(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for trading service")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("kline provider is required for trading service")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("wallet registry is required for trading service")
	}
	if len(cfg.Runners) == 0 {
		return nil, fmt.Errorf("trading service needs at least one runner")
	}
	for i, r := range cfg.Runners {
		if r.Wallet == nil || r.Strategy == nil || r.Risk == nil {
			return nil, fmt.Errorf("runner #%d is missing wallet, strategy or risk manager", i+1)
		}
		if r.InitialBalance <= 0 {
			return nil, fmt.Errorf("runner #%d needs a positive initial balance", i+1)
		}
	}
	if cfg.Interval == "" {
		return nil, fmt.Errorf("kline interval is required for trading service")
	}
	if cfg.PollInterval <= 0 || cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("poll and tick intervals must be positive")
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = time.Hour
	}

	return &Service{cfg: cfg, logger: cfg.Logger}, nil
}

// Start runs the main loop until the context is canceled or a shutdown
// signal arrives. On shutdown the candle loop stops but open positions are
// left untouched; exiting them is a manual decision.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting trading service", map[string]interface{}{
		"runners": len(s.cfg.Runners), "interval": s.cfg.Interval,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.initSeries(ctx); err != nil {
		return err
	}

	pollTicker := time.NewTicker(s.cfg.PollInterval)
	defer pollTicker.Stop()
	tickTicker := time.NewTicker(s.cfg.TickInterval)
	defer tickTicker.Stop()
	statusTicker := time.NewTicker(s.cfg.StatusInterval)
	defer statusTicker.Stop()

	// Evaluate once at startup rather than waiting a full poll interval.
	s.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Trading service stopped")
			return nil
		case <-tickTicker.C:
			s.checkTriggers(ctx)
		case <-pollTicker.C:
			s.pollOnce(ctx)
		case <-statusTicker.C:
			s.logger.Info(ctx, "Wallet status report\n"+s.cfg.Registry.Report())
		}
	}
}

// initSeries downloads the initial candle window for every runner/symbol.
func (s *Service) initSeries(ctx context.Context) error {
	s.series = make([]map[string]*candles.Series, len(s.cfg.Runners))
	for i, r := range s.cfg.Runners {
		s.series[i] = make(map[string]*candles.Series)
		for _, symbol := range r.Wallet.Symbols() {
			limit := r.Strategy.RequiredDataPoints() + 1
			if r.TrailingStop != nil && r.TrailingStop.RequiredDataPoints() > limit {
				limit = r.TrailingStop.RequiredDataPoints()
			}
			series, err := candles.New(ctx, candles.Config{
				Symbol:   symbol,
				Interval: s.cfg.Interval,
				Limit:    limit,
				Provider: s.cfg.Provider,
				Logger:   s.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to load initial klines for %s/%s: %w", r.Wallet.Name(), symbol, err)
			}
			if series.Len() < r.Strategy.RequiredDataPoints() {
				return fmt.Errorf("not enough historical data for %s/%s: got %d, strategy %s needs %d",
					r.Wallet.Name(), symbol, series.Len(), r.Strategy.Name(), r.Strategy.RequiredDataPoints())
			}
			s.series[i][symbol] = series
		}
	}
	return nil
}

// pollOnce refreshes every series and evaluates every runner. Failures are
// logged per symbol; one symbol's outage never stalls the others.
func (s *Service) pollOnce(ctx context.Context) {
	for i := range s.cfg.Runners {
		runner := &s.cfg.Runners[i]
		runner.Risk.MaybeResetDaily(time.Now())
		before := runner.Wallet.RealizedProfit()
		for symbol, series := range s.series[i] {
			if err := series.Update(ctx); err != nil {
				s.logger.Error(ctx, err, "Failed to refresh candles", map[string]interface{}{
					"wallet": runner.Wallet.Name(), "symbol": symbol,
				})
				continue
			}
			s.evaluate(ctx, runner, symbol, series)
		}
		// Exits and flips realize P&L here too, not just the TP/SL sweep.
		if delta := runner.Wallet.RealizedProfit() - before; delta != 0 {
			runner.Risk.RecordResult(delta)
		}
	}
}

// evaluate runs a runner's strategy over one symbol's window and routes the
// signal into the wallet.
func (s *Service) evaluate(ctx context.Context, runner *Runner, symbol string, series *candles.Series) {
	w := runner.Wallet
	window := series.Klines()

	sig, err := runner.Strategy.Evaluate(ctx, window)
	if err != nil {
		s.logger.Error(ctx, err, "Strategy evaluation failed", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol, "strategy": runner.Strategy.Name(),
		})
		return
	}

	switch sig {
	case domain.SignalEnterLong, domain.SignalEnterShort:
		side := domain.Long
		if sig == domain.SignalEnterShort {
			side = domain.Short
		}
		s.enter(ctx, runner, symbol, side)
	case domain.SignalExit:
		if _, active := w.ActivePosition(symbol); !active {
			return
		}
		s.logger.Info(ctx, "Strategy exit signal", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol, "strategy": runner.Strategy.Name(),
		})
		if err := w.ExitOrder(ctx, symbol); err != nil {
			s.logger.Error(ctx, err, "Failed to exit position", map[string]interface{}{
				"wallet": w.Name(), "symbol": symbol,
			})
		}
		return
	default:
		// No signal; only the trailing stop may act.
	}

	if runner.TrailingStop != nil {
		s.trail(ctx, runner, symbol, series)
	}
}

// enter opens a position if the risk gates allow it. A push on the opposite
// side of an active position flips it; the wallet handles that internally.
func (s *Service) enter(ctx context.Context, runner *Runner, symbol string, side domain.Side) {
	w := runner.Wallet

	open := 0
	for _, sym := range w.Symbols() {
		if _, active := w.ActivePosition(sym); active {
			open++
		}
	}
	// A flip replaces an existing position instead of adding one.
	if pos, active := w.ActivePosition(symbol); active && pos.Side != side {
		open--
	}
	if err := runner.Risk.AllowEntry(open); err != nil {
		s.logger.Warn(ctx, "Entry blocked by risk limits", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol, "reason": err.Error(),
		})
		return
	}

	equity := runner.InitialBalance + w.Balance()
	notional := runner.Risk.Notional(equity)
	if notional <= 0 {
		s.logger.Warn(ctx, "No equity available for entry", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol, "equity": equity,
		})
		return
	}

	s.logger.Info(ctx, "Strategy entry signal", map[string]interface{}{
		"wallet": w.Name(), "symbol": symbol, "side": string(side), "notional": notional,
	})
	if err := w.PushOrder(ctx, symbol, side, notional, runner.Risk.EntryOptions()); err != nil {
		s.logger.Error(ctx, err, "Failed to open position", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol, "side": string(side),
		})
	}
}

// trail tightens the stop of the active position on the symbol, if any.
func (s *Service) trail(ctx context.Context, runner *Runner, symbol string, series *candles.Series) {
	w := runner.Wallet
	pos, active := w.ActivePosition(symbol)
	if !active {
		return
	}
	window := series.Klines()
	if len(window) < runner.TrailingStop.RequiredDataPoints() {
		return
	}
	price, ok := series.LastClose()
	if !ok {
		return
	}
	if err := runner.TrailingStop.Apply(ctx, w, pos, window, price); err != nil {
		s.logger.Error(ctx, err, "Trailing stop adjustment failed", map[string]interface{}{
			"wallet": w.Name(), "symbol": symbol,
		})
	}
}

// checkTriggers settles TP/SL triggers on every wallet at current oracle
// prices and folds closed-trade results into the daily risk tally.
func (s *Service) checkTriggers(ctx context.Context) {
	for i := range s.cfg.Runners {
		runner := &s.cfg.Runners[i]
		before := runner.Wallet.RealizedProfit()
		if err := runner.Wallet.CheckTakeProfitStopLoss(ctx); err != nil {
			s.logger.Error(ctx, err, "TP/SL check failed", map[string]interface{}{
				"wallet": runner.Wallet.Name(),
			})
		}
		if delta := runner.Wallet.RealizedProfit() - before; delta != 0 {
			runner.Risk.RecordResult(delta)
		}
	}
}

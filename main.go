package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"cryptoTradingBot/config"
	"cryptoTradingBot/internal/adapters/binanceclient"
	"cryptoTradingBot/internal/adapters/logger"
	"cryptoTradingBot/internal/adapters/sqlite"
	"cryptoTradingBot/internal/app"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/risk"
	"cryptoTradingBot/internal/strategy"
	"cryptoTradingBot/internal/strategy/indicators"
	"cryptoTradingBot/internal/wallet"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Journal (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade journal")
		log.Fatalf("FATAL: Failed to initialize trade journal: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing trade journal")
		}
	}()
	appLogger.Info(context.Background(), "Trade journal initialized", map[string]interface{}{"path": cfg.DBPath})

	// 4. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(context.Background(), "Binance client initialized", map[string]interface{}{
		"testnet": cfg.IsTestnet, "paperTrade": cfg.PaperTrade,
	})

	// 5. Build the wallets and their runners from configuration
	registry := wallet.NewRegistry()
	runners := make([]app.Runner, 0, len(cfg.Wallets))
	for _, wc := range cfg.Wallets {
		runner, err := buildRunner(cfg, wc, binanceClient, repo, appLogger)
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to build wallet runner", map[string]interface{}{"wallet": wc.Name})
			log.Fatalf("FATAL: Failed to build wallet runner %q: %v", wc.Name, err)
		}
		registry.Add(runner.Wallet)
		runners = append(runners, runner)
		appLogger.Info(context.Background(), "Wallet runner ready", map[string]interface{}{
			"wallet": wc.Name, "strategy": runner.Strategy.Name(), "symbols": wc.Symbols,
		})
	}

	// 6. Initialize Application Service
	tradingService, err := app.NewService(app.Config{
		Interval:     cfg.Interval,
		PollInterval: cfg.PollInterval,
		TickInterval: cfg.TickInterval,
		Provider:     binanceClient,
		Registry:     registry,
		Runners:      runners,
		Logger:       appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}
	appLogger.Info(context.Background(), "Trading service initialized")

	// 7. Start the Service
	if err := tradingService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Trading service exited with error")
		log.Fatalf("FATAL: Trading service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}

// buildRunner wires one configured wallet: the wallet itself, its strategy,
// risk manager and optional trailing stop.
func buildRunner(cfg *config.Config, wc config.WalletConfig, client *binanceclient.Client, journal ports.TradeRepository, appLogger ports.Logger) (app.Runner, error) {
	w, err := wallet.New(wallet.Config{
		Name:               wc.Name,
		SettlementCurrency: cfg.SettlementCurrency,
		Symbols:            wc.Symbols,
		TakerFeeRate:       cfg.TakerFeeRate,
		PaperTrade:         cfg.PaperTrade,
		CallTimeout:        cfg.CallTimeout,
		Oracle:             client,
		Metadata:           client,
		Executor:           client,
		Journal:            journal,
		Logger:             appLogger,
	})
	if err != nil {
		return app.Runner{}, fmt.Errorf("wallet: %w", err)
	}

	strat, err := buildStrategy(wc.Strategy, appLogger)
	if err != nil {
		return app.Runner{}, fmt.Errorf("strategy: %w", err)
	}

	riskManager, err := risk.New(risk.Config{
		NotionalPercent:      wc.Risk.NotionalPercent,
		MaxNotional:          wc.Risk.MaxNotional,
		MaxOpenPositions:     wc.Risk.MaxOpenPositions,
		MaxDailyLoss:         wc.Risk.MaxDailyLoss,
		DefaultTakeProfitPct: wc.Risk.TakeProfitPct,
		DefaultStopLossPct:   wc.Risk.StopLossPct,
	})
	if err != nil {
		return app.Runner{}, fmt.Errorf("risk manager: %w", err)
	}

	var trail *strategy.TrailingATRStop
	if wc.TrailingStop != nil {
		trail, err = strategy.NewTrailingATRStop(strategy.TrailingATRStopConfig{
			ATRPeriod:  wc.TrailingStop.ATRPeriod,
			Multiplier: wc.TrailingStop.ATRMultiplier,
		}, appLogger)
		if err != nil {
			return app.Runner{}, fmt.Errorf("trailing stop: %w", err)
		}
	}

	return app.Runner{
		Wallet:         w,
		Strategy:       strat,
		Risk:           riskManager,
		TrailingStop:   trail,
		InitialBalance: wc.InitialBalance,
	}, nil
}

// buildStrategy instantiates the strategy named in the wallet configuration.
func buildStrategy(sc config.StrategyConfig, appLogger ports.Logger) (ports.Strategy, error) {
	switch sc.Type {
	case "golden_cross":
		return strategy.NewGoldenCross(strategy.GoldenCrossConfig{
			MAType:     indicators.MovingAverageType(sc.MAType),
			FastPeriod: sc.FastPeriod,
			SlowPeriod: sc.SlowPeriod,
		}, appLogger)
	case "sar_reversal":
		return strategy.NewSARReversal(strategy.SARReversalConfig{
			Acceleration: sc.Acceleration,
			Maximum:      sc.Maximum,
		}, appLogger)
	case "threshold":
		return strategy.NewThreshold(strategy.ThresholdConfig{
			BuyLimit:  sc.BuyLimit,
			SellLimit: sc.SellLimit,
		}, appLogger)
	default:
		return nil, fmt.Errorf("unrecognized strategy type %q", sc.Type)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cryptoTradingBot/config"
	"cryptoTradingBot/internal/adapters/binanceclient"
	"cryptoTradingBot/internal/adapters/logger"
	"cryptoTradingBot/internal/backtest"
	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
	"cryptoTradingBot/internal/strategy"
	"cryptoTradingBot/internal/strategy/indicators"
	"cryptoTradingBot/internal/utils"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file with klines; when empty, klines are fetched from the exchange")
	symbol := flag.String("symbol", "ETHUSDT", "symbol to backtest")
	interval := flag.String("interval", "1h", "kline interval (fetch mode)")
	days := flag.Int("days", 90, "days of history to fetch (fetch mode)")

	strategyType := flag.String("strategy", "golden_cross", "strategy: golden_cross, sar_reversal or threshold")
	maType := flag.String("ma-type", "WMA", "moving average type for golden_cross: SMA, EMA or WMA")
	fastPeriod := flag.Int("fast", 50, "fast MA period for golden_cross")
	slowPeriod := flag.Int("slow", 200, "slow MA period for golden_cross")
	acceleration := flag.Float64("sar-accel", 0.02, "SAR acceleration factor for sar_reversal")
	maximum := flag.Float64("sar-max", 0.2, "SAR maximum acceleration for sar_reversal")
	buyLimit := flag.Float64("buy-limit", 0, "buy price level for threshold")
	sellLimit := flag.Float64("sell-limit", 0, "sell price level for threshold")

	balance := flag.Float64("balance", 10000, "initial balance in settlement currency")
	notionalPct := flag.Float64("notional-pct", 10, "percent of balance committed per entry")
	takeProfitPct := flag.Float64("tp", 0, "take-profit percent, 0 disables")
	stopLossPct := flag.Float64("sl", 0, "stop-loss percent, 0 disables")
	trailPeriod := flag.Int("trail-atr-period", 0, "ATR period for trailing stop, 0 disables")
	trailMult := flag.Float64("trail-atr-mult", 1.2, "ATR multiplier for trailing stop")
	tradesOut := flag.String("trades-out", "", "optional CSV path for the closed trades")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	klines, err := loadKlines(ctx, cfg, appLogger, *csvPath, *symbol, *interval, *days)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to load klines")
		log.Fatalf("FATAL: Failed to load klines: %v", err)
	}
	appLogger.Info(ctx, "Klines loaded", map[string]interface{}{"symbol": *symbol, "count": len(klines)})

	strat, err := buildStrategy(*strategyType, strategyParams{
		maType:       *maType,
		fastPeriod:   *fastPeriod,
		slowPeriod:   *slowPeriod,
		acceleration: *acceleration,
		maximum:      *maximum,
		buyLimit:     *buyLimit,
		sellLimit:    *sellLimit,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to build strategy: %v", err)
	}

	var trail *strategy.TrailingATRStop
	if *trailPeriod > 0 {
		trail, err = strategy.NewTrailingATRStop(strategy.TrailingATRStopConfig{
			ATRPeriod:  *trailPeriod,
			Multiplier: *trailMult,
		}, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to build trailing stop: %v", err)
		}
	}

	result, err := backtest.Run(ctx, backtest.Config{
		Symbol:             *symbol,
		SettlementCurrency: cfg.SettlementCurrency,
		InitialBalance:     *balance,
		Notional:           *balance * *notionalPct / 100,
		TakerFeeRate:       cfg.TakerFeeRate,
		TakeProfitPct:      *takeProfitPct,
		StopLossPct:        *stopLossPct,
		Strategy:           strat,
		TrailingStop:       trail,
		Logger:             appLogger,
	}, klines)
	if err != nil {
		appLogger.Error(ctx, err, "Backtest failed")
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	printReport(strat.Name(), *symbol, result)

	if *tradesOut != "" {
		if err := utils.WriteTradesToCSV(result.Trades, *tradesOut); err != nil {
			appLogger.Error(ctx, err, "Failed to write trades CSV")
			log.Fatalf("FATAL: Failed to write trades CSV: %v", err)
		}
		appLogger.Info(ctx, "Trades saved", map[string]interface{}{"filename": *tradesOut})
	}
}

func loadKlines(ctx context.Context, cfg *config.Config, appLogger ports.Logger, csvPath, symbol, interval string, days int) ([]*domain.Kline, error) {
	if csvPath != "" {
		return utils.ReadKlinesFromCSV(csvPath)
	}

	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Binance client: %w", err)
	}
	end := time.Now()
	return client.GetKlinesRange(ctx, symbol, interval, end.AddDate(0, 0, -days), end)
}

type strategyParams struct {
	maType       string
	fastPeriod   int
	slowPeriod   int
	acceleration float64
	maximum      float64
	buyLimit     float64
	sellLimit    float64
}

func buildStrategy(strategyType string, p strategyParams, appLogger ports.Logger) (ports.Strategy, error) {
	switch strategyType {
	case "golden_cross":
		return strategy.NewGoldenCross(strategy.GoldenCrossConfig{
			MAType:     indicators.MovingAverageType(p.maType),
			FastPeriod: p.fastPeriod,
			SlowPeriod: p.slowPeriod,
		}, appLogger)
	case "sar_reversal":
		return strategy.NewSARReversal(strategy.SARReversalConfig{
			Acceleration: p.acceleration,
			Maximum:      p.maximum,
		}, appLogger)
	case "threshold":
		return strategy.NewThreshold(strategy.ThresholdConfig{
			BuyLimit:  p.buyLimit,
			SellLimit: p.sellLimit,
		}, appLogger)
	default:
		return nil, fmt.Errorf("unrecognized strategy type %q", strategyType)
	}
}

func printReport(strategyName, symbol string, result *backtest.Result) {
	m := result.Metrics

	fmt.Println("==========================================")
	fmt.Printf(" Backtest: %s on %s\n", strategyName, symbol)
	fmt.Println("==========================================")
	fmt.Printf(" Trades:              %d (%d wins / %d losses)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Printf(" Win rate:            %.2f%%\n", m.WinRate)
	fmt.Printf(" Net P&L:             %.2f\n", m.TotalNetPnL)
	fmt.Printf(" Commission paid:     %.2f\n", m.TotalCommission)
	fmt.Printf(" Final balance:       %.2f\n", result.FinalBalance)
	fmt.Printf(" Return on invest:    %.2f%%\n", m.ReturnOnInvestment)
	fmt.Printf(" Profit factor:       %.2f\n", m.ProfitFactor)
	fmt.Printf(" Expectancy:          %.2f\n", m.Expectancy)
	fmt.Printf(" Max drawdown:        %.2f%%\n", m.MaxDrawdown)
	fmt.Printf(" Avg win / avg loss:  %.2f / %.2f\n", m.AverageWin, m.AverageLoss)
	fmt.Printf(" Max consecutive:     %d wins / %d losses\n", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
	fmt.Printf(" Avg trade duration:  %s\n", m.AverageTradeDuration)
	if result.PendingReconciliations > 0 {
		fmt.Printf(" PENDING RECONCILIATIONS: %d\n", result.PendingReconciliations)
	}
	if len(m.MonthlyReturns) > 0 {
		fmt.Println(" Monthly returns:")
		for _, mr := range m.GetMonthlyReturns() {
			fmt.Printf("   %s: %.2f\n", mr.Month.Format("2006-01"), mr.Return)
		}
	}
	fmt.Println("==========================================")
}

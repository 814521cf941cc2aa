package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cryptoTradingBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration. Secrets and global settings
// come from the environment (.env), wallet/strategy wiring from a YAML file.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// When true, no orders are routed to the exchange; fills are simulated
	// at the oracle price.
	PaperTrade bool

	// Trading parameters
	SettlementCurrency string
	TakerFeeRate       float64 // Percent, e.g. 0.04
	Interval           string  // Kline interval, e.g. "1h"

	// Timing
	PollInterval time.Duration // Candle refresh and strategy evaluation cadence
	TickInterval time.Duration // TP/SL trigger check cadence
	CallTimeout  time.Duration // Per-call timeout on exchange requests

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Wallets describes the wallets to run and their strategies, loaded from
	// the YAML file at WalletsFile.
	WalletsFile string
	Wallets     []WalletConfig
}

// WalletConfig wires one wallet to its symbols, strategy and risk settings.
type WalletConfig struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`

	// InitialBalance anchors position sizing in the settlement currency. The
	// wallet ledger itself starts at zero and tracks deltas.
	InitialBalance float64 `yaml:"initial_balance"`

	Strategy     StrategyConfig      `yaml:"strategy"`
	Risk         RiskConfig          `yaml:"risk"`
	TrailingStop *TrailingStopConfig `yaml:"trailing_stop,omitempty"`
}

// StrategyConfig selects and parameterizes a strategy. Only the fields
// relevant to the selected type need to be set.
type StrategyConfig struct {
	Type string `yaml:"type"` // golden_cross, sar_reversal or threshold

	// golden_cross
	MAType     string `yaml:"ma_type,omitempty"` // SMA, EMA or WMA
	FastPeriod int    `yaml:"fast_period,omitempty"`
	SlowPeriod int    `yaml:"slow_period,omitempty"`

	// sar_reversal
	Acceleration float64 `yaml:"acceleration,omitempty"`
	Maximum      float64 `yaml:"maximum,omitempty"`

	// threshold
	BuyLimit  float64 `yaml:"buy_limit,omitempty"`
	SellLimit float64 `yaml:"sell_limit,omitempty"`
}

// RiskConfig holds per-wallet sizing and gating parameters. Percent values
// use the 5-means-5% convention.
type RiskConfig struct {
	NotionalPercent  float64 `yaml:"notional_percent"`
	MaxNotional      float64 `yaml:"max_notional,omitempty"`
	MaxOpenPositions int     `yaml:"max_open_positions,omitempty"`
	MaxDailyLoss     float64 `yaml:"max_daily_loss,omitempty"`
	TakeProfitPct    float64 `yaml:"take_profit_pct,omitempty"`
	StopLossPct      float64 `yaml:"stop_loss_pct,omitempty"`
}

// TrailingStopConfig enables the ATR trailing stop for a wallet.
type TrailingStopConfig struct {
	ATRPeriod     int     `yaml:"atr_period"`
	ATRMultiplier float64 `yaml:"atr_multiplier"`
}

// walletsFile is the YAML document holding the wallet definitions.
type walletsFile struct {
	Wallets []WalletConfig `yaml:"wallets"`
}

// StrategyTypes lists the recognized strategy type names.
var StrategyTypes = []string{"golden_cross", "sar_reversal", "threshold"}

// LoadConfig loads configuration from environment variables (.env file) and
// the wallets YAML file.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	cfg.PaperTrade = getEnvAsBool("PAPER_TRADE", true)

	// Live trading needs credentials; paper trading only reads public endpoints.
	if !cfg.PaperTrade {
		if cfg.APIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set when PAPER_TRADE is false")
		}
		if cfg.SecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set when PAPER_TRADE is false")
		}
	}

	// Trading parameters
	cfg.SettlementCurrency = getEnv("SETTLEMENT_CURRENCY", "USDT")
	if cfg.SettlementCurrency == "" {
		errs = append(errs, "SETTLEMENT_CURRENCY must be set")
	}

	feeRate, err := getEnvAsFloatRequired("TAKER_FEE_RATE", 0.04)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKER_FEE_RATE: %v", err))
	} else if feeRate < 0 {
		errs = append(errs, "TAKER_FEE_RATE cannot be negative")
	}
	cfg.TakerFeeRate = feeRate

	cfg.Interval = getEnv("KLINE_INTERVAL", "1h")
	if cfg.Interval == "" {
		errs = append(errs, "KLINE_INTERVAL must be set")
	}

	// Timing
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 60)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	tickSeconds := getEnvAsInt("TICK_INTERVAL_SECONDS", 10)
	if tickSeconds <= 0 {
		errs = append(errs, "TICK_INTERVAL_SECONDS must be positive")
	}
	cfg.TickInterval = time.Duration(tickSeconds) * time.Second

	callTimeoutSeconds := getEnvAsInt("CALL_TIMEOUT_SECONDS", 10)
	if callTimeoutSeconds <= 0 {
		errs = append(errs, "CALL_TIMEOUT_SECONDS must be positive")
	}
	cfg.CallTimeout = time.Duration(callTimeoutSeconds) * time.Second

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/trading_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Wallets
	cfg.WalletsFile = getEnv("WALLETS_FILE", "./config/wallets.yaml")
	wallets, walletErrs := loadWallets(cfg.WalletsFile)
	cfg.Wallets = wallets
	errs = append(errs, walletErrs...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// loadWallets reads and validates the wallet definitions from the YAML file.
func loadWallets(path string) ([]WalletConfig, []string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot read wallets file '%s': %v", path, err)}
	}

	var doc walletsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, []string{fmt.Sprintf("cannot parse wallets file '%s': %v", path, err)}
	}

	var errs []string
	if len(doc.Wallets) == 0 {
		errs = append(errs, fmt.Sprintf("wallets file '%s' defines no wallets", path))
	}

	seen := make(map[string]bool)
	for i, w := range doc.Wallets {
		where := fmt.Sprintf("wallet #%d (%s)", i+1, w.Name)
		if w.Name == "" {
			errs = append(errs, fmt.Sprintf("wallet #%d has no name", i+1))
		} else if seen[w.Name] {
			errs = append(errs, fmt.Sprintf("duplicate wallet name %q", w.Name))
		}
		seen[w.Name] = true

		if len(w.Symbols) == 0 {
			errs = append(errs, where+" tracks no symbols")
		}
		if w.InitialBalance <= 0 {
			errs = append(errs, where+": initial_balance must be positive")
		}
		if err := validateStrategy(w.Strategy); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", where, err))
		}
		if w.Risk.NotionalPercent <= 0 || w.Risk.NotionalPercent > 100 {
			errs = append(errs, where+": risk.notional_percent must be in (0, 100]")
		}
		if w.TrailingStop != nil {
			if w.TrailingStop.ATRPeriod <= 0 || w.TrailingStop.ATRMultiplier <= 0 {
				errs = append(errs, where+": trailing_stop needs positive atr_period and atr_multiplier")
			}
		}
	}

	return doc.Wallets, errs
}

func validateStrategy(s StrategyConfig) error {
	switch s.Type {
	case "golden_cross":
		if s.FastPeriod <= 0 || s.SlowPeriod <= 0 {
			return fmt.Errorf("golden_cross needs positive fast_period and slow_period")
		}
		if s.FastPeriod >= s.SlowPeriod {
			return fmt.Errorf("golden_cross fast_period must be less than slow_period")
		}
		switch s.MAType {
		case "", "SMA", "EMA", "WMA":
		default:
			return fmt.Errorf("unrecognized ma_type %q", s.MAType)
		}
	case "sar_reversal":
		if s.Acceleration < 0 || s.Maximum < 0 {
			return fmt.Errorf("sar_reversal parameters must not be negative")
		}
	case "threshold":
		if s.BuyLimit <= 0 || s.SellLimit <= 0 || s.BuyLimit >= s.SellLimit {
			return fmt.Errorf("threshold needs 0 < buy_limit < sell_limit")
		}
	case "":
		return fmt.Errorf("strategy type must be one of %s", strings.Join(StrategyTypes, ", "))
	default:
		return fmt.Errorf("unrecognized strategy type %q", s.Type)
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

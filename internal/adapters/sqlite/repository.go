package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
)

// Repository implements the ports.TradeRepository interface using SQLite.
// It is a write-behind journal of closed trades used for reporting; the
// trading engine itself keeps its state in memory.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trading_bot.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, but the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wallet TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		gross_pnl REAL NOT NULL,
		commission REAL NOT NULL,
		net_pnl REAL NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP NOT NULL,
		close_reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_wallet ON trade_history (wallet, opened_at);
	CREATE INDEX IF NOT EXISTS idx_trade_history_symbol_opened_at ON trade_history (symbol, opened_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// RecordTrade saves a closed trade and returns its assigned ID.
func (r *Repository) RecordTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trade_history (wallet, symbol, side, entry_price, exit_price, quantity,
	                           gross_pnl, commission, net_pnl, opened_at, closed_at, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.Wallet, trade.Symbol, string(trade.Side), trade.EntryPrice, trade.ExitPrice, trade.Quantity,
		trade.GrossPnL, trade.Commission, trade.NetPnL, trade.OpenedAt, trade.ClosedAt, string(trade.CloseReason))
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w: %w", trade.Symbol, ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade recorded", map[string]interface{}{"tradeID": id, "wallet": trade.Wallet, "symbol": trade.Symbol, "netPnL": trade.NetPnL})
	return id, nil
}

// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, wallet, symbol, side, entry_price, exit_price, quantity,
	       gross_pnl, commission, net_pnl, opened_at, closed_at, close_reason
	FROM trade_history
	WHERE symbol = ? ORDER BY opened_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// FindByWallet retrieves all trades recorded for a wallet, oldest first.
func (r *Repository) FindByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, wallet, symbol, side, entry_price, exit_price, quantity,
	       gross_pnl, commission, net_pnl, opened_at, closed_at, close_reason
	FROM trade_history
	WHERE wallet = ? ORDER BY opened_at ASC`

	rows, err := r.db.QueryContext(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for wallet %s: %w: %w", wallet, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// TotalNetPnL sums the net profit of all recorded trades for a wallet.
func (r *Repository) TotalNetPnL(ctx context.Context, wallet string) (float64, error) {
	const query = `SELECT COALESCE(SUM(net_pnl), 0) FROM trade_history WHERE wallet = ?`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, wallet).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum net P&L for wallet %s: %w: %w", wallet, ports.ErrQueryFailed, err)
	}
	return total, nil
}

// CountTodayBySymbol counts the number of trades closed today for a given symbol.
func (r *Repository) CountTodayBySymbol(ctx context.Context, symbol string) (int, error) {
	const query = `SELECT COUNT(*) FROM trade_history WHERE symbol = ? AND date(closed_at) = date('now', 'localtime')`
	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades today for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	return count, nil
}

func collectTrades(rows *sql.Rows) ([]*domain.Trade, error) {
	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var side, closeReason string
	err := s.Scan(
		&t.ID, &t.Wallet, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice, &t.Quantity,
		&t.GrossPnL, &t.Commission, &t.NetPnL, &t.OpenedAt, &t.ClosedAt, &closeReason)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Side = domain.Side(side)
	t.CloseReason = domain.CloseReason(closeReason)
	return t, nil
}

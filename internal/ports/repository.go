package ports

import (
	"context"

	"cryptoTradingBot/internal/domain"
)

// TradeRepository is the append-only journal of closed trades. The engine
// itself is memory-only; the journal exists for reporting and analytics.
type TradeRepository interface {
	// RecordTrade saves a closed trade and returns its assigned ID.
	RecordTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// FindBySymbol retrieves the most recent trades for a symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
	// FindByWallet retrieves all trades recorded for a wallet, oldest first.
	FindByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error)
	// TotalNetPnL sums the net profit of all recorded trades for a wallet.
	TotalNetPnL(ctx context.Context, wallet string) (float64, error)
}

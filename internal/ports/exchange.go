package ports

import (
	"context"
	"time"

	"cryptoTradingBot/internal/domain"
)

// PriceOracle returns the current price for a symbol.
// Implementations must fail with ErrPriceUnavailable (wrapped) on
// network or API errors rather than returning a stale or zero price.
type PriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// ExchangeMetadata exposes static symbol information.
type ExchangeMetadata interface {
	// QuoteAsset returns the quote asset of the symbol (e.g. "BTC" for
	// "LINKBTC"). Fails with ErrSymbolNotFound for unlisted symbols.
	QuoteAsset(ctx context.Context, symbol string) (string, error)
}

// Fill holds the executed values of a filled market order.
type Fill struct {
	Price    float64   // Average fill price
	Quantity float64   // Executed quantity
	Time     time.Time // Exchange transaction time
}

// OrderExecutor places real orders. Only used when a wallet is not in
// paper-trade mode; failure propagates as ErrExecutionFailed and the
// triggering operation is aborted before any state mutation.
type OrderExecutor interface {
	MarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (Fill, error)
}

// KlineProvider downloads historical candlestick data.
type KlineProvider interface {
	// GetKlines returns up to limit klines for the symbol and interval,
	// oldest first. A zero startTime means "most recent".
	GetKlines(ctx context.Context, symbol, interval string, startTime time.Time, limit int) ([]*domain.Kline, error)
}

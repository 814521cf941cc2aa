package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Engine Errors
	ErrInvalidSide       = errors.New("unrecognized position side")
	ErrUnknownSymbol     = errors.New("symbol is not tracked by this wallet")
	ErrDuplicatePosition = errors.New("an active position already exists for this symbol and side")

	// Market Data / Conversion Errors
	ErrSymbolNotFound   = errors.New("symbol not found in exchange metadata")
	ErrPriceUnavailable = errors.New("price feed unavailable")

	// Exchange Errors
	ErrExecutionFailed      = errors.New("market order execution failed")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")
	ErrInsufficientFunds    = errors.New("insufficient funds for operation")

	// Journal Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

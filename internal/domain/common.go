package domain

import "fmt"

// Side represents the direction of a position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ParseSide converts a string (config, CLI, journal) into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Long, Short:
		return Side(s), nil
	default:
		return "", fmt.Errorf("unrecognized side %q", s)
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// DirectionCoefficient returns +1 for Long and -1 for Short.
// Applied to raw price deltas so that shorts profit when price falls.
func (s Side) DirectionCoefficient() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// OrderSide represents the side of an exchange order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// EntryOrderSide maps a position side to the exchange order side used to open it.
func (s Side) EntryOrderSide() OrderSide {
	if s == Short {
		return Sell
	}
	return Buy
}

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "SL"
	CloseReasonTakeProfit CloseReason = "TP"
	CloseReasonManual     CloseReason = "MANUAL"
	CloseReasonFlip       CloseReason = "FLIP" // closed as a side effect of opening the opposite side
	CloseReasonStrategy   CloseReason = "STRATEGY"
	CloseReasonExitAll    CloseReason = "EXIT_ALL"
)

// Signal is a strategy's verdict for a symbol on the latest candle data.
type Signal int

const (
	SignalNone Signal = iota
	SignalEnterLong
	SignalEnterShort
	SignalExit
)

// String returns a human readable name for logging.
func (s Signal) String() string {
	switch s {
	case SignalEnterLong:
		return "ENTER_LONG"
	case SignalEnterShort:
		return "ENTER_SHORT"
	case SignalExit:
		return "EXIT"
	default:
		return "NONE"
	}
}

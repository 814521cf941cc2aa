package domain

import (
	"math"
	"time"
)

// Position represents one open or closed directional exposure to a symbol.
// A nil TakeProfit or StopLoss means the bound is unset and never triggers;
// the unset case resolves to an infinite sentinel only inside the comparison
// helpers so that infinities never leak into ledger arithmetic.
type Position struct {
	Symbol      string
	Side        Side
	EntryPrice  float64   // Price at which the position was entered
	Quantity    float64   // Size of the position, always positive
	OpenedAt    time.Time // Timestamp when the position was entered
	ClosedAt    time.Time // Timestamp when the position was closed (zero value if open)
	ExitPrice   float64   // Price at which the position was closed (0 if open)
	Active      bool
	CloseReason CloseReason // Reason for closing, empty while open

	TakeProfit *float64
	StopLoss   *float64
}

// NewPosition creates an active position with TP/SL given as absolute prices.
func NewPosition(symbol string, side Side, entryPrice, quantity float64, takeProfit, stopLoss *float64, openedAt time.Time) *Position {
	return &Position{
		Symbol:     symbol,
		Side:       side,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		OpenedAt:   openedAt,
		Active:     true,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
	}
}

// ResolveTakeProfit converts a take-profit percentage into an absolute price.
// The level locks profit: above entry for longs, below entry for shorts.
func ResolveTakeProfit(side Side, entryPrice, percent float64) float64 {
	if side == Short {
		return entryPrice - entryPrice*percent/100
	}
	return entryPrice + entryPrice*percent/100
}

// ResolveStopLoss converts a stop-loss percentage into an absolute price.
// The level bounds loss: below entry for longs, above entry for shorts.
func ResolveStopLoss(side Side, entryPrice, percent float64) float64 {
	if side == Short {
		return entryPrice + entryPrice*percent/100
	}
	return entryPrice - entryPrice*percent/100
}

// TakeProfitLevel returns the take-profit bound, or the never-triggering
// sentinel (+Inf for longs, -Inf for shorts) when unset.
func (p *Position) TakeProfitLevel() float64 {
	if p.TakeProfit != nil {
		return *p.TakeProfit
	}
	if p.Side == Short {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// StopLossLevel returns the stop-loss bound, or the never-triggering
// sentinel (-Inf for longs, +Inf for shorts) when unset.
func (p *Position) StopLossLevel() float64 {
	if p.StopLoss != nil {
		return *p.StopLoss
	}
	if p.Side == Short {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// TriggeredExit reports whether the given price breaches the stop-loss or
// take-profit bound, and which one. Unset bounds never trigger.
func (p *Position) TriggeredExit(price float64) (CloseReason, bool) {
	if p.Side == Long {
		if price <= p.StopLossLevel() {
			return CloseReasonStopLoss, true
		}
		if price >= p.TakeProfitLevel() {
			return CloseReasonTakeProfit, true
		}
		return "", false
	}
	if price >= p.StopLossLevel() {
		return CloseReasonStopLoss, true
	}
	if price <= p.TakeProfitLevel() {
		return CloseReasonTakeProfit, true
	}
	return "", false
}

// TightenStopLoss moves the stop-loss only in the protective direction:
// up for longs, down for shorts. Used by trailing-stop strategies. Returns
// true when the stop was moved.
func (p *Position) TightenStopLoss(level float64) bool {
	switch {
	case p.StopLoss == nil:
	case p.Side == Long && level <= *p.StopLoss:
		return false
	case p.Side == Short && level >= *p.StopLoss:
		return false
	}
	p.StopLoss = &level
	return true
}

// UnrealizedPnL returns the mark-to-market profit at the given price,
// signed by side. Commissions are not included.
func (p *Position) UnrealizedPnL(price float64) float64 {
	return p.Side.DirectionCoefficient() * (price - p.EntryPrice) * p.Quantity
}

// Close marks the position inactive. Closed positions are never resurrected.
func (p *Position) Close(price float64, at time.Time, reason CloseReason) {
	if !p.Active {
		return
	}
	p.Active = false
	p.ExitPrice = price
	p.ClosedAt = at
	p.CloseReason = reason
}

package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptoTradingBot/internal/domain"
	"cryptoTradingBot/internal/ports"
)

// Config holds the dependencies and parameters for a single wallet.
type Config struct {
	Name               string
	SettlementCurrency string   // Currency the balance and aggregate PnL are expressed in (e.g. "USDT")
	Symbols            []string // Tracked symbols; pushes for any other symbol are rejected
	TakerFeeRate       float64  // Commission in percent, e.g. 0.04 means qty*0.04*price/100
	PaperTrade         bool     // When false, orders are routed through the executor
	CallTimeout        time.Duration

	Oracle   ports.PriceOracle
	Metadata ports.ExchangeMetadata
	Executor ports.OrderExecutor   // Required only when PaperTrade is false
	Journal  ports.TradeRepository // Optional; closed trades are recorded when set
	Logger   ports.Logger

	// Now is the clock used for position timestamps. Defaults to time.Now.
	Now func() time.Time
}

// PushOptions carries the optional take-profit/stop-loss levels of a push.
// When AsPercent is set, levels are interpreted as a percentage of the entry
// price instead of absolute prices.
type PushOptions struct {
	TakeProfit *float64
	StopLoss   *float64
	AsPercent  bool
}

// Wallet owns the positions and the ledger of one account. At most one
// active position may exist per symbol: opening the opposite side closes the
// existing position first (flip), and a same-side push is a logged no-op.
//
// All mutations are serialized behind a single mutex; the balance changes
// only through the commission debit at open and the net proceeds credit at
// close.
type Wallet struct {
	name        string
	settlement  string
	takerFee    float64
	paperTrade  bool
	callTimeout time.Duration

	oracle   ports.PriceOracle
	metadata ports.ExchangeMetadata
	executor ports.OrderExecutor
	journal  ports.TradeRepository
	logger   ports.Logger
	now      func() time.Time

	mu          sync.Mutex
	balance     float64
	quantity    map[string]float64          // net exposure magnitude per symbol
	realized    map[string]float64          // cumulative realized gain per symbol
	activeLong  map[string]*domain.Position // at most one per symbol
	activeShort map[string]*domain.Position // at most one per symbol
	positions   []*domain.Position          // full history, append-only

	// Closes whose ledger update was aborted by a conversion failure.
	// The position is inactive but the ledger was not credited; these
	// require out-of-band reconciliation.
	pendingReconciliation int
}

// New creates a wallet tracking the configured symbols, starting with a zero
// settlement balance.
func New(cfg Config) (*Wallet, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for wallet")
	}
	if cfg.Oracle == nil || cfg.Metadata == nil {
		return nil, fmt.Errorf("price oracle and exchange metadata are required for wallet")
	}
	if !cfg.PaperTrade && cfg.Executor == nil {
		return nil, fmt.Errorf("order executor is required when paper trading is disabled")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("wallet name must not be empty")
	}
	if cfg.SettlementCurrency == "" {
		return nil, fmt.Errorf("settlement currency must not be empty")
	}
	if cfg.TakerFeeRate < 0 {
		return nil, fmt.Errorf("taker fee rate cannot be negative")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("wallet must track at least one symbol")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	w := &Wallet{
		name:        cfg.Name,
		settlement:  cfg.SettlementCurrency,
		takerFee:    cfg.TakerFeeRate,
		paperTrade:  cfg.PaperTrade,
		callTimeout: cfg.CallTimeout,
		oracle:      cfg.Oracle,
		metadata:    cfg.Metadata,
		executor:    cfg.Executor,
		journal:     cfg.Journal,
		logger:      cfg.Logger,
		now:         now,
		quantity:    make(map[string]float64, len(cfg.Symbols)),
		realized:    make(map[string]float64, len(cfg.Symbols)),
		activeLong:  make(map[string]*domain.Position),
		activeShort: make(map[string]*domain.Position),
	}
	for _, s := range cfg.Symbols {
		w.quantity[s] = 0
		w.realized[s] = 0
	}
	return w, nil
}

// Name returns the wallet's name.
func (w *Wallet) Name() string { return w.name }

// SettlementCurrency returns the currency the balance is expressed in.
func (w *Wallet) SettlementCurrency() string { return w.settlement }

// Balance returns the current settlement-currency balance.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Quantity returns the tracked exposure magnitude for a symbol.
func (w *Wallet) Quantity(symbol string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quantity[symbol]
}

// RealizedGain returns the cumulative realized gain for a symbol.
func (w *Wallet) RealizedGain(symbol string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.realized[symbol]
}

// Symbols returns the tracked symbols in sorted order.
func (w *Wallet) Symbols() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.symbolsLocked()
}

func (w *Wallet) symbolsLocked() []string {
	out := make([]string, 0, len(w.quantity))
	for s := range w.quantity {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ActivePosition returns a copy of the active position for the symbol, or
// false when none is open. At most one exists per symbol.
func (w *Wallet) ActivePosition(symbol string) (domain.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p := w.activeLocked(symbol); p != nil {
		return *p, true
	}
	return domain.Position{}, false
}

func (w *Wallet) activeLocked(symbol string) *domain.Position {
	if p, ok := w.activeLong[symbol]; ok {
		return p
	}
	if p, ok := w.activeShort[symbol]; ok {
		return p
	}
	return nil
}

// Positions returns copies of the full position history, oldest first.
func (w *Wallet) Positions() []domain.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Position, len(w.positions))
	for i, p := range w.positions {
		out[i] = *p
	}
	return out
}

// PendingReconciliations returns the number of closes whose ledger update was
// skipped because of a conversion failure. A non-zero value means the ledger
// understates realized gains until reconciled.
func (w *Wallet) PendingReconciliations() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingReconciliation
}

// PushOrder opens a position for the symbol, committing the given
// settlement-currency notional at the current price.
//
// A same-side push while a position is active is rejected as a logged no-op.
// An opposite-side push closes the existing position at the current price
// before opening the new one, realizing its PnL (flip).
func (w *Wallet) PushOrder(ctx context.Context, symbol string, side domain.Side, notional float64, opts PushOptions) error {
	if side != domain.Long && side != domain.Short {
		return fmt.Errorf("push order for %s: %w: %q", symbol, ports.ErrInvalidSide, side)
	}
	if notional <= 0 {
		return fmt.Errorf("push order for %s: %w: notional must be positive", symbol, ports.ErrInvalidRequest)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, tracked := w.quantity[symbol]; !tracked {
		return fmt.Errorf("push order for %s: %w", symbol, ports.ErrUnknownSymbol)
	}

	price, err := w.fetchPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("push order for %s: %w", symbol, err)
	}

	quantity := notional / price
	commission := quantity * w.takerFee * price / 100

	if _, ok := w.sameSideActive(symbol, side); ok {
		// No position averaging: the push changes nothing.
		w.logger.Info(ctx, "Order rejected, position already active", map[string]interface{}{
			"wallet": w.name, "symbol": symbol, "side": side,
		})
		return nil
	}

	ratio := 1.0
	if opposite, ok := w.sameSideActive(symbol, side.Opposite()); ok {
		// Flip: realize the opposite leg at the current price first.
		if err := w.closePositionLocked(ctx, opposite, price, domain.CloseReasonFlip); err != nil {
			// The old position is already inactive; the ledger gap is
			// tracked via pendingReconciliation. The new leg still opens.
			w.logger.Error(ctx, err, "Flip close left ledger pending reconciliation", map[string]interface{}{
				"wallet": w.name, "symbol": symbol,
			})
		}
	} else {
		// No flip: the open commission still has to be debited in the
		// settlement currency, so the ratio is needed up front.
		ratio, err = w.conversionRatioLocked(ctx, symbol)
		if err != nil {
			return fmt.Errorf("push order for %s: %w", symbol, err)
		}
	}

	if !w.paperTrade {
		fill, err := w.executor.MarketOrder(ctx, symbol, side.EntryOrderSide(), quantity)
		if err != nil {
			return fmt.Errorf("push order for %s: %w", symbol, err)
		}
		price = fill.Price
		quantity = fill.Quantity
	}

	var tp, sl *float64
	if opts.TakeProfit != nil {
		v := *opts.TakeProfit
		if opts.AsPercent {
			v = domain.ResolveTakeProfit(side, price, v)
		}
		tp = &v
	}
	if opts.StopLoss != nil {
		v := *opts.StopLoss
		if opts.AsPercent {
			v = domain.ResolveStopLoss(side, price, v)
		}
		sl = &v
	}

	pos := domain.NewPosition(symbol, side, price, quantity, tp, sl, w.now())
	w.positions = append(w.positions, pos)
	if side == domain.Long {
		w.activeLong[symbol] = pos
	} else {
		w.activeShort[symbol] = pos
	}
	w.balance -= commission * ratio
	w.quantity[symbol] += quantity

	w.logger.Info(ctx, "Position opened", map[string]interface{}{
		"wallet": w.name, "symbol": symbol, "side": side,
		"price": price, "quantity": quantity, "commission": commission * ratio,
	})
	return nil
}

func (w *Wallet) sameSideActive(symbol string, side domain.Side) (*domain.Position, bool) {
	var p *domain.Position
	var ok bool
	if side == domain.Long {
		p, ok = w.activeLong[symbol]
	} else {
		p, ok = w.activeShort[symbol]
	}
	return p, ok
}

// ExitOrder closes the active position for the symbol at the current price.
// No-op when no position is active.
func (w *Wallet) ExitOrder(ctx context.Context, symbol string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exitLocked(ctx, symbol, domain.CloseReasonManual)
}

func (w *Wallet) exitLocked(ctx context.Context, symbol string, reason domain.CloseReason) error {
	pos := w.activeLocked(symbol)
	if pos == nil {
		return nil
	}
	price, err := w.fetchPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("exit order for %s: %w", symbol, err)
	}
	return w.closePositionLocked(ctx, pos, price, reason)
}

// ExitAll closes every active position. Each symbol is attempted
// independently: one failing price fetch or conversion does not block the
// remaining symbols. The returned error aggregates the per-symbol failures.
func (w *Wallet) ExitAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, symbol := range w.symbolsLocked() {
		if err := w.exitLocked(ctx, symbol, domain.CloseReasonExitAll); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CheckTakeProfitStopLoss fetches the current price of every active position
// and closes those whose stop-loss or take-profit bound is breached.
// Positions with no bounds set are never auto-closed.
func (w *Wallet) CheckTakeProfitStopLoss(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	actives := make([]*domain.Position, 0, len(w.activeLong)+len(w.activeShort))
	for _, symbol := range w.symbolsLocked() {
		if p := w.activeLocked(symbol); p != nil {
			actives = append(actives, p)
		}
	}

	var errs []error
	for _, pos := range actives {
		price, err := w.fetchPrice(ctx, pos.Symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("tp/sl check for %s: %w", pos.Symbol, err))
			continue
		}
		if reason, hit := pos.TriggeredExit(price); hit {
			w.logger.Info(ctx, "Protective exit triggered", map[string]interface{}{
				"wallet": w.name, "symbol": pos.Symbol, "side": pos.Side,
				"price": price, "reason": reason,
			})
			if err := w.closePositionLocked(ctx, pos, price, reason); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// closePositionLocked realizes the position at the given price: it flips the
// position inactive, removes it from the active set, and credits the ledger
// with the signed gain net of the closing commission.
//
// When the conversion ratio cannot be computed the position stays closed but
// the ledger is left untouched; the inconsistency is counted in
// pendingReconciliation rather than silently defaulting the ratio to 1.
func (w *Wallet) closePositionLocked(ctx context.Context, pos *domain.Position, price float64, reason domain.CloseReason) error {
	symbol := pos.Symbol

	pos.Close(price, w.now(), reason)
	if pos.Side == domain.Long {
		delete(w.activeLong, symbol)
	} else {
		delete(w.activeShort, symbol)
	}
	w.quantity[symbol] -= pos.Quantity

	ratio, err := w.conversionRatioLocked(ctx, symbol)
	if err != nil {
		w.pendingReconciliation++
		w.logger.Error(ctx, err, "Position closed but ledger not updated, reconciliation required", map[string]interface{}{
			"wallet": w.name, "symbol": symbol, "side": pos.Side, "price": price,
		})
		return fmt.Errorf("close %s position for %s: %w", pos.Side, symbol, err)
	}

	coeff := pos.Side.DirectionCoefficient()
	closingCommission := pos.Quantity * w.takerFee * price * ratio / 100
	gross := (price - pos.EntryPrice) * pos.Quantity

	w.realized[symbol] += coeff*gross*ratio - closingCommission
	proceeds := ratio*pos.EntryPrice*pos.Quantity + coeff*gross - closingCommission
	w.balance += proceeds

	w.logger.Info(ctx, "Position closed", map[string]interface{}{
		"wallet": w.name, "symbol": symbol, "side": pos.Side, "reason": reason,
		"entryPrice": pos.EntryPrice, "exitPrice": price,
		"netGain": coeff*gross*ratio - closingCommission, "proceeds": proceeds,
	})

	w.recordTrade(ctx, pos, coeff*gross, closingCommission, coeff*gross*ratio-closingCommission)
	return nil
}

// recordTrade writes the closed position to the journal when one is
// configured. Journal failures are logged and do not affect the ledger.
func (w *Wallet) recordTrade(ctx context.Context, pos *domain.Position, gross, commission, net float64) {
	if w.journal == nil {
		return
	}
	trade := &domain.Trade{
		Wallet:      w.name,
		Symbol:      pos.Symbol,
		Side:        pos.Side,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   pos.ExitPrice,
		Quantity:    pos.Quantity,
		GrossPnL:    gross,
		Commission:  commission,
		NetPnL:      net,
		OpenedAt:    pos.OpenedAt,
		ClosedAt:    pos.ClosedAt,
		CloseReason: pos.CloseReason,
	}
	if _, err := w.journal.RecordTrade(ctx, trade); err != nil {
		w.logger.Error(ctx, err, "Failed to journal closed trade", map[string]interface{}{
			"wallet": w.name, "symbol": pos.Symbol,
		})
	}
}

// conversionRatioLocked expresses one unit of the symbol's quote asset in the
// settlement currency. Pairs already quoted in the settlement currency have
// ratio 1; otherwise the spot price of quoteAsset+settlement is fetched.
//
// A missing symbol aborts the calling operation: assuming ratio 1 would
// silently corrupt the ledger.
func (w *Wallet) conversionRatioLocked(ctx context.Context, symbol string) (float64, error) {
	if strings.HasSuffix(symbol, w.settlement) {
		return 1, nil
	}
	quote, err := w.quoteAsset(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("conversion ratio for %s: %w", symbol, err)
	}
	if quote == w.settlement {
		return 1, nil
	}
	ratio, err := w.fetchPrice(ctx, quote+w.settlement)
	if err != nil {
		return 0, fmt.Errorf("conversion ratio for %s via %s%s: %w", symbol, quote, w.settlement, err)
	}
	return ratio, nil
}

// RealizedProfit returns the sum of realized gains over all symbols.
func (w *Wallet) RealizedProfit() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0.0
	for _, gain := range w.realized {
		total += gain
	}
	return total
}

// UnrealizedProfit returns the mark-to-market profit of all active
// positions at fresh prices. It does not mutate state.
func (w *Wallet) UnrealizedProfit(ctx context.Context) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unrealizedLocked(ctx)
}

func (w *Wallet) unrealizedLocked(ctx context.Context) (float64, error) {
	total := 0.0
	for _, symbol := range w.symbolsLocked() {
		pos := w.activeLocked(symbol)
		if pos == nil {
			continue
		}
		price, err := w.fetchPrice(ctx, symbol)
		if err != nil {
			return 0, fmt.Errorf("unrealized profit for %s: %w", symbol, err)
		}
		total += pos.UnrealizedPnL(price)
	}
	return total, nil
}

// TotalProfit returns realized plus unrealized profit.
func (w *Wallet) TotalProfit(ctx context.Context) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	unrealized, err := w.unrealizedLocked(ctx)
	if err != nil {
		return 0, err
	}
	total := unrealized
	for _, gain := range w.realized {
		total += gain
	}
	return total, nil
}

// Status renders a multi-line report of the wallet's balance, exposures and
// per-symbol gains. Prices are not fetched; only realized figures appear.
func (w *Wallet) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "== Wallet %s (%s)\n", w.name, w.settlement)
	fmt.Fprintf(&sb, "== Balance: %.8f\n", w.balance)
	realizedTotal := 0.0
	for _, gain := range w.realized {
		realizedTotal += gain
	}
	fmt.Fprintf(&sb, "== Realized profit: %.8f\n", realizedTotal)
	if w.pendingReconciliation > 0 {
		fmt.Fprintf(&sb, "== PENDING RECONCILIATIONS: %d\n", w.pendingReconciliation)
	}
	for _, symbol := range w.symbolsLocked() {
		marker := "-"
		if _, ok := w.activeLong[symbol]; ok {
			marker = "L"
		} else if _, ok := w.activeShort[symbol]; ok {
			marker = "S"
		}
		fmt.Fprintf(&sb, "==   %s: qty=%.8f [%s] realized=%.8f\n", symbol, w.quantity[symbol], marker, w.realized[symbol])
	}
	return sb.String()
}

// TightenStopLoss moves the active position's stop-loss in the protective
// direction only. Returns false when no position is active or the level
// would loosen the stop.
func (w *Wallet) TightenStopLoss(symbol string, level float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	pos := w.activeLocked(symbol)
	if pos == nil {
		return false
	}
	return pos.TightenStopLoss(level)
}

// fetchPrice wraps the oracle call with the configured timeout.
func (w *Wallet) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	if w.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.callTimeout)
		defer cancel()
	}
	return w.oracle.GetPrice(ctx, symbol)
}

// quoteAsset wraps the metadata call with the configured timeout.
func (w *Wallet) quoteAsset(ctx context.Context, symbol string) (string, error) {
	if w.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.callTimeout)
		defer cancel()
	}
	return w.metadata.QuoteAsset(ctx, symbol)
}

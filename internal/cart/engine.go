// Package cart holds the shopping-cart state engine: an ordered set of line
// items with quantity merging, removal on zero and total computation.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"onlinestore/internal/domain"
)

// DefaultCurrencySymbol prefixes formatted totals unless WithCurrencySymbol is used.
const DefaultCurrencySymbol = "$"

// Snapshot is a consistent, caller-owned view of the cart.
type Snapshot struct {
	Version       uint64
	Items         []domain.LineItem
	TotalAmount   decimal.Decimal
	TotalPrice    string
	TotalQuantity int
}

// Listener receives a snapshot after every mutation that changed the cart.
// Under concurrent mutation deliveries may interleave; Version orders them.
type Listener func(Snapshot)

// Engine owns a single cart. All methods are safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	items   []domain.LineItem
	version uint64

	symbol string
	logger *zap.Logger

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Option configures an Engine.
type Option func(*Engine) error

// WithItems pre-seeds the cart. Duplicate products are merged into the
// first occurrence; quantities below one are rejected.
func WithItems(items []domain.LineItem) Option {
	return func(e *Engine) error {
		for _, item := range items {
			if item.Quantity < 1 {
				return domain.ErrInvalidQuantity
			}
			if idx := e.indexOf(item.Product); idx >= 0 {
				e.items[idx].Quantity += item.Quantity
				continue
			}
			e.items = append(e.items, item)
		}
		return nil
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// WithCurrencySymbol sets the prefix used by TotalPriceString.
func WithCurrencySymbol(symbol string) Option {
	return func(e *Engine) error {
		e.symbol = symbol
		return nil
	}
}

// New builds an empty engine, or a pre-seeded one when WithItems is given.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		symbol:    DefaultCurrencySymbol,
		logger:    zap.NewNop(),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddToCart increments the matching line item or appends a new one with quantity 1.
func (e *Engine) AddToCart(p domain.Product) {
	e.mu.Lock()
	qty := 1
	if idx := e.indexOf(p); idx >= 0 {
		e.items[idx].Quantity++
		qty = e.items[idx].Quantity
	} else {
		e.items = append(e.items, domain.LineItem{Product: p, Quantity: 1})
	}
	snap := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("cart: add", zap.Int64("product_id", p.ID), zap.Int("quantity", qty))
	e.publish(snap)
}

// RemoveFromCart decrements the matching line item and drops it when it
// reaches zero. Unknown products are ignored.
func (e *Engine) RemoveFromCart(p domain.Product) {
	e.mu.Lock()
	idx := e.indexOf(p)
	if idx < 0 {
		e.mu.Unlock()
		e.logger.Debug("cart: remove skipped", zap.Int64("product_id", p.ID), zap.String("reason", "not_in_cart"))
		return
	}
	e.items[idx].Quantity--
	qty := e.items[idx].Quantity
	if qty <= 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
		qty = 0
	}
	snap := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("cart: remove", zap.Int64("product_id", p.ID), zap.Int("quantity", qty))
	e.publish(snap)
}

// RemoveAllFromCart drops the matching line item whatever its quantity.
func (e *Engine) RemoveAllFromCart(p domain.Product) {
	e.mu.Lock()
	idx := e.indexOf(p)
	if idx < 0 {
		e.mu.Unlock()
		e.logger.Debug("cart: remove all skipped", zap.Int64("product_id", p.ID), zap.String("reason", "not_in_cart"))
		return
	}
	removed := e.items[idx].Quantity
	e.items = append(e.items[:idx], e.items[idx+1:]...)
	snap := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("cart: remove all", zap.Int64("product_id", p.ID), zap.Int("removed", removed))
	e.publish(snap)
}

// RemoveAllItems empties the cart.
func (e *Engine) RemoveAllItems() {
	e.mu.Lock()
	if len(e.items) == 0 {
		e.mu.Unlock()
		return
	}
	count := len(e.items)
	e.items = nil
	snap := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("cart: cleared", zap.Int("line_items", count))
	e.publish(snap)
}

// Quantity returns the quantity held for p, or 0 when p is not in the cart.
func (e *Engine) Quantity(p domain.Product) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx := e.indexOf(p); idx >= 0 {
		return e.items[idx].Quantity
	}
	return 0
}

// TotalAmount sums discounted price times quantity over all line items.
func (e *Engine) TotalAmount() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return totalOf(e.items)
}

// TotalPriceString formats TotalAmount with the currency symbol and exactly
// two fractional digits, rounding half to even.
func (e *Engine) TotalPriceString() string {
	return FormatAmount(e.symbol, e.TotalAmount())
}

// Items returns a copy of the line items in insertion order.
func (e *Engine) Items() []domain.LineItem {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneItems(e.items)
}

// Len returns the number of distinct line items.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items)
}

// IsEmpty reports whether the cart holds no line items.
func (e *Engine) IsEmpty() bool {
	return e.Len() == 0
}

// TotalQuantity sums quantities across line items.
func (e *Engine) TotalQuantity() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return quantityOf(e.items)
}

// CurrencySymbol returns the prefix used for formatted amounts.
func (e *Engine) CurrencySymbol() string {
	return e.symbol
}

// Snapshot returns items and totals read under a single lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Subscribe registers l and returns a function that removes it. Listeners
// run on the mutating goroutine after the cart lock is released.
func (e *Engine) Subscribe(l Listener) func() {
	e.lmu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	e.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.lmu.Lock()
			delete(e.listeners, id)
			e.lmu.Unlock()
		})
	}
}

func (e *Engine) indexOf(p domain.Product) int {
	for i := range e.items {
		if e.items[i].Product.Equal(p) {
			return i
		}
	}
	return -1
}

func (e *Engine) commitLocked() Snapshot {
	e.version++
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	total := totalOf(e.items)
	return Snapshot{
		Version:       e.version,
		Items:         cloneItems(e.items),
		TotalAmount:   total,
		TotalPrice:    FormatAmount(e.symbol, total),
		TotalQuantity: quantityOf(e.items),
	}
}

func (e *Engine) publish(snap Snapshot) {
	e.lmu.Lock()
	if len(e.listeners) == 0 {
		e.lmu.Unlock()
		return
	}
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.lmu.Unlock()

	for _, l := range listeners {
		l(Snapshot{
			Version:       snap.Version,
			Items:         cloneItems(snap.Items),
			TotalAmount:   snap.TotalAmount,
			TotalPrice:    snap.TotalPrice,
			TotalQuantity: snap.TotalQuantity,
		})
	}
}

func totalOf(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func quantityOf(items []domain.LineItem) int {
	qty := 0
	for _, item := range items {
		qty += item.Quantity
	}
	return qty
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

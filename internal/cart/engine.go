// Package cart owns the line items of the session's shopping cart and the
// totals derived from them.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is one product's aggregated quantity. Price is the unit price captured
// when the product was first added and is never refreshed afterwards.
type Line struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   catalog.Product `json:"product"`
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type StockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %d: requested %d, %d in stock", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Engine keeps at most one line per product, in insertion order. Each
// mutation is written to storage before it becomes visible; when the write
// fails the cart is left as it was and the error is returned.
type Engine struct {
	store storage.Storage

	mu    sync.Mutex
	lines []Line
}

// Open restores the cart persisted under storage.KeyCart.
func Open(ctx context.Context, store storage.Storage) (*Engine, error) {
	e := &Engine{store: store}
	if _, err := storage.Load(ctx, store, storage.KeyCart, &e.lines); err != nil {
		return nil, err
	}
	return e, nil
}

// AddItem merges quantity into the product's line, or appends a new line
// priced at p.Price. Stock is not checked; see AddItemWithinStock.
func (e *Engine) AddItem(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, addTo(e.lines, p, quantity))
}

// AddItemWithinStock is AddItem guarded by CheckStock.
func (e *Engine) AddItemWithinStock(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkStock(e.lines, p, quantity); err != nil {
		return err
	}
	return e.commit(ctx, addTo(e.lines, p, quantity))
}

// CheckStock reports whether quantity more units of p fit in p.Stock given
// what the cart already holds.
func (e *Engine) CheckStock(p catalog.Product, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return checkStock(e.lines, p, quantity)
}

func (e *Engine) RemoveItem(ctx context.Context, productID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if indexOf(e.lines, productID) < 0 {
		return nil
	}
	return e.commit(ctx, without(e.lines, productID))
}

// SetQuantity overwrites the line's quantity. Zero or less removes the line;
// an unknown product is a no-op.
func (e *Engine) SetQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, productID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	i := indexOf(e.lines, productID)
	if i < 0 {
		return nil
	}
	next := clone(e.lines)
	next[i].Quantity = quantity
	return e.commit(ctx, next)
}

func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx, []Line{})
}

func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(e.lines)
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

func (e *Engine) IsEmpty() bool { return e.Len() == 0 }

// Subtotal is Σ price×quantity over the current lines.
func (e *Engine) Subtotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Subtotal(e.lines)
}

// ItemCount is Σ quantity over the current lines.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ItemCount(e.lines)
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func (e *Engine) commit(ctx context.Context, next []Line) error {
	if err := storage.Save(ctx, e.store, storage.KeyCart, next); err != nil {
		return err
	}
	e.lines = next
	return nil
}

func addTo(lines []Line, p catalog.Product, quantity int) []Line {
	next := clone(lines)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i].Quantity += quantity
		return next
	}
	return append(next, Line{ProductID: p.ID, Quantity: quantity, Price: p.Price, Product: p})
}

func checkStock(lines []Line, p catalog.Product, quantity int) error {
	held := 0
	if i := indexOf(lines, p.ID); i >= 0 {
		held = lines[i].Quantity
	}
	if held+quantity > p.Stock {
		return &StockError{ProductID: p.ID, Requested: held + quantity, Available: p.Stock}
	}
	return nil
}

func without(lines []Line, productID int) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

func indexOf(lines []Line, productID int) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func clone(lines []Line) []Line {
	return append(make([]Line, 0, len(lines)+1), lines...)
}

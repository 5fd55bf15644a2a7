package services

import (
	"context"
	"sync"
	"time"

	"lunch-menu/models"
)

// Cart is one visitor's pending order lines. It is not safe for concurrent
// use; CartBook serialises access per visitor.
type Cart struct {
	lines []models.CartLine
}

func (c *Cart) Has(id string) bool {
	for _, l := range c.lines {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Add appends a line. A dish already in the cart is rejected with
// ErrAlreadyInCart and the cart is left unchanged.
func (c *Cart) Add(line models.CartLine) error {
	if c.Has(line.ID) {
		return ErrAlreadyInCart
	}
	c.lines = append(c.lines, line)
	return nil
}

// Remove drops the line for id and reports whether it was present.
func (c *Cart) Remove(id string) bool {
	for i, l := range c.lines {
		if l.ID == id {
			c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Lines() []models.CartLine {
	return append([]models.CartLine{}, c.lines...)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.lines = nil
}

type cartEntry struct {
	mu      sync.Mutex
	cart    Cart
	touched time.Time // guarded by CartBook.mu
}

// CartBook keeps carts in memory keyed by visitor id. Carts untouched for
// longer than the TTL are dropped by Sweep.
type CartBook struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	carts map[string]*cartEntry
}

func NewCartBook(ttl time.Duration) *CartBook {
	return &CartBook{
		ttl:   ttl,
		now:   time.Now,
		carts: make(map[string]*cartEntry),
	}
}

func (b *CartBook) entry(visitorID string) *cartEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.carts[visitorID]
	if !ok {
		e = &cartEntry{}
		b.carts[visitorID] = e
	}
	e.touched = b.now()
	return e
}

// With runs fn with exclusive access to the visitor's cart.
func (b *CartBook) With(visitorID string, fn func(*Cart) error) error {
	e := b.entry(visitorID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.cart)
}

func (b *CartBook) Lines(visitorID string) []models.CartLine {
	var lines []models.CartLine
	_ = b.With(visitorID, func(c *Cart) error {
		lines = c.Lines()
		return nil
	})
	return lines
}

// Sweep drops carts idle for longer than the TTL and returns how many.
func (b *CartBook) Sweep() int {
	if b.ttl <= 0 {
		return 0
	}
	cutoff := b.now().Add(-b.ttl)
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, e := range b.carts {
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			delete(b.carts, id)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (b *CartBook) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Sweep()
		}
	}
}

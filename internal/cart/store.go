package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qoo-shop/shopclient/internal/models"
	"github.com/qoo-shop/shopclient/internal/session"
)

type Gateway interface {
	Cart(ctx context.Context, token string) ([]models.CartLine, error)
	AddCartItem(ctx context.Context, token string, productID, quantity int) error
	UpdateCartItem(ctx context.Context, token string, lineID int64, quantity int) error
	RemoveCartItem(ctx context.Context, token string, lineID int64) error
	ClearCart(ctx context.Context, token string) error
}

type SnapshotStore interface {
	SaveCart(account string, lines []models.CartLine) error
	LoadCart(account string) ([]models.CartLine, bool, error)
}

type Sessions interface {
	Current() session.Session
}

// Store owns the in-memory cart. Every operation goes remote first; when the
// gateway fails the same mutation is applied to the local lines and persisted
// as the account's snapshot, so the cart stays usable offline.
//
// Mutations are serialized on opMu: two concurrent mutations never
// interleave, the second waits for the first to finish.
type Store struct {
	opMu sync.Mutex

	gw    Gateway
	snaps SnapshotStore
	sess  Sessions
	log   *slog.Logger

	loading atomic.Bool

	mu    sync.Mutex
	lines []models.CartLine
}

func NewStore(gw Gateway, snaps SnapshotStore, sess Sessions, log *slog.Logger) *Store {
	return &Store{gw: gw, snaps: snaps, sess: sess, log: log}
}

// beginOp flags the store busy and serializes the operation. The returned
// release runs via defer on every exit path, so Loading can never stick true.
func (s *Store) beginOp() func() {
	s.opMu.Lock()
	s.loading.Store(true)
	return func() {
		s.loading.Store(false)
		s.opMu.Unlock()
	}
}

// Loading reports whether an operation is in flight. Advisory only.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, l := range s.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func (s *Store) authed() (session.Session, error) {
	cur := s.sess.Current()
	if !cur.Authenticated {
		return session.Session{}, ErrNotAuthenticated
	}
	return cur, nil
}

// Fetch replaces the cart with the server's line list. A gateway failure is
// absorbed: the persisted snapshot is loaded instead and no error escapes,
// fetch being a background refresh.
func (s *Store) Fetch(ctx context.Context) error {
	cur, err := s.authed()
	if err != nil {
		return err
	}
	defer s.beginOp()()

	lines, err := s.gw.Cart(ctx, cur.Token)
	if err != nil {
		s.log.Warn("cart fetch failed, loading snapshot", "error", err)
		s.loadSnapshot(cur.Account)
		return nil
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

// AddItem adds qty of product to the cart. On remote success the full cart
// is re-fetched so server-assigned line ids replace any temporary ones.
func (s *Store) AddItem(ctx context.Context, product models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}
	cur, err := s.authed()
	if err != nil {
		return err
	}
	defer s.beginOp()()

	if err := s.gw.AddCartItem(ctx, cur.Token, product.ID, qty); err != nil {
		s.applyAdd(product, qty)
		s.saveSnapshot(cur.Account)
		return &FallbackError{Err: err}
	}

	lines, err := s.gw.Cart(ctx, cur.Token)
	if err != nil {
		// The add itself landed; treat the refresh like any failed fetch.
		s.log.Warn("cart refresh after add failed", "error", err)
		s.applyAdd(product, qty)
	} else {
		s.mu.Lock()
		s.lines = lines
		s.mu.Unlock()
	}
	s.saveSnapshot(cur.Account)
	return nil
}

// SetQuantity updates a line's quantity in place; qty <= 0 removes the line
// instead, a quantity never goes to zero or below.
func (s *Store) SetQuantity(ctx context.Context, lineID int64, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, lineID)
	}
	cur, err := s.authed()
	if err != nil {
		return err
	}
	defer s.beginOp()()

	var fellBack *FallbackError
	if err := s.gw.UpdateCartItem(ctx, cur.Token, lineID, qty); err != nil {
		fellBack = &FallbackError{Err: err}
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines[i].Quantity = qty
			break
		}
	}
	s.mu.Unlock()

	s.saveSnapshot(cur.Account)
	if fellBack != nil {
		return fellBack
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, lineID int64) error {
	cur, err := s.authed()
	if err != nil {
		return err
	}
	defer s.beginOp()()

	var fellBack *FallbackError
	if err := s.gw.RemoveCartItem(ctx, cur.Token, lineID); err != nil {
		fellBack = &FallbackError{Err: err}
	}

	s.mu.Lock()
	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.LineID != lineID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.mu.Unlock()

	s.saveSnapshot(cur.Account)
	if fellBack != nil {
		return fellBack
	}
	return nil
}

// Clear empties the cart. Idempotent: clearing an empty cart succeeds.
func (s *Store) Clear(ctx context.Context) error {
	cur, err := s.authed()
	if err != nil {
		return err
	}
	defer s.beginOp()()

	var fellBack *FallbackError
	if err := s.gw.ClearCart(ctx, cur.Token); err != nil {
		fellBack = &FallbackError{Err: err}
	}

	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.saveSnapshot(cur.Account)
	if fellBack != nil {
		return fellBack
	}
	return nil
}

// applyAdd is the local reducer for an add: merge into an existing line by
// product id, otherwise append with a temporary millisecond id that the next
// successful fetch replaces.
func (s *Store) applyAdd(product models.Product, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == product.ID {
			s.lines[i].Quantity += qty
			return
		}
	}
	s.lines = append(s.lines, models.CartLine{
		LineID:    time.Now().UnixMilli(),
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  qty,
		ImageURL:  product.ImageURL,
	})
}

func (s *Store) saveSnapshot(account string) {
	if err := s.snaps.SaveCart(account, s.Lines()); err != nil {
		s.log.Warn("save cart snapshot", "account", account, "error", err)
	}
}

func (s *Store) loadSnapshot(account string) {
	lines, ok, err := s.snaps.LoadCart(account)
	if err != nil {
		s.log.Warn("load cart snapshot", "account", account, "error", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

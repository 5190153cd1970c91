package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qoo-shop/shopclient/internal/cart"
	"github.com/qoo-shop/shopclient/internal/models"
	"github.com/qoo-shop/shopclient/internal/session"
)

var ErrEmptyCart = errors.New("cart is empty")

type Gateway interface {
	CreateOrder(ctx context.Context, token string, items []models.OrderItem) (*models.Order, error)
	Orders(ctx context.Context, token string) ([]models.Order, error)
	Order(ctx context.Context, token string, id int) (*models.Order, error)
	CancelOrder(ctx context.Context, token string, id int) error
}

type Sessions interface {
	Current() session.Session
}

// Service places and tracks orders. Unlike the cart there is no local
// fallback here: an order must not be fabricated while the server is
// unreachable, so every gateway failure surfaces to the caller.
type Service struct {
	gw   Gateway
	cart *cart.Store
	sess Sessions
	log  *slog.Logger
}

func NewService(gw Gateway, cartStore *cart.Store, sess Sessions, log *slog.Logger) *Service {
	return &Service{gw: gw, cart: cartStore, sess: sess, log: log}
}

func (s *Service) authed() (session.Session, error) {
	cur := s.sess.Current()
	if !cur.Authenticated {
		return session.Session{}, cart.ErrNotAuthenticated
	}
	return cur, nil
}

// PlaceOrder turns the current cart lines into an order and, on success,
// clears the cart.
func (s *Service) PlaceOrder(ctx context.Context) (*models.Order, error) {
	cur, err := s.authed()
	if err != nil {
		return nil, err
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	placed, err := s.gw.CreateOrder(ctx, cur.Token, items)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		// The order exists either way; an offline cart clear is fine.
		s.log.Warn("clear cart after order", "order", placed.ID, "error", err)
	}
	s.log.Info("order placed", "order", placed.ID, "total", placed.TotalAmount)
	return placed, nil
}

func (s *Service) Orders(ctx context.Context) ([]models.Order, error) {
	cur, err := s.authed()
	if err != nil {
		return nil, err
	}
	return s.gw.Orders(ctx, cur.Token)
}

func (s *Service) Order(ctx context.Context, id int) (*models.Order, error) {
	cur, err := s.authed()
	if err != nil {
		return nil, err
	}
	return s.gw.Order(ctx, cur.Token, id)
}

func (s *Service) Cancel(ctx context.Context, id int) error {
	cur, err := s.authed()
	if err != nil {
		return err
	}
	return s.gw.CancelOrder(ctx, cur.Token, id)
}

// Package memory provides in-process cart and session repositories for local runs and tests.
// Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// Store implements port.CartRepository and port.SessionRepository with maps guarded by one mutex,
// which serializes every mutation the way the unique constraints do in postgres.
type Store struct {
	mu       sync.Mutex
	carts    map[string]*domain.Cart
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		carts:    make(map[string]*domain.Cart),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (s *Store) GetCart(_ context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneCart(s.ensureCart(sessionID)), nil
}

func (s *Store) FindCart(_ context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	return cloneCart(cart), nil
}

func (s *Store) AddItem(_ context.Context, sessionID string, item domain.NewCartItem) (domain.CartItem, error) {
	if sessionID == "" {
		return domain.CartItem{}, fmt.Errorf("sessionID is empty")
	}
	if item.Quantity <= 0 {
		return domain.CartItem{}, fmt.Errorf("quantity must be positive: %d", item.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.ensureCart(sessionID)
	now := s.now().UTC()

	if i := indexOf(cart.Items, item.ProductID); i >= 0 {
		if cart.Items[i].Quantity > math.MaxInt32-item.Quantity {
			return domain.CartItem{}, fmt.Errorf("quantity out of range: %d + %d", cart.Items[i].Quantity, item.Quantity)
		}
		cart.Items[i].Quantity += item.Quantity
		cart.Items[i].UpdatedAt = now
		return cart.Items[i], nil
	}

	added := domain.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: item.ProductID,
		Title:     item.Title,
		Price:     item.Price,
		Image:     item.Image,
		Quantity:  item.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cart.Items = append(cart.Items, added)

	return added, nil
}

func (s *Store) UpdateItemQuantity(_ context.Context, sessionID string, productID int64, quantity int32) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %d", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return 0, domain.ErrCartNotFound
	}

	i := indexOf(cart.Items, productID)
	if i < 0 {
		return 0, nil
	}

	cart.Items[i].Quantity = quantity
	cart.Items[i].UpdatedAt = s.now().UTC()

	return 1, nil
}

func (s *Store) DeleteItem(_ context.Context, sessionID string, productID int64) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return 0, domain.ErrCartNotFound
	}

	before := len(cart.Items)
	cart.Items = slices.DeleteFunc(cart.Items, func(item domain.CartItem) bool {
		return item.ProductID == productID
	})

	return int64(before - len(cart.Items)), nil
}

func (s *Store) ClearCart(_ context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return 0, domain.ErrCartNotFound
	}

	removed := int64(len(cart.Items))
	cart.Items = nil

	return removed, nil
}

func (s *Store) CreateSession(_ context.Context, session domain.Session) error {
	if session.Token == "" {
		return fmt.Errorf("token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; !ok {
		s.sessions[session.Token] = session
	}

	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, fmt.Errorf("token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return session, nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			delete(s.carts, token)
			deleted++
		}
	}

	return deleted, nil
}

func (s *Store) ensureCart(sessionID string) *domain.Cart {
	cart, ok := s.carts[sessionID]
	if !ok {
		cart = &domain.Cart{
			ID:        uuid.New(),
			SessionID: sessionID,
			CreatedAt: s.now().UTC(),
		}
		s.carts[sessionID] = cart
	}
	return cart
}

func indexOf(items []domain.CartItem, productID int64) int {
	return slices.IndexFunc(items, func(item domain.CartItem) bool {
		return item.ProductID == productID
	})
}

func cloneCart(cart *domain.Cart) domain.Cart {
	c := *cart
	c.Items = slices.Clone(cart.Items)
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return c
}

var (
	_ port.CartRepository    = (*Store)(nil)
	_ port.SessionRepository = (*Store)(nil)
)

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

// Cart is the session-scoped cart API. Every method takes the caller's session token explicitly.
type Cart struct {
	repo     port.CartRepository
	currency currency.Unit
	logger   *slog.Logger
}

func NewCart(repo port.CartRepository, storeCurrency currency.Unit, logger *slog.Logger) (*Cart, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Cart{
		repo:     repo,
		currency: storeCurrency,
		logger:   logger.With(slog.String("component", "cart_service")),
	}, nil
}

// GetCart returns the session's line items, creating an empty cart when there is none.
func (s *Cart) GetCart(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, invalid(OpGetCart, "session id is required")
	}

	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, OpGetCart, sessionID, err)
	}

	return cart.Items, nil
}

// AddToCart adds a product line or, when the product is already in the cart,
// increments its quantity. Zero quantity means one.
func (s *Cart) AddToCart(ctx context.Context, sessionID string, item domain.NewCartItem) (domain.CartItem, error) {
	if sessionID == "" {
		return domain.CartItem{}, invalid(OpAddToCart, "session id is required")
	}

	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if err := validateNewItem(item); err != nil {
		return domain.CartItem{}, invalid(OpAddToCart, err.Error())
	}

	item.Price.Currency = s.currency

	added, err := s.repo.AddItem(ctx, sessionID, item)
	if err != nil {
		return domain.CartItem{}, s.fail(ctx, OpAddToCart, sessionID, err)
	}

	return added, nil
}

// UpdateCartItem sets the quantity of the product's line. A quantity <= 0 removes the line,
// so a non-positive quantity is never persisted.
func (s *Cart) UpdateCartItem(ctx context.Context, sessionID string, productID int64, quantity int32) (int64, error) {
	if sessionID == "" {
		return 0, invalid(OpUpdateCartItem, "session id is required")
	}
	if quantity > domain.MaxItemQuantity {
		return 0, invalid(OpUpdateCartItem, fmt.Sprintf("quantity must not exceed %d", domain.MaxItemQuantity))
	}

	if quantity <= 0 {
		affected, err := s.repo.DeleteItem(ctx, sessionID, productID)
		if err != nil {
			return 0, s.fail(ctx, OpUpdateCartItem, sessionID, err)
		}
		return affected, nil
	}

	affected, err := s.repo.UpdateItemQuantity(ctx, sessionID, productID, quantity)
	if err != nil {
		return 0, s.fail(ctx, OpUpdateCartItem, sessionID, err)
	}

	return affected, nil
}

// RemoveFromCart deletes the product's line. A missing line is not an error.
func (s *Cart) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (int64, error) {
	if sessionID == "" {
		return 0, invalid(OpRemoveFromCart, "session id is required")
	}

	removed, err := s.repo.DeleteItem(ctx, sessionID, productID)
	if err != nil {
		return 0, s.fail(ctx, OpRemoveFromCart, sessionID, err)
	}

	return removed, nil
}

// ClearCart deletes all lines and keeps the cart. found is false when the session has no cart,
// in which case nothing is created.
func (s *Cart) ClearCart(ctx context.Context, sessionID string) (removed int64, found bool, err error) {
	if sessionID == "" {
		return 0, false, invalid(OpClearCart, "session id is required")
	}

	removed, err = s.repo.ClearCart(ctx, sessionID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, s.fail(ctx, OpClearCart, sessionID, err)
	}

	return removed, true, nil
}

func (s *Cart) fail(ctx context.Context, op Op, sessionID string, err error) error {
	if errors.Is(err, domain.ErrCartNotFound) {
		s.logger.InfoContext(ctx, "cart not found",
			slog.String("op", string(op)),
			slog.String("session_id", sessionID))
		return &OperationError{Op: op, Kind: domain.ErrCartNotFound}
	}

	s.logger.ErrorContext(ctx, "cart operation failed",
		slog.String("op", string(op)),
		slog.String("session_id", sessionID),
		slog.Any("err", err))

	return &OperationError{Op: op, Kind: domain.ErrStorage}
}

func invalid(op Op, detail string) error {
	return &OperationError{Op: op, Kind: domain.ErrInvalidArgument, Detail: detail}
}

func validateNewItem(item domain.NewCartItem) error {
	switch {
	case item.Quantity < 0:
		return fmt.Errorf("quantity must be positive")
	case item.Quantity > domain.MaxItemQuantity:
		return fmt.Errorf("quantity must not exceed %d", domain.MaxItemQuantity)
	case item.Title == "":
		return fmt.Errorf("title is required")
	case item.Price.Amount.IsNegative():
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

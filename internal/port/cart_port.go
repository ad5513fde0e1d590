package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CartRepository persists carts keyed by session token.
// Methods that mutate an existing cart return domain.ErrCartNotFound when the session has none.
type CartRepository interface {
	// GetCart returns the session's cart, creating an empty one when absent.
	GetCart(ctx context.Context, sessionID string) (domain.Cart, error)
	FindCart(ctx context.Context, sessionID string) (domain.Cart, error)
	// AddItem creates the cart if needed and inserts the line or increments its quantity.
	AddItem(ctx context.Context, sessionID string, item domain.NewCartItem) (domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, sessionID string, productID int64, quantity int32) (int64, error)
	DeleteItem(ctx context.Context, sessionID string, productID int64) (int64, error)
	ClearCart(ctx context.Context, sessionID string) (int64, error)
}

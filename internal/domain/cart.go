package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID
	SessionID string
	Items     []CartItem

	CreatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID int64
	Title     string
	Price     Money
	Image     string
	Quantity  int32

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Total is the line total: unit price times quantity.
func (i CartItem) Total() Money {
	return i.Price.Mul(i.Quantity)
}

// MaxItemQuantity caps the quantity a single add or update may request.
const MaxItemQuantity = 9999

// NewCartItem is the product snapshot taken from the catalog when a product is added.
type NewCartItem struct {
	ProductID int64
	Title     string
	Price     Money
	Image     string
	Quantity  int32
}

// ItemsTotal sums price * quantity across items.
func ItemsTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total().Amount)
	}
	return total
}

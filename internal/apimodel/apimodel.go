// Package apimodel holds the JSON bodies of the storefront HTTP API, shared by the server and its clients.
package apimodel

import (
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeCartNotFound    = "CART_NOT_FOUND"
	CodeNotFound        = "NOT_FOUND"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL"
)

// CartItemJSON is the wire form of a cart line.
type CartItemJSON struct {
	ID        uuid.UUID       `json:"id"`
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Image     string          `json:"image"`
	Quantity  int32           `json:"quantity"`
}

type CartJSON struct {
	Items []CartItemJSON  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddItemRequest struct {
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int32           `json:"quantity,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type UpdatedJSON struct {
	Updated int64 `json:"updated"`
}

// RemovedJSON carries a null count when clearing found no cart.
type RemovedJSON struct {
	Removed *int64 `json:"removed"`
}

type ErrorJSON struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ToCartItemJSON(item domain.CartItem) CartItemJSON {
	return CartItemJSON{
		ID:        item.ID,
		ProductID: item.ProductID,
		Title:     item.Title,
		Price:     item.Price.Amount,
		Currency:  item.Price.Currency.String(),
		Image:     item.Image,
		Quantity:  item.Quantity,
	}
}

func ToCartJSON(items []domain.CartItem) CartJSON {
	out := make([]CartItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, ToCartItemJSON(item))
	}

	return CartJSON{
		Items: out,
		Total: domain.ItemsTotal(items),
	}
}

// Domain converts back to a cart line. An unknown currency code yields the zero unit.
func (j CartItemJSON) Domain() domain.CartItem {
	unit, _ := currency.ParseISO(j.Currency)

	return domain.CartItem{
		ID:        j.ID,
		ProductID: j.ProductID,
		Title:     j.Title,
		Price:     domain.Money{Amount: j.Price, Currency: unit},
		Image:     j.Image,
		Quantity:  j.Quantity,
	}
}

func (r AddItemRequest) Domain() domain.NewCartItem {
	return domain.NewCartItem{
		ProductID: r.ProductID,
		Title:     r.Title,
		Price:     domain.Money{Amount: r.Price},
		Image:     r.Image,
		Quantity:  r.Quantity,
	}
}

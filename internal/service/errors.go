package service

import (
	"errors"

	"github.com/nikolayk812/storefront/internal/domain"
)

type Op string

const (
	OpGetCart        Op = "get_cart"
	OpAddToCart      Op = "add_to_cart"
	OpUpdateCartItem Op = "update_cart_item"
	OpRemoveFromCart Op = "remove_from_cart"
	OpClearCart      Op = "clear_cart"
)

var opMessages = map[Op]string{
	OpGetCart:        "could not retrieve the cart",
	OpAddToCart:      "could not add the product to the cart",
	OpUpdateCartItem: "could not update the product in the cart",
	OpRemoveFromCart: "could not remove the product from the cart",
	OpClearCart:      "could not empty the cart",
}

// OperationError is returned by every cart operation that fails.
// Kind is one of domain.ErrStorage, domain.ErrCartNotFound or domain.ErrInvalidArgument;
// the underlying storage error is logged and never carried.
type OperationError struct {
	Op     Op
	Kind   error
	Detail string
}

func (e *OperationError) Error() string {
	switch {
	case errors.Is(e.Kind, domain.ErrCartNotFound):
		return domain.ErrCartNotFound.Error()
	case errors.Is(e.Kind, domain.ErrInvalidArgument) && e.Detail != "":
		return e.Detail
	}

	if msg, ok := opMessages[e.Op]; ok {
		return msg
	}
	return "cart operation failed"
}

func (e *OperationError) Unwrap() error {
	return e.Kind
}

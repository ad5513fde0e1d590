package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Mul returns the money multiplied by a quantity, keeping the currency.
func (m Money) Mul(quantity int32) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt32(quantity)),
		Currency: m.Currency,
	}
}

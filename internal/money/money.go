// Package money implements exact fixed-point monetary values. Amounts are
// always held in the minor unit of their currency (cents for EUR).
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when values of different currencies are combined.
var ErrCurrencyMismatch = errors.New("currency_mismatch")

// Money is an amount in minor units of a currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New returns a Money value.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Add returns m + o. Both must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", o.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}

// Subtract returns m - o. Both must share a currency.
func (m Money) Subtract(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("subtract %s from %s: %w", o.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount - o.Amount, Currency: m.Currency}, nil
}

// Negate flips the sign of the amount.
func (m Money) Negate() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Amount == 0 }
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Equal reports value equality.
func (m Money) Equal(o Money) bool {
	return m.Amount == o.Amount && m.Currency == o.Currency
}

// Decimal returns the amount in major units, assuming two minor digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

// String formats the value as "238.00 EUR".
func (m Money) String() string {
	return m.Decimal().StringFixed(2) + " " + m.Currency
}

// round rounds half away from zero to an integer number of minor units.
// This is the only rounding rule used by the package.
func round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

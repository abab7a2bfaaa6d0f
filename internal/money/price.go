package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind tells whether a Price amount includes tax.
type Kind string

const (
	Net   Kind = "net"
	Gross Kind = "gross"
)

var hundred = decimal.NewFromInt(100)

// Price is a Money carrying a tax rate (in percent, 19 means 19%) and the
// information whether its amount is net or gross.
type Price struct {
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	Kind     Kind            `json:"kind"`
}

// NewPrice returns a Price. An empty kind is treated as net.
func NewPrice(amount int64, currency string, kind Kind, rate decimal.Decimal) Price {
	if kind == "" {
		kind = Net
	}
	return Price{Amount: amount, Currency: currency, Rate: rate, Kind: kind}
}

func (p Price) factor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(p.Rate.Div(hundred))
}

// AsNet converts the price to its net kind, rounding to the minor unit.
func (p Price) AsNet() Price {
	if p.Kind != Gross {
		p.Kind = Net
		return p
	}
	p.Amount = round(decimal.NewFromInt(p.Amount).Div(p.factor()))
	p.Kind = Net
	return p
}

// AsGross converts the price to its gross kind, rounding to the minor unit.
func (p Price) AsGross() Price {
	if p.Kind == Gross {
		return p
	}
	p.Amount = round(decimal.NewFromInt(p.Amount).Mul(p.factor()))
	p.Kind = Gross
	return p
}

// Net returns the net amount.
func (p Price) Net() Money {
	return Money{Amount: p.AsNet().Amount, Currency: p.Currency}
}

// Gross returns the gross amount.
func (p Price) Gross() Money {
	return Money{Amount: p.AsGross().Amount, Currency: p.Currency}
}

// Tax returns gross - net.
func (p Price) Tax() Money {
	return Money{Amount: p.AsGross().Amount - p.AsNet().Amount, Currency: p.Currency}
}

// Multiply scales the amount by q. The product is rounded once, after scaling.
func (p Price) Multiply(q decimal.Decimal) Price {
	p.Amount = round(decimal.NewFromInt(p.Amount).Mul(q))
	return p
}

// Add sums two prices of the same currency and rate. The result has the kind
// of p; o is converted if needed.
func (p Price) Add(o Price) (Price, error) {
	if err := p.compatible(o); err != nil {
		return Price{}, err
	}
	p.Amount += o.as(p.Kind).Amount
	return p, nil
}

// Subtract is the inverse of Add.
func (p Price) Subtract(o Price) (Price, error) {
	if err := p.compatible(o); err != nil {
		return Price{}, err
	}
	p.Amount -= o.as(p.Kind).Amount
	return p, nil
}

// Negate flips the sign of the amount.
func (p Price) Negate() Price {
	p.Amount = -p.Amount
	return p
}

func (p Price) IsZero() bool { return p.Amount == 0 }

// Equal reports value equality; rates are compared numerically.
func (p Price) Equal(o Price) bool {
	return p.Amount == o.Amount && p.Currency == o.Currency && p.Rate.Equal(o.Rate) && p.kind() == o.kind()
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s @%s%%", Money{Amount: p.Amount, Currency: p.Currency}, p.kind(), p.Rate.String())
}

func (p Price) kind() Kind {
	if p.Kind == "" {
		return Net
	}
	return p.Kind
}

func (p Price) as(k Kind) Price {
	if k == Gross {
		return p.AsGross()
	}
	return p.AsNet()
}

func (p Price) compatible(o Price) error {
	if p.Currency != o.Currency {
		return fmt.Errorf("combine %s with %s: %w", o.Currency, p.Currency, ErrCurrencyMismatch)
	}
	if !p.Rate.Equal(o.Rate) {
		return fmt.Errorf("combine rate %s with %s: rates differ", o.Rate, p.Rate)
	}
	return nil
}

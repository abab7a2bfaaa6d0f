package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/money"
	"github.com/shopspring/decimal"
)

// InvoicePosition is a priced, taxed line item. The price is final at the
// moment the position is created. A position without InvoiceID is pending.
type InvoicePosition struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// InvoiceID is nil while the position has not been billed yet
	InvoiceID *uint `gorm:"index" json:"invoice_id,omitempty"`
	UserID    uint  `gorm:"index;not null" json:"user_id" validate:"required"`

	Description string          `gorm:"size:500;not null" json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"`

	// Unit price
	Amount         int64           `gorm:"not null" json:"amount"`
	AmountCurrency string          `gorm:"size:3;not null" json:"amount_currency" validate:"required,currency"`
	AmountType     money.Kind      `gorm:"size:5;not null;default:'net'" json:"amount_type" validate:"omitempty,oneof=net gross"`
	AmountRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"amount_rate"`

	Tags []string `gorm:"serializer:json" json:"tags,omitempty"`
}

// IsPending reports whether the position is not attached to an invoice.
func (p *InvoicePosition) IsPending() bool {
	return p.InvoiceID == nil
}

// UnitPrice returns the price of a single unit.
func (p *InvoicePosition) UnitPrice() money.Price {
	return money.NewPrice(p.Amount, p.AmountCurrency, p.AmountType, p.AmountRate)
}

// SetUnitPrice copies price into the amount columns.
func (p *InvoicePosition) SetUnitPrice(price money.Price) {
	p.Amount = price.Amount
	p.AmountCurrency = price.Currency
	p.AmountType = price.Kind
	p.AmountRate = price.Rate
}

// Total returns unit price times quantity.
func (p *InvoicePosition) Total() money.Price {
	return p.UnitPrice().Multiply(p.Quantity)
}

// HasTag reports whether the position carries tag.
func (p *InvoicePosition) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Copy returns a detached copy without identity or timestamps.
func (p *InvoicePosition) Copy() InvoicePosition {
	c := *p
	c.ID = 0
	c.InvoiceID = nil
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	c.Tags = append([]string(nil), p.Tags...)
	return c
}

package models

import (
	"time"

	"github.com/diewo77/go-billing/internal/money"
)

// Payment methods used by the core. Others may be stored freely.
const (
	PaymentMethodUser     = "user"
	PaymentMethodTransfer = "transfer"
)

// Payment is a settlement attached to an invoice. Amounts are gross.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`

	Amount         int64     `gorm:"not null" json:"amount"`
	AmountCurrency string    `gorm:"size:3;not null" json:"amount_currency" validate:"required,currency"`
	Date           time.Time `gorm:"not null" json:"date"`
	Method         string    `gorm:"size:50;not null" json:"method" validate:"required,max=50"`
	Reference      string    `gorm:"size:36;index" json:"reference,omitempty"`
}

// Money returns the paid amount.
func (p *Payment) Money() money.Money {
	return money.New(p.Amount, p.AmountCurrency)
}

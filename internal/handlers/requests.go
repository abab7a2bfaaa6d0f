package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/money"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/internal/validation"
	"github.com/shopspring/decimal"
)

type priceRequest struct {
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency" validate:"required,currency"`
	Type     money.Kind      `json:"type" validate:"omitempty,oneof=net gross"`
	Rate     decimal.Decimal `json:"rate"`
}

func (p priceRequest) price() money.Price {
	kind := p.Type
	if kind == "" {
		kind = money.Net
	}
	return money.NewPrice(p.Amount, p.Currency, kind, p.Rate)
}

type positionRequest struct {
	UserID      uint            `json:"user_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       priceRequest    `json:"price"`
	Tags        []string        `json:"tags,omitempty"`
}

func (p *positionRequest) Bind(_ *http.Request) error {
	return validation.Struct(p)
}

func (p *positionRequest) position() models.InvoicePosition {
	pos := models.InvoicePosition{
		UserID:      p.UserID,
		Description: p.Description,
		Quantity:    p.Quantity,
		Tags:        p.Tags,
	}
	pos.SetUnitPrice(p.Price.price())
	return pos
}

type createInvoiceRequest struct {
	UserID    uint              `json:"user_id" validate:"required"`
	OwnerID   *uint             `json:"owner_id,omitempty"`
	Status    models.Status     `json:"status,omitempty"`
	Date      *time.Time        `json:"date,omitempty"`
	Letter    string            `json:"letter,omitempty"`
	Terms     string            `json:"terms,omitempty"`
	Note      string            `json:"note,omitempty"`
	Deposit   *priceRequest     `json:"deposit,omitempty"`
	Finalizes []uint            `json:"finalizes,omitempty"`
	Positions []positionRequest `json:"positions,omitempty"`
}

func (c *createInvoiceRequest) Bind(_ *http.Request) error {
	return validation.Struct(c)
}

func (c *createInvoiceRequest) invoice() (*models.Invoice, []models.InvoicePosition) {
	inv := &models.Invoice{
		UserID:  c.UserID,
		OwnerID: c.OwnerID,
		Status:  c.Status,
		Letter:  c.Letter,
		Terms:   c.Terms,
		Note:    c.Note,
	}
	if c.Date != nil {
		inv.Date = *c.Date
	}
	if c.Deposit != nil {
		inv.SetDepositPrice(c.Deposit.price())
	}
	for _, id := range c.Finalizes {
		inv.Finalizes = append(inv.Finalizes, models.Invoice{ID: id})
	}
	positions := make([]models.InvoicePosition, 0, len(c.Positions))
	for i := range c.Positions {
		positions = append(positions, c.Positions[i].position())
	}
	return inv, positions
}

type statusRequest struct {
	Status models.Status `json:"status" validate:"required"`
}

func (s *statusRequest) Bind(_ *http.Request) error {
	return validation.Struct(s)
}

type paymentRequest struct {
	Amount    int64      `json:"amount" validate:"required"`
	Currency  string     `json:"currency" validate:"required,currency"`
	Method    string     `json:"method,omitempty" validate:"omitempty,max=50"`
	Reference string     `json:"reference,omitempty" validate:"omitempty,max=36"`
	Date      *time.Time `json:"date,omitempty"`
}

func (p *paymentRequest) Bind(_ *http.Request) error {
	return validation.Struct(p)
}

func (p *paymentRequest) payment() *models.Payment {
	pay := &models.Payment{
		Amount:         p.Amount,
		AmountCurrency: p.Currency,
		Method:         p.Method,
		Reference:      p.Reference,
	}
	if p.Date != nil {
		pay.Date = *p.Date
	}
	return pay
}

type updateInvoiceRequest struct {
	services.InvoiceChanges
}

func (u *updateInvoiceRequest) Bind(_ *http.Request) error { return nil }

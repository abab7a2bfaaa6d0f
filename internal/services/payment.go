package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pay attaches p to the invoice. Payments are accepted on locked invoices.
func (s *InvoiceService) Pay(ctx context.Context, inv *models.Invoice, p *models.Payment) error {
	if inv.IsPaidInFull() {
		return ErrAlreadyPaidInFull
	}
	p.ID = 0
	p.InvoiceID = inv.ID
	p.UserID = inv.UserID
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	if p.Method == "" {
		p.Method = models.PaymentMethodUser
	}
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
	if err := validation.Struct(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	inv.Payments = append(inv.Payments, *p)
	s.log.Info().Uint("invoice_id", inv.ID).Int64("amount", p.Amount).Str("currency", p.AmountCurrency).Msg("payment recorded")
	return nil
}

// PayInFull settles every currency still owed with one payment each and
// marks the invoice paid. Nothing is kept if a payment or the status write
// fails. The paid mail follows the rules of SetStatus.
func (s *InvoiceService) PayInFull(ctx context.Context, inv *models.Invoice) error {
	if inv.IsPaidInFull() {
		return ErrAlreadyPaidInFull
	}
	prev := inv.Status
	if s.inTx() {
		if err := s.settle(ctx, inv); err != nil {
			return err
		}
	} else {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.WithTx(tx).settle(ctx, inv)
		})
		if err != nil {
			return err
		}
	}
	if prev != models.StatusPaid {
		return s.notifyPaid(ctx, inv)
	}
	return nil
}

// settle records the compensating payments and writes the paid status
// without mailing. It must run on a transaction; inv is restored when a
// step fails.
func (s *InvoiceService) settle(ctx context.Context, inv *models.Invoice) error {
	payments := len(inv.Payments)
	for _, m := range inv.Balance().Values() {
		if !m.IsNegative() {
			continue
		}
		p := &models.Payment{
			Amount:         m.Negate().Amount,
			AmountCurrency: m.Currency,
			Method:         models.PaymentMethodUser,
		}
		if err := s.Pay(ctx, inv, p); err != nil {
			inv.Payments = inv.Payments[:payments]
			return err
		}
	}
	if inv.Status == models.StatusPaid {
		return nil
	}
	if err := s.writeStatus(ctx, inv, models.StatusPaid); err != nil {
		inv.Payments = inv.Payments[:payments]
		return err
	}
	return nil
}

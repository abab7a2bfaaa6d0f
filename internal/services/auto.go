package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/samber/lo"
)

// NextAutoInvoiceDate returns when the user becomes due again. ok is false
// for users never auto invoiced, who are due right away.
func NextAutoInvoiceDate(u *models.User) (next time.Time, ok bool, err error) {
	var months, years int
	switch u.AutoInvoiceFrequency {
	case models.FrequencyMonthly:
		months = 1
	case models.FrequencyYearly:
		years = 1
	default:
		return time.Time{}, false, fmt.Errorf("%q: %w", u.AutoInvoiceFrequency, ErrUnsupportedFrequency)
	}
	if u.AutoInvoicedAt == nil {
		return time.Time{}, false, nil
	}
	return u.AutoInvoicedAt.AddDate(years, months, 0), true, nil
}

// MustAutoInvoice reports whether an invoice should be generated for u now.
// Users without frequency are never due; unknown frequencies fail.
func (s *InvoiceService) MustAutoInvoice(ctx context.Context, u *models.User) (bool, error) {
	if u.AutoInvoiceFrequency == "" {
		s.log.Warn().Uint("user_id", u.ID).Msg("auto invoicing enabled without frequency")
		return false, nil
	}
	next, ok, err := NextAutoInvoiceDate(u)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	if s.now().Before(next) {
		return false, nil
	}
	var pending int64
	if err := s.db.WithContext(ctx).Model(&models.InvoicePosition{}).
		Where("user_id = ? AND invoice_id IS NULL", u.ID).
		Count(&pending).Error; err != nil {
		return false, err
	}
	return pending > 0, nil
}

// GenerateFromPending creates an invoice holding every pending position of u
// and stamps the user's auto invoice date. It returns nil without pending
// positions.
func (s *InvoiceService) GenerateFromPending(ctx context.Context, u *models.User) (*models.Invoice, error) {
	pending, err := s.PendingPositions(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	inv := &models.Invoice{UserID: u.ID}
	if err := s.CreateInvoiceWithPositions(ctx, inv, nil); err != nil {
		return nil, err
	}

	ids := lo.Map(pending, func(p models.InvoicePosition, _ int) uint { return p.ID })
	if err := s.db.WithContext(ctx).Model(&models.InvoicePosition{}).
		Where("id IN ?", ids).
		Update("invoice_id", inv.ID).Error; err != nil {
		return nil, fmt.Errorf("attach positions: %w", err)
	}
	for i := range pending {
		pending[i].InvoiceID = &inv.ID
	}
	inv.Positions = pending

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.User{ID: u.ID}).Update("auto_invoiced_at", now).Error; err != nil {
		return nil, fmt.Errorf("stamp user: %w", err)
	}
	u.AutoInvoicedAt = &now
	return inv, nil
}

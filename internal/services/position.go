package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-billing/internal/models"
	"gorm.io/gorm"
)

// CreatePendingPosition stores a position not yet attached to any invoice.
func (s *InvoiceService) CreatePendingPosition(ctx context.Context, p *models.InvoicePosition) error {
	p.ID = 0
	p.InvoiceID = nil
	if err := s.validatePosition(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).First(&models.User{}, p.UserID).Error; err != nil {
		return fmt.Errorf("load user %d: %w", p.UserID, err)
	}
	return s.db.WithContext(ctx).Create(p).Error
}

// AddPosition attaches a new position to the invoice. Locked invoices are
// rejected.
func (s *InvoiceService) AddPosition(ctx context.Context, inv *models.Invoice, p *models.InvoicePosition) error {
	if inv.IsLocked {
		return ErrInvoiceLocked
	}
	p.ID = 0
	p.InvoiceID = &inv.ID
	p.UserID = inv.UserID
	if err := s.validatePosition(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create position: %w", err)
	}
	inv.Positions = append(inv.Positions, *p)
	return nil
}

// RemovePosition deletes a position of the invoice. Locked invoices are
// rejected.
func (s *InvoiceService) RemovePosition(ctx context.Context, inv *models.Invoice, positionID uint) error {
	if inv.IsLocked {
		return ErrInvoiceLocked
	}
	res := s.db.WithContext(ctx).Where("invoice_id = ?", inv.ID).Delete(&models.InvoicePosition{}, positionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	for i := range inv.Positions {
		if inv.Positions[i].ID == positionID {
			inv.Positions = append(inv.Positions[:i], inv.Positions[i+1:]...)
			break
		}
	}
	return nil
}

// PendingPositions returns the unbilled positions of a user in creation order.
func (s *InvoiceService) PendingPositions(ctx context.Context, userID uint) ([]models.InvoicePosition, error) {
	var positions []models.InvoicePosition
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND invoice_id IS NULL", userID).
		Order("id").
		Find(&positions).Error
	return positions, err
}

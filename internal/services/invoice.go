package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/document"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/mailer"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/internal/validation"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyPaidInFull    = errors.New("already_paid_in_full")
	ErrUnsupportedFrequency = errors.New("unsupported_frequency")
	ErrInvoiceLocked        = errors.New("invoice_locked")
	ErrNotSendable          = errors.New("invoice_not_sendable")
	ErrNotDeposit           = errors.New("not_a_deposit_invoice")
)

// InvoiceService implements the invoice operations. Bind it to a
// transaction with WithTx; unbound calls open their own transactions.
type InvoiceService struct {
	db       *gorm.DB
	settings config.Settings
	numbers  *numbering.Generator
	mailer   mailer.Mailer
	renderer document.Renderer
	now      func() time.Time
	log      zerolog.Logger
}

func NewInvoiceService(db *gorm.DB, settings config.Settings, numbers *numbering.Generator, m mailer.Mailer, r document.Renderer) *InvoiceService {
	return &InvoiceService{
		db:       db,
		settings: settings,
		numbers:  numbers,
		mailer:   m,
		renderer: r,
		now:      time.Now,
		log:      logger.WithComponent("invoices"),
	}
}

// WithTx returns a copy of the service running on tx.
func (s *InvoiceService) WithTx(tx *gorm.DB) *InvoiceService {
	c := *s
	c.db = tx
	return &c
}

// WithClock returns a copy of the service using now as time source.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	c := *s
	c.now = now
	return &c
}

// DB returns the handle the service runs on.
func (s *InvoiceService) DB() *gorm.DB { return s.db }

// Settings returns the injected billing settings.
func (s *InvoiceService) Settings() config.Settings { return s.settings }

// Get loads an invoice with everything the computations need.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_positions.id") }).
		Preload("Payments").
		Preload("Finalizes.Payments").
		Preload("User.BillingAddress").
		Preload("Owner.Address").
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvoiceWithPositions validates inv and its positions and stores them
// in one transaction. Missing snapshot fields are copied from the user and
// invoices outside draft get their number. inv.Finalizes only needs the ids
// of the finalized deposit invoices.
func (s *InvoiceService) CreateInvoiceWithPositions(ctx context.Context, inv *models.Invoice, positions []models.InvoicePosition) error {
	if inv.Status == "" {
		inv.Status = s.settings.Status()
	}
	if inv.Date.IsZero() {
		inv.Date = s.now()
	}
	if err := inv.Validate(); err != nil {
		return err
	}
	for i := range positions {
		positions[i].ID = 0
		positions[i].UserID = inv.UserID
		if err := s.validatePosition(&positions[i]); err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
	}

	finalizes := lo.Map(inv.Finalizes, func(f models.Invoice, _ int) uint { return f.ID })
	inv.Finalizes, inv.Positions, inv.Payments = nil, nil, nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc := s.WithTx(tx)

		var user models.User
		if err := tx.Preload("BillingAddress").First(&user, inv.UserID).Error; err != nil {
			return fmt.Errorf("load user %d: %w", inv.UserID, err)
		}
		svc.snapshot(inv, &user)

		if inv.Status != models.StatusDraft {
			if err := svc.assignNumber(ctx, inv); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i := range positions {
			positions[i].InvoiceID = &inv.ID
			if err := tx.Create(&positions[i]).Error; err != nil {
				return fmt.Errorf("create position: %w", err)
			}
		}
		inv.Positions = positions
		inv.User = &user

		if len(finalizes) > 0 {
			var deposits []models.Invoice
			if err := tx.Find(&deposits, finalizes).Error; err != nil {
				return err
			}
			if len(deposits) != len(lo.Uniq(finalizes)) {
				return fmt.Errorf("finalized invoices %v: %w", finalizes, gorm.ErrRecordNotFound)
			}
			for i := range deposits {
				if !deposits[i].IsDeposit() {
					return fmt.Errorf("invoice %d: %w", deposits[i].ID, ErrNotDeposit)
				}
			}
			if err := tx.Model(inv).Association("Finalizes").Append(&deposits); err != nil {
				return fmt.Errorf("link finalized invoices: %w", err)
			}
			if err := tx.Preload("Payments").Find(&deposits, finalizes).Error; err != nil {
				return err
			}
			inv.Finalizes = deposits
		}

		svc.log.Info().Uint("invoice_id", inv.ID).Str("number", inv.Number).Uint("user_id", inv.UserID).Msg("invoice created")
		return nil
	})
}

// snapshot copies the recipient details onto the invoice unless set.
func (s *InvoiceService) snapshot(inv *models.Invoice, u *models.User) {
	if inv.AddressRecipient == "" && inv.AddressStreet == "" {
		inv.CopyAddress(u.BillingAddress)
	}
	if inv.UserVATRegNo == "" {
		inv.UserVATRegNo = u.VATRegNo
	}
	if inv.TaxType == "" {
		inv.TaxType = u.TaxType
	}
	if inv.Letter == "" {
		inv.Letter = s.settings.ResolveLetter(config.TextEntity, u, inv)
	}
	if inv.Terms == "" {
		inv.Terms = s.settings.ResolveTerms(config.TextEntity, u, inv)
	}
}

// assignNumber gives inv the next reference number unless it has one.
func (s *InvoiceService) assignNumber(ctx context.Context, inv *models.Invoice) error {
	if inv.Number != "" {
		return nil
	}
	var numbers []string
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("number <> ''").Pluck("number", &numbers).Error; err != nil {
		return fmt.Errorf("load numbers: %w", err)
	}
	date := inv.Date
	if date.IsZero() {
		date = s.now()
	}
	n, err := s.numbers.Next(numbers, date)
	if err != nil {
		return err
	}
	inv.Number = n
	return nil
}

// InvoiceChanges holds editable invoice fields; nil fields stay unchanged.
type InvoiceChanges struct {
	Date   *time.Time `json:"date,omitempty"`
	Letter *string    `json:"letter,omitempty"`
	Terms  *string    `json:"terms,omitempty"`
	Note   *string    `json:"note,omitempty"`
}

// Update edits the invoice fields. Locked invoices are rejected.
func (s *InvoiceService) Update(ctx context.Context, inv *models.Invoice, ch InvoiceChanges) error {
	if inv.IsLocked {
		return ErrInvoiceLocked
	}
	updates := map[string]any{}
	if ch.Date != nil {
		inv.Date = *ch.Date
		updates["date"] = inv.Date
	}
	if ch.Letter != nil {
		inv.Letter = *ch.Letter
		updates["letter"] = inv.Letter
	}
	if ch.Terms != nil {
		inv.Terms = *ch.Terms
		updates["terms"] = inv.Terms
	}
	if ch.Note != nil {
		inv.Note = *ch.Note
		updates["note"] = inv.Note
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Invoice{ID: inv.ID}).Updates(updates).Error
}

// DeleteInvoiceCascade removes the invoice with its positions, payments and
// finalization links.
func (s *InvoiceService) DeleteInvoiceCascade(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoicePosition{}).Error; err != nil {
			return fmt.Errorf("delete positions: %w", err)
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := tx.Exec("DELETE FROM invoice_finalizations WHERE final_invoice_id = ? OR deposit_invoice_id = ?", id, id).Error; err != nil {
			return fmt.Errorf("delete finalizations: %w", err)
		}
		if err := tx.Delete(&inv).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		s.log.Info().Uint("invoice_id", id).Msg("invoice deleted")
		return nil
	})
}

// Duplicate stores a copy of inv with fresh positions and number in status
// created. Payments and finalization links are not copied.
func (s *InvoiceService) Duplicate(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	dup := *inv
	dup.ID = 0
	dup.CreatedAt, dup.UpdatedAt = time.Time{}, time.Time{}
	dup.Number = ""
	dup.Status = models.StatusCreated
	dup.Date = s.now()
	dup.IsLocked = false
	dup.User, dup.Owner = nil, nil
	dup.Payments, dup.Finalizes, dup.Positions = nil, nil, nil

	positions := lo.Map(inv.Positions, func(p models.InvoicePosition, _ int) models.InvoicePosition {
		return p.Copy()
	})
	if err := s.CreateInvoiceWithPositions(ctx, &dup, positions); err != nil {
		return nil, err
	}
	return &dup, nil
}

// ExportPDF renders the invoice document. It returns the file name with the
// content.
func (s *InvoiceService) ExportPDF(ctx context.Context, inv *models.Invoice) ([]byte, string, error) {
	issuer := inv.Owner
	if issuer == nil {
		issuer = s.settings.Company()
	}
	doc := document.FromInvoice(inv, issuer)
	b, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice %d: %w", inv.ID, err)
	}
	return b, doc.Filename(), nil
}

// recipient returns the invoice user, loading it when needed.
func (s *InvoiceService) recipient(ctx context.Context, inv *models.Invoice) (*models.User, error) {
	if inv.User != nil {
		return inv.User, nil
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, inv.UserID).Error; err != nil {
		return nil, err
	}
	inv.User = &u
	return &u, nil
}

func (s *InvoiceService) validatePosition(p *models.InvoicePosition) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	v := validation.Violations{}
	validation.PositiveQuantity("quantity", p.Quantity, v)
	if !v.Empty() {
		return fmt.Errorf("%w: %s", validation.ErrInvalidQuantity, v.Error())
	}
	return nil
}

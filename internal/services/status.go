package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/mailer"
	"github.com/diewo77/go-billing/internal/models"
	"gorm.io/gorm"
)

// ErrPaidMailFailed is returned when the invoice was stored as paid but the
// paid notification could not be delivered.
var ErrPaidMailFailed = errors.New("paid_mail_failed")

// SetStatus writes st. Side effects only run when the status changes:
// leaving draft assigns the number, entering sent locks the invoice when
// configured and entering paid notifies the recipient when configured. The
// paid mail goes out after the commit; on a service bound with WithTx it
// goes out before the caller commits.
func (s *InvoiceService) SetStatus(ctx context.Context, inv *models.Invoice, st models.Status) error {
	if !st.Valid() {
		return fmt.Errorf("%q: %w", st, models.ErrInvalidStatus)
	}
	if st == inv.Status {
		return nil
	}
	var err error
	if s.inTx() {
		err = s.writeStatus(ctx, inv, st)
	} else {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.WithTx(tx).writeStatus(ctx, inv, st)
		})
	}
	if err != nil {
		return err
	}
	if st == models.StatusPaid {
		return s.notifyPaid(ctx, inv)
	}
	return nil
}

// writeStatus stores st with its side effects on storage. It must run on a
// transaction. inv is restored when the write fails.
func (s *InvoiceService) writeStatus(ctx context.Context, inv *models.Invoice, st models.Status) error {
	prev, number, locked := inv.Status, inv.Number, inv.IsLocked
	inv.Status = st

	err := func() error {
		if prev == models.StatusDraft {
			if err := s.assignNumber(ctx, inv); err != nil {
				return err
			}
		}
		if st == models.StatusSent && s.settings.LockOnSend {
			inv.IsLocked = true
		}
		err := s.db.WithContext(ctx).Model(&models.Invoice{ID: inv.ID}).Updates(map[string]any{
			"status":    inv.Status,
			"number":    inv.Number,
			"is_locked": inv.IsLocked,
		}).Error
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	}()
	if err != nil {
		inv.Status, inv.Number, inv.IsLocked = prev, number, locked
		return err
	}
	s.log.Info().Uint("invoice_id", inv.ID).Str("from", string(prev)).Str("to", string(st)).Msg("status changed")
	return nil
}

// inTx reports whether the service is bound to an open transaction.
func (s *InvoiceService) inTx() bool {
	committer, ok := s.db.Statement.ConnPool.(gorm.TxCommitter)
	return ok && committer != nil
}

func (s *InvoiceService) notifyPaid(ctx context.Context, inv *models.Invoice) error {
	if !s.settings.SendPaidMail {
		return nil
	}
	u, err := s.recipient(ctx, inv)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaidMailFailed, err)
	}
	if !u.IsNotified || u.Email == "" {
		s.log.Debug().Uint("invoice_id", inv.ID).Msg("recipient opted out, paid mail skipped")
		return nil
	}
	err = s.mailer.Deliver(ctx, mailer.TemplateInvoicePaid, mailer.Message{
		To:   []string{u.Email},
		BCC:  s.settings.BCC,
		Data: s.mailData(inv, u),
	})
	if err != nil {
		s.log.Error().Err(err).Uint("invoice_id", inv.ID).Msg("paid mail failed")
		return fmt.Errorf("%w: %v", ErrPaidMailFailed, err)
	}
	return nil
}

// Send marks the invoice sent and mails it with the PDF attached. A mail
// failure keeps the previous status.
func (s *InvoiceService) Send(ctx context.Context, inv *models.Invoice) error {
	u, err := s.recipient(ctx, inv)
	if err != nil {
		return err
	}
	if !inv.IsSendable(u) {
		return ErrNotSendable
	}
	pdf, name, err := s.ExportPDF(ctx, inv)
	if err != nil {
		return err
	}
	prev, number, locked := inv.Status, inv.Number, inv.IsLocked
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.Status != models.StatusSent {
			if err := s.WithTx(tx).writeStatus(ctx, inv, models.StatusSent); err != nil {
				return err
			}
		}
		return s.mailer.Deliver(ctx, mailer.TemplateInvoiceSent, mailer.Message{
			To:   []string{u.Email},
			BCC:  s.settings.BCC,
			Data: s.mailData(inv, u),
			Attachments: []mailer.Attachment{
				{Name: name, ContentType: "application/pdf", Content: pdf},
			},
		})
	})
	if err != nil {
		inv.Status, inv.Number, inv.IsLocked = prev, number, locked
		return err
	}
	return nil
}

func (s *InvoiceService) mailData(inv *models.Invoice, u *models.User) mailer.Data {
	return mailer.Data{
		User:    u,
		Invoice: inv,
		Letter:  s.settings.ResolveLetter(config.TextMail, u, inv),
		Terms:   s.settings.ResolveTerms(config.TextMail, u, inv),
		Total:   inv.Worth().Gross().String(),
		Contact: s.settings.ContactBilling,
	}
}

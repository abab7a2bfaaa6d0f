// Package jobs runs the recurring billing jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Job is a unit of recurring work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// AutoInvoiceJob turns the pending positions of auto invoiced users into
// invoices. The whole run shares one transaction.
type AutoInvoiceJob struct {
	svc *services.InvoiceService
	log zerolog.Logger
}

func NewAutoInvoiceJob(svc *services.InvoiceService) *AutoInvoiceJob {
	return &AutoInvoiceJob{svc: svc, log: logger.WithComponent("jobs")}
}

func (j *AutoInvoiceJob) Name() string { return "auto_invoice" }

// Run generates the invoices of every due user. Any failure rolls back the
// invoices of all users and stops the run.
func (j *AutoInvoiceJob) Run(ctx context.Context) (err error) {
	if !j.svc.Settings().AutoInvoice {
		return nil
	}
	log := j.log.With().Str("job", j.Name()).Str("run_id", uuid.NewString()).Logger()

	tx := j.svc.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			tx.Rollback()
			log.Error().Err(err).Msg("run rolled back")
		}
	}()
	svc := j.svc.WithTx(tx)

	var users []models.User
	if err := tx.Preload("BillingAddress").Where("is_auto_invoiced = ?", true).Order("id").Find(&users).Error; err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	created := 0
	for i := range users {
		u := &users[i]
		due, err := svc.MustAutoInvoice(ctx, u)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
		if !due {
			continue
		}
		inv, err := svc.GenerateFromPending(ctx, u)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
		if inv != nil {
			created++
			log.Debug().Uint("user_id", u.ID).Str("number", inv.Number).Msg("invoice generated")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info().Int("users", len(users)).Int("invoices", created).Msg("run finished")
	return nil
}

// AutoSendJob mails every invoice still in status created. Each invoice is
// sent in its own transaction.
type AutoSendJob struct {
	svc *services.InvoiceService
	log zerolog.Logger
}

func NewAutoSendJob(svc *services.InvoiceService) *AutoSendJob {
	return &AutoSendJob{svc: svc, log: logger.WithComponent("jobs")}
}

func (j *AutoSendJob) Name() string { return "auto_send" }

// Run sends the invoices in id order. Invoices whose recipient cannot be
// mailed are skipped; the first failure aborts the rest of the run.
func (j *AutoSendJob) Run(ctx context.Context) error {
	if !j.svc.Settings().AutoSend {
		return nil
	}
	log := j.log.With().Str("job", j.Name()).Str("run_id", uuid.NewString()).Logger()

	var ids []uint
	if err := j.svc.DB().WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ?", models.StatusCreated).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}

	sent, skipped := 0, 0
	for _, id := range ids {
		ok, err := j.sendOne(ctx, id)
		if err != nil {
			log.Error().Err(err).Uint("invoice_id", id).Int("sent", sent).Msg("run aborted")
			return fmt.Errorf("invoice %d: %w", id, err)
		}
		if ok {
			sent++
		} else {
			skipped++
		}
	}
	log.Info().Int("sent", sent).Int("skipped", skipped).Msg("run finished")
	return nil
}

func (j *AutoSendJob) sendOne(ctx context.Context, id uint) (sent bool, err error) {
	tx := j.svc.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil || !sent {
			tx.Rollback()
		}
	}()
	svc := j.svc.WithTx(tx)

	inv, err := svc.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !inv.IsSendable(inv.User) {
		j.log.Debug().Uint("invoice_id", id).Msg("not sendable, skipped")
		return false, nil
	}
	if err := svc.Send(ctx, inv); err != nil {
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

package main

import (
	"fmt"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/document"
	"github.com/diewo77/go-billing/internal/jobs"
	"github.com/diewo77/go-billing/internal/mailer"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/internal/services"
	"gorm.io/gorm"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg *config.Config
	db  *gorm.DB
	svc *services.InvoiceService
}

func newApp(cfg *config.Config) (*app, error) {
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.App.Migrations {
		if err := db.Migrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	numbers, err := numbering.New(numbering.Format{
		Sort:     cfg.Billing.Number.Sort,
		Extract:  cfg.Billing.Number.Extract,
		Generate: cfg.Billing.Number.Generate,
	})
	if err != nil {
		return nil, err
	}
	svc := services.NewInvoiceService(gdb, cfg.Billing, numbers, mailer.New(cfg.Mail), document.NewPDFRenderer())
	return &app{cfg: cfg, db: gdb, svc: svc}, nil
}

// scheduler runs auto-invoice before auto-send.
func (a *app) scheduler() *jobs.Scheduler {
	return jobs.NewScheduler(a.cfg.Jobs.Interval, jobs.NewAutoInvoiceJob(a.svc), jobs.NewAutoSendJob(a.svc))
}

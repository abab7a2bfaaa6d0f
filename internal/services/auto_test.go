package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/models"
)

func TestMustAutoInvoice(t *testing.T) {
	svc, gdb, _ := newTestService(t, config.DefaultSettings())
	withPending := seedUser(t, gdb, "pending@example.com")
	p := newPosition(1000, "1")
	p.UserID = withPending.ID
	if err := svc.CreatePendingPosition(context.Background(), &p); err != nil {
		t.Fatalf("CreatePendingPosition() error = %v", err)
	}
	empty := seedUser(t, gdb, "empty@example.com")

	at := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name      string
		user      models.User
		frequency string
		invoiced  *time.Time
		want      bool
		wantErr   error
	}{
		{"no frequency", withPending, "", nil, false, nil},
		{"unsupported frequency", withPending, "weekly", nil, false, ErrUnsupportedFrequency},
		{"never invoiced", empty, models.FrequencyMonthly, nil, true, nil},
		{"not yet due", withPending, models.FrequencyMonthly, at(2026, 2, 15), false, nil},
		{"due with pending", withPending, models.FrequencyMonthly, at(2026, 1, 15), true, nil},
		{"due without pending", empty, models.FrequencyMonthly, at(2026, 1, 15), false, nil},
		{"yearly due today", withPending, models.FrequencyYearly, at(2025, 3, 1), true, nil},
		{"yearly not yet due", withPending, models.FrequencyYearly, at(2025, 6, 1), false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			u.AutoInvoiceFrequency = tt.frequency
			u.AutoInvoicedAt = tt.invoiced

			got, err := svc.MustAutoInvoice(context.Background(), &u)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MustAutoInvoice() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MustAutoInvoice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextAutoInvoiceDate(t *testing.T) {
	last := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	u := &models.User{AutoInvoiceFrequency: models.FrequencyYearly, AutoInvoicedAt: &last}

	next, ok, err := NextAutoInvoiceDate(u)
	if err != nil || !ok {
		t.Fatalf("NextAutoInvoiceDate() = %v, %v, %v", next, ok, err)
	}
	if want := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("NextAutoInvoiceDate() = %v, want %v", next, want)
	}
}

func TestGenerateFromPending(t *testing.T) {
	svc, gdb, _ := newTestService(t, config.DefaultSettings())
	u := seedUser(t, gdb, "jane@example.com")
	ctx := context.Background()

	for _, qty := range []string{"1", "2.5"} {
		p := newPosition(4900, qty)
		p.UserID = u.ID
		if err := svc.CreatePendingPosition(ctx, &p); err != nil {
			t.Fatalf("CreatePendingPosition() error = %v", err)
		}
	}

	inv, err := svc.GenerateFromPending(ctx, &u)
	if err != nil {
		t.Fatalf("GenerateFromPending() error = %v", err)
	}
	if inv == nil {
		t.Fatal("GenerateFromPending() = nil, want invoice")
	}
	if inv.Number != "20260001" || len(inv.Positions) != 2 {
		t.Errorf("invoice number=%q positions=%d", inv.Number, len(inv.Positions))
	}
	if u.AutoInvoicedAt == nil || !u.AutoInvoicedAt.Equal(fixedNow) {
		t.Errorf("AutoInvoicedAt = %v, want %v", u.AutoInvoicedAt, fixedNow)
	}

	pending, err := svc.PendingPositions(ctx, u.ID)
	if err != nil {
		t.Fatalf("PendingPositions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after generate = %d, want 0", len(pending))
	}

	loaded, err := svc.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// 4900 * 3.5 = 17150 net
	if got := loaded.Totals().Net().Get("EUR").Amount; got != 17150 {
		t.Errorf("Totals() net = %d, want 17150", got)
	}

	again, err := svc.GenerateFromPending(ctx, &u)
	if err != nil || again != nil {
		t.Errorf("second GenerateFromPending() = %v, %v, want nil", again, err)
	}
}

func TestCreatePendingPosition_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t, config.DefaultSettings())
	p := newPosition(100, "1")
	p.UserID = 999
	if err := svc.CreatePendingPosition(context.Background(), &p); err == nil {
		t.Error("expected error for unknown user")
	}
}

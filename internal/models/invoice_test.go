package models

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/money"
	"github.com/shopspring/decimal"
)

var rate19 = decimal.NewFromInt(19)

func position(amount int64, qty string, currency string) InvoicePosition {
	return InvoicePosition{
		Description:    "Service",
		Quantity:       decimal.RequireFromString(qty),
		Amount:         amount,
		AmountCurrency: currency,
		AmountType:     money.Net,
		AmountRate:     rate19,
	}
}

func grossPosition(amount int64, qty string) InvoicePosition {
	p := position(amount, qty, "EUR")
	p.AmountType = money.Gross
	return p
}

func TestInvoice_Totals(t *testing.T) {
	inv := &Invoice{Positions: []InvoicePosition{position(10000, "2", "EUR")}}

	totals := inv.Totals()
	if got := totals.Net().Get("EUR").Amount; got != 20000 {
		t.Errorf("Net() = %d, want 20000", got)
	}
	if got := totals.Gross().Get("EUR").Amount; got != 23800 {
		t.Errorf("Gross() = %d, want 23800", got)
	}
	if got := inv.Taxes()["19"].Get("EUR").Amount; got != 3800 {
		t.Errorf("Taxes()[19] = %d, want 3800", got)
	}
}

func TestInvoice_WorthOfDeposit(t *testing.T) {
	inv := &Invoice{Positions: []InvoicePosition{position(30000, "1", "EUR")}}
	deposit := money.NewPrice(5000, "EUR", money.Net, rate19)
	inv.SetDepositPrice(deposit)

	if !inv.IsDeposit() {
		t.Fatal("IsDeposit() = false, want true")
	}
	if got := inv.Worth().Net().Get("EUR").Amount; got != deposit.Amount {
		t.Errorf("Worth() net = %d, want %d", got, deposit.Amount)
	}
	if got := inv.Worth().Gross().Get("EUR").Amount; got != 5950 {
		t.Errorf("Worth() gross = %d, want 5950", got)
	}
}

func TestInvoice_WorthOfFinal(t *testing.T) {
	deposit := Invoice{ID: 1}
	deposit.SetDepositPrice(money.NewPrice(5000, "EUR", money.Net, rate19))
	final := &Invoice{
		Positions: []InvoicePosition{position(10000, "2", "EUR")},
		Finalizes: []Invoice{deposit},
	}

	if !final.IsFinal() {
		t.Fatal("IsFinal() = false, want true")
	}
	if got := final.Worth().Gross().Get("EUR").Amount; got != 17850 {
		t.Errorf("Worth() gross = %d, want 17850", got)
	}
	if got := final.Totals().Gross().Get("EUR").Amount; got != 23800 {
		t.Errorf("Totals() gross = %d, want 23800", got)
	}
}

func TestInvoice_BalanceCountsDepositPayments(t *testing.T) {
	deposit := Invoice{ID: 1, Payments: []Payment{{Amount: 5950, AmountCurrency: "EUR"}}}
	deposit.SetDepositPrice(money.NewPrice(5000, "EUR", money.Net, rate19))
	final := &Invoice{
		Positions: []InvoicePosition{position(10000, "2", "EUR")},
		Finalizes: []Invoice{deposit},
	}

	if got := final.Balance().Get("EUR").Amount; got != -11900 {
		t.Errorf("Balance() = %d, want -11900", got)
	}
	if final.IsPaidInFull() {
		t.Error("IsPaidInFull() = true, want false")
	}

	final.Payments = []Payment{{Amount: 11900, AmountCurrency: "EUR"}}
	if !final.IsPaidInFull() {
		t.Error("IsPaidInFull() = false, want true")
	}
}

func TestInvoice_TotalsOfGrossPositions(t *testing.T) {
	inv := &Invoice{Positions: []InvoicePosition{
		grossPosition(5, "1"),
		grossPosition(5, "1"),
		grossPosition(5, "1"),
		grossPosition(999, "2"),
	}}

	var lines int64
	for i := range inv.Positions {
		lines += inv.Positions[i].Total().Gross().Amount
	}
	totals := inv.Totals()
	if got := totals.Gross().Get("EUR").Amount; got != lines {
		t.Errorf("Gross() = %d, want sum of lines %d", got, lines)
	}
	net := totals.Net().Get("EUR").Amount
	tax := inv.Taxes()["19"].Get("EUR").Amount
	if net+tax != lines {
		t.Errorf("Net() + tax = %d + %d, want %d", net, tax, lines)
	}
}

func TestInvoice_GrossDeposit(t *testing.T) {
	deposit := Invoice{ID: 1, Payments: []Payment{{Amount: 5950, AmountCurrency: "EUR"}}}
	deposit.SetDepositPrice(money.NewPrice(5950, "EUR", money.Gross, rate19))
	if got := deposit.Worth().Gross().Get("EUR").Amount; got != 5950 {
		t.Errorf("deposit Worth() gross = %d, want 5950", got)
	}
	if got := deposit.Worth().Net().Get("EUR").Amount; got != 5000 {
		t.Errorf("deposit Worth() net = %d, want 5000", got)
	}
	if !deposit.IsPaidInFull() {
		t.Error("deposit IsPaidInFull() = false, want true")
	}

	final := &Invoice{
		Positions: []InvoicePosition{grossPosition(11900, "2")},
		Finalizes: []Invoice{deposit},
	}
	if got := final.Worth().Gross().Get("EUR").Amount; got != 17850 {
		t.Errorf("Worth() gross = %d, want 17850", got)
	}
	if got := final.Worth().Net().Get("EUR").Amount; got != 15000 {
		t.Errorf("Worth() net = %d, want 15000", got)
	}
	if got := final.Balance().Get("EUR").Amount; got != -11900 {
		t.Errorf("Balance() = %d, want -11900", got)
	}
}

func TestInvoice_IsPaidInFull(t *testing.T) {
	tests := []struct {
		name     string
		payments []Payment
		want     bool
	}{
		{"no payments", nil, false},
		{"partial", []Payment{{Amount: 100, AmountCurrency: "EUR"}}, false},
		{"exact", []Payment{{Amount: 11900, AmountCurrency: "EUR"}, {Amount: 2380, AmountCurrency: "USD"}}, true},
		{"overpaid", []Payment{{Amount: 20000, AmountCurrency: "EUR"}, {Amount: 2380, AmountCurrency: "USD"}}, true},
		{"one currency missing", []Payment{{Amount: 11900, AmountCurrency: "EUR"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{
				Positions: []InvoicePosition{position(10000, "1", "EUR"), position(2000, "1", "USD")},
				Payments:  tt.payments,
			}
			if got := inv.IsPaidInFull(); got != tt.want {
				t.Errorf("IsPaidInFull() = %v, want %v (balance %s)", got, tt.want, inv.Balance())
			}
		})
	}
}

func TestInvoice_EmptyIsPaidInFull(t *testing.T) {
	inv := &Invoice{}
	if !inv.IsPaidInFull() {
		t.Error("IsPaidInFull() = false, want true for an invoice without positions")
	}
}

func TestInvoice_Validate(t *testing.T) {
	inv := &Invoice{Status: StatusCreated, Finalizes: []Invoice{{ID: 1}}}
	inv.SetDepositPrice(money.NewPrice(100, "EUR", money.Net, rate19))
	if err := inv.Validate(); !errors.Is(err, ErrDepositAndFinal) {
		t.Errorf("Validate() = %v, want %v", err, ErrDepositAndFinal)
	}

	inv = &Invoice{Status: "unknown"}
	if err := inv.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Validate() = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestInvoice_IsCancelable(t *testing.T) {
	want := map[Status]bool{
		StatusCreated:         true,
		StatusCancelled:       true,
		StatusAwaitingPayment: true,
		StatusPaymentError:    true,
	}
	for _, st := range Statuses {
		inv := &Invoice{Status: st}
		if got := inv.IsCancelable(); got != want[st] {
			t.Errorf("IsCancelable(%s) = %v, want %v", st, got, want[st])
		}
	}
}

func TestInvoice_IsSendable(t *testing.T) {
	notified := &User{Email: "a@example.com", IsNotified: true}
	optedOut := &User{Email: "b@example.com"}

	tests := []struct {
		name   string
		status Status
		user   *User
		want   bool
	}{
		{"created", StatusCreated, notified, true},
		{"draft", StatusDraft, notified, true},
		{"resend", StatusSent, notified, true},
		{"paid", StatusPaid, notified, false},
		{"opted out", StatusCreated, optedOut, false},
		{"no user", StatusCreated, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{Status: tt.status}
			if got := inv.IsSendable(tt.user); got != tt.want {
				t.Errorf("IsSendable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := &Invoice{
		Date:      now.AddDate(0, 0, -20),
		Positions: []InvoicePosition{position(10000, "1", "EUR")},
	}

	if !inv.IsOverdue(now, 14*24*time.Hour) {
		t.Error("IsOverdue(14d) = false, want true")
	}
	if inv.IsOverdue(now, 30*24*time.Hour) {
		t.Error("IsOverdue(30d) = true, want false")
	}
	if inv.IsOverdue(now, 0) {
		t.Error("IsOverdue(0) = true, want false")
	}

	inv.Payments = []Payment{{Amount: 11900, AmountCurrency: "EUR"}}
	if inv.IsOverdue(now, 14*24*time.Hour) {
		t.Error("IsOverdue() = true for a paid invoice, want false")
	}
}

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(string(st))
		if err != nil || got != st {
			t.Errorf("ParseStatus(%q) = %v, %v", st, got, err)
		}
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseStatus(archived) error = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestInvoicePosition_Copy(t *testing.T) {
	id := uint(7)
	p := position(500, "3", "EUR")
	p.ID = 3
	p.InvoiceID = &id
	p.Tags = []string{"hosting"}

	c := p.Copy()
	if c.ID != 0 || c.InvoiceID != nil {
		t.Errorf("Copy() kept identity: id=%d invoice=%v", c.ID, c.InvoiceID)
	}
	if !c.IsPending() {
		t.Error("IsPending() = false, want true")
	}
	c.Tags[0] = "changed"
	if !p.HasTag("hosting") {
		t.Error("Copy() shares the tags slice with the original")
	}
}

func TestAddress_Format(t *testing.T) {
	a := &Address{Recipient: "Jane Doe", Street: "Main St 1", PostalCode: "10115", Locality: "Berlin", Country: "DE"}
	want := "Jane Doe\nMain St 1\n10115 Berlin\nDE"
	if got := a.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

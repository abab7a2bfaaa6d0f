package handlers

import (
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/money"
)

// invoiceResponse adds the computed amounts to the stored invoice. Amounts
// are minor units keyed by currency.
type invoiceResponse struct {
	*models.Invoice
	Title        string                      `json:"title"`
	Net          map[string]int64            `json:"net"`
	Gross        map[string]int64            `json:"gross"`
	Taxes        map[string]map[string]int64 `json:"taxes"`
	Worth        map[string]int64            `json:"worth"`
	Balance      map[string]int64            `json:"balance"`
	IsDeposit    bool                        `json:"is_deposit"`
	IsFinal      bool                        `json:"is_final"`
	IsPaidInFull bool                        `json:"is_paid_in_full"`
	IsOverdue    bool                        `json:"is_overdue"`
}

func newInvoiceResponse(inv *models.Invoice, now time.Time, overdueAfter time.Duration) invoiceResponse {
	totals := inv.Totals()
	taxes := map[string]map[string]int64{}
	for rate, ms := range inv.Taxes() {
		taxes[rate] = minor(ms)
	}
	return invoiceResponse{
		Invoice:      inv,
		Title:        inv.Title(),
		Net:          minor(totals.Net()),
		Gross:        minor(totals.Gross()),
		Taxes:        taxes,
		Worth:        minor(inv.Worth().Gross()),
		Balance:      minor(inv.Balance()),
		IsDeposit:    inv.IsDeposit(),
		IsFinal:      inv.IsFinal(),
		IsPaidInFull: inv.IsPaidInFull(),
		IsOverdue:    inv.IsOverdue(now, overdueAfter),
	}
}

func minor(ms money.Monies) map[string]int64 {
	out := make(map[string]int64, ms.Len())
	for _, m := range ms.Values() {
		out[m.Currency] = m.Amount
	}
	return out
}

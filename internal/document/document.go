// Package document turns invoices into printable documents.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/money"
	"github.com/samber/lo"
)

// Renderer produces the binary form of a document.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Document is the printable form of an invoice.
type Document struct {
	Kind      string
	Title     string
	Date      time.Time
	Issuer    []string
	Recipient []string
	Meta      []Pair
	Letter    string
	Lines     []Line
	Totals    []Pair
	Terms     string
	Note      string
	Footer    []string
}

// Line is a single position.
type Line struct {
	Description string
	Quantity    string
	UnitPrice   string
	Rate        string
	Total       string
}

// Pair is a label with a value.
type Pair struct {
	Label string
	Value string
}

// Filename returns the file name used for downloads and attachments.
func (d Document) Filename() string {
	name := strings.TrimPrefix(d.Title, "#")
	if name == "" {
		return "invoice.pdf"
	}
	return "invoice-" + name + ".pdf"
}

// FromInvoice builds the document of a fully loaded invoice. The issuer is
// the invoice owner or the configured default company.
func FromInvoice(inv *models.Invoice, issuer *models.Company) Document {
	doc := Document{
		Kind:      kindOf(inv),
		Title:     inv.Title(),
		Date:      inv.Date,
		Recipient: lines(inv.Address().Format()),
		Letter:    inv.Letter,
		Terms:     inv.Terms,
		Note:      inv.Note,
	}
	if issuer != nil {
		doc.Issuer = append([]string{issuer.Name}, lines(issuer.Address.Format())...)
		doc.Issuer = lo.Uniq(doc.Issuer)
		doc.Footer = issuer.Footer()
	}

	doc.Meta = []Pair{
		{"Number", inv.Number},
		{"Date", inv.Date.Format("2006-01-02")},
	}
	if inv.UserVATRegNo != "" {
		doc.Meta = append(doc.Meta, Pair{"Customer VAT Reg. No.", inv.UserVATRegNo})
	}

	doc.Lines = lo.Map(inv.Positions, func(p models.InvoicePosition, _ int) Line {
		unit := p.UnitPrice()
		return Line{
			Description: p.Description,
			Quantity:    p.Quantity.String(),
			UnitPrice:   unit.Net().String(),
			Rate:        unit.Rate.String() + "%",
			Total:       p.Total().Net().String(),
		}
	})

	totals := inv.Totals()
	doc.Totals = append(doc.Totals, monies("Net", totals.Net())...)
	taxes := totals.Taxes()
	for _, rate := range totals.Rates() {
		tax, ok := taxes[rate.String()]
		if !ok {
			continue
		}
		doc.Totals = append(doc.Totals, monies("Tax "+rate.String()+"%", tax)...)
	}
	doc.Totals = append(doc.Totals, monies("Total", totals.Gross())...)

	switch {
	case inv.IsDeposit():
		doc.Totals = append(doc.Totals, Pair{"Deposit due", inv.DepositPrice().Gross().String()})
	case inv.IsFinal():
		for _, dep := range inv.Finalizes {
			doc.Totals = append(doc.Totals, Pair{"Less deposit " + dep.Title(), dep.DepositPrice().Gross().Negate().String()})
		}
		doc.Totals = append(doc.Totals, monies("Amount due", inv.Worth().Gross())...)
	}
	if len(inv.Payments) > 0 {
		doc.Totals = append(doc.Totals, monies("Balance", inv.Balance())...)
	}
	return doc
}

func kindOf(inv *models.Invoice) string {
	switch {
	case inv.IsDeposit():
		return "Deposit Invoice"
	case inv.IsFinal():
		return "Final Invoice"
	}
	return "Invoice"
}

func monies(label string, ms money.Monies) []Pair {
	return lo.Map(ms.Values(), func(m money.Money, _ int) Pair {
		return Pair{Label: fmt.Sprintf("%s (%s)", label, m.Currency), Value: m.String()}
	})
}

func lines(s string) []string {
	return lo.Filter(strings.Split(s, "\n"), func(l string, _ int) bool { return l != "" })
}

package document

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice() *models.Invoice {
	inv := &models.Invoice{
		Number:           "20260001",
		Date:             time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		AddressRecipient: "Jane Doe",
		AddressStreet:    "Main St 1",
		UserVATRegNo:     "DE123",
		Letter:           "Thank you.",
	}
	p := models.InvoicePosition{Description: "Consulting", Quantity: decimal.NewFromInt(2)}
	p.SetUnitPrice(money.NewPrice(10000, "EUR", money.Net, decimal.NewFromInt(19)))
	inv.Positions = []models.InvoicePosition{p}
	return inv
}

func TestFromInvoice(t *testing.T) {
	issuer := &models.Company{Name: "Acme", VATRegNo: "DE999", Address: &models.Address{Recipient: "Acme", Locality: "Berlin"}}
	doc := FromInvoice(testInvoice(), issuer)

	assert.Equal(t, "Invoice", doc.Kind)
	assert.Equal(t, "invoice-20260001.pdf", doc.Filename())
	assert.Equal(t, []string{"Acme", "Berlin"}, doc.Issuer)
	assert.Equal(t, []string{"Jane Doe", "Main St 1"}, doc.Recipient)
	assert.Contains(t, doc.Meta, Pair{"Customer VAT Reg. No.", "DE123"})
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, Line{Description: "Consulting", Quantity: "2", UnitPrice: "100.00 EUR", Rate: "19%", Total: "200.00 EUR"}, doc.Lines[0])
	assert.Equal(t, []Pair{
		{"Net (EUR)", "200.00 EUR"},
		{"Tax 19% (EUR)", "38.00 EUR"},
		{"Total (EUR)", "238.00 EUR"},
	}, doc.Totals)
	assert.Equal(t, []string{"VAT Reg. No.: DE999"}, doc.Footer)
}

func TestFromInvoice_Final(t *testing.T) {
	dep := models.Invoice{Number: "20250009"}
	dep.SetDepositPrice(money.NewPrice(5000, "EUR", money.Net, decimal.NewFromInt(19)))
	inv := testInvoice()
	inv.Finalizes = []models.Invoice{dep}

	doc := FromInvoice(inv, nil)
	assert.Equal(t, "Final Invoice", doc.Kind)
	assert.Contains(t, doc.Totals, Pair{"Less deposit #20250009", "-59.50 EUR"})
	assert.Contains(t, doc.Totals, Pair{"Amount due (EUR)", "178.50 EUR"})
}

func TestPDFRenderer_Render(t *testing.T) {
	doc := FromInvoice(testInvoice(), &models.Company{Name: "Acme", IBAN: "DE00123"})
	out, err := NewPDFRenderer().Render(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output is not a PDF")
}

func TestPDFRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDFRenderer().Render(ctx, Document{})
	assert.ErrorIs(t, err, context.Canceled)
}

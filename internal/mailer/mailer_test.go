package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() Data {
	return Data{
		User:    &models.User{Name: "Jane"},
		Invoice: &models.Invoice{Number: "20260001", Date: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		Letter:  "Please find attached.",
		Total:   "238.00 EUR",
		Contact: "billing@example.com",
	}
}

func TestRender(t *testing.T) {
	r, err := Render(TemplateInvoiceSent, testData())
	require.NoError(t, err)
	assert.Equal(t, "Invoice #20260001", r.Subject)
	assert.Contains(t, r.Body, "Hello Jane")
	assert.Contains(t, r.Body, "Please find attached.")
	assert.Contains(t, r.Body, "dated 2026-01-31 totals 238.00 EUR")
	assert.Contains(t, r.Body, "billing@example.com")

	r, err = Render(TemplateInvoicePaid, testData())
	require.NoError(t, err)
	assert.Equal(t, "Invoice #20260001 paid", r.Subject)
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("invoice_lost", testData())
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestCompose(t *testing.T) {
	msg := Message{
		To:  []string{"jane@example.com"},
		BCC: []string{"archive@example.com"},
		Attachments: []Attachment{
			{Name: "20260001.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
		},
	}
	raw, err := Compose("billing@example.com", msg, Rendered{Subject: "Invoice", Body: "Hello"}, time.Now())
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "To: jane@example.com\r\n")
	assert.NotContains(t, s, "archive@example.com")
	assert.Contains(t, s, "multipart/mixed")
	assert.Contains(t, s, `filename=20260001.pdf`)
	assert.True(t, strings.Contains(s, "JVBERi0xLjQ="), "attachment is not base64 encoded")
}

func TestLoggingMailer(t *testing.T) {
	m := New(configWithoutHost())
	_, ok := m.(*LoggingMailer)
	require.True(t, ok, "New() without host returned %T", m)
	assert.NoError(t, m.Deliver(context.Background(), TemplateInvoicePaid, Message{To: []string{"a@example.com"}, Data: testData()}))
}

func configWithoutHost() config.MailConfig {
	return config.MailConfig{From: "billing@example.com"}
}

// Package mailer renders notification templates and delivers them.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/diewo77/go-billing/internal/models"
)

// Template names.
const (
	TemplateInvoiceSent = "invoice_sent"
	TemplateInvoicePaid = "invoice_paid"
)

var ErrUnknownTemplate = errors.New("unknown_mail_template")

//go:embed templates/*.tmpl
var templateFS embed.FS

// Mailer delivers a rendered template.
type Mailer interface {
	Deliver(ctx context.Context, template string, msg Message) error
}

// Message is a mail before rendering.
type Message struct {
	To          []string
	CC          []string
	BCC         []string
	Data        Data
	Attachments []Attachment
}

// Data is passed to the templates.
type Data struct {
	User    *models.User
	Invoice *models.Invoice
	Letter  string
	Terms   string
	Total   string
	Contact string
}

// Attachment is a file attached to the mail.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Rendered holds the result of rendering a template.
type Rendered struct {
	Subject string
	Body    string
}

var templates = map[string]*template.Template{}

func init() {
	for _, name := range []string{TemplateInvoiceSent, TemplateInvoicePaid} {
		templates[name] = template.Must(template.ParseFS(templateFS, "templates/"+name+".tmpl"))
	}
}

// Render executes the subject and body of the named template.
func Render(name string, data Data) (Rendered, error) {
	t, ok := templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("%s: %w", name, ErrUnknownTemplate)
	}
	var subject, body bytes.Buffer
	if err := t.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.ExecuteTemplate(&body, "body", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s body: %w", name, err)
	}
	return Rendered{Subject: subject.String(), Body: body.String()}, nil
}

package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/logger"
)

// SMTPMailer delivers mails with net/smtp.
type SMTPMailer struct {
	from string
	addr string
	auth smtp.Auth
}

// New returns an SMTP mailer, or a logging one when no host is configured.
func New(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		l := logger.WithComponent("mailer")
		l.Info().Msg("SMTP host not configured, using logging mailer")
		return &LoggingMailer{From: cfg.From}
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		from: cfg.From,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
	}
}

// Deliver renders the template and sends it to all recipients.
func (m *SMTPMailer) Deliver(ctx context.Context, name string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := Render(name, msg.Data)
	if err != nil {
		return err
	}
	raw, err := Compose(m.from, msg, r, time.Now())
	if err != nil {
		return err
	}
	rcpt := append(append(append([]string{}, msg.To...), msg.CC...), msg.BCC...)
	if err := smtp.SendMail(m.addr, m.auth, m.from, rcpt, raw); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	l := logger.WithComponent("mailer")
	l.Info().
		Strs("to", msg.To).
		Str("template", name).
		Msg("mail sent")
	return nil
}

// Compose builds the raw MIME message. BCC recipients are not written to
// the headers.
func Compose(from string, msg Message, r Rendered, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", r.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		buf.WriteString(r.Body)
		return buf.Bytes(), nil
	}

	w := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=\"UTF-8\""}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(r.Body)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.NewEncoder(base64.StdEncoding, part)
		if _, err := enc.Write(a.Content); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoggingMailer only logs mails. Used when SMTP isn't configured.
type LoggingMailer struct {
	From string
}

func (m *LoggingMailer) Deliver(ctx context.Context, name string, msg Message) error {
	r, err := Render(name, msg.Data)
	if err != nil {
		return err
	}
	l := logger.WithComponent("mailer")
	l.Info().
		Str("from", m.From).
		Strs("to", msg.To).
		Strs("bcc", msg.BCC).
		Str("subject", r.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("mail logged")
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-billing/internal/models"
)

var (
	ErrInvalidInitialStatus = errors.New("invalid_initial_status")
	ErrInvalidPeriod        = errors.New("invalid_period")
)

// Settings holds the billing settings injected into services and jobs.
type Settings struct {
	Number NumberConfig `yaml:"number"`

	// OverdueAfterText accepts Go durations plus "d" (days) and "w" (weeks).
	OverdueAfterText string        `yaml:"overdue_after" env:"INVOICE_OVERDUE_AFTER" env-default:"14d"`
	OverdueAfter     time.Duration `yaml:"-"`

	SendPaidMail bool     `yaml:"send_paid_mail" env:"INVOICE_SEND_PAID_MAIL" env-default:"true"`
	BCC          []string `yaml:"bcc" env:"INVOICE_BCC" env-separator:","`
	AutoInvoice  bool     `yaml:"auto_invoice" env:"INVOICE_AUTO_INVOICE" env-default:"true"`
	AutoSend     bool     `yaml:"auto_send" env:"INVOICE_AUTO_SEND" env-default:"true"`

	// "off" disables, empty keeps the default, anything else is custom text.
	LetterText string `yaml:"letter" env:"INVOICE_LETTER"`
	TermsText  string `yaml:"terms" env:"INVOICE_TERMS"`
	Letter     Text   `yaml:"-"`
	Terms      Text   `yaml:"-"`

	ContactBilling string `yaml:"contact_billing" env:"CONTACT_BILLING"`
	InitialStatus  string `yaml:"initial_status" env:"INVOICE_INITIAL_STATUS" env-default:"created"`
	LockOnSend     bool   `yaml:"lock_on_send" env:"INVOICE_LOCK_ON_SEND" env-default:"true"`
	VATRegNo       string `yaml:"vat_reg_no" env:"BILLING_VAT_REG_NO"`

	Issuer IssuerConfig `yaml:"issuer"`
}

// NumberConfig configures reference number generation. Empty fields use the
// generator defaults.
type NumberConfig struct {
	Sort     string `yaml:"sort" env:"INVOICE_NUMBER_SORT"`
	Extract  string `yaml:"extract" env:"INVOICE_NUMBER_EXTRACT"`
	Generate string `yaml:"generate" env:"INVOICE_NUMBER_GENERATE"`
}

// IssuerConfig describes the company printed on invoices without an owner.
type IssuerConfig struct {
	Name       string `yaml:"name" env:"BILLING_ISSUER_NAME" env-default:"Billing"`
	Email      string `yaml:"email" env:"BILLING_ISSUER_EMAIL"`
	Street     string `yaml:"street" env:"BILLING_ISSUER_STREET"`
	PostalCode string `yaml:"postal_code" env:"BILLING_ISSUER_POSTAL_CODE"`
	Locality   string `yaml:"locality" env:"BILLING_ISSUER_LOCALITY"`
	Country    string `yaml:"country" env:"BILLING_ISSUER_COUNTRY"`
	IBAN       string `yaml:"iban" env:"BILLING_ISSUER_IBAN"`
	BIC        string `yaml:"bic" env:"BILLING_ISSUER_BIC"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		OverdueAfterText: "14d",
		OverdueAfter:     14 * 24 * time.Hour,
		SendPaidMail:     true,
		AutoInvoice:      true,
		AutoSend:         true,
		InitialStatus:    string(models.StatusCreated),
		LockOnSend:       true,
		Issuer:           IssuerConfig{Name: "Billing"},
	}
}

// Validate checks the raw values and derives the typed ones.
func (s *Settings) Validate() error {
	if s.InitialStatus == "" {
		s.InitialStatus = string(models.StatusCreated)
	}
	switch models.Status(s.InitialStatus) {
	case models.StatusDraft, models.StatusCreated:
	default:
		return fmt.Errorf("%q: %w", s.InitialStatus, ErrInvalidInitialStatus)
	}

	if s.OverdueAfterText != "" {
		d, err := ParsePeriod(s.OverdueAfterText)
		if err != nil {
			return err
		}
		s.OverdueAfter = d
	}
	if s.LetterText != "" {
		s.Letter = ParseText(s.LetterText)
	}
	if s.TermsText != "" {
		s.Terms = ParseText(s.TermsText)
	}
	return nil
}

// Status returns the status new invoices start in.
func (s Settings) Status() models.Status {
	if s.InitialStatus == string(models.StatusDraft) {
		return models.StatusDraft
	}
	return models.StatusCreated
}

// ResolveLetter returns the letter text for the given context.
func (s Settings) ResolveLetter(ctx TextContext, u *models.User, inv *models.Invoice) string {
	return s.Letter.Resolve(ctx, u, inv, defaultLetter[ctx])
}

// ResolveTerms returns the terms text for the given context.
func (s Settings) ResolveTerms(ctx TextContext, u *models.User, inv *models.Invoice) string {
	return s.Terms.Resolve(ctx, u, inv, defaultTerms[ctx])
}

// Company returns the issuer as a company record.
func (s Settings) Company() *models.Company {
	return &models.Company{
		Name:     s.Issuer.Name,
		Email:    s.Issuer.Email,
		VATRegNo: s.VATRegNo,
		IBAN:     s.Issuer.IBAN,
		BIC:      s.Issuer.BIC,
		Address: &models.Address{
			Recipient:  s.Issuer.Name,
			Street:     s.Issuer.Street,
			PostalCode: s.Issuer.PostalCode,
			Locality:   s.Issuer.Locality,
			Country:    s.Issuer.Country,
		},
	}
}

// ParsePeriod parses a Go duration and additionally accepts a single integer
// followed by "d" or "w". "0" and the empty string disable the period.
func ParsePeriod(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	unit := s[len(s)-1]
	if unit == 'd' || unit == 'w' {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidPeriod)
		}
		day := 24 * time.Hour
		if unit == 'w' {
			day *= 7
		}
		return time.Duration(n) * day, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidPeriod)
	}
	return d, nil
}

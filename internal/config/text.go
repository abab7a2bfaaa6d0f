package config

import (
	"strings"

	"github.com/diewo77/go-billing/internal/models"
)

// TextContext tells where a configurable text ends up.
type TextContext string

const (
	// TextEntity is the text stored on the invoice and printed on the document.
	TextEntity TextContext = "entity"
	// TextMail is the text used in notification mails.
	TextMail TextContext = "mail"
)

// Resolver computes a text for a user and invoice.
type Resolver func(ctx TextContext, u *models.User, inv *models.Invoice) string

type textMode int

const (
	textDefault textMode = iota
	textDisabled
	textCustom
	textResolver
)

// Text is a configurable invoice text: disabled, the built-in default, a
// custom fixed text or a resolver. The zero value is the default.
type Text struct {
	mode    textMode
	text    string
	resolve Resolver
}

var (
	defaultLetter = map[TextContext]string{
		TextEntity: "Thank you for your trust. We hereby invoice the following items.",
		TextMail:   "Please find your invoice attached to this mail.",
	}
	defaultTerms = map[TextContext]string{
		TextEntity: "Payable within 14 days of the invoice date without deduction.",
		TextMail:   "Payable within 14 days of the invoice date without deduction.",
	}
)

// DefaultText returns the built-in text variant.
func DefaultText() Text { return Text{mode: textDefault} }

// DisabledText returns a variant that always resolves to the empty string.
func DisabledText() Text { return Text{mode: textDisabled} }

// CustomText returns a fixed text variant.
func CustomText(s string) Text { return Text{mode: textCustom, text: s} }

// ResolverText returns a variant computed by fn.
func ResolverText(fn Resolver) Text {
	if fn == nil {
		return DefaultText()
	}
	return Text{mode: textResolver, resolve: fn}
}

// ParseText maps a configuration string onto a variant.
func ParseText(s string) Text {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultText()
	case "off", "disabled", "false":
		return DisabledText()
	}
	return CustomText(s)
}

// IsDisabled reports whether the text is switched off.
func (t Text) IsDisabled() bool { return t.mode == textDisabled }

// Resolve returns the text for the context, using fallback for the default.
func (t Text) Resolve(ctx TextContext, u *models.User, inv *models.Invoice, fallback string) string {
	switch t.mode {
	case textDisabled:
		return ""
	case textCustom:
		return t.text
	case textResolver:
		return t.resolve(ctx, u, inv)
	}
	return fallback
}

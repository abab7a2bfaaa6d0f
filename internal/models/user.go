package models

import (
	"strings"
	"time"
)

// Auto invoice frequencies.
const (
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// User represents a billing recipient.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Locale    string    `gorm:"size:10;default:'en'" json:"locale,omitempty"`

	// IsNotified is false when the user opted out of notification mails.
	IsNotified bool `gorm:"default:false" json:"is_notified"`

	// Auto invoicing
	IsAutoInvoiced       bool       `gorm:"index;default:false" json:"is_auto_invoiced"`
	AutoInvoiceFrequency string     `gorm:"size:20" json:"auto_invoice_frequency,omitempty"`
	AutoInvoicedAt       *time.Time `json:"auto_invoiced_at,omitempty"`

	// Tax & Legal information
	VATRegNo string `gorm:"size:50" json:"vat_reg_no,omitempty"`
	TaxType  string `gorm:"size:50" json:"tax_type,omitempty"`

	BillingAddressID *uint    `json:"billing_address_id,omitempty"`
	BillingAddress   *Address `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
}

// Address is a postal address.
type Address struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Recipient    string    `gorm:"size:255" json:"recipient"`
	Organization string    `gorm:"size:255" json:"organization,omitempty"`
	Street       string    `gorm:"size:500" json:"street"`
	PostalCode   string    `gorm:"size:20" json:"postal_code"`
	Locality     string    `gorm:"size:100" json:"locality"`
	Country      string    `gorm:"size:2" json:"country"`
}

// Format returns the address as postal lines, skipping empty parts.
func (a *Address) Format() string {
	if a == nil {
		return ""
	}
	var lines []string
	for _, l := range []string{a.Recipient, a.Organization, a.Street, strings.TrimSpace(a.PostalCode + " " + a.Locality), a.Country} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

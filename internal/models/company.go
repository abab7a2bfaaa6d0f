package models

import (
	"time"
)

// Company is the issuing entity printed on invoices. Invoice.OwnerID points
// to it; a nil owner falls back to the configured default company.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Company information
	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	AddressID *uint    `json:"address_id,omitempty"`
	Address   *Address `gorm:"foreignKey:AddressID" json:"address,omitempty"`

	// Tax & Legal information
	VATRegNo string `gorm:"size:50" json:"vat_reg_no,omitempty"`
	Register string `gorm:"size:100" json:"register,omitempty"`

	// Bank details printed below the totals
	IBAN string `gorm:"size:34" json:"iban,omitempty"`
	BIC  string `gorm:"size:11" json:"bic,omitempty"`
}

// Footer returns the legal lines printed at the bottom of documents.
func (c *Company) Footer() []string {
	if c == nil {
		return nil
	}
	var lines []string
	if c.VATRegNo != "" {
		lines = append(lines, "VAT Reg. No.: "+c.VATRegNo)
	}
	if c.Register != "" {
		lines = append(lines, c.Register)
	}
	if c.IBAN != "" {
		bank := "IBAN: " + c.IBAN
		if c.BIC != "" {
			bank += " / BIC: " + c.BIC
		}
		lines = append(lines, bank)
	}
	return lines
}

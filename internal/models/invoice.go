package models

import (
	"errors"
	"time"

	"github.com/diewo77/go-billing/internal/money"
	"github.com/shopspring/decimal"
)

// ErrDepositAndFinal is returned for an invoice that carries a deposit price
// and finalizes other invoices at the same time.
var ErrDepositAndFinal = errors.New("deposit_and_final")

// Invoice aggregates positions and payments. Address and tax fields are
// copied from the user on creation so the document can be regenerated even
// after the user changed their details.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is empty until assigned and never changes afterwards. Assigned
	// numbers are unique.
	Number string    `gorm:"size:50;index:idx_invoices_number,unique,where:number <> ''" json:"number"`
	Status Status    `gorm:"size:30;index;not null;default:'created'" json:"status"`
	Date   time.Time `gorm:"not null" json:"date"`

	UserID  uint     `gorm:"index;not null" json:"user_id"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	OwnerID *uint    `gorm:"index" json:"owner_id,omitempty"`
	Owner   *Company `gorm:"foreignKey:OwnerID" json:"-"`

	TaxType      string `gorm:"size:50" json:"tax_type,omitempty"`
	UserVATRegNo string `gorm:"size:50" json:"user_vat_reg_no,omitempty"`

	// Recipient address snapshot
	AddressRecipient    string `gorm:"size:255" json:"address_recipient,omitempty"`
	AddressOrganization string `gorm:"size:255" json:"address_organization,omitempty"`
	AddressStreet       string `gorm:"size:500" json:"address_street,omitempty"`
	AddressPostalCode   string `gorm:"size:20" json:"address_postal_code,omitempty"`
	AddressLocality     string `gorm:"size:100" json:"address_locality,omitempty"`
	AddressCountry      string `gorm:"size:2" json:"address_country,omitempty"`

	Letter string `gorm:"type:text" json:"letter,omitempty"`
	Terms  string `gorm:"type:text" json:"terms,omitempty"`
	Note   string `gorm:"type:text" json:"note,omitempty"`

	IsLocked bool `gorm:"default:false" json:"is_locked"`

	// Deposit price, zero amount when this is not a deposit invoice
	DepositAmount   int64           `gorm:"default:0" json:"deposit_amount"`
	DepositCurrency string          `gorm:"size:3" json:"deposit_currency,omitempty"`
	DepositType     money.Kind      `gorm:"size:5" json:"deposit_type,omitempty"`
	DepositRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"deposit_rate"`

	// Deposit invoices this (final) invoice finalizes
	Finalizes []Invoice `gorm:"many2many:invoice_finalizations;joinForeignKey:FinalInvoiceID;joinReferences:DepositInvoiceID" json:"finalizes,omitempty"`

	Positions []InvoicePosition `gorm:"foreignKey:InvoiceID" json:"positions,omitempty"`
	Payments  []Payment         `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// Title returns the display title, e.g. "#20260001".
func (i *Invoice) Title() string {
	return "#" + i.Number
}

// DepositPrice returns the deposit price. It is zero for non deposit invoices.
func (i *Invoice) DepositPrice() money.Price {
	return money.NewPrice(i.DepositAmount, i.DepositCurrency, i.DepositType, i.DepositRate)
}

// SetDepositPrice copies p into the deposit columns.
func (i *Invoice) SetDepositPrice(p money.Price) {
	i.DepositAmount = p.Amount
	i.DepositCurrency = p.Currency
	i.DepositType = p.Kind
	i.DepositRate = p.Rate
}

// IsDeposit returns true if the invoice's worth is a fixed deposit.
func (i *Invoice) IsDeposit() bool {
	return i.DepositAmount != 0
}

// IsFinal returns true if the invoice finalizes deposit invoices.
func (i *Invoice) IsFinal() bool {
	return len(i.Finalizes) > 0
}

// IsDraft returns true if the invoice is in draft status.
func (i *Invoice) IsDraft() bool {
	return i.Status == StatusDraft
}

// Validate checks structural invariants that do not need storage.
func (i *Invoice) Validate() error {
	if i.IsDeposit() && i.IsFinal() {
		return ErrDepositAndFinal
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Totals folds the total of every position. Positions must be loaded.
func (i *Invoice) Totals() money.Prices {
	var r money.Prices
	for idx := range i.Positions {
		r = r.Add(i.Positions[idx].Total())
	}
	return r
}

// Taxes returns the tax per rate; rates of zero are left out.
func (i *Invoice) Taxes() map[string]money.Monies {
	return i.Totals().Taxes()
}

// Worth is the economically relevant value of the invoice: the deposit price
// for deposit invoices, the totals minus every finalized deposit for final
// invoices and the plain totals otherwise.
func (i *Invoice) Worth() money.Prices {
	if i.IsDeposit() {
		return money.NewPrices(i.DepositPrice())
	}
	r := i.Totals()
	for idx := range i.Finalizes {
		r = r.Subtract(i.Finalizes[idx].DepositPrice())
	}
	return r
}

// Balance is the negated gross worth plus every payment made on this invoice
// and, for final invoices, on the finalized deposit invoices. Negative
// amounts are still owed. Payments of finalized invoices must be loaded.
func (i *Invoice) Balance() money.Monies {
	r := i.Worth().Gross().Negate()
	for idx := range i.Payments {
		r = r.Add(i.Payments[idx].Money())
	}
	for idx := range i.Finalizes {
		dep := &i.Finalizes[idx]
		for p := range dep.Payments {
			r = r.Add(dep.Payments[p].Money())
		}
	}
	return r
}

// IsPaidInFull reports whether no currency of the balance is negative.
func (i *Invoice) IsPaidInFull() bool {
	for _, m := range i.Balance().Values() {
		if m.IsNegative() {
			return false
		}
	}
	return true
}

// IsCancelable returns true while no payment has been settled.
func (i *Invoice) IsCancelable() bool {
	switch i.Status {
	case StatusCreated, StatusCancelled, StatusAwaitingPayment, StatusPaymentError:
		return true
	}
	return false
}

// IsSendable returns false if the recipient opted out of notifications.
// Sent invoices may be sent again.
func (i *Invoice) IsSendable(recipient *User) bool {
	if recipient == nil || !recipient.IsNotified || recipient.Email == "" {
		return false
	}
	switch i.Status {
	case StatusCreated, StatusDraft, StatusSent:
		return true
	}
	return false
}

// IsOverdue returns true if the invoice is not paid in full and older than
// after. A zero after disables the check.
func (i *Invoice) IsOverdue(now time.Time, after time.Duration) bool {
	if after <= 0 || i.Date.IsZero() {
		return false
	}
	return !i.IsPaidInFull() && i.Date.Add(after).Before(now)
}

// Address returns the recipient address snapshot.
func (i *Invoice) Address() *Address {
	return &Address{
		Recipient:    i.AddressRecipient,
		Organization: i.AddressOrganization,
		Street:       i.AddressStreet,
		PostalCode:   i.AddressPostalCode,
		Locality:     i.AddressLocality,
		Country:      i.AddressCountry,
	}
}

// CopyAddress snapshots a into the invoice.
func (i *Invoice) CopyAddress(a *Address) {
	if a == nil {
		return
	}
	i.AddressRecipient = a.Recipient
	i.AddressOrganization = a.Organization
	i.AddressStreet = a.Street
	i.AddressPostalCode = a.PostalCode
	i.AddressLocality = a.Locality
	i.AddressCountry = a.Country
}

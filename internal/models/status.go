package models

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus is returned for status strings outside the known set.
var ErrInvalidStatus = errors.New("invalid_status")

// Status represents the status of an invoice.
type Status string

const (
	StatusDraft                   Status = "draft"
	StatusCreated                 Status = "created"
	StatusAwaitingPayment         Status = "awaiting-payment"
	StatusPaymentRemotelyAccepted Status = "payment-remotely-accepted"
	StatusPaymentError            Status = "payment-error"
	StatusSent                    Status = "sent"
	StatusSendScheduled           Status = "send-scheduled"
	StatusPaid                    Status = "paid"
	StatusCancelled               Status = "cancelled"
	StatusRejected                Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusDraft,
	StatusCreated,
	StatusAwaitingPayment,
	StatusPaymentRemotelyAccepted,
	StatusPaymentError,
	StatusSent,
	StatusSendScheduled,
	StatusPaid,
	StatusCancelled,
	StatusRejected,
}

// ParseStatus validates s against the known statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidStatus)
	}
	return st, nil
}

// Valid reports whether st is one of the known statuses.
func (st Status) Valid() bool {
	switch st {
	case StatusDraft, StatusCreated, StatusAwaitingPayment, StatusPaymentRemotelyAccepted,
		StatusPaymentError, StatusSent, StatusSendScheduled, StatusPaid, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

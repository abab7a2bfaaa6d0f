package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-billing/internal/httpx"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/internal/validation"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{gorm.ErrRecordNotFound, http.StatusNotFound},
	{validation.ErrInvalidQuantity, http.StatusBadRequest},
	{models.ErrInvalidStatus, http.StatusBadRequest},
	{models.ErrDepositAndFinal, http.StatusBadRequest},
	{services.ErrNotDeposit, http.StatusBadRequest},
	{services.ErrUnsupportedFrequency, http.StatusBadRequest},
	{services.ErrInvoiceLocked, http.StatusConflict},
	{services.ErrAlreadyPaidInFull, http.StatusConflict},
	{services.ErrNotSendable, http.StatusConflict},
	{services.ErrPaidMailFailed, http.StatusBadGateway},
}

// writeError maps service errors onto status codes and snake_case codes.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var v validation.Violations
	if errors.As(err, &v) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			code := e.err.Error()
			if e.err == gorm.ErrRecordNotFound {
				code = "not_found"
			}
			httpx.JSONError(w, e.status, code, nil)
			return
		}
	}
	log.Error().Err(err).Msg("request failed")
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

// bindError reports a request body that could not be decoded or validated.
func bindError(w http.ResponseWriter, err error) {
	var v validation.Violations
	if errors.As(err, &v) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
}

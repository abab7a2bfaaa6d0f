package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-billing/internal/httpx"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// InvoiceHandler exposes the invoice operations as JSON endpoints.
type InvoiceHandler struct {
	Svc *services.InvoiceService
	Now func() time.Time
	log zerolog.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc, Now: time.Now, log: logger.WithComponent("http")}
}

// Routes mounts the handler on r.
func (h *InvoiceHandler) Routes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/status", h.SetStatus)
			r.Post("/positions", h.AddPosition)
			r.Delete("/positions/{pid}", h.RemovePosition)
			r.Post("/payments", h.Pay)
			r.Post("/pay-in-full", h.PayInFull)
			r.Post("/duplicate", h.Duplicate)
			r.Post("/send", h.Send)
			r.Get("/pdf", h.PDF)
		})
	})
	r.Post("/positions", h.CreatePosition)
	r.Get("/users/{id}/positions/pending", h.PendingPositions)
}

func (h *InvoiceHandler) logger(r *http.Request) zerolog.Logger {
	return h.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
}

func (h *InvoiceHandler) respond(w http.ResponseWriter, status int, inv *models.Invoice) {
	httpx.JSON(w, status, newInvoiceResponse(inv, h.Now(), h.Svc.Settings().OverdueAfter))
}

func urlID(r *http.Request) (uint, bool) {
	return urlParamID(r, "id")
}

func urlParamID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// load fetches the invoice named in the URL. It writes the error response
// and returns nil when that fails.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) *models.Invoice {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger(r), err)
		return nil
	}
	return inv
}

// reload responds with the stored state of inv.
func (h *InvoiceHandler) reload(w http.ResponseWriter, r *http.Request, status int, id uint) {
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, status, inv)
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	inv, positions := req.invoice()
	if err := h.Svc.CreateInvoiceWithPositions(r.Context(), inv, positions); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.reload(w, r, http.StatusCreated, inv.ID)
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if inv := h.load(w, r); inv != nil {
		h.respond(w, http.StatusOK, inv)
	}
}

// Update: PATCH /invoices/{id}
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	var req updateInvoiceRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	if err := h.Svc.Update(r.Context(), inv, req.InvoiceChanges); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusOK, inv)
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.DeleteInvoiceCascade(r.Context(), id); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus: POST /invoices/{id}/status
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	var req statusRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	if err := h.Svc.SetStatus(r.Context(), inv, req.Status); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusOK, inv)
}

// AddPosition: POST /invoices/{id}/positions
func (h *InvoiceHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	var req positionRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	p := req.position()
	if err := h.Svc.AddPosition(r.Context(), inv, &p); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusCreated, inv)
}

// RemovePosition: DELETE /invoices/{id}/positions/{pid}
func (h *InvoiceHandler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlParamID(r, "pid")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	if err := h.Svc.RemovePosition(r.Context(), inv, pid); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusOK, inv)
}

// Pay: POST /invoices/{id}/payments
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	var req paymentRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	if err := h.Svc.Pay(r.Context(), inv, req.payment()); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusCreated, inv)
}

// PayInFull: POST /invoices/{id}/pay-in-full
func (h *InvoiceHandler) PayInFull(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	if err := h.Svc.PayInFull(r.Context(), inv); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusOK, inv)
}

// Duplicate: POST /invoices/{id}/duplicate
func (h *InvoiceHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	dup, err := h.Svc.Duplicate(r.Context(), inv)
	if err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.reload(w, r, http.StatusCreated, dup.ID)
}

// Send: POST /invoices/{id}/send
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	if err := h.Svc.Send(r.Context(), inv); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	h.respond(w, http.StatusOK, inv)
}

// PDF: GET /invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv := h.load(w, r)
	if inv == nil {
		return
	}
	data, name, err := h.Svc.ExportPDF(r.Context(), inv)
	if err != nil {
		l := h.logger(r)
		l.Error().Err(err).Uint("invoice_id", inv.ID).Msg("pdf generation failed")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	httpx.Attachment(w, name, "application/pdf", data)
}

// CreatePosition: POST /positions
func (h *InvoiceHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	if req.UserID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"user_id": "required"})
		return
	}
	p := req.position()
	if err := h.Svc.CreatePendingPosition(r.Context(), &p); err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// PendingPositions: GET /users/{id}/positions/pending
func (h *InvoiceHandler) PendingPositions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	positions, err := h.Svc.PendingPositions(r.Context(), id)
	if err != nil {
		writeError(w, h.logger(r), err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": positions, "total": len(positions)})
}

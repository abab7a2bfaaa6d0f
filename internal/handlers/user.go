package handlers

import (
	"net/http"

	"github.com/diewo77/go-billing/internal/httpx"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type addressRequest struct {
	Recipient    string `json:"recipient" validate:"required"`
	Organization string `json:"organization,omitempty"`
	Street       string `json:"street" validate:"required"`
	PostalCode   string `json:"postal_code"`
	Locality     string `json:"locality" validate:"required"`
	Country      string `json:"country" validate:"required,iso3166_1_alpha2"`
}

func (a *addressRequest) address() *models.Address {
	if a == nil {
		return nil
	}
	return &models.Address{
		Recipient:    a.Recipient,
		Organization: a.Organization,
		Street:       a.Street,
		PostalCode:   a.PostalCode,
		Locality:     a.Locality,
		Country:      a.Country,
	}
}

type userRequest struct {
	Email                string          `json:"email" validate:"required,email"`
	Name                 string          `json:"name"`
	Locale               string          `json:"locale,omitempty"`
	IsNotified           *bool           `json:"is_notified,omitempty"`
	IsAutoInvoiced       bool            `json:"is_auto_invoiced"`
	AutoInvoiceFrequency string          `json:"auto_invoice_frequency,omitempty" validate:"omitempty,oneof=monthly yearly"`
	VATRegNo             string          `json:"vat_reg_no,omitempty"`
	TaxType              string          `json:"tax_type,omitempty"`
	BillingAddress       *addressRequest `json:"billing_address,omitempty"`
}

func (u *userRequest) Bind(_ *http.Request) error {
	return validation.Struct(u)
}

type userChanges struct {
	Name                 *string `json:"name,omitempty"`
	IsNotified           *bool   `json:"is_notified,omitempty"`
	IsAutoInvoiced       *bool   `json:"is_auto_invoiced,omitempty"`
	AutoInvoiceFrequency *string `json:"auto_invoice_frequency,omitempty" validate:"omitempty,oneof=monthly yearly"`
	VATRegNo             *string `json:"vat_reg_no,omitempty"`
	TaxType              *string `json:"tax_type,omitempty"`
}

func (u *userChanges) Bind(_ *http.Request) error {
	return validation.Struct(u)
}

// UserHandler manages billing recipients.
type UserHandler struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db, log: logger.WithComponent("http")}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Get)
	r.Patch("/users/{id}", h.Update)
}

// Create: POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	u := models.User{
		Email:                req.Email,
		Name:                 req.Name,
		Locale:               req.Locale,
		IsNotified:           req.IsNotified == nil || *req.IsNotified,
		IsAutoInvoiced:       req.IsAutoInvoiced,
		AutoInvoiceFrequency: req.AutoInvoiceFrequency,
		VATRegNo:             req.VATRegNo,
		TaxType:              req.TaxType,
		BillingAddress:       req.BillingAddress.address(),
	}
	var existing int64
	if err := h.DB.WithContext(r.Context()).Model(&models.User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	if existing > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&u).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

// Get: GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var u models.User
	if err := h.DB.WithContext(r.Context()).Preload("BillingAddress").First(&u, id).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Update: PATCH /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req userChanges
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsNotified != nil {
		updates["is_notified"] = *req.IsNotified
	}
	if req.IsAutoInvoiced != nil {
		updates["is_auto_invoiced"] = *req.IsAutoInvoiced
	}
	if req.AutoInvoiceFrequency != nil {
		updates["auto_invoice_frequency"] = *req.AutoInvoiceFrequency
	}
	if req.VATRegNo != nil {
		updates["vat_reg_no"] = *req.VATRegNo
	}
	if req.TaxType != nil {
		updates["tax_type"] = *req.TaxType
	}

	var u models.User
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.User{ID: id}).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("BillingAddress").First(&u, id).Error
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

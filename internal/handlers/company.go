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

type companyRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Email    string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string          `json:"phone,omitempty"`
	Website  string          `json:"website,omitempty" validate:"omitempty,url"`
	VATRegNo string          `json:"vat_reg_no,omitempty"`
	Register string          `json:"register,omitempty"`
	IBAN     string          `json:"iban,omitempty" validate:"omitempty,max=34"`
	BIC      string          `json:"bic,omitempty" validate:"omitempty,max=11"`
	Address  *addressRequest `json:"address,omitempty"`
}

func (c *companyRequest) Bind(_ *http.Request) error {
	return validation.Struct(c)
}

func (c *companyRequest) apply(co *models.Company) {
	co.Name = c.Name
	co.Email = c.Email
	co.Phone = c.Phone
	co.Website = c.Website
	co.VATRegNo = c.VATRegNo
	co.Register = c.Register
	co.IBAN = c.IBAN
	co.BIC = c.BIC
}

// CompanyHandler manages the issuing companies referenced as invoice owners.
type CompanyHandler struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{DB: db, log: logger.WithComponent("http")}
}

func (h *CompanyHandler) Routes(r chi.Router) {
	r.Post("/companies", h.Create)
	r.Get("/companies/{id}", h.Get)
	r.Put("/companies/{id}", h.Update)
}

// Create: POST /companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}
	var co models.Company
	req.apply(&co)
	co.Address = req.Address.address()
	if err := h.DB.WithContext(r.Context()).Create(&co).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, co)
}

// Get: GET /companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var co models.Company
	if err := h.DB.WithContext(r.Context()).Preload("Address").First(&co, id).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, co)
}

// Update: PUT /companies/{id} replaces the company details. The address is
// replaced when given.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req companyRequest
	if err := render.Bind(r, &req); err != nil {
		bindError(w, err)
		return
	}

	var co models.Company
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&co, id).Error; err != nil {
			return err
		}
		req.apply(&co)
		if addr := req.Address.address(); addr != nil {
			if err := tx.Create(addr).Error; err != nil {
				return err
			}
			co.AddressID = &addr.ID
		}
		if err := tx.Omit("Address").Save(&co).Error; err != nil {
			return err
		}
		return tx.Preload("Address").First(&co, id).Error
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, co)
}

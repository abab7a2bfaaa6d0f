package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/document"
	"github.com/diewo77/go-billing/internal/mailer"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/numbering"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, document.Document) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// newTestRouter returns the routes with a seeded recipient.
func newTestRouter(t *testing.T) (http.Handler, models.User) {
	t.Helper()
	gdb := setupInvoiceTestDB(t)
	u := models.User{Email: "inv@test.example", Name: "Invoice User", IsNotified: true}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	svc := services.NewInvoiceService(gdb, config.DefaultSettings(), numbering.MustNew(numbering.Format{}),
		&mailer.LoggingMailer{From: "billing@test.example"}, stubRenderer{})
	h := NewInvoiceHandler(svc)
	h.Now = func() time.Time { return time.Now().AddDate(0, 1, 0) }

	r := chi.NewRouter()
	h.Routes(r)
	return r, u
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func createBody(userID uint) string {
	return `{"user_id":` + strconv.Itoa(int(userID)) + `,"positions":[` +
		`{"description":"Consulting","quantity":"2","price":{"amount":10000,"currency":"EUR","type":"net","rate":"19"}}]}`
}

func TestInvoiceCreateAndGet(t *testing.T) {
	h, u := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/invoices", createBody(u.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Regexp(t, `^[0-9]{8}$`, created["number"])
	assert.Equal(t, "created", created["status"])
	assert.Equal(t, float64(23800), created["gross"].(map[string]any)["EUR"])
	assert.Equal(t, float64(-23800), created["balance"].(map[string]any)["EUR"])
	assert.Equal(t, float64(3800), created["taxes"].(map[string]any)["19"].(map[string]any)["EUR"])
	assert.Equal(t, true, created["is_overdue"])

	id := strconv.Itoa(int(created["id"].(float64)))
	w = do(t, h, http.MethodGet, "/invoices/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, created["number"], got["number"])
	assert.Len(t, got["positions"], 1)
}

func TestInvoiceErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"not found", http.MethodGet, "/invoices/999", "", http.StatusNotFound, "not_found"},
		{"invalid id", http.MethodGet, "/invoices/abc", "", http.StatusBadRequest, "invalid_id"},
		{"invalid json", http.MethodPost, "/invoices", "{", http.StatusBadRequest, "invalid_json"},
		{"missing user", http.MethodPost, "/invoices", `{"positions":[]}`, http.StatusBadRequest, "validation_failed"},
		{"unknown user", http.MethodPost, "/invoices", `{"user_id":999}`, http.StatusNotFound, "not_found"},
		{"missing position user", http.MethodPost, "/positions", `{"description":"x","quantity":"1","price":{"amount":1,"currency":"EUR"}}`, http.StatusBadRequest, "validation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d got %d body=%s", tt.status, w.Code, w.Body.String())
			}
			if got := decode(t, w)["error"]; got != tt.code {
				t.Errorf("error = %v, want %s", got, tt.code)
			}
		})
	}
}

func TestInvoiceSendLocksAndPay(t *testing.T) {
	h, u := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/invoices", createBody(u.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := strconv.Itoa(int(decode(t, w)["id"].(float64)))

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/send", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sent := decode(t, w)
	assert.Equal(t, "sent", sent["status"])
	assert.Equal(t, true, sent["is_locked"])

	w = do(t, h, http.MethodPatch, "/invoices/"+id, `{"note":"late"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invoice_locked", decode(t, w)["error"])

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/payments", `{"amount":3800,"currency":"EUR","method":"transfer"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(-20000), decode(t, w)["balance"].(map[string]any)["EUR"])

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/pay-in-full", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode(t, w)
	assert.Equal(t, "paid", paid["status"])
	assert.Equal(t, true, paid["is_paid_in_full"])

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/pay-in-full", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_paid_in_full", decode(t, w)["error"])
}

func TestInvoiceStatusDuplicateDelete(t *testing.T) {
	h, u := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/invoices", createBody(u.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	src := decode(t, w)
	id := strconv.Itoa(int(src["id"].(float64)))

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", decode(t, w)["error"])

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/status", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode(t, w)["status"])

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/duplicate", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dup := decode(t, w)
	assert.NotEqual(t, src["id"], dup["id"])
	assert.NotEqual(t, src["number"], dup["number"])
	assert.Equal(t, "created", dup["status"])
	assert.Equal(t, src["gross"], dup["gross"])

	w = do(t, h, http.MethodDelete, "/invoices/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/invoices/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoicePDF(t *testing.T) {
	h, u := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/invoices", createBody(u.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := strconv.Itoa(int(created["id"].(float64)))

	w = do(t, h, http.MethodGet, "/invoices/"+id+"/pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-"+created["number"].(string)+".pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestPendingPositions(t *testing.T) {
	h, u := newTestRouter(t)
	uid := strconv.Itoa(int(u.ID))

	body := `{"user_id":` + uid + `,"description":"Hosting","quantity":"1","price":{"amount":4900,"currency":"EUR","rate":"19"},"tags":["hosting"]}`
	w := do(t, h, http.MethodPost, "/positions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/positions", `{"user_id":`+uid+`,"description":"Broken","quantity":"0","price":{"amount":1,"currency":"EUR"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/users/"+uid+"/positions/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.Equal(t, float64(1), list["total"])
}

func TestInvoiceRemovePosition(t *testing.T) {
	h, u := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/invoices", createBody(u.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := strconv.Itoa(int(decode(t, w)["id"].(float64)))

	w = do(t, h, http.MethodPost, "/invoices/"+id+"/positions",
		`{"description":"Hosting","quantity":"1","price":{"amount":4900,"currency":"EUR","rate":"19"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	positions := decode(t, w)["positions"].([]any)
	require.Len(t, positions, 2)
	first := strconv.Itoa(int(positions[0].(map[string]any)["id"].(float64)))

	w = do(t, h, http.MethodDelete, "/invoices/"+id+"/positions/"+first, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Len(t, got["positions"], 1)
	assert.Equal(t, float64(5831), got["gross"].(map[string]any)["EUR"])

	w = do(t, h, http.MethodDelete, "/invoices/"+id+"/positions/"+first, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/invoices/"+id+"/positions/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

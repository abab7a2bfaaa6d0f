package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusConflict, "invoice_locked", map[string]string{"id": "1"})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invoice_locked" || body.Details == nil {
		t.Errorf("body = %+v", body)
	}
}

func TestJSON_EncodeError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 got %d", w.Code)
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	Attachment(w, "invoice-1.pdf", "application/pdf", []byte("%PDF"))
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="invoice-1.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if w.Body.String() != "%PDF" {
		t.Errorf("body = %q", w.Body.String())
	}
}

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_RendersPage(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler("Balance Sheet Insight", func() string { return "gemini" })(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Balance Sheet Insight", "gemini", "/api/charts/growth.png"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestHandler_HealthNoteOnlyForAvailableRatio(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler("t", nil)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()

	if !strings.Contains(body, "if (!k.current_ratio.available) return '';") {
		t.Errorf("health note must be skipped when the current ratio is unavailable")
	}
	if strings.Contains(body, "opt(k.current_ratio, '') + (k.healthy") {
		t.Errorf("health note is appended unconditionally")
	}
}

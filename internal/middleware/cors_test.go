package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func preflight(handler http.Handler, origin, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	production := CORSMiddleware([]string{"https://till.example"}, false)(ok)
	if got := preflight(production, "https://till.example", http.MethodPost).Header().Get("Access-Control-Allow-Origin"); got != "https://till.example" {
		t.Errorf("allowed origin = %q", got)
	}
	if got := preflight(production, "https://evil.example", http.MethodPost).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin was allowed: %q", got)
	}
	if got := preflight(production, "https://till.example", http.MethodDelete).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("DELETE should not be allowed, got origin %q", got)
	}

	development := CORSMiddleware([]string{"https://till.example"}, true)(ok)
	if got := preflight(development, "http://localhost:5173", http.MethodPut).Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("development origin = %q, want *", got)
	}
}

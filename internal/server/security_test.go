package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openreel/openreel/internal/httputil"
)

func applySecurity(cfg SecurityConfig) (*httptest.ResponseRecorder, string) {
	handler := securityHeaders(cfg)
	var capturedNonce string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedNonce = httputil.NonceFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	handler(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec, capturedNonce
}

func TestSecurityHeaders_CSPContainsNonce(t *testing.T) {
	rec, nonce := applySecurity(SecurityConfig{BaseURL: "https://app.test"})

	if nonce == "" {
		t.Fatal("expected non-empty nonce in context")
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "'nonce-"+nonce+"'") {
		t.Errorf("CSP should contain nonce, got: %s", csp)
	}
}

func TestSecurityHeaders_CSPOmitsUnsafeInline(t *testing.T) {
	rec, _ := applySecurity(SecurityConfig{BaseURL: "https://app.test"})

	if csp := rec.Header().Get("Content-Security-Policy"); strings.Contains(csp, "'unsafe-inline'") {
		t.Errorf("CSP should not contain 'unsafe-inline', got: %s", csp)
	}
}

func TestSecurityHeaders_CSPIncludesStorageEndpoint(t *testing.T) {
	rec, _ := applySecurity(SecurityConfig{
		BaseURL:         "https://app.test",
		StorageEndpoint: "https://storage.example.com",
	})

	csp := rec.Header().Get("Content-Security-Policy")
	for _, directive := range []string{"media-src", "connect-src"} {
		if !strings.Contains(csp, directive+" 'self' https://storage.example.com") {
			t.Errorf("%s should include the storage endpoint, got: %s", directive, csp)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	rec, _ := applySecurity(SecurityConfig{BaseURL: "https://app.test"})
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS header for https base URL")
	}

	rec, _ = applySecurity(SecurityConfig{BaseURL: "http://localhost:8080"})
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set for plain http deployments")
	}
}

func TestSecurityHeaders_FreshNoncePerRequest(t *testing.T) {
	_, first := applySecurity(SecurityConfig{})
	_, second := applySecurity(SecurityConfig{})
	if first == second {
		t.Error("each request must get its own nonce")
	}
}

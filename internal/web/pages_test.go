package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openreel/openreel/internal/httputil"
)

func renderPage(t *testing.T, serve http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(httputil.ContextWithNonce(req.Context(), "test-nonce"))
	rec := httptest.NewRecorder()
	serve(rec, req)
	return rec
}

func TestPages_RenderWithNoncedScripts(t *testing.T) {
	pages := NewPages()

	tests := []struct {
		name   string
		serve  http.HandlerFunc
		marker string
	}{
		{"home", pages.Home, "Latest videos"},
		{"login", pages.Login, "login-form"},
		{"signup", pages.Signup, "signup-form"},
		{"upload", pages.Upload, "upload-form"},
		{"watch", pages.Watch, "watch-status"},
		{"admin", pages.Admin, "Admin console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderPage(t, tt.serve)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("unexpected content type %q", ct)
			}

			body := rec.Body.String()
			if !strings.Contains(body, tt.marker) {
				t.Errorf("page missing %q", tt.marker)
			}
			if !strings.Contains(body, `<script nonce="test-nonce">`) {
				t.Error("inline scripts must carry the request nonce")
			}
			if !strings.Contains(body, `<style nonce="test-nonce">`) {
				t.Error("inline styles must carry the request nonce")
			}
		})
	}
}

func TestHomePage_HasEmptyStateText(t *testing.T) {
	rec := renderPage(t, NewPages().Home)
	if !strings.Contains(rec.Body.String(), "No videos yet.") {
		t.Error("feed script must carry the explicit empty state text")
	}
}

func TestUploadPage_ChecksTitleBeforeStartingUpload(t *testing.T) {
	// Both preconditions stop the submit handler before any request fires:
	// first the file check, then the trimmed-title check.
	body := renderPage(t, NewPages().Upload).Body.String()

	fileCheck := strings.Index(body, "'Choose a video file.'")
	titleCheck := strings.Index(body, "if (!title.trim())")
	uploadStart := strings.Index(body, "reel.api('/api/uploads'")
	if fileCheck == -1 || titleCheck == -1 || uploadStart == -1 {
		t.Fatal("upload page missing the file check, title check, or upload start")
	}
	if !(fileCheck < titleCheck && titleCheck < uploadStart) {
		t.Error("file and title checks must precede the upload start, in that order")
	}
	if !strings.Contains(body, "'Title is required.'") {
		t.Error("blank title must surface the title validation message")
	}
}

func TestPageShell_RetriesUnauthorizedWithTokenRefresh(t *testing.T) {
	body := renderPage(t, NewPages().Home).Body.String()

	if !strings.Contains(body, "fetch('/api/auth/refresh', { method: 'POST' })") {
		t.Error("shell script must call the refresh endpoint")
	}
	if !strings.Contains(body, "res.status !== 401") {
		t.Error("shell script must gate the retry on a 401 response")
	}
	if !strings.Contains(body, "reel.setToken(body.accessToken)") {
		t.Error("shell script must store the rotated access token")
	}
}

func TestUploadPage_RedirectsAreAdvisoryOnly(t *testing.T) {
	// The page itself always renders 200; access control lives in the API
	// middleware, not here.
	rec := renderPage(t, NewPages().Upload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "location.href = '/login'") {
		t.Error("upload page should send signed-out visitors to the login page")
	}
}

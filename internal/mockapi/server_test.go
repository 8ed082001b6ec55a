package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/portalAuth/role"
	"github.com/MrEthical07/portalAuth/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := DevConfig()
	if err != nil {
		t.Fatalf("dev config: %v", err)
	}
	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", RefreshCookie)
	return nil
}

func TestRegisterLoginMeFlow(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "Studio@Example.com", "password": "pw", "full_name": "Studio One",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}
	cookie := refreshCookie(t, rec)
	if !cookie.HttpOnly {
		t.Fatal("refresh cookie must be HTTP-only")
	}

	rec = do(t, h, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "studio@example.com", "password": "pw"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	var tok tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil || tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("unexpected token body %s (%v)", rec.Body.String(), err)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("me status %d: %s", rec.Code, rec.Body.String())
	}
	var u session.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Email != "studio@example.com" || u.Role != role.Studio || u.DisplayName != "Studio One" || u.Credits != defaultCredits {
		t.Fatalf("unexpected user %+v", u)
	}
	if !strings.Contains(rec.Body.String(), `"availableCredits"`) {
		t.Fatalf("expected availableCredits field, got %s", rec.Body.String())
	}
	if rec.Header().Get(TraceIDHeader) == "" {
		t.Fatal("expected trace id header")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.CreateUser("a@b.com", "right", "A", role.Studio); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := s.Handler()

	for _, body := range []map[string]string{
		{"email": "a@b.com", "password": "wrong"},
		{"email": "nobody@b.com", "password": "right"},
	} {
		rec := do(t, h, http.MethodPost, "/api/v1/auth/login", body, nil)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), msgBadCredentials) {
			t.Fatalf("expected 400 bad credentials, got %d %s", rec.Code, rec.Body.String())
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	body := map[string]string{"email": "a@b.com", "password": "pw"}
	do(t, h, http.MethodPost, "/api/v1/auth/register", body, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/auth/register", body, nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "already exists") {
		t.Fatalf("expected duplicate rejection, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSuperAdminRegisterCreatesAdmin(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	rec := do(t, h, http.MethodPost, "/api/v1/auth/super-admin/register", map[string]string{"email": "root@b.com", "password": "pw"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	acc, ok := s.lookupEmail("root@b.com")
	if !ok || acc.user.Role != role.Admin {
		t.Fatalf("expected admin account, got %+v", acc)
	}
}

func TestRefreshUsesCookie(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), msgRefreshMissing) {
		t.Fatalf("expected missing cookie 401, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/v1/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "garbage"})
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid refresh token, got %d", rec.Code)
	}

	reg := do(t, h, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "a@b.com", "password": "pw"}, nil)
	cookie := refreshCookie(t, reg)
	rec = do(t, h, http.MethodPost, "/api/v1/auth/refresh", nil, func(r *http.Request) { r.AddCookie(cookie) })
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "accessToken") {
		t.Fatalf("expected refreshed token, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMeWithoutTokenAndLogout(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/auth/me", nil, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), msgTokenNotGiven) {
		t.Fatalf("expected token not provided, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status %d", rec.Code)
	}
	if c := refreshCookie(t, rec); c.MaxAge >= 0 {
		t.Fatalf("expected cookie deletion, got max-age %d", c.MaxAge)
	}
}

func TestHealthAndTraceParent(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodGet, "/health", nil, func(r *http.Request) {
		r.Header.Set(TraceParentHeader, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(TraceIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("expected trace id from traceparent, got %q", got)
	}
}

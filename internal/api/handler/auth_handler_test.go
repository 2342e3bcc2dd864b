package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/api/middleware"
	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
)

type stubAuthService struct {
	session    *ports.Session
	err        error
	refreshed  string
	refreshArg string
	loginArgs  []string
}

func (s *stubAuthService) Register(_ context.Context, _ ports.RegisterInput) (*ports.Session, error) {
	return s.session, s.err
}

func (s *stubAuthService) Login(_ context.Context, handle, password, _ string) (*ports.Session, error) {
	s.loginArgs = []string{handle, password}
	return s.session, s.err
}

func (s *stubAuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	s.refreshArg = refreshToken
	return s.refreshed, s.err
}

func (s *stubAuthService) Me(_ context.Context, _ string) (*domain.Account, *domain.Family, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.session.Account, s.session.Family, nil
}

func testSession() *ports.Session {
	return &ports.Session{
		Account:      &domain.Account{ID: "acc_1", Email: "kid@x.com", Role: domain.RoleChild, FamilyID: "fam_1"},
		Family:       &domain.Family{ID: "fam_1", Name: "Lee"},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
}

func jsonContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func assertSessionCookies(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, name := range []string{accessCookieName, refreshCookieName} {
		ck := findCookie(t, rec, name)
		if ck == nil {
			t.Fatalf("missing %s cookie", name)
		}
		if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
			t.Fatalf("%s cookie flags wrong: %+v", name, ck)
		}
		if ck.Value == "" {
			t.Fatalf("%s cookie empty", name)
		}
	}
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{session: testSession()}
	h := NewAuthHandler(svc)

	c, rec := jsonContext(t, http.MethodPost, "/auth/register",
		`{"email":"kid@x.com","password":"secret123","name":"Kid","familyName":"Lee"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertSessionCookies(t, rec)

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "access-token" || resp.User == nil || resp.User.ID != "acc_1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "refresh-token") {
		t.Fatalf("refresh token must not appear in the body")
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})

	cases := map[string]string{
		"bad email":                `{"email":"nope","password":"secret123","name":"Kid","familyName":"Lee"}`,
		"weak password":            `{"email":"kid@x.com","password":"short","name":"Kid","familyName":"Lee"}`,
		"digits only":              `{"email":"kid@x.com","password":"12345678","name":"Kid","familyName":"Lee"}`,
		"short multibyte password": `{"email":"kid@x.com","password":"密码密a1","name":"Kid","familyName":"Lee"}`,
		"missing name":             `{"email":"kid@x.com","password":"secret123","familyName":"Lee"}`,
		"missing family":           `{"email":"kid@x.com","password":"secret123","name":"Kid"}`,
	}

	for name, body := range cases {
		c, _ := jsonContext(t, http.MethodPost, "/auth/register", body)
		err := h.Register(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", name, err)
		}
	}
}

func TestAuthHandler_RegisterMultibytePassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})

	// 8 characters (23 bytes): length is counted in characters, not bytes.
	c, rec := jsonContext(t, http.MethodPost, "/auth/register",
		`{"email":"kid@x.com","password":"密码密码密码a1","name":"Kid","familyName":"Lee"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrDuplicateHandle})

	c, _ := jsonContext(t, http.MethodPost, "/auth/register",
		`{"email":"kid@x.com","password":"secret123","name":"Kid","familyName":"Lee"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateHandle) {
		t.Fatalf("expected duplicate handle error, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{session: testSession()}
	h := NewAuthHandler(svc)

	c, rec := jsonContext(t, http.MethodPost, "/auth/login",
		`{"account":"kid@x.com","password":"secret123"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertSessionCookies(t, rec)
	if svc.loginArgs[0] != "kid@x.com" || svc.loginArgs[1] != "secret123" {
		t.Fatalf("wrong credentials passed through: %v", svc.loginArgs)
	}
}

func TestAuthHandler_LoginBadCredential(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrBadCredential})

	c, _ := jsonContext(t, http.MethodPost, "/auth/login",
		`{"account":"kid@x.com","password":"wrongpass1"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrBadCredential) {
		t.Fatalf("expected bad credential error, got %v", err)
	}
}

func TestAuthHandler_RefreshFromHeader(t *testing.T) {
	svc := &stubAuthService{refreshed: "new-access"}
	h := NewAuthHandler(svc)

	c, rec := jsonContext(t, http.MethodPost, "/auth/refresh", "")
	c.Request().Header.Set(refreshHeader, "refresh-token")

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if svc.refreshArg != "refresh-token" {
		t.Fatalf("wrong token passed: %q", svc.refreshArg)
	}

	var resp refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "new-access" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if ck := findCookie(t, rec, accessCookieName); ck == nil || ck.Value != "new-access" {
		t.Fatalf("access cookie not refreshed: %+v", ck)
	}
}

func TestAuthHandler_RefreshFromBody(t *testing.T) {
	svc := &stubAuthService{refreshed: "new-access"}
	h := NewAuthHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("  refresh-token\n"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if svc.refreshArg != "refresh-token" {
		t.Fatalf("body token should be trimmed, got %q", svc.refreshArg)
	}
}

func TestAuthHandler_RefreshMissingToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(t, http.MethodPost, "/auth/refresh", "")
	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_RefreshInvalidToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrInvalidToken})

	c, _ := jsonContext(t, http.MethodPost, "/auth/refresh", "")
	c.Request().Header.Set(refreshHeader, "expired")

	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := jsonContext(t, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}

	for _, name := range []string{accessCookieName, refreshCookieName} {
		ck := findCookie(t, rec, name)
		if ck == nil || ck.MaxAge >= 0 || ck.Value != "" {
			t.Fatalf("%s cookie not cleared: %+v", name, ck)
		}
	}

	var resp logoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success true")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	session := testSession()
	h := NewAuthHandler(&stubAuthService{session: session})

	c, rec := jsonContext(t, http.MethodGet, "/auth/me", "")
	c.Set(middleware.AccountKey, session.Account)

	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.ID != "acc_1" || resp.Family == nil || resp.Family.ID != "fam_1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_MeWithoutPrincipal(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})

	c, _ := jsonContext(t, http.MethodGet, "/auth/me", "")
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

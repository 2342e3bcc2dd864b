package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/famlink/family-api/internal/core/ports"
)

type memoryCounterStore struct {
	counters map[string]ports.Counter
	getErr   error
	setErr   error
}

func newMemoryCounterStore() *memoryCounterStore {
	return &memoryCounterStore{counters: map[string]ports.Counter{}}
}

func (s *memoryCounterStore) Get(_ context.Context, key string) (*ports.Counter, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.counters[key]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memoryCounterStore) Set(_ context.Context, key string, counter ports.Counter, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.counters[key] = counter
	return nil
}

func limitedRequest(t *testing.T, mw echo.MiddlewareFunc, ip string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	store := newMemoryCounterStore()
	mw := RateLimit(store, Policy{Tag: "auth", Window: 5 * time.Minute, Max: 3}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		rec := limitedRequest(t, mw, "1.2.3.4")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := limitedRequest(t, mw, "1.2.3.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}

	var body rateLimitedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.RetryAfter < 1 || body.RetryAfter > 300 {
		t.Fatalf("retryAfter out of range: %d", body.RetryAfter)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}

func TestRateLimit_SeparateIdentities(t *testing.T) {
	store := newMemoryCounterStore()
	mw := RateLimit(store, Policy{Tag: "auth", Window: time.Minute, Max: 1}, zerolog.Nop())

	if rec := limitedRequest(t, mw, "1.1.1.1"); rec.Code != http.StatusOK {
		t.Fatalf("first identity: got %d", rec.Code)
	}
	if rec := limitedRequest(t, mw, "2.2.2.2"); rec.Code != http.StatusOK {
		t.Fatalf("second identity should have its own budget, got %d", rec.Code)
	}
	if rec := limitedRequest(t, mw, "1.1.1.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first identity should be exhausted, got %d", rec.Code)
	}
}

func TestRateLimit_FreshWindowAfterExpiry(t *testing.T) {
	store := newMemoryCounterStore()
	mw := RateLimit(store, Policy{Tag: "auth", Window: time.Minute, Max: 1}, zerolog.Nop())

	// An expired counter behaves as if absent.
	store.counters["rate:auth:1.2.3.4"] = ports.Counter{Count: 99, ResetAt: time.Now().Add(-time.Second)}

	rec := limitedRequest(t, mw, "1.2.3.4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fresh window, got %d", rec.Code)
	}
	if got := store.counters["rate:auth:1.2.3.4"].Count; got != 1 {
		t.Fatalf("expected counter reset to 1, got %d", got)
	}
}

func TestRateLimit_FailsOpenOnStoreErrors(t *testing.T) {
	store := newMemoryCounterStore()
	store.getErr = errors.New("store down")
	mw := RateLimit(store, Policy{Tag: "auth", Window: time.Minute, Max: 1}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		if rec := limitedRequest(t, mw, "1.2.3.4"); rec.Code != http.StatusOK {
			t.Fatalf("expected fail-open on read error, got %d", rec.Code)
		}
	}

	store.getErr = nil
	store.setErr = errors.New("store down")
	if rec := limitedRequest(t, mw, "5.6.7.8"); rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open on write error, got %d", rec.Code)
	}
}

func TestClientIdentity(t *testing.T) {
	e := echo.New()

	identity := func(setup func(*http.Request)) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		setup(req)
		return clientIdentity(e.NewContext(req, httptest.NewRecorder()))
	}

	if got := identity(func(r *http.Request) { r.Header.Set("X-Real-IP", "9.9.9.9") }); got != "9.9.9.9" {
		t.Fatalf("X-Real-IP: got %q", got)
	}
	if got := identity(func(r *http.Request) { r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2") }); got != "10.0.0.1" {
		t.Fatalf("X-Forwarded-For: got %q", got)
	}
	if got := identity(func(r *http.Request) {
		r.Header.Set("X-Real-IP", "9.9.9.9")
		r.Header.Set("X-Forwarded-For", "10.0.0.1")
	}); got != "9.9.9.9" {
		t.Fatalf("X-Real-IP should win: got %q", got)
	}
	if got := identity(func(r *http.Request) {}); got != "unknown" {
		t.Fatalf("no headers: got %q", got)
	}
}

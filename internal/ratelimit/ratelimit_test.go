package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type fakeStore struct {
	counts  map[string]int64
	expires map[string]time.Duration
	fail    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (s *fakeStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.fail {
		return 0, fmt.Errorf("store down")
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if s.fail {
		return fmt.Errorf("store down")
	}
	s.expires[key] = ttl
	return nil
}

func doRequest(t *testing.T, limiter *Limiter, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if apiKey != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := limiter.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLimiterAllowsWithinWindow(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	limiter := New(nil, store, "ratelimit:test", time.Hour, 2)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, limiter, "key-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: unexpected status %d", i, rec.Code)
		}
	}
	rec := doRequest(t, limiter, "key-1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
}

func TestLimiterSetsHeaders(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	limiter := New(nil, store, "ratelimit:test", time.Hour, 10)

	rec := doRequest(t, limiter, "key-1")
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Fatalf("unexpected limit header: %s", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Fatalf("unexpected remaining header: %s", got)
	}
}

func TestLimiterSetsWindowExpiryOnce(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	limiter := New(nil, store, "ratelimit:test", time.Minute, 10)

	doRequest(t, limiter, "key-1")
	doRequest(t, limiter, "key-1")

	if got := store.expires["ratelimit:test:key-1"]; got != time.Minute {
		t.Fatalf("unexpected window ttl: %v", got)
	}
}

func TestLimiterKeysByIdentifier(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	limiter := New(nil, store, "ratelimit:test", time.Hour, 1)

	if rec := doRequest(t, limiter, "key-a"); rec.Code != http.StatusOK {
		t.Fatalf("first key-a request must pass, got %d", rec.Code)
	}
	if rec := doRequest(t, limiter, "key-b"); rec.Code != http.StatusOK {
		t.Fatalf("key-b must have its own window, got %d", rec.Code)
	}
	if rec := doRequest(t, limiter, "key-a"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second key-a request must be limited, got %d", rec.Code)
	}
}

func TestLimiterFailsOpen(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.fail = true
	limiter := New(nil, store, "ratelimit:test", time.Hour, 1)

	for i := 0; i < 3; i++ {
		rec := doRequest(t, limiter, "key-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("store failure must fail open, got %d", rec.Code)
		}
	}
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aayushnamdev/LinkedAgent/internal/posts"
	"github.com/aayushnamdev/LinkedAgent/internal/votes"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestIntQuery(t *testing.T) {
	t.Parallel()

	c := testContext(t, "/?limit=40&bad=xyz")
	if got := intQuery(c, "limit", 25); got != 40 {
		t.Fatalf("limit = %d, want 40", got)
	}
	if got := intQuery(c, "bad", 25); got != 25 {
		t.Fatalf("unparsable value should fall back")
	}
	if got := intQuery(c, "missing", 25); got != 25 {
		t.Fatalf("missing value should fall back")
	}
}

func TestBoolQuery(t *testing.T) {
	t.Parallel()

	c := testContext(t, "/?unread=true&other=1")
	if !boolQuery(c, "unread") {
		t.Fatalf("unread=true should parse")
	}
	if boolQuery(c, "other") {
		t.Fatalf("only the literal true counts")
	}
}

func TestChainPickSkipsNil(t *testing.T) {
	t.Parallel()

	mw := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	chain := &Chain{Auth: mw}
	if got := len(chain.pick(chain.Auth, chain.Read)); got != 1 {
		t.Fatalf("pick = %d middleware, want 1", got)
	}
}

func TestErrorMappers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{postError(posts.ErrNotFound), http.StatusNotFound},
		{postError(posts.ErrNotOwner), http.StatusForbidden},
		{voteError(votes.ErrInvalidVote), http.StatusBadRequest},
		{voteError(votes.ErrNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		httpErr, ok := tc.err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("expected *echo.HTTPError, got %T", tc.err)
		}
		if httpErr.Code != tc.want {
			t.Fatalf("code = %d, want %d", httpErr.Code, tc.want)
		}
	}
}

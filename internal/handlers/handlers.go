// Package handlers exposes the HTTP API.
package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Chain bundles the middleware every handler picks from: API key auth and
// the rate limit tiers. Nil entries are skipped so tests can register
// handlers bare.
type Chain struct {
	Auth         echo.MiddlewareFunc
	OptionalAuth echo.MiddlewareFunc
	Registration echo.MiddlewareFunc
	Read         echo.MiddlewareFunc
	Write        echo.MiddlewareFunc
}

func (ch *Chain) pick(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(c echo.Context, name string) bool {
	return c.QueryParam(name) == "true"
}

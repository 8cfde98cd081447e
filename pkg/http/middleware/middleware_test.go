package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

func serve(e *echo.Echo, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	return e
}

func TestCORS(t *testing.T) {
	e := newEcho(CORS(CORSConfig{
		AllowOrigins: []string{"http://dash.local"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
		MaxAge:       600,
	}))
	e.OPTIONS("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	t.Run("no origin", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/ok", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})

	t.Run("allowed origin", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/ok", map[string]string{echo.HeaderOrigin: "http://dash.local"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://dash.local", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
	})

	t.Run("rejected origin", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/ok", map[string]string{echo.HeaderOrigin: "http://evil.local"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := serve(e, http.MethodOptions, "/ok", map[string]string{echo.HeaderOrigin: "http://dash.local"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
		assert.Equal(t, echo.HeaderContentType, rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
		assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
	})
}

func TestCORSWildcard(t *testing.T) {
	e := newEcho(CORS(CORSConfig{}))
	rec := serve(e, http.MethodGet, "/ok", map[string]string{echo.HeaderOrigin: "http://any.local"})
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRateLimiter(t *testing.T) {
	e := newEcho(NewRateLimiter(0.001, 2, logger.Nop()).Middleware())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ok", nil).Code)

	rec := serve(e, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRecover(t *testing.T) {
	e := newEcho(Recover(logger.Nop()))

	rec := serve(e, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	e := newEcho(m.Middleware())

	serve(e, http.MethodGet, "/ok", nil)
	serve(e, http.MethodGet, "/ok", nil)
	serve(e, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/ok", http.MethodGet, "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	n, err := testutil.GatherAndCount(reg, "cmdash_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

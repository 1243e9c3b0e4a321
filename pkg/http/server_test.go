package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error { return JSONResponse(c, map[string]string{"status": "ok"}) })
	e.GET("/panic", func(echo.Context) error { panic("boom") })
}

func serve(s *Server, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_MiddlewareChain(t *testing.T) {
	s := NewServer(routes{}, nil, WithPort(0))

	rec := serve(s, http.MethodGet, "/ok", map[string]string{echo.HeaderOrigin: "http://dashboard"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = serve(s, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_MetricsDisabled(t *testing.T) {
	s := NewServer(routes{}, nil, WithMetrics(""), WithCORS(false))

	rec := serve(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, http.MethodGet, "/ok", map[string]string{echo.HeaderOrigin: "http://dashboard"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

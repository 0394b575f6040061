package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/recipes"},
		{http.MethodGet, "/api/v1/favourites"},
		{http.MethodGet, "/api/v1/subscriptions"},
		{http.MethodGet, "/api/v1/purchases"},
		{http.MethodGet, "/api/v1/purchases/download"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := s.do(t, r.method, r.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

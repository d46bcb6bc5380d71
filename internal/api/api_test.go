package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestCORSPreflightWithWildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(nil, []string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
		allowAll bool
	}{
		{"empty", nil, nil, false},
		{"single", []string{"https://a.example.com"}, []string{"https://a.example.com"}, false},
		{"comma separated", []string{"https://a.com, https://b.com"}, []string{"https://a.com", "https://b.com"}, false},
		{"wildcard", []string{"*"}, nil, true},
		{"wildcard mixed in", []string{"https://a.com", "*"}, []string{"https://a.com"}, true},
		{"blank entries dropped", []string{" , https://a.com"}, []string{"https://a.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, allowAll := normalizeAllowedOrigins(tt.input)
			assert.Equal(t, tt.expected, parsed)
			assert.Equal(t, tt.allowAll, allowAll)
		})
	}
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eclat/internal/config"

	"github.com/stretchr/testify/assert"
)

func newAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:      true,
		HeaderAPIKey: "x-api-key",
		APIKeys: []config.APIClientKey{
			{Key: "full-access", Name: "admin"},
			{Key: "export-only", Name: "exporter", Permissions: []string{"admin:export"}},
		},
	}
}

func authProbe(t *testing.T, auth *Auth, path, apiKey string) int {
	t.Helper()
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthMissingKey(t *testing.T) {
	auth := NewAuth(newAuthConfig())
	assert.Equal(t, http.StatusUnauthorized, authProbe(t, auth, "/api/v1/admin/clients", ""))
}

func TestAuthInvalidKey(t *testing.T) {
	auth := NewAuth(newAuthConfig())
	assert.Equal(t, http.StatusUnauthorized, authProbe(t, auth, "/api/v1/admin/clients", "nope"))
}

func TestAuthKeyWithoutPermissionList(t *testing.T) {
	auth := NewAuth(newAuthConfig())
	assert.Equal(t, http.StatusOK, authProbe(t, auth, "/api/v1/admin/clients", "full-access"))
	assert.Equal(t, http.StatusOK, authProbe(t, auth, "/api/v1/admin/export", "full-access"))
}

func TestAuthScopedKey(t *testing.T) {
	auth := NewAuth(newAuthConfig())
	assert.Equal(t, http.StatusOK, authProbe(t, auth, "/api/v1/admin/export", "export-only"))
	assert.Equal(t, http.StatusForbidden, authProbe(t, auth, "/api/v1/admin/clients", "export-only"))
	assert.Equal(t, http.StatusForbidden, authProbe(t, auth, "/api/v1/admin/appointments", "export-only"))
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	cfg := newAuthConfig()
	cfg.Enabled = false
	auth := NewAuth(cfg)
	assert.Equal(t, http.StatusOK, authProbe(t, auth, "/api/v1/admin/clients", ""))
}

func TestRequiredPermissionMapping(t *testing.T) {
	cases := map[string]string{
		"/api/v1/admin/appointments":           "admin:appointments",
		"/api/v1/admin/appointments/5/confirm": "admin:appointments",
		"/api/v1/admin/closures":               "admin:closures",
		"/api/v1/admin/closures/3":             "admin:closures",
		"/api/v1/admin/clients/7/appointments": "admin:clients",
		"/api/v1/admin/giftcards/redeem":       "admin:giftcards",
		"/api/v1/admin/export":                 "admin:export",
		"/api/v1/availability":                 "",
	}
	for path, want := range cases {
		assert.Equal(t, want, requiredPermission(path), path)
	}
}

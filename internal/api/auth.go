package api

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"eclat/internal/config"

	"golang.org/x/time/rate"
)

var errPermissionDenied = fmt.Errorf("permission denied")

// Auth provides API-key auth for the admin surface and per-caller rate
// limiting for everything.
type Auth struct {
	cfg      config.AuthConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewAuth(cfg config.AuthConfig) *Auth {
	m := make(map[string]config.APIClientKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		m[k.Key] = k
	}
	return &Auth{cfg: cfg, clients: m}
}

// Wrap guards admin routes with API-key auth.
func (a *Auth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if err := a.checkAuth(r); err != nil {
			statusCode := http.StatusUnauthorized
			code := "unauthorized"
			if err == errPermissionDenied {
				statusCode = http.StatusForbidden
				code = "forbidden"
			}
			writeError(w, statusCode, code, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit applies the per-caller token bucket to every request.
func (a *Auth) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.RateLimit.RPS > 0 {
			if !a.getLimiter(a.callerKey(r)).Allow() {
				writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return fmt.Errorf("missing api key")
	}

	client, ok := a.lookup(apiKey)
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

// lookup does a constant-time scan so key comparison does not leak prefixes.
func (a *Auth) lookup(apiKey string) (config.APIClientKey, bool) {
	for key, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return client, true
		}
	}
	return config.APIClientKey{}, false
}

// checkPermissions matches the key's permission list against the admin area
// the request targets. A key with no permissions listed may do anything.
func (a *Auth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermission(r.URL.Path)
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/admin/appointments"):
		return "admin:appointments"
	case strings.HasPrefix(path, "/api/v1/admin/closures"):
		return "admin:closures"
	case strings.HasPrefix(path, "/api/v1/admin/clients"):
		return "admin:clients"
	case strings.HasPrefix(path, "/api/v1/admin/giftcards"):
		return "admin:giftcards"
	case strings.HasPrefix(path, "/api/v1/admin/export"):
		return "admin:export"
	default:
		return ""
	}
}

func (a *Auth) headerName() string {
	header := strings.TrimSpace(a.cfg.HeaderAPIKey)
	if header == "" {
		header = "x-api-key"
	}
	return header
}

func (a *Auth) callerKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *Auth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

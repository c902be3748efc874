package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy lists the browser origins allowed to call the public API.
type CORSPolicy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// PublicFormPolicy is the policy for a browser form posting JSON from the
// given origins. "*" allows any origin.
func PublicFormPolicy(origins []string) CORSPolicy {
	return CORSPolicy{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		MaxAge:         12 * time.Hour,
	}
}

// WithCORS answers preflight requests from allowed origins with 204 and tags
// other responses with Access-Control-Allow-Origin. No origins means no CORS.
func WithCORS(policy CORSPolicy) Middleware {
	origins := make(map[string]struct{})
	anyOrigin := false
	for _, o := range policy.AllowedOrigins {
		o = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
		switch o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[o] = struct{}{}
		}
	}
	if !anyOrigin && len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	methods := strings.Join(policy.AllowedMethods, ", ")
	headers := strings.Join(policy.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(int(policy.MaxAge.Seconds()))

	allowed := func(origin string) (string, bool) {
		if anyOrigin {
			return "*", true
		}
		if _, ok := origins[strings.ToLower(origin)]; ok {
			return origin, true
		}
		return "", false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Add("Vary", "Origin")
			value, ok := allowed(origin)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Origin", value)

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			if policy.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

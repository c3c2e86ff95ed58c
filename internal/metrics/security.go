package metrics

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig controls the headers added to every metrics response.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists the origins allowed to scrape from a browser.
	// "*" matches every origin.
	AllowedOrigins []string
	// AllowedMethods lists the accepted request methods.
	AllowedMethods []string
}

// DefaultSecurityConfig allows cross-origin GET scrapes from anywhere.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}
}

func (c SecurityConfig) originAllowed(origin string) bool {
	return slices.Contains(c.AllowedOrigins, "*") || slices.Contains(c.AllowedOrigins, origin)
}

// SecurityMiddleware sets hardening headers, answers CORS preflight requests
// and rejects methods outside config.AllowedMethods.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if origin := r.Header.Get("Origin"); config.EnableCORS && origin != "" && config.originAllowed(origin) {
			allowed := origin
			if slices.Contains(config.AllowedOrigins, "*") {
				allowed = "*"
			}
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			h.Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !slices.Contains(config.AllowedMethods, r.Method) && !(r.Method == http.MethodHead && slices.Contains(config.AllowedMethods, http.MethodGet)) {
			h.Set("Allow", methods)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

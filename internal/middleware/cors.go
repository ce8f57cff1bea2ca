package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders  = "Content-Type, Authorization, " + RequestIDHeader
	corsAllowMethods  = "GET,POST,PUT,DELETE,OPTIONS"
	corsExposeHeaders = RequestIDHeader
	corsMaxAge        = "600"
)

// CORS returns middleware that adds Access-Control headers for allowed origins
// and answers preflight OPTIONS requests itself.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		allowed[strings.ToLower(origin)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				_, ok := allowed[strings.ToLower(origin)]
				if allowAll || ok {
					h := w.Header()
					if allowAll {
						h.Set("Access-Control-Allow-Origin", "*")
					} else {
						h.Set("Access-Control-Allow-Origin", origin)
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Allow-Methods", corsAllowMethods)
					h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import "net/http"

// CORS answers preflights and echoes allowed origins. A "*" entry allows any
// origin but never with credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allow[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				h := w.Header()
				h.Add("Vary", "Origin")
				if _, ok := allow[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
				} else if wildcard {
					h.Set("Access-Control-Allow-Origin", "*")
				}
				if h.Get("Access-Control-Allow-Origin") != "" {
					h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
					h.Set("Access-Control-Expose-Headers", HeaderRequestID)
					h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				}
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

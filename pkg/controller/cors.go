package controller

import "net/http"

// WithCORS returns a middleware that allows browser clients from origin ("*"
// when empty) to start runs and download reports. OPTIONS preflight requests
// are answered with 204 No Content.
func WithCORS(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Request-Id")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			// downloads need the file name and the request id visible to scripts
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-Id")
			if origin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

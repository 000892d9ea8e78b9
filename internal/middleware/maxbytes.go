package middleware

import "net/http"

// DefaultMaxBodyBytes is the default maximum request body size (8 MiB).
// Import batches carry whole spreadsheets worth of rows, so the cap is
// higher than a typical JSON API would use.
const DefaultMaxBodyBytes = 8 << 20

// MaxBytes limits the request body size. Bodies exceeding maxBytes get a
// 413. Apply to routes that accept a body.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

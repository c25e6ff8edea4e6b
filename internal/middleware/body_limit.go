package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zephy/zephy-api/internal/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is rejected with 413 up front; chunked bodies go through chi's
// RequestSize and surface as *http.MaxBytesError from the JSON decoder.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	capped := chimw.RequestSize(maxBytes)
	return func(next http.Handler) http.Handler {
		limited := capped(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				response.PayloadTooLarge(w)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

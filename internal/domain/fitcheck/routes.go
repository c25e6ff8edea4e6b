package fitcheck

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns fitcheck routes. Every route needs a signed-in user.
func (h *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAuth)

	r.Post("/", h.Record)
	r.Get("/history", h.History)

	return r
}

package poll

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the polls router
func (h *Handler) Routes(requireAuth, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/{id}/vote", h.Vote)
		r.Post("/{id}/close", h.Close)
	})

	return r
}

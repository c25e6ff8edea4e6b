package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns chat routes. rateLimit runs after optionalAuth so signed-in
// users are keyed by id rather than address.
func (h *Handler) Routes(requireAuth, optionalAuth, rateLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(optionalAuth, rateLimit).Post("/", h.Send)
	r.With(requireAuth).Get("/history", h.History)

	return r
}

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns users router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.Create)
	r.Post("/auth", h.Auth)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Put("/update", h.Update)
		r.Get("/{id}", h.Get)
	})

	return r
}

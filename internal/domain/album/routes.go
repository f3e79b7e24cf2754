package album

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns albums router. Every album route acts for the caller.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/sale", h.Sell)
	r.Get("/my-collection", h.MyCollection)
	r.Delete("/remove/{id}", h.Remove)

	return r
}

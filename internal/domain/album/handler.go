package album

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/ledger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/user"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/middleware"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/errorhandler"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/response"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/validator"
)

// Handler handles album HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates album handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Sell handles POST /albums/sale
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	a, err := h.service.Sell(r.Context(), middleware.GetUserEmail(r.Context()), &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrTransport) && a != nil:
			response.Accepted(w, SaleResponse{Album: a, LedgerDispatched: false})
		case errors.Is(err, ErrAlreadyPurchased):
			response.Conflict(w, "Album already purchased by this user")
		case errors.Is(err, ErrInvalidValue):
			response.BadRequest(w, "value must be greater than zero with at most two decimal places")
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		}
		return
	}

	response.Created(w, SaleResponse{Album: a, LedgerDispatched: true})
}

// MyCollection handles GET /albums/my-collection
func (h *Handler) MyCollection(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.GetUserAlbums(r.Context(), middleware.GetUserEmail(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		return
	}

	response.OK(w, albums)
}

// Remove handles DELETE /albums/remove/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid album id")
		return
	}

	err = h.service.RemoveAlbumByID(r.Context(), middleware.GetUserEmail(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlbumNotFound):
			response.NotFound(w, "Album not found")
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		}
		return
	}

	response.NoContent(w)
}

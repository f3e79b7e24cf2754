package wallet

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/middleware"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/errorhandler"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type creditResponse struct {
	Message string  `json:"message"`
	Wallet  *Wallet `json:"wallet"`
}

// Get returns the authenticated user's wallet.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	wallet, err := h.svc.Lookup(r.Context(), email)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		return
	}
	if wallet == nil {
		response.NotFound(w, "wallet not found for authenticated user")
		return
	}

	response.OK(w, wallet)
}

// Credit adds the path value to the authenticated user's balance.
func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	amount, err := decimal.NewFromString(chi.URLParam(r, "value"))
	if err != nil {
		response.BadRequest(w, "value must be a decimal number")
		return
	}

	wallet, err := h.svc.Credit(r.Context(), email, amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "value must be greater than zero with at most two decimal places")
		case errors.Is(err, ErrWalletNotFound):
			response.NotFound(w, "wallet not found for authenticated user")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		}
		return
	}

	response.OK(w, creditResponse{
		Message: "Value credited to user wallet successfully",
		Wallet:  wallet,
	})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Get)
	r.Post("/credit/{value}", h.Credit)
	return r
}

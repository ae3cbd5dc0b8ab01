package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soloviev/wearshop/internal/jwt-new/jwtmiddleware"
	"github.com/soloviev/wearshop/internal/service"
)

// CheckoutRequest — данные доставки, приходящие с оформлением заказа
type CheckoutRequest struct {
	Address string `json:"address" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Comment string `json:"comment" validate:"max=1000"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		order, err := checkoutService.Checkout(r.Context(), userID, service.OrderDetails{
			Address: req.Address,
			Phone:   req.Phone,
			Comment: req.Comment,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				logger.Warn("empty cart")
				http.Error(w, "cart is empty", http.StatusBadRequest)
			case errors.Is(err, service.ErrCartBusy):
				logger.Warn("cart is busy")
				http.Error(w, "cart is busy, try again", http.StatusConflict)
			default:
				logger.Error("checkout failed", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soloviev/wearshop/internal/jwt-new/jwtmiddleware"
	"github.com/soloviev/wearshop/internal/service"
)

// IssueLinkCodeResponse — выданный код привязки
type IssueLinkCodeResponse struct {
	Code string `json:"code"`
}

// ClaimLinkCodeRequest — запрос привязки от бота: сам код служит
// подтверждением владения аккаунтом
type ClaimLinkCodeRequest struct {
	Code   string `json:"code" validate:"required,len=6,numeric"`
	ChatID int64  `json:"chat_id" validate:"required"`
}

// IssueLinkCodeHandler обрабатывает запрос POST /api/link-code
func IssueLinkCodeHandler(log *slog.Logger, linkService service.LinkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.IssueLinkCodeHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		code, err := linkService.IssueCode(r.Context(), userID)
		if err != nil {
			logger.Error("failed to issue link code", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(IssueLinkCodeResponse{Code: code}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ClaimLinkCodeHandler обрабатывает запрос POST /api/link-code/claim
func ClaimLinkCodeHandler(log *slog.Logger, linkService service.LinkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClaimLinkCodeHandler"
		logger := log.With(slog.String("op", op))

		var req ClaimLinkCodeRequest
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

		if err := linkService.ClaimCode(r.Context(), req.Code, req.ChatID); err != nil {
			if errors.Is(err, service.ErrInvalidCode) {
				http.Error(w, "invalid code", http.StatusBadRequest)
				return
			}
			logger.Error("failed to claim link code", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeMessage(w, logger, "Аккаунт привязан")
	}
}

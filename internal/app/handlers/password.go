package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soloviev/wearshop/internal/service"
)

// ResetRequestRequest — входной JSON запроса кода сброса
type ResetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest — входной JSON проверки кода
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// SetNewPasswordRequest — входной JSON установки нового пароля
type SetNewPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// MessageResponse — общий ответ шагов сброса пароля
type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, logger *slog.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(MessageResponse{Message: message}); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// ResetRequestHandler обрабатывает запрос POST /api/password/reset.
// Для незарегистрированной почты отвечает 404 — существование адреса
// различимо по ответу, это свойство текущего дизайна.
func ResetRequestHandler(log *slog.Logger, passwordService service.PasswordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ResetRequestHandler"
		logger := log.With(slog.String("op", op))

		var req ResetRequestRequest
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

		if err := passwordService.RequestReset(r.Context(), req.Email); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			logger.Error("reset request failed", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeMessage(w, logger, "Код отправлен")
	}
}

// VerifyCodeHandler обрабатывает запрос POST /api/password/verify
func VerifyCodeHandler(log *slog.Logger, passwordService service.PasswordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyCodeHandler"
		logger := log.With(slog.String("op", op))

		var req VerifyCodeRequest
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

		if err := passwordService.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				http.Error(w, "user not found", http.StatusNotFound)
			case errors.Is(err, service.ErrInvalidCode):
				http.Error(w, "invalid code", http.StatusBadRequest)
			case errors.Is(err, service.ErrExpiredCode):
				http.Error(w, "code has expired", http.StatusBadRequest)
			default:
				logger.Error("verification failed", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeMessage(w, logger, "Код подтвержден")
	}
}

// SetNewPasswordHandler обрабатывает запрос POST /api/password/new
func SetNewPasswordHandler(log *slog.Logger, passwordService service.PasswordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetNewPasswordHandler"
		logger := log.With(slog.String("op", op))

		var req SetNewPasswordRequest
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

		if err := passwordService.SetNewPassword(r.Context(), req.Email, req.NewPassword); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to set new password", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeMessage(w, logger, "Пароль изменен")
	}
}

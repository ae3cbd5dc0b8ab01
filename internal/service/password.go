package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soloviev/wearshop/internal/lib/codegen"
	"github.com/soloviev/wearshop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// PasswordService — жизненный цикл сброса пароля: запрос кода,
// проверка кода, установка нового пароля.
type PasswordService interface {
	RequestReset(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	SetNewPassword(ctx context.Context, email, newPassword string) error
}

type passwordService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	codeRepo storage.ResetCodeStorage
	notifier Notifier
	codeTTL  time.Duration
}

func NewPasswordService(log *slog.Logger, userRepo storage.UserStorage, codeRepo storage.ResetCodeStorage, notifier Notifier, codeTTL time.Duration) PasswordService {
	return &passwordService{
		log:      log,
		userRepo: userRepo,
		codeRepo: codeRepo,
		notifier: notifier,
		codeTTL:  codeTTL,
	}
}

// RequestReset генерирует код сброса и отправляет его на почту.
// Для незарегистрированной почты возвращается ErrUserNotFound прямо на этом
// шаге: существование адреса по ответу различимо. Это осознанное свойство
// текущего дизайна, а не упущение.
// Записи кодов только добавляются: прежние не перезаписываются.
func (s *passwordService) RequestReset(ctx context.Context, email string) error {
	const op = "service.PasswordService.RequestReset"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("requesting password reset")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return ErrUserNotFound
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	code, err := codegen.Numeric()
	if err != nil {
		logger.Error("failed to generate code", slog.Any("error", err))
		return fmt.Errorf("%s: failed to generate code: %w", op, err)
	}

	if _, err := s.codeRepo.Create(ctx, user.ID, code); err != nil {
		logger.Error("failed to store code", slog.Any("error", err))
		return fmt.Errorf("%s: failed to store code: %w", op, err)
	}

	// Код действителен с момента сохранения; недоставленное письмо
	// его не отменяет
	if err := s.notifier.Send(email, "Сброс пароля", "Ваш код для сброса пароля: "+code); err != nil {
		logger.Warn("failed to send reset code email", slog.Any("error", err))
	}

	logger.Info("reset code issued")
	return nil
}

// VerifyCode проверяет предъявленный код. Среди записей с совпадающим
// значением берётся самая свежая; успех код не расходует — до истечения
// окна он проверяется повторно.
func (s *passwordService) VerifyCode(ctx context.Context, email, code string) error {
	const op = "service.PasswordService.VerifyCode"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return ErrUserNotFound
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	rec, err := s.codeRepo.GetLatestByUserAndCode(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, storage.ErrCodeNotFound) {
			logger.Warn("code not found")
			return ErrInvalidCode
		}
		logger.Error("failed to get code", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get code: %w", op, err)
	}

	if rec.Expired(s.codeTTL, time.Now()) {
		logger.Warn("code expired", slog.Time("createdAt", rec.CreatedAt))
		return ErrExpiredCode
	}

	logger.Info("code verified")
	return nil
}

// SetNewPassword заменяет хэш пароля пользователя. Предварительная
// проверка кода на этом шаге не повторяется — шаги потока между собой
// не связаны.
func (s *passwordService) SetNewPassword(ctx context.Context, email, newPassword string) error {
	const op = "service.PasswordService.SetNewPassword"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return ErrUserNotFound
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passHash); err != nil {
		logger.Error("failed to update password", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update password: %w", op, err)
	}

	logger.Info("password updated")
	return nil
}

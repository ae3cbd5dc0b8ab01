package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soloviev/wearshop/internal/lib/codegen"
	"github.com/soloviev/wearshop/internal/storage"
)

// LinkService — выдача и востребование кодов привязки аккаунта к телеграму.
type LinkService interface {
	// IssueCode всегда выдаёт новый код, перезаписывая прежний живой код
	// пользователя и сбрасывая отметку о востребовании.
	IssueCode(ctx context.Context, userID int64) (string, error)
	// ClaimCode привязывает телеграм-чат к владельцу кода. Предъявление
	// кода и есть подтверждение: других проверок нет.
	ClaimCode(ctx context.Context, code string, chatID int64) error
}

type linkService struct {
	log      *slog.Logger
	db       *sql.DB
	userRepo storage.UserStorage
	linkRepo storage.LinkCodeStorage
}

func NewLinkService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, linkRepo storage.LinkCodeStorage) LinkService {
	return &linkService{
		log:      log,
		db:       db,
		userRepo: userRepo,
		linkRepo: linkRepo,
	}
}

// issueAttempts — сколько раз перегенерировать код при столкновении значений
const issueAttempts = 5

// IssueCode выдаёт код привязки. Перезапись идёт одним атомарным upsert,
// поэтому при гонке двух выдач в базе остаётся ровно один код — последний.
// Значение кода уникально глобально: владелец при востребовании находится
// только по коду, поэтому занятое значение перегенерируется.
// Срока действия у кода нет.
func (s *linkService) IssueCode(ctx context.Context, userID int64) (string, error) {
	const op = "service.LinkService.IssueCode"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	for attempt := 0; attempt < issueAttempts; attempt++ {
		code, err := codegen.Numeric()
		if err != nil {
			logger.Error("failed to generate code", slog.Any("error", err))
			return "", fmt.Errorf("%s: failed to generate code: %w", op, err)
		}

		_, err = s.linkRepo.Upsert(ctx, userID, code)
		if err != nil {
			if errors.Is(err, storage.ErrCodeTaken) {
				logger.Warn("link code value collision, regenerating")
				continue
			}
			logger.Error("failed to store link code", slog.Any("error", err))
			return "", fmt.Errorf("%s: failed to store link code: %w", op, err)
		}

		logger.Info("link code issued")
		return code, nil
	}

	logger.Error("link code collisions exhausted attempts")
	return "", fmt.Errorf("%s: failed to pick a free code", op)
}

// ClaimCode в одной транзакции отмечает код востребованным и сохраняет
// телеграм-чат владельца. Уже востребованный или несуществующий код
// отклоняется.
func (s *linkService) ClaimCode(ctx context.Context, code string, chatID int64) error {
	const op = "service.LinkService.ClaimCode"
	logger := s.log.With(slog.String("op", op))

	rec, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrCodeNotFound) {
			logger.Warn("link code not found")
			return ErrInvalidCode
		}
		logger.Error("failed to get link code", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get link code: %w", op, err)
	}
	if rec.Claimed {
		logger.Warn("link code already claimed")
		return ErrInvalidCode
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// условный UPDATE: при гонке двух востребований побеждает одно
		if err := s.linkRepo.MarkClaimedTx(ctx, tx, rec.ID); err != nil {
			if errors.Is(err, storage.ErrCodeNotFound) {
				return ErrInvalidCode
			}
			return fmt.Errorf("failed to mark code claimed: %w", err)
		}
		if err := s.userRepo.SetTelegramChatIDTx(ctx, tx, rec.UserID, chatID); err != nil {
			return fmt.Errorf("failed to set telegram chat: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return ErrInvalidCode
		}
		logger.Error("claim transaction failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("link code claimed", slog.Int64("userID", rec.UserID))
	return nil
}

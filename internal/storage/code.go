package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soloviev/wearshop/internal/domain/models"
)

// ResetCodeStorage — журнал кодов сброса пароля. Только вставка и чтение:
// старые записи не изменяются и не удаляются, при совпадении значений
// действующим считается код с самым поздним created_at.
type ResetCodeStorage interface {
	Create(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error)
	GetLatestByUserAndCode(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error)
}

type resetCodeRepository struct {
	db *sql.DB
}

func NewResetCodeRepository(db *sql.DB) ResetCodeStorage {
	return &resetCodeRepository{db: db}
}

func (r *resetCodeRepository) Create(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error) {
	rec := &models.PasswordResetCode{UserID: userID, Code: code}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO password_reset_codes (user_id, code, created_at)
		 VALUES ($1, $2, NOW()) RETURNING id, created_at`,
		userID, code,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reset code: %w", err)
	}
	return rec, nil
}

func (r *resetCodeRepository) GetLatestByUserAndCode(ctx context.Context, userID int64, code string) (*models.PasswordResetCode, error) {
	rec := &models.PasswordResetCode{}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, code, created_at
		 FROM password_reset_codes
		 WHERE user_id = $1 AND code = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, code,
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Code, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return rec, nil
}

// LinkCodeStorage — коды привязки. На пользователя одна строка,
// перевыпуск перезаписывает её атомарно. Значение кода уникально
// глобально: при востребовании владелец находится только по коду.
type LinkCodeStorage interface {
	// Upsert устанавливает новый живой код пользователя и сбрасывает отметку
	// о востребовании. Одна атомарная операция, без чтения перед записью.
	// Если значение уже занято другим пользователем — ErrCodeTaken.
	Upsert(ctx context.Context, userID int64, code string) (*models.LinkCode, error)
	GetByCode(ctx context.Context, code string) (*models.LinkCode, error)
	// MarkClaimedTx отмечает код востребованным внутри транзакции привязки.
	MarkClaimedTx(ctx context.Context, tx *sql.Tx, id int64) error
}

type linkCodeRepository struct {
	db *sql.DB
}

func NewLinkCodeRepository(db *sql.DB) LinkCodeStorage {
	return &linkCodeRepository{db: db}
}

func (r *linkCodeRepository) Upsert(ctx context.Context, userID int64, code string) (*models.LinkCode, error) {
	rec := &models.LinkCode{UserID: userID, Code: code}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO link_codes (user_id, code, claimed, created_at)
		 VALUES ($1, $2, FALSE, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET code = EXCLUDED.code, claimed = FALSE, created_at = NOW()
		 RETURNING id, claimed, created_at`,
		userID, code,
	).Scan(&rec.ID, &rec.Claimed, &rec.CreatedAt)
	if err != nil {
		// ON CONFLICT закрывает только (user_id); 23505 здесь означает
		// столкновение по уникальному значению кода
		if IsUniqueViolation(err) {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("failed to upsert link code: %w", err)
	}
	return rec, nil
}

func (r *linkCodeRepository) GetByCode(ctx context.Context, code string) (*models.LinkCode, error) {
	rec := &models.LinkCode{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, code, claimed, created_at FROM link_codes WHERE code = $1", code)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Code, &rec.Claimed, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *linkCodeRepository) MarkClaimedTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE link_codes SET claimed = TRUE WHERE id = $1 AND claimed = FALSE", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCodeNotFound
	}
	return nil
}

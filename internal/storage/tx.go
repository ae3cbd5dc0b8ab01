package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx выполняет fn внутри транзакции: begin, fn, commit.
// Любая ошибка из fn откатывает транзакцию целиком — частичных записей
// не остаётся. Снятие блокировок гарантируется rollback/commit.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package storage

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCodeNotFound     = errors.New("code not found")
	ErrCodeTaken        = errors.New("code already taken")
	ErrEmailTaken       = errors.New("email already taken")
)

// IsLockNotAvailable определяет, что строка занята другой транзакцией
// (FOR UPDATE NOWAIT вернул 55P03)
func IsLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "55P03"
	}
	return false
}

// IsUniqueViolation определяет нарушение уникального ограничения (23505)
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

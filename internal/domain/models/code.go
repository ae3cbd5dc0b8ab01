package models

import "time"

// PasswordResetCode — код сброса пароля. Записи не перезаписываются:
// история хранится целиком, при проверке побеждает самая свежая запись.
type PasswordResetCode struct {
	ID        int64
	UserID    int64
	Code      string
	CreatedAt time.Time
}

// Expired сообщает, истёк ли код для заданного окна действия
func (c *PasswordResetCode) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(c.CreatedAt.Add(ttl))
}

// LinkCode — код привязки аккаунта к телеграму. У пользователя всегда
// не больше одного живого кода: повторная выдача перезаписывает прежний.
// Срока действия нет, код живёт до востребования или до перевыпуска.
type LinkCode struct {
	ID        int64
	UserID    int64
	Code      string
	Claimed   bool
	CreatedAt time.Time
}

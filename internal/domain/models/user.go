package models

import "time"

// Role — роль пользователя, закрытый набор значений
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleCourier  Role = "courier"
)

// Valid проверяет, что роль входит в допустимый набор
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleCourier:
		return true
	}
	return false
}

// User представляет пользователя магазина
type User struct {
	ID             int64
	Email          string
	PassHash       []byte
	FirstName      string
	LastName       string
	Role           Role
	IsActive       bool
	TelegramChatID *int64
	CreatedAt      time.Time
}

package security

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/soloviev/wearshop/internal/domain/models"
)

// ErrInvalidRole возвращается, если в токен попадает роль вне допустимого набора
var ErrInvalidRole = errors.New("invalid user role")

// NewToken генерирует JWT-токен для пользователя с заданным временем жизни.
// Помимо стандартных полей в токен кладутся роль, идентификатор и почта —
// те же значения одновременно отдаются в теле ответа на логин.
func NewToken(ctx context.Context, user *models.User, ttl time.Duration) (string, error) {
	if !user.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}

	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	secret := []byte(secretStr)
	return token.SignedString(secret)
}

package service

import "errors"

// Типизированные ошибки бизнес-логики. Обработчики переводят их
// в HTTP-статусы, внутренних повторов нет — решение о ретрае за вызывающим.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid code")
	ErrExpiredCode        = errors.New("code has expired")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProductNotFound    = errors.New("product not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	// ErrCartBusy — корзина занята другим оформлением; повторить можно сразу
	ErrCartBusy = errors.New("cart is busy, try again")
)

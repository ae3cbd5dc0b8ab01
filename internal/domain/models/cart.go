package models

import "github.com/shopspring/decimal"

// Cart — корзина пользователя, ровно одна на пользователя,
// создаётся лениво при первом обращении
type Cart struct {
	ID     int64
	UserID int64
}

// CartItem — позиция корзины. Price — актуальная цена товара на момент
// чтения, в корзине она не фиксируется и может меняться вместе с каталогом.
type CartItem struct {
	ID           int64           `json:"id"`
	CartID       int64           `json:"-"`
	ProductID    int64           `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

// Subtotal возвращает стоимость позиции по актуальной цене
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

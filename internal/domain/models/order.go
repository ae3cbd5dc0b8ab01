package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order — заказ, созданный при оформлении корзины.
// После создания заказ неизменяем.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Address   string      `json:"address"`
	Phone     string      `json:"phone"`
	Comment   string      `json:"comment,omitempty"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem — позиция заказа. Price — снимок цены товара на момент
// оформления; после создания заказа не пересчитывается, это
// окончательная цена продажи.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"-"`
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Total считает сумму заказа только по сохранённым снимкам цен
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Price.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))))
	}
	return total
}

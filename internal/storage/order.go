package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soloviev/wearshop/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateTx вставляет заказ внутри транзакции оформления и заполняет ID и CreatedAt.
	CreateTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// CreateItemTx вставляет позицию заказа с зафиксированной ценой.
	CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// GetOrdersByUserID возвращает заказы пользователя вместе с позициями.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, address, phone, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		order.UserID, order.Address, order.Phone, order.Comment,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, product_id, price, quantity)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.OrderID, item.ProductID, item.Price, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// GetOrdersByUserID собирает заказы и их позиции одним JOIN-запросом,
// группируя строки по заказу. Суммы восстанавливаются только из
// сохранённых снимков цен.
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.address, o.phone, o.comment, o.created_at,
		       i.id, i.product_id, i.price, i.quantity
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC, i.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		var (
			order models.Order
			item  models.OrderItem
		)
		if err := rows.Scan(&order.ID, &order.UserID, &order.Address, &order.Phone, &order.Comment, &order.CreatedAt,
			&item.ID, &item.ProductID, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		current, ok := byID[order.ID]
		if !ok {
			current = &order
			byID[order.ID] = current
			orders = append(orders, current)
		}
		item.OrderID = current.ID
		current.Items = append(current.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

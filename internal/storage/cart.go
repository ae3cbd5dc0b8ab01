package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soloviev/wearshop/internal/domain/models"
)

// CartStorage описывает методы для работы с корзиной и её позициями.
type CartStorage interface {
	// GetOrCreateByUserID возвращает корзину пользователя, создавая её при первом обращении.
	GetOrCreateByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	// LockByUserIDTx захватывает строку корзины на время транзакции оформления заказа.
	LockByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error)
	// Items возвращает позиции корзины с актуальными ценами из каталога.
	Items(ctx context.Context, cartID int64) ([]*models.CartItem, error)
	// ItemsTx — то же самое, но внутри транзакции оформления.
	ItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
	// ClearTx удаляет все позиции корзины внутри транзакции оформления.
	ClearTx(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

// GetOrCreateByUserID делает атомарный upsert по уникальному user_id,
// чтобы конкурентные первые обращения не породили две корзины.
// DO UPDATE нужен, чтобы RETURNING отдавал строку и при конфликте.
func (r *cartRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, user_id`,
		userID,
	).Scan(&cart.ID, &cart.UserID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return cart, nil
}

// LockByUserIDTx берёт явную блокировку строки корзины: два конкурентных
// оформления одной корзины сериализуются, проигравший получает 55P03.
func (r *cartRepository) LockByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	row := tx.QueryRowContext(ctx, "SELECT id, user_id FROM carts WHERE user_id = $1 FOR UPDATE NOWAIT", userID)
	if err := row.Scan(&cart.ID, &cart.UserID); err != nil {
		if IsLockNotAvailable(err) {
			return nil, fmt.Errorf("cart is locked, please try again: %w", err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

const cartItemsQuery = `
	SELECT ci.id, ci.cart_id, ci.product_id, p.title, p.price, ci.quantity
	FROM cart_items ci
	JOIN products p ON ci.product_id = p.id
	WHERE ci.cart_id = $1
	ORDER BY ci.id`

func scanCartItems(rows *sql.Rows) ([]*models.CartItem, error) {
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductTitle, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) Items(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return scanCartItems(rows)
}

func (r *cartRepository) ItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	return scanCartItems(rows)
}

// AddItem добавляет товар в корзину; повторное добавление того же товара
// увеличивает количество, а не создаёт вторую строку.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3",
		quantity, cartID, productID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cartID, productID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) ClearTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

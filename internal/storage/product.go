package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/soloviev/wearshop/internal/domain/models"
)

// ProductStorage — только чтение каталога: цены нужны при добавлении
// в корзину и при снимке цен на оформлении. Ведение каталога — забота
// внешнего сервиса.
type ProductStorage interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := r.db.QueryRowContext(ctx, "SELECT id, title, price, is_active FROM products WHERE id = $1", id)
	if err := row.Scan(&product.ID, &product.Title, &product.Price, &product.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soloviev/wearshop/internal/domain/models"
	"github.com/soloviev/wearshop/internal/storage"
)

// CheckoutService превращает корзину в заказ.
type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, details OrderDetails) (*models.Order, error)
}

// OrderDetails — данные доставки, приходящие с запросом на оформление
type OrderDetails struct {
	Address string
	Phone   string
	Comment string
}

type checkoutService struct {
	log       *slog.Logger
	db        *sql.DB
	cartRepo  storage.CartStorage
	orderRepo storage.OrderStorage
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, orderRepo storage.OrderStorage) CheckoutService {
	return &checkoutService{
		log:       log,
		db:        db,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// Checkout оформляет заказ из корзины пользователя одной транзакцией:
// блокировка корзины, снимок цен в позиции заказа, очистка корзины.
// Любой сбой по пути откатывает всё — ни заказа, ни части позиций,
// корзина остаётся нетронутой. Конкурентные оформления одной корзины
// сериализуются блокировкой строки корзины; повторов на этом уровне нет.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, details OrderDetails) (*models.Order, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout transaction")

	var order *models.Order
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cart, err := s.cartRepo.LockByUserIDTx(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrCartNotFound) {
				// корзины ещё нет — оформлять нечего
				return ErrEmptyCart
			}
			if storage.IsLockNotAvailable(err) {
				return ErrCartBusy
			}
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		items, err := s.cartRepo.ItemsTx(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		order = &models.Order{
			UserID:  userID,
			Address: details.Address,
			Phone:   details.Phone,
			Comment: details.Comment,
		}
		if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				// снимок актуальной цены каталога: после этого момента
				// цена заказа от каталога не зависит
				Price:    item.Price,
				Quantity: item.Quantity,
			}
			if err := s.orderRepo.CreateItemTx(ctx, tx, &orderItem); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			order.Items = append(order.Items, orderItem)
		}

		if err := s.cartRepo.ClearTx(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrCartBusy) {
			logger.Warn("checkout rejected", slog.Any("reason", err))
			return nil, err
		}
		logger.Error("checkout transaction failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("checkout completed successfully",
		slog.Int64("orderID", order.ID),
		slog.String("total", order.Total().String()),
	)
	return order, nil
}

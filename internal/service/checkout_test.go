package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/soloviev/wearshop/internal/domain/models"
	"github.com/soloviev/wearshop/internal/service"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCheckout_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()
	ctx := context.Background()

	// Корзина пользователя 1: productX — 2 шт по 100, productY — 1 шт по 50
	cart, err := cartRepo.GetOrCreateByUserID(ctx, 1)
	assert.NoError(t, err)
	cartRepo.items[cart.ID] = []*models.CartItem{
		{ID: 1, CartID: cart.ID, ProductID: 10, ProductTitle: "productX", Price: decimal.NewFromInt(100), Quantity: 2},
		{ID: 2, CartID: cart.ID, ProductID: 20, ProductTitle: "productY", Price: decimal.NewFromInt(50), Quantity: 1},
	}

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, orderRepo)
	order, err := svc.Checkout(ctx, 1, service.OrderDetails{Address: "Tverskaya 1", Phone: "+79990000000", Comment: "evening"})

	assert.NoError(t, err, "Checkout should succeed for a non-empty cart")
	assert.NotNil(t, order)
	assert.Len(t, order.Items, 2, "Every cart item becomes an order item")
	assert.True(t, order.Total().Equal(decimal.NewFromInt(250)), "Order total should be 2*100 + 1*50")
	assert.Empty(t, cartRepo.items[cart.ID], "Cart should be cleared after checkout")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_PriceSnapshotIndependentOfCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()
	ctx := context.Background()

	cart, err := cartRepo.GetOrCreateByUserID(ctx, 1)
	assert.NoError(t, err)
	item := &models.CartItem{ID: 1, CartID: cart.ID, ProductID: 10, Price: decimal.NewFromInt(100), Quantity: 2}
	cartRepo.items[cart.ID] = []*models.CartItem{item}

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, orderRepo)
	order, err := svc.Checkout(ctx, 1, service.OrderDetails{Address: "a", Phone: "p"})
	assert.NoError(t, err)

	// Цена в каталоге меняется после оформления — сумма заказа не должна измениться
	item.Price = decimal.NewFromInt(999)
	assert.True(t, order.Total().Equal(decimal.NewFromInt(200)), "Stored order total must not follow catalog price changes")
}

func TestCheckout_EmptyCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()
	ctx := context.Background()

	_, err = cartRepo.GetOrCreateByUserID(ctx, 1)
	assert.NoError(t, err)

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, orderRepo)
	order, err := svc.Checkout(ctx, 1, service.OrderDetails{Address: "a", Phone: "p"})

	assert.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Nil(t, order)
	assert.Empty(t, orderRepo.orders, "No order may be persisted for an empty cart")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_NoCartYet(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	// Корзина не создавалась вовсе
	svc := service.NewCheckoutService(testLogger(), db, newFakeCartRepo(), newFakeOrderRepo())
	order, err := svc.Checkout(context.Background(), 1, service.OrderDetails{Address: "a", Phone: "p"})

	assert.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_ItemWriteFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()
	orderRepo.failOnItems = true
	ctx := context.Background()

	cart, err := cartRepo.GetOrCreateByUserID(ctx, 1)
	assert.NoError(t, err)
	cartRepo.items[cart.ID] = []*models.CartItem{
		{ID: 1, CartID: cart.ID, ProductID: 10, Price: decimal.NewFromInt(100), Quantity: 1},
	}

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, orderRepo)
	order, err := svc.Checkout(ctx, 1, service.OrderDetails{Address: "a", Phone: "p"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrEmptyCart, "A mid-transaction failure is not an empty-cart error")
	assert.Nil(t, order)
	assert.Len(t, cartRepo.items[cart.ID], 1, "Cart must stay untouched when the transaction fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_CartLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	cartRepo := newFakeCartRepo()
	// эмулируем конкурентное оформление: строка корзины занята
	cartRepo.lockErr = fmt.Errorf("cart is locked, please try again: %w", &pq.Error{Code: "55P03"})

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, newFakeOrderRepo())
	order, err := svc.Checkout(context.Background(), 1, service.OrderDetails{Address: "a", Phone: "p"})

	assert.ErrorIs(t, err, service.ErrCartBusy)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	cartRepo := newFakeCartRepo()
	ctx := context.Background()
	cart, err := cartRepo.GetOrCreateByUserID(ctx, 1)
	assert.NoError(t, err)
	cartRepo.items[cart.ID] = []*models.CartItem{
		{ID: 1, CartID: cart.ID, ProductID: 10, Price: decimal.NewFromInt(100), Quantity: 1},
	}

	svc := service.NewCheckoutService(testLogger(), db, cartRepo, newFakeOrderRepo())
	order, err := svc.Checkout(ctx, 1, service.OrderDetails{Address: "a", Phone: "p"})

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

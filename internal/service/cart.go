package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/soloviev/wearshop/internal/domain/models"
	"github.com/soloviev/wearshop/internal/storage"
)

// CartService определяет операции с корзиной пользователя.
type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	GetCart(ctx context.Context, userID int64) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
}

// CartView — содержимое корзины с итогом по актуальным ценам каталога.
// Цены здесь не фиксируются: снимок делается только при оформлении.
type CartView struct {
	Items []*models.CartItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem добавляет товар в корзину, создавая корзину при первом обращении.
// Повторное добавление того же товара увеличивает количество.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity < 1 {
		return fmt.Errorf("%s: quantity must be at least 1", op)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("product not found")
			return ErrProductNotFound
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	if !product.IsActive {
		logger.Warn("product is inactive")
		return ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if err := s.cartRepo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		logger.Error("failed to add item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to add item: %w", op, err)
	}

	logger.Info("item added to cart", slog.Int("quantity", quantity))
	return nil
}

// GetCart возвращает содержимое корзины с итогом по актуальным ценам
func (s *cartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.GetCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	items, err := s.cartRepo.Items(ctx, cart.ID)
	if err != nil {
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return &CartView{Items: items, Total: total}, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.UpdateItemQuantity"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity < 1 {
		return fmt.Errorf("%s: quantity must be at least 1", op)
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return ErrCartItemNotFound
		}
		logger.Error("failed to update quantity", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update quantity: %w", op, err)
	}
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	cart, err := s.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return ErrCartItemNotFound
		}
		logger.Error("failed to remove item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to remove item: %w", op, err)
	}
	return nil
}

package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/soloviev/wearshop/internal/app"
	"github.com/soloviev/wearshop/internal/app/handlers"
	"github.com/soloviev/wearshop/internal/config"
	"github.com/soloviev/wearshop/internal/jwt-new/jwtmiddleware"
	"github.com/soloviev/wearshop/internal/lib/logger"
	"github.com/soloviev/wearshop/internal/lib/logger/handlers/urllog"
	"github.com/soloviev/wearshop/internal/service"
	"github.com/soloviev/wearshop/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// слои по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	resetCodeRepo := storage.NewResetCodeRepository(application.DB)
	linkCodeRepo := storage.NewLinkCodeRepository(application.DB)

	notifier := service.NewSMTPNotifier(cfg.SMTP)

	authService := service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute)
	cartService := service.NewCartService(log, cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(log, application.DB, cartRepo, orderRepo)
	orderService := service.NewOrderService(log, orderRepo)
	passwordService := service.NewPasswordService(log, userRepo, resetCodeRepo, notifier, cfg.Codes.ResetTTL)
	linkService := service.NewLinkService(log, application.DB, userRepo, linkCodeRepo)

	// открытые эндпоинты
	router.Post("/api/register", handlers.RegisterHandler(log, authService))
	router.Post("/api/auth", handlers.AuthHandler(log, authService))
	router.Post("/api/password/reset", handlers.ResetRequestHandler(log, passwordService))
	router.Post("/api/password/verify", handlers.VerifyCodeHandler(log, passwordService))
	router.Post("/api/password/new", handlers.SetNewPasswordHandler(log, passwordService))
	// бот предъявляет сам код, владение кодом и есть подтверждение
	router.Post("/api/link-code/claim", handlers.ClaimLinkCodeHandler(log, linkService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Get("/api/profile", handlers.ProfileHandler(log, authService))
		r.Get("/api/cart", handlers.GetCartHandler(log, cartService))
		r.Post("/api/cart/items", handlers.AddToCartHandler(log, cartService))
		r.Patch("/api/cart/items/{productID}", handlers.UpdateCartItemHandler(log, cartService))
		r.Delete("/api/cart/items/{productID}", handlers.RemoveCartItemHandler(log, cartService))
		r.Post("/api/checkout", handlers.CheckoutHandler(log, checkoutService))
		r.Get("/api/orders", handlers.OrdersHandler(log, orderService))
		r.Post("/api/link-code", handlers.IssueLinkCodeHandler(log, linkService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/funkystitch/storefront/internal/adapter/handler"
	"github.com/funkystitch/storefront/internal/adapter/mail"
	"github.com/funkystitch/storefront/internal/adapter/messaging"
	"github.com/funkystitch/storefront/internal/adapter/payment"
	"github.com/funkystitch/storefront/internal/adapter/storage"
	"github.com/funkystitch/storefront/internal/config"
	"github.com/funkystitch/storefront/internal/core/pricing"
	"github.com/funkystitch/storefront/internal/core/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}
	logger.Info().Msg("connected to mysql")

	if err := storage.RunMigrations(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Msg("schema up to date")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	logger.Info().Msg("connected to redis")

	cache := storage.NewRedisAdapter(rdb)
	userStore := storage.NewMySQLUserStore(db)
	productStore := storage.NewMySQLProductStore(db)
	orderStore := storage.NewMySQLOrderStore(db)

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
		cfg.SMTPPassword, cfg.SenderName, cfg.FromAddress, cfg.CompanyInbox)
	publisher := messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	gateway := payment.NewPayPalGateway(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)

	userService := service.NewUserService(userStore, cache, cache, cache,
		mailer, cfg.FrontendURL, logger)
	catalogService := service.NewCatalogService(productStore, logger)
	cartService := service.NewCartService(cache, productStore, logger)
	orderService := service.NewOrderService(orderStore, productStore, cache, cache,
		gateway, publisher, pricing.DefaultPolicy(), logger)

	router := handler.NewRouter(
		handler.NewUserHandler(userService, logger),
		handler.NewProductHandler(catalogService, logger),
		handler.NewCartHandler(cartService, logger),
		handler.NewOrderHandler(orderService, logger),
		userService,
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPPort).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if err := publisher.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close kafka writer")
	}
	rdb.Close()
	db.Close()
	logger.Info().Msg("stopped")
}

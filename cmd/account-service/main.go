package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	"github.com/shopforge/account-service/internal/events/kafka"
	handler "github.com/shopforge/account-service/internal/handler/http"
	"github.com/shopforge/account-service/internal/handler/http/middleware"
	"github.com/shopforge/account-service/internal/infrastructure/database"
	"github.com/shopforge/account-service/internal/infrastructure/ratelimit"
	"github.com/shopforge/account-service/internal/infrastructure/security"
	"github.com/shopforge/account-service/internal/service"
	"github.com/shopforge/account-service/internal/utils/logger"
)

const eventBufferSize = 256

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database, "migrations", zapLogger); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	repo := database.NewPgxAccountRepository(pool)
	hasher, err := security.NewArgon2idHasher(cfg.Security.PasswordHash)
	if err != nil {
		return err
	}
	jwtManager := security.NewJWTManager(cfg.JWT)
	limiter := ratelimit.NewLimiter(redisClient, cfg.Security.RateLimiting, zapLogger)

	var (
		events     service.EventSink = service.NopEventSink{}
		codeSender service.CodeSender
		dispatcher *kafka.Dispatcher
	)
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, "/account-service", zapLogger)
		defer producer.Close()
		dispatcher = kafka.NewDispatcher(producer, eventBufferSize, zapLogger)
		defer dispatcher.Close()
		events = dispatcher
		codeSender = kafka.NewCodeSender(producer)
	} else {
		codeSender = service.LogCodeSender{Logger: zapLogger}
	}

	tokenService := service.NewTokenService(repo, jwtManager, cfg.JWT, zapLogger)
	otpService := service.NewOTPService(repo, hasher, codeSender, events, cfg.Security.OTP, zapLogger)
	authService := service.NewAuthService(repo, hasher, tokenService, otpService, events, cfg.Security.Lockout, zapLogger)
	accountService := service.NewAccountService(repo, events, zapLogger)

	guards := middleware.NewGuardChain(tokenService, repo, zapLogger)
	csrfGuard := middleware.NewCSRFGuard(cfg.Security.CSRF, handler.CSRFExemptPaths(), zapLogger)

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  zapLogger,
		Auth:    handler.NewAuthHandler(authService, tokenService, cfg.Server.CookieSecure, zapLogger),
		OTP:     handler.NewOTPHandler(otpService, zapLogger),
		Admin:   handler.NewAdminHandler(accountService, zapLogger),
		CSRF:    handler.NewCSRFHandler(csrfGuard, zapLogger),
		Health:  handler.NewHealthHandler(pool),
		Guards:  guards,
		CSRFMid: csrfGuard,
		Limiter: limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	zapLogger.Info("Shutdown complete")
	return nil
}

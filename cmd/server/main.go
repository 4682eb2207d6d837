package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wallet-core-backend/internal/common/config"
	"wallet-core-backend/internal/common/logger"
	"wallet-core-backend/internal/common/middleware"
	rewardHTTP "wallet-core-backend/internal/features/reward/delivery/http"
	rewardRepo "wallet-core-backend/internal/features/reward/repository/redis"
	rewardService "wallet-core-backend/internal/features/reward/service"
	scanHTTP "wallet-core-backend/internal/features/scan/delivery/http"
	scanService "wallet-core-backend/internal/features/scan/service"
	walletHTTP "wallet-core-backend/internal/features/wallet/delivery/http"
	walletRepo "wallet-core-backend/internal/features/wallet/repository/redis"
	walletService "wallet-core-backend/internal/features/wallet/service"
	"wallet-core-backend/internal/platform/ledger"
	"wallet-core-backend/internal/platform/redis"
)

// @title           Wallet Core API
// @version         1.0
// @description     Backend core of the mobile payment wallet: payment-code scanning, account lifecycle, payment submission and milestone rewards.

// @host      localhost:8080
// @BasePath  /api/v1

// @tag.name wallet
// @tag.description Account lifecycle, state and payments

// @tag.name scan
// @tag.description Payment-code parsing

// @tag.name rewards
// @tag.description Milestone rewards

func main() {
	cfg := config.Load()

	logger.Init("wallet-core-backend", cfg.Debug)

	logger.Info().
		Bool("debug", cfg.Debug).
		Str("ledger", cfg.Ledger.BaseURL).
		Msg("Starting wallet core backend")

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	logger.Debug().
		Str("redis", redisAddr).
		Int("sync_interval_sec", cfg.Wallet.SyncIntervalSec).
		Int("confirm_timeout_sec", cfg.Wallet.ConfirmTimeoutSec).
		Msg("Resolved configuration")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := redis.Open(ctx, redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	ledgerClient := ledger.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.Token, cfg.Ledger.RewardAssetID).
		WithPollInterval(time.Duration(cfg.Wallet.ConfirmPollIntervalMS) * time.Millisecond)

	accountStore := walletRepo.NewRepository(redisClient)
	rewardLedger := rewardRepo.NewRepository(redisClient)

	rewards := rewardService.NewService(ledgerClient, rewardLedger, log.Logger)
	engine := walletService.NewWalletEngine(accountStore, ledgerClient, rewards, walletService.Config{
		SyncInterval:   time.Duration(cfg.Wallet.SyncIntervalSec) * time.Second,
		ConfirmTimeout: time.Duration(cfg.Wallet.ConfirmTimeoutSec) * time.Second,
	}, log.Logger)
	parser := scanService.NewParser()

	// A wallet left behind by the previous run reconnects on start.
	restoreCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := engine.RestoreSession(restoreCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to restore wallet session")
	}
	cancel()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(log.Logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	walletHTTP.NewWalletHandler(engine, log.Logger).RegisterRoutes(v1)
	scanHTTP.NewScanHandler(parser, log.Logger).RegisterRoutes(v1)
	rewardHTTP.NewRewardHandler(rewards, engine, log.Logger).RegisterRoutes(v1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "wallet-core-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		if _, err := ledgerClient.GetTransactionParams(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "ledger node unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "wallet-core-backend",
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // payment submissions block on confirmation
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

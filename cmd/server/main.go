package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mess_finder/internal/config"
	"mess_finder/internal/events"
	"mess_finder/internal/handler"
	"mess_finder/internal/logger"
	"mess_finder/internal/repository"
	"mess_finder/internal/service"
	"mess_finder/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// --- Configuration ---
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.New(cfg.Env, cfg.LogLevel)
	if !envLoaded {
		log.Info().Msg("no .env file found, relying on environment variables")
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(cfg.UploadsDir, os.ModePerm); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadsDir).Msg("failed to create uploads directory")
	}
	log.Info().Str("dir", cfg.UploadsDir).Msg("uploads will be stored locally")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("failed to auto-migrate database")
	}

	// --- Optional Backends ---
	var denylist repository.TokenDenylist
	if cfg.RedisURL != "" {
		redisClient, err := repository.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		denylist = repository.NewRedisTokenDenylist(redisClient)
		log.Info().Msg("token revocation enabled")
	} else {
		log.Warn().Msg("REDIS_URL not set, logout only discards the token client-side")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to message broker")
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("listing events enabled")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration)
	images := service.NewImageStore(cfg.UploadsDir, cfg.MaxUploadBytes)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	messRepo := repository.NewMessRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, denylist)
	messService := service.NewMessService(messRepo, images, publisher)
	adminService := service.NewAdminService(userRepo, messRepo, images)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:       authService,
		Mess:       messService,
		Admin:      adminService,
		Verifier:   jwtUtil,
		Denylist:   denylist,
		UploadsDir: cfg.UploadsDir,
		CORSOrigin: cfg.CORSOrigin,
		Ping:       dbPool.Ping,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}

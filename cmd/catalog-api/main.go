package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/config"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/album"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/ledger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/user"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/middleware"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/database"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/jwt"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/logger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/queue"
	pkgresponse "github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := logger.Init(logger.Config{
		Level:   cfg.LogLevel,
		Console: cfg.IsDevelopment(),
		LogFile: cfg.LogFile,
		Service: "catalog-api",
	}); err != nil {
		log.Warn().Err(err).Msg("Logging to stdout only")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("queue", cfg.WalletQueue).
		Msg("Starting catalog API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	// Without Redis every sale is stored but answered with ledger_dispatched=false.
	var publisher queue.Publisher
	if rdb != nil {
		publisher = queue.NewRedisQueue(rdb, cfg.QueuePollTimeout)
	} else {
		log.Warn().Msg("Ledger queue disabled, album debits will not be dispatched")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	dispatcher := ledger.NewDispatcher(cfg.WalletQueue, publisher, nil)
	albumService := album.NewService(album.NewRepository(db), user.NewRepository(db), dispatcher)

	router := newRouter(cfg, album.NewHandler(albumService), middleware.Auth(jwtService))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newRouter(cfg *config.Config, albums *album.Handler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"service": "catalog-api",
		})
	})

	r.Mount("/albums", albums.Routes(authMiddleware))

	return r
}

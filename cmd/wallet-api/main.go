package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/config"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/ledger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/user"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/wallet"
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
		Service: "wallet-api",
	}); err != nil {
		log.Warn().Err(err).Msg("Logging to stdout only")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("queue", cfg.WalletQueue).
		Int("workers", cfg.QueueWorkers).
		Msg("Starting wallet API")

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

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)

	// ---------- Services ----------
	walletService := wallet.NewService(walletRepo)
	userService := user.NewService(userRepo, walletRepo, jwtService, cfg.InitialWalletBalance)

	// ---------- Ledger consumers ----------
	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	var consumers sync.WaitGroup
	if rdb != nil {
		q := queue.NewRedisQueue(rdb, cfg.QueuePollTimeout)
		startConsumers(consumerCtx, &consumers, q, ledger.NewDispatcher(cfg.WalletQueue, nil, walletService), cfg.QueueWorkers)
	} else {
		log.Warn().Msg("Ledger queue disabled, no debits will be consumed")
	}

	router := newRouter(cfg, user.NewHandler(userService), wallet.NewHandler(walletService), middleware.Auth(jwtService))

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

	stopConsumers()
	consumers.Wait()

	log.Info().Msg("Server exited properly")
}

// inflightRequeuer is implemented by transports that park payloads while a
// handler runs.
type inflightRequeuer interface {
	RequeueInflight(ctx context.Context, queue string) (int, error)
}

// startConsumers returns parked payloads to the queue once, then runs workers
// dispatchers over it until ctx is done.
func startConsumers(ctx context.Context, wg *sync.WaitGroup, c queue.Consumer, d *ledger.Dispatcher, workers int) {
	if r, ok := c.(inflightRequeuer); ok {
		if _, err := r.RequeueInflight(ctx, d.Queue()); err != nil {
			log.Error().Err(err).Str("queue", d.Queue()).Msg("Failed to requeue in-flight ledger messages")
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := d.Run(ctx, c); err != nil {
				log.Error().Err(err).Int("worker", worker).Msg("Ledger consumer stopped")
			}
		}(i)
	}
}

func newRouter(cfg *config.Config, users *user.Handler, wallets *wallet.Handler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"service": "wallet-api",
		})
	})

	r.Mount("/users", users.Routes(authMiddleware))
	r.Mount("/wallet", wallets.Routes(authMiddleware))

	return r
}

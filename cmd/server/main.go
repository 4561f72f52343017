package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"user_backend/internal/app/di"
	"user_backend/internal/app/router"
	authhandler "user_backend/internal/feature/auth/transport/handler"
	authusecase "user_backend/internal/feature/auth/usecase"
	userhandler "user_backend/internal/feature/users/transport/handler"
	userusecase "user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/cache"
	platformdb "user_backend/internal/platform/db"
	platformhandler "user_backend/internal/platform/http/handler"
	jwtmw "user_backend/internal/platform/jwt"
	"user_backend/internal/platform/metrics"
	"user_backend/internal/platform/notify"
	platformredis "user_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(ctx, platformdb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if cfg := platformredis.LoadConfig(); cfg.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg); err != nil {
			slog.Warn("Redis unavailable. Running without cache and queue.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	jwtCfg := jwtmw.LoadConfig()
	if jwtCfg.Secret == "" {
		slog.Warn("JWT_SECRET is not set. Tokens cannot be issued; set a strong secret.")
	}
	tokens := jwtmw.NewService(jwtCfg.Secret, jwtCfg.TTL)

	// Repository
	userRepo := di.NewUserRepository(db, rdb, cache.LoadTTL())

	// Notification
	notifier, worker := di.NewNotifier(rdb, di.NewSender(notify.LoadSMTPConfig()), notify.LoadTimeout())
	stopWorker := startWorker(worker)

	// Usecase
	authUC := authusecase.NewAuthUsecase(authusecase.LoadCredentialPolicy(), tokens)
	userUC := userusecase.NewUserUsecase(userRepo, notifier)

	// Health checks
	checks := map[string]platformhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	engine := router.NewRouter(router.Handlers{
		Auth:    authhandler.NewAuthHandler(authUC),
		Users:   userhandler.NewUserHandler(userUC),
		Health:  platformhandler.NewHealthHandler(checks),
		Metrics: metrics.New(),
	}, tokens, router.LoadCORSOrigins())

	srv := &http.Server{
		Addr:              ":" + port(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	// 送信中の通知を待ってから終了する
	stopWorker()
	if d, ok := notifier.(*notify.AsyncDispatcher); ok {
		d.Wait()
	}
}

// startWorker runs w on its own context so the shutdown signal does not cut an
// in-flight delivery short. The returned func stops polling and waits for Run to return.
func startWorker(w *notify.Worker) (stop func()) {
	if w == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pralnie_bot/internal/bot"
	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/account/postgres_storage"
	"pralnie_bot/internal/pkg/laundry"
	"pralnie_bot/internal/pkg/syncer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		logger.Fatal("TELEGRAM_TOKEN is not set")
	}

	storage, cleanup, err := buildStorage(logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer cleanup()

	client := laundry.NewClient(os.Getenv("PRALNIE_BASE_URL"))
	authenticator := laundry.NewAuthenticator(client, storage, logger)
	balance := laundry.NewBalanceService(client, storage, logger)
	topUp := laundry.NewTopUpService(client, storage, logger)
	balanceSyncer := syncer.NewBalanceSyncer(storage, balance, logger)
	refresher := syncer.NewCookieRefresher(storage, authenticator, logger)

	b, err := bot.New(token, storage, authenticator, balance, topUp, balanceSyncer, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Users logged in before a restart keep their sync loops.
	if err := balanceSyncer.Resume(ctx); err != nil {
		logger.Error("failed to resume balance sync loops", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refresher.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return b.Start(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// buildStorage picks Postgres when DATABASE_URL is set and falls back to
// the in-memory store otherwise.
func buildStorage(logger *zap.Logger) (account.Storage, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Info("DATABASE_URL not set, using in-memory storage")
		return account.NewMemoryStorage(), func() {}, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := postgres_storage.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("using postgres storage")
	return postgres_storage.NewPostgresStorage(db), func() { db.Close() }, nil
}

package syncer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/account/domain"
	"pralnie_bot/internal/pkg/laundry"
)

const (
	baseSyncInterval = 15 * time.Minute
	syncJitter       = time.Minute
)

// BalanceSyncer runs one background loop per authenticated user, refreshing
// the cached balance roughly every 15 minutes. Loops talk to nothing but
// the account storage: each cycle re-reads the session so a renewal by the
// sweeper is picked up on the next pass.
type BalanceSyncer struct {
	storage account.Storage
	balance *laundry.BalanceService
	logger  *zap.Logger

	// interval and jitter are fixed in production and shortened in tests.
	interval time.Duration
	jitter   time.Duration

	mu      sync.Mutex
	running map[int64]context.CancelFunc
}

func NewBalanceSyncer(storage account.Storage, balance *laundry.BalanceService, logger *zap.Logger) *BalanceSyncer {
	return &BalanceSyncer{
		storage:  storage,
		balance:  balance,
		logger:   logger,
		interval: baseSyncInterval,
		jitter:   syncJitter,
		running:  make(map[int64]context.CancelFunc),
	}
}

// Start launches the sync loop for chatID. Starting an already-running
// chat is a no-op: callers fire this after every successful login and must
// not end up with two loops for one user.
func (s *BalanceSyncer) Start(ctx context.Context, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.running[chatID]; exists {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.running[chatID] = cancel
	s.logger.Info("starting balance sync", zap.Int64("chat_id", chatID))
	go s.loop(loopCtx, chatID)
}

// Stop cancels the loop for chatID, if any. The cancellation interrupts
// the sleep between cycles; an in-flight fetch finishes first.
func (s *BalanceSyncer) Stop(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, exists := s.running[chatID]; exists {
		cancel()
		delete(s.running, chatID)
	}
}

// Resume starts loops for every stored account that already has a session.
// Called once at startup so users logged in before a restart keep syncing.
func (s *BalanceSyncer) Resume(ctx context.Context) error {
	accounts, err := s.storage.ListByExpiry()
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		if acc.Cookies == "" {
			continue
		}
		s.Start(ctx, acc.ChatID)
	}
	return nil
}

func (s *BalanceSyncer) loop(ctx context.Context, chatID int64) {
	for {
		if !sleep(ctx, jittered(s.interval, s.jitter)) {
			s.logger.Info("balance sync stopped", zap.Int64("chat_id", chatID))
			return
		}
		s.syncOnce(ctx, chatID)
	}
}

// syncOnce performs a single refresh cycle. Failures are logged and the
// previous cached value stays put; nothing here may kill the loop.
func (s *BalanceSyncer) syncOnce(ctx context.Context, chatID int64) {
	acc, err := s.storage.GetAccount(chatID)
	if err != nil {
		s.logger.Error("failed to read account", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	if acc == nil || acc.Cookies == "" {
		s.logger.Warn("no cookie found, skipping sync", zap.Int64("chat_id", chatID))
		return
	}

	balance, ok := s.balance.FetchAccountBalance(ctx, acc.Cookies)
	if !ok {
		s.logger.Warn("failed to update balance", zap.Int64("chat_id", chatID))
		return
	}

	updatedAt := domain.FormatTime(time.Now())
	if err := s.storage.SetBalance(chatID, balance, updatedAt); err != nil {
		s.logger.Error("failed to store balance", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	s.logger.Info("updated balance",
		zap.Int64("chat_id", chatID),
		zap.String("balance", balance),
		zap.String("updated_at", updatedAt))
}

// jittered returns base shifted by a uniform offset in [-jitter, +jitter],
// so many loops started together drift apart instead of hitting the
// service at once.
func jittered(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int63n(int64(2*jitter)+1)) - jitter
	return base + offset
}

// sleep waits for d or until ctx is cancelled. Returns false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/account/domain"
)

const (
	// renewalThreshold is how close to expiry a session has to be before
	// the sweeper re-authenticates it.
	renewalThreshold = 5 * 24 * time.Hour

	sweepPause       = 10 * time.Minute
	sweepPauseJitter = time.Minute
	sweepInterval    = 24 * time.Hour
)

// authenticator is the slice of laundry.Authenticator the sweeper needs.
type authenticator interface {
	Authenticate(ctx context.Context, login, password string, chatID int64) (string, error)
}

// CookieRefresher is the process-wide daily sweep that re-authenticates
// users whose session cookies are about to expire. One failed user never
// stops the sweep; each candidate is followed by a long jittered pause so
// renewals trickle out instead of hammering the login endpoint.
type CookieRefresher struct {
	storage account.Storage
	auth    authenticator
	logger  *zap.Logger

	threshold time.Duration
	pause     time.Duration
	pauseJit  time.Duration
	runEvery  time.Duration
}

func NewCookieRefresher(storage account.Storage, auth authenticator, logger *zap.Logger) *CookieRefresher {
	return &CookieRefresher{
		storage:   storage,
		auth:      auth,
		logger:    logger,
		threshold: renewalThreshold,
		pause:     sweepPause,
		pauseJit:  sweepPauseJitter,
		runEvery:  sweepInterval,
	}
}

// Run sweeps once a day until ctx is cancelled.
func (r *CookieRefresher) Run(ctx context.Context) {
	for {
		r.RefreshOnce(ctx)
		r.logger.Info("daily cookie check complete, waiting until next sweep")
		if !sleep(ctx, r.runEvery) {
			r.logger.Info("cookie refresher stopped")
			return
		}
	}
}

// RefreshOnce walks all accounts in expiry order and re-authenticates
// those inside the renewal threshold. Failures are logged and the sweep
// moves on; there is no retry within a run.
func (r *CookieRefresher) RefreshOnce(ctx context.Context) {
	r.logger.Info("starting cookie refresh")

	accounts, err := r.storage.ListByExpiry()
	if err != nil {
		r.logger.Error("failed to list accounts", zap.Error(err))
		return
	}

	now := time.Now()
	for _, acc := range accounts {
		expiresAt, err := domain.ParseTime(acc.CookieExpiration)
		if err != nil {
			continue
		}
		if expiresAt.Sub(now) > r.threshold {
			// Accounts are sorted by expiry, so nothing after this
			// one needs a renewal either.
			break
		}

		r.logger.Info("refreshing cookies",
			zap.Int64("chat_id", acc.ChatID),
			zap.String("expires_at", acc.CookieExpiration))
		if _, err := r.auth.Authenticate(ctx, acc.Username, acc.Password, acc.ChatID); err != nil {
			r.logger.Error("error refreshing cookies",
				zap.Int64("chat_id", acc.ChatID),
				zap.Error(err))
		}

		if !sleep(ctx, jittered(r.pause, r.pauseJit)) {
			return
		}
	}
	r.logger.Info("cookie refresh completed")
}

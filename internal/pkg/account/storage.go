package account

import "pralnie_bot/internal/pkg/account/domain"

// Storage is the single source of truth for user accounts. The bot, the
// balance sync loops and the cookie refresh sweeper all go through it;
// nothing keeps private copies of account state.
//
// Every setter is an upsert: it creates the record when the chat is unknown
// and updates only its own columns otherwise. Implementations must be safe
// for concurrent use.
type Storage interface {
	GetAccount(chatID int64) (*domain.Account, error)
	SetSession(chatID int64, cookies, expiresAt string) error
	SetBalance(chatID int64, balance, updatedAt string) error
	SetCredentials(chatID int64, username, password string) error

	// ListByExpiry returns all accounts ordered ascending by parsed
	// CookieExpiration. Accounts whose expiration is empty or does not
	// parse are left out of the listing, not deleted.
	ListByExpiry() ([]*domain.Account, error)
}

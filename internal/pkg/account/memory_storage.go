package account

import (
	"sort"
	"sync"

	"pralnie_bot/internal/pkg/account/domain"
)

// MemoryStorage keeps accounts in a mutex-guarded map. Used in tests and
// when no DATABASE_URL is configured.
type MemoryStorage struct {
	accounts map[int64]*domain.Account
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[int64]*domain.Account),
	}
}

func (m *MemoryStorage) GetAccount(chatID int64) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, exists := m.accounts[chatID]
	if !exists {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

func (m *MemoryStorage) SetSession(chatID int64, cookies, expiresAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.upsert(chatID)
	acc.Cookies = cookies
	acc.CookieExpiration = expiresAt
	return nil
}

func (m *MemoryStorage) SetBalance(chatID int64, balance, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.upsert(chatID)
	acc.Balance = balance
	acc.BalanceUpdatedAt = updatedAt
	return nil
}

func (m *MemoryStorage) SetCredentials(chatID int64, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.upsert(chatID)
	acc.Username = username
	acc.Password = password
	return nil
}

func (m *MemoryStorage) ListByExpiry() ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	listed := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		if acc.CookieExpiration == "" {
			continue
		}
		if _, err := domain.ParseTime(acc.CookieExpiration); err != nil {
			continue
		}
		copied := *acc
		listed = append(listed, &copied)
	}

	// TimeLayout sorts lexicographically.
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CookieExpiration < listed[j].CookieExpiration
	})
	return listed, nil
}

// upsert returns the account for chatID, creating it if needed.
// Caller must hold the write lock.
func (m *MemoryStorage) upsert(chatID int64) *domain.Account {
	acc, exists := m.accounts[chatID]
	if !exists {
		acc = &domain.Account{ChatID: chatID}
		m.accounts[chatID] = acc
	}
	return acc
}

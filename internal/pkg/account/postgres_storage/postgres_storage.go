package postgres_storage

import (
	"database/sql"

	_ "github.com/lib/pq"

	"pralnie_bot/internal/pkg/account/domain"
)

// PostgresStorage persists accounts in the accounts table. Upserts rely on
// ON CONFLICT so concurrent sync loops and the sweeper never race a
// read-modify-write.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (p *PostgresStorage) GetAccount(chatID int64) (*domain.Account, error) {
	row := p.db.QueryRow(`
		SELECT chat_id, username, password, cookies, cookie_expiration, balance, balance_updated_at
		FROM accounts
		WHERE chat_id=$1
	`, chatID)

	acc := &domain.Account{}
	var username, password, cookies, expiration, balance, updatedAt sql.NullString
	err := row.Scan(&acc.ChatID, &username, &password, &cookies, &expiration, &balance, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acc.Username = username.String
	acc.Password = password.String
	acc.Cookies = cookies.String
	acc.CookieExpiration = expiration.String
	acc.Balance = balance.String
	acc.BalanceUpdatedAt = updatedAt.String
	return acc, nil
}

func (p *PostgresStorage) SetSession(chatID int64, cookies, expiresAt string) error {
	_, err := p.db.Exec(`
		INSERT INTO accounts (chat_id, cookies, cookie_expiration)
		VALUES ($1,$2,$3)
		ON CONFLICT (chat_id) DO UPDATE
		SET cookies=$2, cookie_expiration=$3
	`, chatID, cookies, expiresAt)
	return err
}

func (p *PostgresStorage) SetBalance(chatID int64, balance, updatedAt string) error {
	_, err := p.db.Exec(`
		INSERT INTO accounts (chat_id, balance, balance_updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (chat_id) DO UPDATE
		SET balance=$2, balance_updated_at=$3
	`, chatID, balance, updatedAt)
	return err
}

func (p *PostgresStorage) SetCredentials(chatID int64, username, password string) error {
	_, err := p.db.Exec(`
		INSERT INTO accounts (chat_id, username, password)
		VALUES ($1,$2,$3)
		ON CONFLICT (chat_id) DO UPDATE
		SET username=$2, password=$3
	`, chatID, username, password)
	return err
}

func (p *PostgresStorage) ListByExpiry() ([]*domain.Account, error) {
	rows, err := p.db.Query(`
		SELECT chat_id, username, password, cookies, cookie_expiration, balance, balance_updated_at
		FROM accounts
		WHERE cookie_expiration IS NOT NULL AND cookie_expiration <> ''
		ORDER BY cookie_expiration ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		acc := &domain.Account{}
		var username, password, cookies, expiration, balance, updatedAt sql.NullString
		if err := rows.Scan(&acc.ChatID, &username, &password, &cookies, &expiration, &balance, &updatedAt); err != nil {
			return nil, err
		}
		acc.Username = username.String
		acc.Password = password.String
		acc.Cookies = cookies.String
		acc.CookieExpiration = expiration.String
		acc.Balance = balance.String
		acc.BalanceUpdatedAt = updatedAt.String

		// cookie_expiration is stored as text; rows with values that do
		// not parse are excluded from the sweep, not erased.
		if _, err := domain.ParseTime(acc.CookieExpiration); err != nil {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

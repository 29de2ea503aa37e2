package laundry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
)

// balancePattern extracts the labeled balance figure from the account page.
var balancePattern = regexp.MustCompile(`<span>\s*Stan Twojego konta\s*</span>\s*<big>\s*([^<]+?)\s*</big>`)

// transaction is one row of the transaction-list endpoint. Only the Value
// field is summed; rows without it count as zero.
type transaction struct {
	Value float64 `json:"Value"`
}

// BalanceService computes account balances, either by summing the
// transaction list (used by the bot) or by scraping the account page
// (used by the sync loops). Neither path caches anything: every call is a
// fresh fetch, and the cached balance in storage belongs to the syncer.
type BalanceService struct {
	client  *Client
	storage account.Storage
	logger  *zap.Logger
}

func NewBalanceService(client *Client, storage account.Storage, logger *zap.Logger) *BalanceService {
	return &BalanceService{client: client, storage: storage, logger: logger}
}

// TransactionsSum fetches every transaction for chatID's account and
// returns the sum formatted with two decimals. An account without a
// stored session returns ("", nil), which the bot reads as "not logged
// in".
func (b *BalanceService) TransactionsSum(ctx context.Context, chatID int64) (string, error) {
	acc, err := b.storage.GetAccount(chatID)
	if err != nil {
		return "", err
	}
	if acc == nil || acc.Cookies == "" {
		return "", nil
	}

	accountID, err := AccountID(acc.Cookies)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	resp, err := b.client.get(ctx, b.client.transactionsURL(accountID), acc.Cookies)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var transactions []transaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var sum float64
	for _, t := range transactions {
		sum += t.Value
	}
	// Round half away from zero once, at the final sum.
	return fmt.Sprintf("%.2f", math.Round(sum*100)/100), nil
}

// FetchAccountBalance scrapes the labeled balance from the account page.
// Any failure, HTTP or otherwise, reads as "unavailable" rather than an
// error: the sync loop keeps the previous cached value in that case.
func (b *BalanceService) FetchAccountBalance(ctx context.Context, cookieHeader string) (string, bool) {
	resp, err := b.client.get(ctx, b.client.accountURL(), cookieHeader)
	if err != nil {
		b.logger.Warn("failed to fetch account page", zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Warn("failed to fetch account balance", zap.Int("status", resp.StatusCode))
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.logger.Warn("failed to read account page", zap.Error(err))
		return "", false
	}

	match := balancePattern.FindSubmatch(body)
	if match == nil {
		b.logger.Warn("account balance not found in response")
		return "", false
	}
	return string(match[1]), true
}

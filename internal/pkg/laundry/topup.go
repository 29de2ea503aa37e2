package laundry

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
)

// TopUpService requests top-up payment links. The service answers with a
// redirect whose Location is the user-facing payment page.
type TopUpService struct {
	client  *Client
	storage account.Storage
	logger  *zap.Logger
}

func NewTopUpService(client *Client, storage account.Storage, logger *zap.Logger) *TopUpService {
	return &TopUpService{client: client, storage: storage, logger: logger}
}

// CreateRequest asks for a top-up link for the given amount option
// ("1".."5"). Returns ("", nil) when the user has no stored session.
func (t *TopUpService) CreateRequest(ctx context.Context, chatID int64, topUpID string) (string, error) {
	acc, err := t.storage.GetAccount(chatID)
	if err != nil {
		return "", err
	}
	if acc == nil || acc.Cookies == "" {
		t.logger.Warn("no cookies found, aborting top-up", zap.Int64("chat_id", chatID))
		return "", nil
	}

	form := url.Values{}
	form.Set("top_up_id", topUpID)
	form.Set("rules", "on")
	form.Set("rodo", "on")
	form.Set("yt0", "Doładuj konto")

	resp, err := t.client.postForm(ctx, t.client.topUpURL(), form, acc.Cookies)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		t.logger.Error("top-up request failed",
			zap.Int64("chat_id", chatID),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	link := resp.Header.Get("Location")
	if link == "" {
		t.logger.Warn("top-up request returned no redirect link", zap.Int64("chat_id", chatID))
	}
	return link, nil
}

package laundry

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/account/domain"
)

// fallbackSessionTTL is used when the login response carries no cookie
// expiration, which matches how long the service keeps rememberMe sessions.
const fallbackSessionTTL = 25 * 24 * time.Hour

// Authenticator performs the login handshake and persists the resulting
// session. It never starts background work itself; scheduling a sync loop
// for a freshly authenticated user is the caller's job.
type Authenticator struct {
	client  *Client
	storage account.Storage
	logger  *zap.Logger
}

func NewAuthenticator(client *Client, storage account.Storage, logger *zap.Logger) *Authenticator {
	return &Authenticator{client: client, storage: storage, logger: logger}
}

// Authenticate logs in to the laundry service and stores the session
// cookie header, its expiration and the credentials for chatID. The
// returned string is the cookie header.
//
// The service answers a successful login with a 302; every other status,
// wrong password or outage alike, surfaces as ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string, chatID int64) (string, error) {
	a.logger.Info("authenticating user",
		zap.String("login", login),
		zap.Int64("chat_id", chatID))

	form := url.Values{}
	form.Set("LoginForm[username]", login)
	form.Set("LoginForm[password]", password)
	form.Set("LoginForm[rememberMe]", "1")
	form.Set("yt0", "Zaloguj")

	resp, err := a.client.postForm(ctx, a.client.loginURL(), form, "")
	if err != nil {
		a.logger.Error("login request failed", zap.String("login", login), zap.Error(err))
		return "", ErrInvalidCredentials
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		a.logger.Error("authentication failed",
			zap.String("login", login),
			zap.Int("status", resp.StatusCode))
		return "", ErrInvalidCredentials
	}

	cookies := resp.Cookies()
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	cookieHeader := strings.Join(pairs, "; ")

	expiresAt := sessionExpiry(cookies)
	if err := a.storage.SetSession(chatID, cookieHeader, expiresAt); err != nil {
		return "", err
	}
	if err := a.storage.SetCredentials(chatID, login, password); err != nil {
		return "", err
	}

	a.logger.Info("authentication successful",
		zap.String("login", login),
		zap.String("expires_at", expiresAt))
	return cookieHeader, nil
}

// sessionExpiry picks the first explicit cookie expiration, whether it
// arrives as an Expires attribute or as Max-Age, falling back to now+25d
// when no cookie carries one. Extraction must never fail a login that the
// service already accepted.
func sessionExpiry(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if !c.Expires.IsZero() {
			return domain.FormatTime(c.Expires)
		}
		if c.MaxAge > 0 {
			return domain.FormatTime(time.Now().Add(time.Duration(c.MaxAge) * time.Second))
		}
	}
	return domain.FormatTime(time.Now().Add(fallbackSessionTTL))
}

package domain

import "time"

// TimeLayout is the canonical format for every timestamp persisted by the
// bot. It sorts lexicographically and round-trips through time.Parse.
const TimeLayout = "2006-01-02 15:04:05 UTC"

// Account is one user's record: Telegram chat, laundry-service credentials,
// the current session cookie header and the cached balance.
//
// Password is stored in cleartext. The refresh sweeper has to replay it
// against the login form, so it cannot be hashed.
type Account struct {
	ChatID           int64
	Username         string
	Password         string
	Cookies          string
	CookieExpiration string
	Balance          string
	BalanceUpdatedAt string
}

// FormatTime renders t in TimeLayout, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

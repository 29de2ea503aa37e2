package laundry

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production laundry service.
const DefaultBaseURL = "https://pralnie.org"

// Client talks to the laundry web service. Redirects are never followed:
// the login and top-up endpoints signal success with a 302 whose cookies
// and Location header carry the result.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *Client) loginURL() string {
	return c.baseURL + "/index.php/account/login"
}

func (c *Client) accountURL() string {
	return c.baseURL + "/index.php/dashboard/index"
}

func (c *Client) transactionsURL(accountID string) string {
	return c.baseURL + "/index.php/accountTransaction/getTransactionList/" + url.PathEscape(accountID)
}

func (c *Client) topUpURL() string {
	return c.baseURL + "/index.php/topUp/createRequest"
}

// postForm sends an application/x-www-form-urlencoded POST without
// following redirects. An optional cookie header is attached as-is.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, cookieHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	return c.http.Do(req)
}

// get issues a GET with the stored session cookie header.
func (c *Client) get(ctx context.Context, rawURL, cookieHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	return c.http.Do(req)
}

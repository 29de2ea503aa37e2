package laundry

import "errors"

var (
	// ErrInvalidCredentials covers every non-302 login response. The
	// upstream does not let us tell a wrong password from a service
	// failure, so neither do we.
	ErrInvalidCredentials = errors.New("laundry: login rejected")

	// Session token decoding.
	ErrNoIdentityCookie  = errors.New("laundry: no identity cookie besides PHPSESSID")
	ErrMalformedEnvelope = errors.New("laundry: malformed session token envelope")
	ErrMissingIdentifier = errors.New("laundry: account identifier missing from session token")

	// Balance aggregation.
	ErrTokenDecode         = errors.New("laundry: session token decode failed")
	ErrUpstreamUnavailable = errors.New("laundry: upstream request failed")
	ErrMalformedResponse   = errors.New("laundry: upstream response is not valid JSON")
)

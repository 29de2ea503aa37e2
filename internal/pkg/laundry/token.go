package laundry

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// sessionIDCookie is the platform's generic session cookie. The identity
// cookie is whichever other cookie the login response set.
const sessionIDCookie = "PHPSESSID"

var (
	lengthFramePattern = regexp.MustCompile(`^\d+:`)

	// The identity cookie carries PHP-serialized session state. Only three
	// field shapes matter here: strings, integers and empty arrays keyed
	// by an integer index. Anything else in the blob is skipped.
	taggedFieldPattern = regexp.MustCompile(`i:(\d+);(?:s:(\d+):"([^"]*)"|i:(\d+);|a:(\d+):\{\})`)
)

// EmptyList marks an a:<n>:{} field in a decoded session token.
type EmptyList struct{}

// DecodeSessionToken recovers the index→value mapping embedded in the
// identity cookie of a session cookie header. This is not a general PHP
// deserializer: it is a tolerant scan for exactly the tagged fields the
// bot needs, and trailing structure it does not understand is ignored.
func DecodeSessionToken(cookieHeader string) (map[int]any, error) {
	var identityValue string
	found := false
	for _, c := range splitCookieHeader(cookieHeader) {
		if c.name != sessionIDCookie {
			identityValue = c.value
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoIdentityCookie
	}

	// PathUnescape, not QueryUnescape: '+' inside the blob is a literal.
	decoded, err := url.PathUnescape(identityValue)
	if err != nil {
		// Percent-decoding failures mean the envelope is not the
		// serialized form we expect.
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	// The value is "<hash>:<session data>"; split at the first colon only.
	_, sessionData, ok := strings.Cut(decoded, ":")
	if !ok {
		return nil, ErrMalformedEnvelope
	}

	// Strip a single leading byte-length frame such as "231:".
	sessionData = lengthFramePattern.ReplaceAllString(sessionData, "")

	parsed := make(map[int]any)
	for _, match := range taggedFieldPattern.FindAllStringSubmatch(sessionData, -1) {
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch {
		case match[2] != "":
			parsed[index] = match[3]
		case match[4] != "":
			n, err := strconv.Atoi(match[4])
			if err != nil {
				continue
			}
			parsed[index] = n
		case match[5] != "":
			parsed[index] = EmptyList{}
		}
	}
	return parsed, nil
}

// AccountID extracts the numeric account identifier (index 0) from a
// session cookie header.
func AccountID(cookieHeader string) (string, error) {
	parsed, err := DecodeSessionToken(cookieHeader)
	if err != nil {
		return "", err
	}
	switch v := parsed[0].(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", ErrMissingIdentifier
	}
}

type cookiePair struct {
	name  string
	value string
}

// splitCookieHeader parses a "name=value; name=value" header, preserving
// the order cookies appeared in. Entries without "=" are dropped.
func splitCookieHeader(cookieHeader string) []cookiePair {
	var cookies []cookiePair
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		cookies = append(cookies, cookiePair{name: name, value: value})
	}
	return cookies
}

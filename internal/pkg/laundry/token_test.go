package laundry

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeIdentityCookie(serialized string) string {
	return url.QueryEscape("deadbeef:" + serialized)
}

func TestDecodeSessionToken_RoundTrip(t *testing.T) {
	header := "PHPSESSID=abc123; ident=" + encodeIdentityCookie(`i:0;s:5:"12345";`)

	parsed, err := DecodeSessionToken(header)
	require.NoError(t, err)
	assert.Equal(t, map[int]any{0: "12345"}, parsed)
}

func TestDecodeSessionToken_AllFieldShapes(t *testing.T) {
	serialized := `i:0;s:4:"1234";i:1;s:8:"mockuser";i:2;i:2592000;i:3;a:0:{}`
	header := "ident=" + encodeIdentityCookie("231:"+serialized) + "; PHPSESSID=abc"

	parsed, err := DecodeSessionToken(header)
	require.NoError(t, err)
	assert.Equal(t, "1234", parsed[0])
	assert.Equal(t, "mockuser", parsed[1])
	assert.Equal(t, 2592000, parsed[2])
	assert.Equal(t, EmptyList{}, parsed[3])
}

func TestDecodeSessionToken_StripsSingleLengthFrame(t *testing.T) {
	// Only one leading "<digits>:" frame is removed; an integer field that
	// happens to follow stays intact.
	header := "ident=" + encodeIdentityCookie(`42:i:0;i:77;`)

	parsed, err := DecodeSessionToken(header)
	require.NoError(t, err)
	assert.Equal(t, 77, parsed[0])
}

func TestDecodeSessionToken_TolerantScan(t *testing.T) {
	// Unknown trailing structure is skipped, not an error.
	serialized := `i:0;s:3:"987";i:5;O:8:"stdClass":0:{}garbage`
	header := "ident=" + encodeIdentityCookie(serialized)

	parsed, err := DecodeSessionToken(header)
	require.NoError(t, err)
	assert.Equal(t, "987", parsed[0])
	_, hasFive := parsed[5]
	assert.False(t, hasFive)
}

func TestDecodeSessionToken_NoIdentityCookie(t *testing.T) {
	_, err := DecodeSessionToken("PHPSESSID=onlysession")
	assert.ErrorIs(t, err, ErrNoIdentityCookie)

	_, err = DecodeSessionToken("")
	assert.ErrorIs(t, err, ErrNoIdentityCookie)
}

func TestDecodeSessionToken_MalformedEnvelope(t *testing.T) {
	// No colon separating the hash prefix from session data.
	_, err := DecodeSessionToken("ident=nodatahere; PHPSESSID=abc")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestAccountID(t *testing.T) {
	t.Run("string identifier", func(t *testing.T) {
		header := "ident=" + encodeIdentityCookie(`i:0;s:4:"5678";`)
		id, err := AccountID(header)
		require.NoError(t, err)
		assert.Equal(t, "5678", id)
	})

	t.Run("integer identifier", func(t *testing.T) {
		header := "ident=" + encodeIdentityCookie(`i:0;i:5678;`)
		id, err := AccountID(header)
		require.NoError(t, err)
		assert.Equal(t, "5678", id)
	})

	t.Run("missing identifier", func(t *testing.T) {
		header := "ident=" + encodeIdentityCookie(`i:1;s:4:"name";`)
		_, err := AccountID(header)
		assert.ErrorIs(t, err, ErrMissingIdentifier)
	})

	t.Run("empty list at index zero", func(t *testing.T) {
		header := "ident=" + encodeIdentityCookie(`i:0;a:0:{}`)
		_, err := AccountID(header)
		assert.ErrorIs(t, err, ErrMissingIdentifier)
	})
}

package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthorization(t *testing.T) {
	assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", basicAuthorization("Aladdin", "open sesame"))
}

func TestDigestChallenge_Authorization(t *testing.T) {
	restore := newCnonce
	newCnonce = func() string { return "0a4f113b" }
	defer func() { newCnonce = restore }()

	challenge, ok := parseDigestChallenge(`Digest realm="testrealm@host.com", qop="auth,auth-int", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`)
	require.True(t, ok)

	got := challenge.authorization("Mufasa", "Circle Of Life", "GET", "/dir/index.html")

	assert.Contains(t, got, `response="6629fae49393a05397450978507c4ef1"`)
	assert.Contains(t, got, `username="Mufasa"`)
	assert.Contains(t, got, `opaque="5ccc069c403ebaf9f0171e9517f40e41"`)
	assert.Contains(t, got, `qop=auth, nc=00000001, cnonce="0a4f113b"`)
}

func TestParseDigestChallenge_Rejects(t *testing.T) {
	_, ok := parseDigestChallenge(`Basic realm="x"`)
	assert.False(t, ok)

	_, ok = parseDigestChallenge(`Digest realm="x"`)
	assert.False(t, ok, "a challenge without nonce cannot be answered")
}

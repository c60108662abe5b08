package core

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	id := Identity{ID: 7, Email: "a@x.com", Username: "a"}

	token, err := issuer.Sign(id)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id.ID, claims.ID)
	assert.Equal(t, id.Email, claims.Email)
	assert.Equal(t, id.Username, claims.Username)
	assert.NotNil(t, claims.IssuedAt)
	assert.Nil(t, claims.ExpiresAt, "zero ttl issues tokens without exp")
}

func TestTokenIssuer_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", 0).Sign(Identity{ID: 1, Email: "a@x.com", Username: "a"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", 0).Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsTamperedSignature(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	token, err := issuer.Sign(Identity{ID: 1, Email: "a@x.com", Username: "a"})
	require.NoError(t, err)

	_, err = issuer.Verify(flipSignatureByte(token))
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	for _, token := range []string{"", "abc", "a.b.c", "....."} {
		_, err := issuer.Verify(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{ID: 1, Email: "a@x.com", Username: "a"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("test-secret", 0).Verify(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenIssuer("test-secret", 0).Verify(unsigned)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsMissingSubject(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 0)
	token, err := issuer.Sign(Identity{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Sign(Identity{ID: 1, Email: "a@x.com", Username: "a"})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	issuer.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

// flipSignatureByte changes the first character of the signature segment.
func flipSignatureByte(token string) string {
	i := strings.LastIndex(token, ".") + 1
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

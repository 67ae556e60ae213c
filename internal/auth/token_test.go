package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuerAt(secret string, at time.Time) *TokenIssuer {
	return NewTokenIssuerAt(secret, func() time.Time { return at })
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	managerID := uuid.New()
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(managerID)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, managerID, got)
}

func TestTokenIssuer_ExpiresAfterOneHour(t *testing.T) {
	issued := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	issuer := issuerAt("test-secret", issued)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	// still valid just before the hour is up
	issuer.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.NoError(t, err)

	// rejected just after
	issuer.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	for _, garbage := range []string{"", "not-a-token", "aaaa.bbbb.cccc"} {
		_, err := issuer.Verify(garbage)
		assert.Error(t, err, "token %q should not verify", garbage)
	}
}

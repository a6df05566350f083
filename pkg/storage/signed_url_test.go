package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("/uploads/kk-123.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	ref, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/kk-123.pdf", ref)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("/uploads/akta-1.pdf")
	require.NoError(t, err)

	_, _, err = signer.Parse(token + "x")
	require.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Minute)
	_, _, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLRejectsExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", -time.Minute)

	token, _, err := signer.Generate("/uploads/akta-1.pdf")
	require.NoError(t, err)

	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLRequiresReference(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	_, _, err := signer.Generate("")
	require.Error(t, err)
}

// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/platform/sec"
)

// writeTestKeyPair generates an RSA key pair and writes both PEM files into a
// temp directory, returning their paths.
func writeTestKeyPair(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "jwt_private.pem")
	pubPath = filepath.Join(dir, "jwt_public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

/*
TestTokenService_RoundTrip verifies that a signed access token carries the
expected claims back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	privPath, pubPath := writeTestKeyPair(t)

	service, err := sec.NewTokenService(privPath, pubPath, "libby.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "reader", string(sec.RoleMember), 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, string(sec.RoleMember), claims.Role)
	assert.Equal(t, "libby.test", claims.Issuer)
}

/*
TestTokenService_Expired verifies that an expired token is rejected.
*/
func TestTokenService_Expired(t *testing.T) {
	privPath, pubPath := writeTestKeyPair(t)

	service, err := sec.NewTokenService(privPath, pubPath, "libby.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "reader", string(sec.RoleMember), -1*time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_WrongKey verifies that a token signed by another key pair fails.
*/
func TestTokenService_WrongKey(t *testing.T) {
	privA, pubA := writeTestKeyPair(t)
	_, pubB := writeTestKeyPair(t)

	signer, err := sec.NewTokenService(privA, pubA, "libby.test")
	require.NoError(t, err)

	verifier, err := sec.NewTokenService(privA, pubB, "libby.test")
	require.NoError(t, err)

	token, err := signer.GenerateAccessToken("user-1", "reader", string(sec.RoleMember), time.Minute)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage verifies that malformed strings are rejected cleanly.
*/
func TestTokenService_Garbage(t *testing.T) {
	privPath, pubPath := writeTestKeyPair(t)

	service, err := sec.NewTokenService(privPath, pubPath, "libby.test")
	require.NoError(t, err)

	_, err = service.VerifyToken("not.a.jwt")
	assert.Error(t, err)
}

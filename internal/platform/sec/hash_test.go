// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/platform/sec"
)

/*
TestPasswordHash_RoundTrip verifies bcrypt hashing and comparison.
*/
func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
}

/*
TestGenerateSecureToken verifies length and uniqueness of opaque tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	// hex-encoded: 2 chars per entropy byte
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

/*
TestHashToken verifies deterministic token digests.
*/
func TestHashToken(t *testing.T) {
	a := sec.HashToken("abc")
	b := sec.HashToken("abc")
	c := sec.HashToken("abd")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha-256 hex digest
}

/*
TestUserRole_AtLeast verifies the role hierarchy ordering.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleModerator))
	assert.True(t, sec.RoleModerator.AtLeast(sec.RoleLibrarian))
	assert.True(t, sec.RoleLibrarian.AtLeast(sec.RoleMember))
	assert.False(t, sec.RoleMember.AtLeast(sec.RoleLibrarian))
	assert.False(t, sec.UserRole("unknown").AtLeast(sec.RoleMember))
	assert.True(t, sec.RoleMember.AtLeast(sec.RoleMember))
}

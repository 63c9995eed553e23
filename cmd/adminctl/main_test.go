package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"eventify/config"
	"eventify/internal/adapters/auth"
	"eventify/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() (*config.Config, error) {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}, nil
}

func TestRun_HashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"hash-password", "s3cret"}, &out, testConfig))

	values := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok)
		values[k] = v
	}
	require.NotEmpty(t, values["ADMIN_PASSWORD_SALT"])
	require.NotEmpty(t, values["ADMIN_PASSWORD_HASH"])

	hasher := auth.NewBcryptHasher(0)
	assert.NoError(t, hasher.Compare(values["ADMIN_PASSWORD_HASH"], values["ADMIN_PASSWORD_SALT"], "s3cret"))
	assert.Error(t, hasher.Compare(values["ADMIN_PASSWORD_HASH"], values["ADMIN_PASSWORD_SALT"], "wrong"))
}

func TestRun_IssueToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"issue-token", "-expiry", "5m", "admin@example.com"}, &out, testConfig))

	claims, err := auth.NewJWTVerifier("test-secret").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.HasRole(domain.RoleAdmin))
}

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"unknown"}, {"hash-password"}, {"issue-token"}} {
		err := run(args, &bytes.Buffer{}, testConfig)
		assert.ErrorIs(t, err, errUsage, "args %v", args)
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	for _, k := range []string{"PORT", "DATABASE_URL", "CONTEXT_TIMEOUT", "UPLOAD_DIR", "CORS_ALLOWED_ORIGINS", "JWT_EXPIRY", "EMAIL_PROVIDER", "RABBITMQ_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "static", cfg.UploadDir)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "noop", cfg.EmailProvider)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Contains(t, cfg.DBUrl, "eventify")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("CONTEXT_TIMEOUT", "10")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ADMIN_EMAIL", " Admin@Example.com ")
	t.Setenv("SES_INSECURE_SKIP_VERIFY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.True(t, cfg.SESInsecureSkipVerify)
}

func TestDurationEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, 3*time.Second, durationEnv("SOME_TIMEOUT", 3*time.Second))
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DevelopmentDefaultsJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
}

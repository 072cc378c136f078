package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	c := defaultConfig()
	applyEnv(c, envFrom(map[string]string{
		"PORT":                "8080",
		"SESSION_SECRET":      "very-secret-session-key",
		"ACCESS_CODE_DOCENTE": "profe-2024",
		"DATABASE_DSN":        "/data/evaluaciones.db",
		"PIN_PEPPER":          "pepper",
	}))

	assert.Equal(t, ":8080", c.Server.Port)
	assert.Equal(t, "very-secret-session-key", c.Session.Secret)
	assert.Equal(t, "profe-2024", c.Auth.AccessCode)
	assert.Equal(t, "/data/evaluaciones.db", c.Database.DSN)
	assert.Equal(t, "pepper", c.Pin.Pepper)
	assert.Empty(t, c.Session.RedisURL)
}

func TestDefaults(t *testing.T) {
	c := defaultConfig()
	assert.Equal(t, 8*time.Hour, c.SessionTTL())
	assert.Equal(t, 15*time.Minute, c.LoginWindow())
	assert.Equal(t, 20, c.LoginLimit.MaxAttempts)
	assert.Equal(t, 200, c.List.Limit)
}

func TestValidateRejectsMissingSecrets(t *testing.T) {
	t.Run("no session secret", func(t *testing.T) {
		c := defaultConfig()
		c.Auth.AccessCode = "profe"
		assert.Error(t, c.Validate())
	})

	t.Run("short session secret", func(t *testing.T) {
		c := defaultConfig()
		c.Auth.AccessCode = "profe"
		c.Session.Secret = "short"
		assert.Error(t, c.Validate())
	})

	t.Run("no access code", func(t *testing.T) {
		c := defaultConfig()
		c.Session.Secret = "very-secret-session-key"
		assert.Error(t, c.Validate())
	})

	t.Run("complete", func(t *testing.T) {
		c := defaultConfig()
		c.Session.Secret = "very-secret-session-key"
		c.Auth.AccessCode = "profe"
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = ":9999"
enable_metrics = true

[database]
dsn = "file.db"

[session]
secret = "from-file-session-secret"

[auth]
access_code = "from-file"

[login_limit]
max_attempts = 5
window_seconds = 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, k := range []string{"PORT", "SESSION_SECRET", "DATABASE_DSN", "REDIS_URL", "PIN_PEPPER"} {
		t.Setenv(k, "")
	}
	t.Setenv("ACCESS_CODE_DOCENTE", "from-env")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.Server.Port)
	assert.True(t, c.Server.EnableMetrics)
	assert.Equal(t, "file.db", c.Database.DSN)
	assert.Equal(t, "from-env", c.Auth.AccessCode)
	assert.Equal(t, 5, c.LoginLimit.MaxAttempts)
	assert.Equal(t, time.Minute, c.LoginWindow())
	assert.Equal(t, 12, c.Pin.MaxLength)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

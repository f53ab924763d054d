package site

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var cfg SiteConfig
	err := cfg.applyEnv(envMap(map[string]string{
		"SITE_NAME":            "My Site",
		"SITE_URL":             "https://example.com/",
		"DB_DRIVER":            "postgres",
		"DATABASE_URL":         "postgres://localhost/site",
		"ADMIN_SESSION_SECRET": "s",
		"COOKIE_SECURE":        "true",
		"RATE_LIMIT_WINDOW":    "90s",
		"SITE_AUTHOR":          "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "My Site", cfg.Name)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/site", cfg.DatabaseURL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 90*time.Second, cfg.RateLimitWindow)
	assert.Empty(t, cfg.Author)

	cfg.setDefaults()
	assert.Equal(t, "https://example.com", cfg.URL)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	var cfg SiteConfig
	assert.Error(t, cfg.applyEnv(envMap(map[string]string{"COOKIE_SECURE": "maybe"})))
	assert.Error(t, cfg.applyEnv(envMap(map[string]string{"RATE_LIMIT_WINDOW": "soon"})))
}

func TestDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	assert.Equal(t, "Bima Akbar", cfg.Name)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/site.db", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.SignInAttempts)
	assert.Equal(t, 10, cfg.SubscribeLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestValidate(t *testing.T) {
	valid := func() SiteConfig {
		cfg := SiteConfig{SessionSecret: testSecret}
		cfg.setDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*SiteConfig)
		wantErr bool
	}{
		{"valid", func(*SiteConfig) {}, false},
		{"missing secret", func(c *SiteConfig) { c.SessionSecret = "" }, true},
		{"short secret", func(c *SiteConfig) { c.SessionSecret = "short" }, true},
		{"unknown driver", func(c *SiteConfig) { c.DBDriver = "mysql" }, true},
		{"postgres without url", func(c *SiteConfig) { c.DBDriver = "postgres"; c.DatabaseURL = "" }, true},
		{"admin email alone", func(c *SiteConfig) { c.AdminEmail = "a@example.com" }, true},
		{"admin pair", func(c *SiteConfig) { c.AdminEmail = "a@example.com"; c.AdminPassword = "secret-pass" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: From YAML\naddr: \":9000\"\nsign_in_attempts: 3\n"), 0o600))

	t.Chdir(dir)
	t.Setenv("SITE_NAME", "From Env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 3, cfg.SignInAttempts)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn", "json")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

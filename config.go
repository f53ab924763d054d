package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/bimaakbar/bimasite/store"
	"github.com/bimaakbar/bimasite/views"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Bima Akbar")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Tagline for the home page, RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD and the footer

	Addr      string `yaml:"addr"`       // Listen address (default ":3000")
	StaticDir string `yaml:"static_dir"` // User-owned static assets (default "public")

	DBDriver    string `yaml:"db_driver"`    // "sqlite" (default) or "postgres"
	DatabaseURL string `yaml:"database_url"` // SQLite path or Postgres URL (default "data/site.db")

	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	// First administrator, created at startup when none exists.
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"-"`

	SignInAttempts  int           `yaml:"sign_in_attempts"`  // per IP per window (default 5)
	SubscribeLimit  int           `yaml:"subscribe_limit"`   // per IP per window (default 10)
	RateLimitWindow time.Duration `yaml:"rate_limit_window"` // default 1m

	LogLevel  string `yaml:"log_level"`  // zerolog level name (default "info")
	LogFormat string `yaml:"log_format"` // "json" (default) or "console"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Bima Akbar"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.DBDriver == "" {
		c.DBDriver = store.DriverSQLite
	}
	if c.DatabaseURL == "" && c.DBDriver == store.DriverSQLite {
		c.DatabaseURL = "data/site.db"
	}
	if c.SignInAttempts == 0 {
		c.SignInAttempts = 5
	}
	if c.SubscribeLimit == 0 {
		c.SubscribeLimit = 10
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate reports configuration that the server cannot start without.
func (c SiteConfig) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("config: session secret is required (ADMIN_SESSION_SECRET)")
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("config: session secret must be at least 32 bytes")
	}
	if c.DBDriver != store.DriverSQLite && c.DBDriver != store.DriverPostgres {
		return fmt.Errorf("config: unsupported db driver %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required for postgres")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("config: ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c SiteConfig) views() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		Description: c.Description,
		Author:      c.Author,
	}
}

// LoadConfig builds a SiteConfig from, in increasing precedence, the YAML
// file at path (optional), a .env file in the working directory and the
// process environment. Defaults fill whatever is still unset.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("SITE_NAME", &c.Name)
	str("SITE_URL", &c.URL)
	str("SITE_DESCRIPTION", &c.Description)
	str("SITE_AUTHOR", &c.Author)
	str("ADDR", &c.Addr)
	str("STATIC_DIR", &c.StaticDir)
	str("DB_DRIVER", &c.DBDriver)
	str("DATABASE_PATH", &c.DatabaseURL)
	str("DATABASE_URL", &c.DatabaseURL)
	str("ADMIN_SESSION_SECRET", &c.SessionSecret)
	str("ADMIN_EMAIL", &c.AdminEmail)
	str("ADMIN_PASSWORD", &c.AdminPassword)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v, ok := lookup("RATE_LIMIT_WINDOW"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: RATE_LIMIT_WINDOW: %w", err)
		}
		c.RateLimitWindow = d
	}
	return nil
}

// NewLogger returns a zerolog logger writing to w at the given level.
// format "console" selects the human-readable writer.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the App logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock overrides the time source used by the rate limiters.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

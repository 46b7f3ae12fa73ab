package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevSecret is used for both trust domains when nothing is configured
	// outside production.
	DevSecret = "dev-secret-key-change-in-production"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	CORSOrigins     []string
	TrustedProxies  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// MetricsToken guards /metrics when set.
	MetricsToken string
}

// Auth holds the per-domain signing secrets and login throttling.
type Auth struct {
	TenantSecret     string
	PlatformSecret   string
	TokenTTL         time.Duration
	LoginMaxFailures int
	LoginLockWindow  time.Duration
	LoginLockFor     time.Duration
	// AuthRateLimit bounds public auth requests per client IP inside
	// AuthRateWindow.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// RedisConfig configures the optional Redis client. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Bootstrap drives the start-up seeder.
type Bootstrap struct {
	PlatformAdminName     string
	PlatformAdminEmail    string
	PlatformAdminPassword string
	DefaultTenantName     string
	DefaultTenantSlug     string
	DefaultAdminEmail     string
	DefaultAdminPassword  string
	Enabled               bool
}

// Config is built once at start-up and passed down explicitly.
type Config struct {
	Server      Server
	Auth        Auth
	DatabaseURL string
	Redis       RedisConfig
	Bootstrap   Bootstrap

	// Warnings collects non-fatal problems found while loading, for main to
	// log once a logger exists.
	Warnings []string
}

// IsProduction reports whether the production secret policy applies.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Load reads an optional .env file and then builds a Config from the
// process environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if err := LoadDotEnv(files...); err != nil {
		return nil, err
	}
	return FromEnv(os.Getenv)
}

// LoadDotEnv copies the given files (default .env) into the process
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from a lookup function so main stays lean and
// tests don't touch the process environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}
	cfg := &Config{
		Server: Server{
			Addr:            r.str("ADDR", ":8080"),
			Environment:     strings.ToLower(r.str("ENVIRONMENT", EnvDevelopment)),
			CORSOrigins:     r.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  r.list("TRUSTED_PROXIES", nil),
			RequestTimeout:  r.duration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MetricsToken:    getenv("METRICS_TOKEN"),
		},
		Auth: Auth{
			TokenTTL:         r.duration("TOKEN_TTL", 7*24*time.Hour),
			LoginMaxFailures: r.int("LOGIN_MAX_FAILURES", 5),
			LoginLockWindow:  r.duration("LOGIN_FAILURE_WINDOW", 15*time.Minute),
			LoginLockFor:     r.duration("LOGIN_LOCK_DURATION", 15*time.Minute),
			AuthRateLimit:    r.int("AUTH_RATE_LIMIT", 30),
			AuthRateWindow:   r.duration("AUTH_RATE_WINDOW", time.Minute),
		},
		DatabaseURL: getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          getenv("REDIS_URL"),
			PoolSize:     r.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Bootstrap: Bootstrap{
			PlatformAdminName:     r.str("PLATFORM_ADMIN_NAME", "Platform Owner"),
			PlatformAdminEmail:    strings.ToLower(strings.TrimSpace(getenv("PLATFORM_ADMIN_EMAIL"))),
			PlatformAdminPassword: getenv("PLATFORM_ADMIN_PASSWORD"),
			DefaultTenantName:     r.str("DEFAULT_TENANT_NAME", "Cliente Demo"),
			DefaultTenantSlug:     r.str("DEFAULT_TENANT_SLUG", "demo"),
			DefaultAdminEmail:     strings.ToLower(strings.TrimSpace(getenv("DEFAULT_ADMIN_EMAIL"))),
			DefaultAdminPassword:  getenv("DEFAULT_ADMIN_PASSWORD"),
			Enabled:               r.bool("SEED_DEMO", true),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.resolveSecrets(getenv); err != nil {
		return nil, err
	}
	cfg.applyBootstrapDefaults()
	return cfg, nil
}

// applyBootstrapDefaults fills the demo admin credentials outside
// production. In production the default admin is only seeded when both
// values are configured.
func (c *Config) applyBootstrapDefaults() {
	if c.IsProduction() {
		return
	}
	if c.Bootstrap.DefaultAdminEmail == "" {
		c.Bootstrap.DefaultAdminEmail = "admin@teste.com"
	}
	if c.Bootstrap.DefaultAdminPassword == "" {
		c.Bootstrap.DefaultAdminPassword = "123456"
	}
}

// resolveSecrets applies the secret policy. Production requires distinct
// per-domain secrets; elsewhere the shared JWT_SECRET (or DevSecret) fills
// the gaps and a warning is recorded.
func (c *Config) resolveSecrets(getenv func(string) string) error {
	tenant := getenv("TENANT_JWT_SECRET")
	platform := getenv("PLATFORM_JWT_SECRET")

	if c.IsProduction() {
		if tenant == "" || platform == "" {
			return errors.New("config: TENANT_JWT_SECRET and PLATFORM_JWT_SECRET are required in production")
		}
		if tenant == platform {
			return errors.New("config: TENANT_JWT_SECRET and PLATFORM_JWT_SECRET must differ in production")
		}
		c.Auth.TenantSecret, c.Auth.PlatformSecret = tenant, platform
		return nil
	}

	shared := getenv("JWT_SECRET")
	if shared == "" {
		shared = DevSecret
	}
	if tenant == "" {
		tenant = shared
		c.Warnings = append(c.Warnings, "TENANT_JWT_SECRET not set, using shared fallback secret")
	}
	if platform == "" {
		platform = shared
		c.Warnings = append(c.Warnings, "PLATFORM_JWT_SECRET not set, using shared fallback secret")
	}
	c.Auth.TenantSecret, c.Auth.PlatformSecret = tenant, platform
	return nil
}

type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) list(key string, def []string) []string {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		r.fail(fmt.Errorf("config: %s must be a positive duration, got %q", key, raw))
		return def
	}
	return d
}

func (r *reader) int(key string, def int) int {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		r.fail(fmt.Errorf("config: %s must be a positive integer, got %q", key, raw))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(fmt.Errorf("config: %s must be a boolean, got %q", key, raw))
		return def
	}
	return b
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

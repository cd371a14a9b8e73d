package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// PublicBaseURL is the origin used in links sent by e-mail.
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	Auth    AuthConfig
	Session SessionConfig
	Notify  NotifyConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	ResetTTL  time.Duration `env:"RESET_TOKEN_TTL, default=1h"`

	// AdminEmail always resolves to the admin role.
	AdminEmail string `env:"ADMIN_EMAIL"`
	// The bypass login is enabled only when both values are set. The
	// password is a bcrypt hash.
	BypassEmail        string `env:"ADMIN_BYPASS_EMAIL"`
	BypassPasswordHash string `env:"ADMIN_BYPASS_PASSWORD_HASH"`
}

type SessionConfig struct {
	// CacheTTL bounds how long a local session record survives in Redis.
	// Zero keeps it until sign-out.
	CacheTTL     time.Duration `env:"SESSION_CACHE_TTL, default=720h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
	EventChannel string        `env:"AUTH_EVENT_CHANNEL, default=auth:events"`
	// Refresh is how long a resolved client state is reused before the
	// remote session is checked again.
	Refresh time.Duration `env:"SESSION_REFRESH, default=30s"`
	// IdleTTL drops in-memory states of clients not seen for this long.
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL, default=24h"`
}

type NotifyConfig struct {
	Workers   int `env:"NOTIFY_WORKERS, default=4"`
	QueueSize int `env:"NOTIFY_QUEUE_SIZE, default=256"`
	// HousekeepingSpec is the cron schedule for purging expired sessions
	// and reset tokens.
	HousekeepingSpec string `env:"HOUSEKEEPING_CRON, default=@hourly"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=standmarket"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Auth.BypassEmail != "" && c.Auth.BypassPasswordHash == "" {
		return errors.New("config: ADMIN_BYPASS_EMAIL requires ADMIN_BYPASS_PASSWORD_HASH")
	}
	if c.Notify.Workers < 1 {
		return errors.New("config: NOTIFY_WORKERS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Backend struct {
	URL      string
	Envelope string
}

type Redis struct {
	Host string `env:"REDIS_HOST,default=localhost"`
	Port string `env:"REDIS_PORT,default=6379"`
	DB   int    `env:"REDIS_DB,default=0"`
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type Postgres struct {
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=5432"`
	User     string `env:"DB_USER,default=postgres"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME,default=cinema_client"`
}

type Config struct {
	Env        string `env:"CINEMA_ENV,default=local"`
	ListenAddr string `env:"CINEMA_LISTEN_ADDR,default=127.0.0.1:8080"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`
	LogFormat  string `env:"LOG_FORMAT,default=text"`

	FilmsURL         string `env:"CINEMA_FILMS_URL,default=http://localhost:5000"`
	FilmsEnvelope    string `env:"CINEMA_FILMS_ENVELOPE,default=data"`
	SessionsURL      string `env:"CINEMA_SESSIONS_URL,default=http://localhost:5001"`
	SessionsEnvelope string `env:"CINEMA_SESSIONS_ENVELOPE,default=data"`
	AccountsURL      string `env:"CINEMA_ACCOUNTS_URL,default=http://localhost:5002"`
	AccountsEnvelope string `env:"CINEMA_ACCOUNTS_ENVELOPE,default=data"`

	RefreshInterval      time.Duration `env:"CINEMA_REFRESH_INTERVAL,default=1m"`
	GuardBootstrapPeriod time.Duration `env:"CINEMA_GUARD_BOOTSTRAP_PERIOD,default=5s"`

	SnapshotBackend string        `env:"CINEMA_SNAPSHOT_BACKEND,default=none"`
	SnapshotTTL     time.Duration `env:"CINEMA_SNAPSHOT_TTL,default=24h"`

	Redis    Redis
	Postgres Postgres
}

func (c *Config) Films() Backend {
	return Backend{URL: c.FilmsURL, Envelope: c.FilmsEnvelope}
}

func (c *Config) Sessions() Backend {
	return Backend{URL: c.SessionsURL, Envelope: c.SessionsEnvelope}
}

func (c *Config) Accounts() Backend {
	return Backend{URL: c.AccountsURL, Envelope: c.AccountsEnvelope}
}

// Load reads envFile (when present) into the process environment and decodes
// the configuration from it.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logrus.Infof("%s not found, using OS environment", envFile)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	for name, envelope := range map[string]string{
		"CINEMA_FILMS_ENVELOPE":    c.FilmsEnvelope,
		"CINEMA_SESSIONS_ENVELOPE": c.SessionsEnvelope,
		"CINEMA_ACCOUNTS_ENVELOPE": c.AccountsEnvelope,
	} {
		switch strings.ToLower(envelope) {
		case "data", "bare":
		default:
			return fmt.Errorf("%s must be \"data\" or \"bare\", got %q", name, envelope)
		}
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("CINEMA_REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}

	switch c.SnapshotBackend {
	case "none", "redis", "postgres":
	default:
		return fmt.Errorf("CINEMA_SNAPSHOT_BACKEND must be none, redis or postgres, got %q", c.SnapshotBackend)
	}

	return nil
}

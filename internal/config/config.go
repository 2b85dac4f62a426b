package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sukalov/hymnarium/internal/utils"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	CacheMemory = "memory"
	CacheDisk   = "disk"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is resolved once at start-up and passed to every component.
type Config struct {
	Env      string
	HTTPAddr string

	Database Database
	R2       R2
	Cache    Cache
	Redis    Redis
	Bot      Bot
	Log      Log
}

type Database struct {
	Driver     string
	DSN        string
	SQLitePath string
}

// R2 credentials stay optional here; the signer rejects missing values.
type R2 struct {
	AccessKeyID     string
	SecretAccessKey string
	AccountID       string
	Bucket          string
	SigningMode     string
}

type Cache struct {
	Backend    string
	TTL        time.Duration
	Dir        string
	MaxEntries int
}

type Redis struct {
	URL      string
	Password string
}

type Bot struct {
	Token string
	// PublicURL prefixes the relative media links sent to chats.
	PublicURL      string
	LogChannelID   int64
	AdminUsernames []string
}

type Log struct {
	Level  string
	Format string
}

// Load reads the environment (and .env) into a Config.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      strings.ToLower(utils.EnvOr("HYMNARIUM_ENV", EnvDevelopment)),
		HTTPAddr: utils.EnvOr("HTTP_ADDR", ":8080"),
		R2: R2{
			AccessKeyID:     utils.EnvOr("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: utils.EnvOr("R2_SECRET_ACCESS_KEY", ""),
			AccountID:       utils.EnvOr("R2_ACCOUNT_ID", ""),
			Bucket:          utils.EnvOr("R2_BUCKET", "hymnarium"),
			SigningMode:     utils.EnvOr("R2_SIGNING_MODE", "empty-hash"),
		},
		Cache: Cache{
			Backend: strings.ToLower(utils.EnvOr("CACHE_BACKEND", CacheMemory)),
			Dir:     utils.EnvOr("CACHE_DIR", ".cache/hymnarium"),
		},
		Bot: Bot{
			Token:          utils.EnvOr("BOT_TOKEN", ""),
			PublicURL:      strings.TrimRight(utils.EnvOr("PUBLIC_BASE_URL", ""), "/"),
			AdminUsernames: utils.SplitList(utils.EnvOr("ADMIN_USERNAMES", "")),
		},
		Log: Log{
			Level:  utils.EnvOr("LOG_LEVEL", "info"),
			Format: utils.EnvOr("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.loadDatabase(); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(utils.EnvOr("CACHE_TTL", "24h"))
	if err != nil {
		return nil, e.Mark(e.ErrConfiguration, "parse CACHE_TTL", err)
	}
	cfg.Cache.TTL = ttl

	maxEntries, err := strconv.Atoi(utils.EnvOr("CACHE_MAX_ENTRIES", "2048"))
	if err != nil {
		return nil, e.Mark(e.ErrConfiguration, "parse CACHE_MAX_ENTRIES", err)
	}
	cfg.Cache.MaxEntries = maxEntries

	if cfg.Cache.Backend == CacheRedis {
		env, err := utils.LoadEnv([]string{"REDIS_URL", "REDIS_PASSWORD"})
		if err != nil {
			return nil, e.Mark(e.ErrConfiguration, "load redis env", err)
		}
		cfg.Redis = Redis{URL: env["REDIS_URL"], Password: env["REDIS_PASSWORD"]}
	} else {
		cfg.Redis = Redis{URL: utils.EnvOr("REDIS_URL", ""), Password: utils.EnvOr("REDIS_PASSWORD", "")}
	}

	if raw := utils.EnvOr("LOG_CHANNEL_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, e.Mark(e.ErrConfiguration, "parse LOG_CHANNEL_ID", err)
		}
		cfg.Bot.LogChannelID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadDatabase() error {
	switch c.Env {
	case EnvProduction:
		env, err := utils.LoadEnv([]string{"TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN"})
		if err != nil {
			return e.Mark(e.ErrConfiguration, "load db env", err)
		}
		c.Database = Database{
			Driver: "libsql",
			DSN:    fmt.Sprintf("%s?authToken=%s", env["TURSO_DATABASE_URL"], env["TURSO_AUTH_TOKEN"]),
		}
	case EnvDevelopment:
		path := utils.EnvOr("SQLITE_PATH", "static/hymnarium.db")
		c.Database = Database{Driver: "sqlite", DSN: path, SQLitePath: path}
	default:
		return e.Mark(e.ErrConfiguration, fmt.Sprintf("unknown HYMNARIUM_ENV %q", c.Env), nil)
	}
	return nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheDisk, CacheRedis, CacheNone:
	default:
		return e.Mark(e.ErrConfiguration, fmt.Sprintf("unknown CACHE_BACKEND %q", c.Cache.Backend), nil)
	}
	if c.Cache.TTL <= 0 {
		return e.Mark(e.ErrConfiguration, "CACHE_TTL must be positive", nil)
	}
	switch c.R2.SigningMode {
	case "empty-hash", "unsigned-payload":
	default:
		return e.Mark(e.ErrConfiguration, fmt.Sprintf("unknown R2_SIGNING_MODE %q", c.R2.SigningMode), nil)
	}
	return nil
}

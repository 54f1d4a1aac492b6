// Package config loads and validates application settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/oib/internal/common"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/oib/oib.db"

// Settings is the typed view of the configuration.
type Settings struct {
	Logging  LoggingConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Server   ServerConfig
	Language string
	Theme    string
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where usage counters are kept.
type StorageConfig struct {
	Backend      string
	DatabasePath string
}

// RedisConfig configures the Redis counter backend.
type RedisConfig struct {
	URL             string
	KeyPrefix       string
	PoolSize        int
	DialTimeout     time.Duration
	ConnectAttempts int
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string
	TLSDir          string
	ShutdownTimeout time.Duration
	MaxBatch        int
	TLS             bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.connect_attempts", 3)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_batch", 1000)
	v.SetDefault("server.tls", false)
	v.SetDefault("server.tls_dir", "~/.config/oib/certs")
	v.SetDefault("ui.language", "en")
	v.SetDefault("ui.theme", "default")
}

// Load reads Settings out of v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(v.GetString("storage.backend")),
			DatabasePath: ExpandPath(v.GetString("database.path")),
		},
		Redis: RedisConfig{
			URL:             v.GetString("redis.url"),
			KeyPrefix:       v.GetString("redis.key_prefix"),
			PoolSize:        v.GetInt("redis.pool_size"),
			DialTimeout:     v.GetDuration("redis.dial_timeout"),
			ConnectAttempts: v.GetInt("redis.connect_attempts"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxBatch:        v.GetInt("server.max_batch"),
			TLS:             v.GetBool("server.tls"),
			TLSDir:          ExpandPath(v.GetString("server.tls_dir")),
		},
		Language: strings.ToLower(v.GetString("ui.language")),
		Theme:    strings.ToLower(v.GetString("ui.theme")),
	}

	if s.Storage.DatabasePath == "" {
		s.Storage.DatabasePath = ExpandPath(DefaultDatabasePath)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	switch s.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("%w: redis.url is required for the redis backend", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: storage.backend %q (want sqlite, redis or memory)", common.ErrInvalidConfig, s.Storage.Backend)
	}

	switch s.Language {
	case "en", "hr":
	default:
		return fmt.Errorf("%w: ui.language %q (want en or hr)", common.ErrInvalidConfig, s.Language)
	}

	if s.Server.MaxBatch <= 0 {
		return fmt.Errorf("%w: server.max_batch must be positive", common.ErrInvalidConfig)
	}
	return nil
}

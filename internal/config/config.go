package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Bolt        BoltConfig
	Redis       RedisConfig
	Backup      BackupConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// StorageConfig selects where the primary snapshot lives.
type StorageConfig struct {
	Backend      string
	FilePath     string
	AtomicWrites bool
}

type BoltConfig struct {
	Path   string
	Bucket string
}

type RedisConfig struct {
	URL         string
	Password    string
	DB          int
	SnapshotKey string
}

// BackupConfig drives the periodic copy of the store to a secondary backend.
type BackupConfig struct {
	Enabled  bool
	Backend  string
	Interval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "tracker"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(getString("STORAGE_BACKEND", BackendFile)),
			FilePath:     getString("STORAGE_FILE_PATH", "./data/tracker.csv"),
			AtomicWrites: getBool("STORAGE_ATOMIC_WRITES", true),
		},
		Bolt: BoltConfig{
			Path:   getString("BOLTDB_PATH", "./data/tracker.db"),
			Bucket: getString("BOLTDB_BUCKET", "entities"),
		},
		Redis: RedisConfig{
			URL:         getString("REDIS_URL", "redis://localhost:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          getInt("REDIS_DB", 0),
			SnapshotKey: getString("REDIS_SNAPSHOT_KEY", "tracker:snapshot"),
		},
		Backup: BackupConfig{
			Enabled:  getBool("BACKUP_ENABLED", false),
			Backend:  strings.ToLower(getString("BACKUP_BACKEND", BackendBolt)),
			Interval: getDuration("BACKUP_INTERVAL", 5*time.Minute),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects backend combinations the server cannot wire.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendBolt, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if !c.Backup.Enabled {
		return nil
	}
	switch c.Backup.Backend {
	case BackendBolt, BackendRedis:
	default:
		return fmt.Errorf("config: unknown BACKUP_BACKEND %q", c.Backup.Backend)
	}
	if c.Backup.Backend == c.Storage.Backend {
		return fmt.Errorf("config: backup backend %q is also the primary backend", c.Backup.Backend)
	}
	if c.Backup.Interval <= 0 {
		return fmt.Errorf("config: BACKUP_INTERVAL must be positive, got %s", c.Backup.Interval)
	}
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

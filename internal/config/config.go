package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session storage drivers.
const (
	SessionDriverRedis = "redis"
	SessionDriverBolt  = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Session     SessionConfig
	Auth        AuthConfig
	JWT         JWTConfig
	Realtime    RealtimeConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Monitor     MonitorConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SessionConfig struct {
	Driver        string
	TTL           time.Duration
	CookieName    string
	CookieSecure  bool
	BoltPath      string
	SweepInterval time.Duration
}

type AuthConfig struct {
	MinPasswordLength int
	BcryptCost        int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type RealtimeConfig struct {
	// Listen enables the Postgres LISTEN change feed. Without it each
	// instance only sees its own writes.
	Listen            bool
	Channel           string
	SubscriberBuffer  int
	LoadTimeout       time.Duration
	HeartbeatInterval time.Duration
	ReconnectDelay    time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
}

type MonitorConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suitable for local development.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskflow"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 0),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "taskflow"),
			User:            getString("DB_USER", "taskflow"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Driver:        strings.ToLower(getString("SESSION_DRIVER", SessionDriverRedis)),
			TTL:           getDuration("SESSION_TTL", 24*time.Hour),
			CookieName:    getString("SESSION_COOKIE", "taskflow_sid"),
			CookieSecure:  getBool("SESSION_COOKIE_SECURE", false),
			BoltPath:      getString("SESSION_BOLT_PATH", "./data/sessions.db"),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		Auth: AuthConfig{
			MinPasswordLength: getInt("AUTH_MIN_PASSWORD", 6),
			BcryptCost:        getInt("AUTH_BCRYPT_COST", 10),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "taskflow"),
			TTL:    getDuration("JWT_TTL", time.Hour),
		},
		Realtime: RealtimeConfig{
			Listen:            getBool("REALTIME_LISTEN", true),
			Channel:           getString("REALTIME_CHANNEL", "task_changes"),
			SubscriberBuffer:  getInt("REALTIME_SUBSCRIBER_BUFFER", 16),
			LoadTimeout:       getDuration("REALTIME_LOAD_TIMEOUT", 5*time.Second),
			HeartbeatInterval: getDuration("REALTIME_HEARTBEAT", 15*time.Second),
			ReconnectDelay:    getDuration("REALTIME_RECONNECT_DELAY", 2*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.validate(); err != nil {
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

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) validate() error {
	switch c.Session.Driver {
	case SessionDriverRedis, SessionDriverBolt:
	default:
		return fmt.Errorf("config: unknown SESSION_DRIVER %q", c.Session.Driver)
	}
	if c.IsProduction() && c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	if c.Auth.MinPasswordLength <= 0 {
		return fmt.Errorf("config: AUTH_MIN_PASSWORD must be positive")
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
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

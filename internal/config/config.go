package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Хранилища записей доступности
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Драйверы уведомлений
const (
	NotifierAsynq = "asynq"
	NotifierKafka = "kafka"
	NotifierNone  = "none"
)

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Grid          GridConfig          `toml:"grid"`
	Allocation    AllocationConfig    `toml:"allocation"`
	StaffService  StaffServiceConfig  `toml:"staff_service"`
	Notifications NotificationsConfig `toml:"notifications"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	User              string `toml:"user"`
	Password          string `toml:"password"`
	DBName            string `toml:"dbname"`
	SSLMode           string `toml:"sslmode"`
	MaxOpenConns      int    `toml:"max_open_conns"`
	MaxIdleConns      int    `toml:"max_idle_conns"`
	ConnMaxLifetime   int    `toml:"conn_max_lifetime"` // секунды
	MigrationsEnabled bool   `toml:"migrations_enabled"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type GridConfig struct {
	Opening            string `toml:"opening"`
	Closing            string `toml:"closing"`
	GranularityMinutes int    `toml:"granularity_minutes"`
}

type AllocationConfig struct {
	Store            string  `toml:"store"`
	MaxWriteAttempts int     `toml:"max_write_attempts"`
	DefaultStaffIDs  []int64 `toml:"default_staff_ids"`
}

type StaffServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type NotificationsConfig struct {
	Driver   string   `toml:"driver"`
	Queue    string   `toml:"queue"`
	MaxRetry int      `toml:"max_retry"`
	Brokers  []string `toml:"brokers"`
	Topic    string   `toml:"topic"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает TOML файл, накладывает переменные окружения (.env подхватывается, если есть),
// проставляет значения по умолчанию и валидирует результат
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	if err := setInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&c.StaffService.URL, "STAFF_SERVICE_URL")
	setString(&c.Logs.Level, "LOG_LEVEL")
	setString(&c.Allocation.Store, "ALLOCATION_STORE")

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.Notifications.Brokers = splitList(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "availability"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "staff_allocator"
	}

	if c.Grid.Opening == "" {
		c.Grid.Opening = "09:00"
	}
	if c.Grid.Closing == "" {
		c.Grid.Closing = "17:00"
	}
	if c.Grid.GranularityMinutes == 0 {
		c.Grid.GranularityMinutes = 15
	}

	if c.Allocation.Store == "" {
		c.Allocation.Store = StorePostgres
	}
	if c.Allocation.MaxWriteAttempts == 0 {
		c.Allocation.MaxWriteAttempts = 3
	}

	if c.StaffService.Timeout == 0 {
		c.StaffService.Timeout = 5
	}

	if c.Notifications.Driver == "" {
		c.Notifications.Driver = NotifierNone
	}
	if c.Notifications.Queue == "" {
		c.Notifications.Queue = "notifications"
	}
	if c.Notifications.MaxRetry == 0 {
		c.Notifications.MaxRetry = 5
	}
	if c.Notifications.Topic == "" {
		c.Notifications.Topic = "staff-allocations"
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
}

// Validate проверяет согласованность настроек. Сетку целиком проверяет domain.NewTimeGrid.
func (c *Config) Validate() error {
	switch c.Allocation.Store {
	case StorePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database host and dbname are required for store %q", ErrInvalidConfig, StorePostgres)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis addr is required for store %q", ErrInvalidConfig, StoreRedis)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown allocation store %q", ErrInvalidConfig, c.Allocation.Store)
	}

	if c.Allocation.MaxWriteAttempts < 1 {
		return fmt.Errorf("%w: max_write_attempts must be at least 1", ErrInvalidConfig)
	}
	for _, id := range c.Allocation.DefaultStaffIDs {
		if id <= 0 {
			return fmt.Errorf("%w: default_staff_ids must be positive, got %d", ErrInvalidConfig, id)
		}
	}

	switch c.Notifications.Driver {
	case NotifierNone:
	case NotifierAsynq:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis addr is required for notifier %q", ErrInvalidConfig, NotifierAsynq)
		}
	case NotifierKafka:
		if len(c.Notifications.Brokers) == 0 {
			return fmt.Errorf("%w: brokers are required for notifier %q", ErrInvalidConfig, NotifierKafka)
		}
	default:
		return fmt.Errorf("%w: unknown notifications driver %q", ErrInvalidConfig, c.Notifications.Driver)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit rps and burst must be positive", ErrInvalidConfig)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = n
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

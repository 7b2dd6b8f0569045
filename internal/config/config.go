package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

// Config хранит все настройки приложения
type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Redis      RedisConfig     `mapstructure:"redis"`
	JWT        JWTConfig       `mapstructure:"jwt"`
	Log        LogConfig       `mapstructure:"log"`
	Cache      CacheConfig     `mapstructure:"cache"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	CORS       CORSConfig      `mapstructure:"cors"`
	Generation quizgen.Config  `mapstructure:"generation"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // секунды
	WriteTimeout int    `mapstructure:"write_timeout"` // секунды
	// Mode: режим gin ("debug", "release", "test")
	Mode           string `mapstructure:"mode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig — проверка токенов внешнего провайдера идентификации (HMAC)
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
	// AdminRole — значение claim "role", открывающее управление банком вопросов
	AdminRole string `mapstructure:"admin_role"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // если пусто, только stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CacheConfig содержит настройки кеширования истории
type CacheConfig struct {
	HistoryTTLSec int `mapstructure:"history_ttl_sec"`
}

// HistoryTTL возвращает время жизни кеша истории
func (c CacheConfig) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLSec) * time.Second
}

// RateLimitConfig — лимит на генерацию викторин
type RateLimitConfig struct {
	GenerateMax       int `mapstructure:"generate_max"`
	GenerateWindowSec int `mapstructure:"generate_window_sec"`
}

// CORSConfig содержит разрешённые источники
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("server.migrations_path", "migrations")

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("jwt.admin_role", "admin")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.max_size_mb", 100)
	vip.SetDefault("log.max_backups", 5)
	vip.SetDefault("log.max_age_days", 30)

	vip.SetDefault("cache.history_ttl_sec", 300)

	vip.SetDefault("rate_limit.generate_max", 30)
	vip.SetDefault("rate_limit.generate_window_sec", 60)

	vip.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})

	gen := quizgen.DefaultConfig()
	vip.SetDefault("generation.min_quizzes_for_adaptive", gen.MinQuizzesForAdaptive)
	vip.SetDefault("generation.base.easy", gen.Base.Easy)
	vip.SetDefault("generation.base.medium", gen.Base.Medium)
	vip.SetDefault("generation.base.hard", gen.Base.Hard)
	vip.SetDefault("generation.noise", gen.Noise)
	vip.SetDefault("generation.adaptive_alpha", gen.AdaptiveAlpha)
	vip.SetDefault("generation.allowed_totals", gen.AllowedTotals)
	vip.SetDefault("generation.overdraw_factor", gen.OverdrawFactor)
	vip.SetDefault("generation.max_limit", gen.MaxLimit)
	vip.SetDefault("generation.shortfall_policy", string(gen.ShortfallPolicy))
}

func bindEnv(vip *viper.Viper) {
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.issuer", "JWT_ISSUER")

	// Привязка для Server и Log
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")
	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("log.file", "LOG_FILE")

	// Генерация
	vip.BindEnv("generation.shortfall_policy", "GENERATION_SHORTFALL_POLICY")
	vip.BindEnv("generation.min_quizzes_for_adaptive", "GENERATION_MIN_QUIZZES_FOR_ADAPTIVE")
}

// Load загружает конфигурацию: умолчания → файл (если есть) → переменные окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: значения придут из окружения и умолчаний
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if c.Server.Mode == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	if c.RateLimit.GenerateMax <= 0 || c.RateLimit.GenerateWindowSec <= 0 {
		return fmt.Errorf("rate_limit.generate_max and rate_limit.generate_window_sec must be positive")
	}
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation config: %w", err)
	}
	return nil
}

// LogFields возвращает несекретные параметры для записи при старте
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("server_port", c.Server.Port),
		zap.String("server_mode", c.Server.Mode),
		zap.String("db_host", c.Database.Host),
		zap.String("db_name", c.Database.DBName),
		zap.String("redis_mode", c.Redis.Mode),
		zap.Bool("jwt_secret_set", c.JWT.Secret != ""),
		zap.Int("min_quizzes_for_adaptive", c.Generation.MinQuizzesForAdaptive),
		zap.Float64("adaptive_alpha", c.Generation.AdaptiveAlpha),
		zap.Ints("allowed_totals", c.Generation.AllowedTotals),
		zap.String("shortfall_policy", string(c.Generation.ShortfallPolicy)),
	}
}

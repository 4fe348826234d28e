package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

// Config объединяет все аспекты настройки приложения.
type Config struct {
	HTTP        HTTPConfig       `yaml:"http"`
	Database    DatabaseConfig   `yaml:"database"`
	Timeouts    TimeoutConfig    `yaml:"timeouts"`
	Logging     LoggingConfig    `yaml:"logging"`
	Swagger     SwaggerConfig    `yaml:"swagger"`
	Auth        AuthConfig       `yaml:"auth"`
	Assignments AssignmentConfig `yaml:"assignments"`
	LoadTests   LoadTestConfig   `yaml:"load_tests"`
}

// HTTPConfig описывает HTTP-сервер.
type HTTPConfig struct {
	Port         string        `yaml:"port" env:"HTTP_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MigrationsPath  string        `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	MaxConnections  int32         `yaml:"max_connections" env:"DB_MAX_CONNECTIONS"`
	MinConnections  int32         `yaml:"min_connections" env:"DB_MIN_CONNECTIONS"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME"`
}

// TimeoutConfig содержит таймауты разного уровня.
type TimeoutConfig struct {
	Operation     time.Duration `yaml:"operation" env:"OPERATION_TIMEOUT"`
	LongOperation time.Duration `yaml:"long_operation" env:"LONG_OPERATION_TIMEOUT"`
	Shutdown      time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig описывает формат и место логов.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// SwaggerConfig задаёт путь до OpenAPI-спецификации.
type SwaggerConfig struct {
	SpecPath string `yaml:"spec_path" env:"SWAGGER_SPEC_PATH"`
}

// AuthConfig описывает выпуск токенов сессии и начального администратора.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer         string        `yaml:"issuer" env:"AUTH_ISSUER"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	BootstrapEmail string        `yaml:"bootstrap_email" env:"AUTH_BOOTSTRAP_EMAIL"`
	BootstrapPass  string        `yaml:"bootstrap_password" env:"AUTH_BOOTSTRAP_PASSWORD"`
}

// AssignmentConfig задаёт окна отчётности и повтор создания назначений при конфликте.
type AssignmentConfig struct {
	EndingSoonWindow time.Duration `yaml:"ending_soon_window" env:"ASSIGNMENTS_ENDING_SOON_WINDOW"`
	RecentWindow     time.Duration `yaml:"recent_window" env:"ASSIGNMENTS_RECENT_WINDOW"`
	CreateAttempts   int           `yaml:"create_attempts" env:"ASSIGNMENTS_CREATE_ATTEMPTS"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay" env:"ASSIGNMENTS_RETRY_BASE_DELAY"`
}

// LoadTestConfig хранит параметры нагрузочного тестирования.
type LoadTestConfig struct {
	TargetsPath string `yaml:"targets_path" env:"LOAD_TEST_TARGETS"`
}

// MustLoad загружает конфигурацию из YAML + ENV и паникует при ошибке.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию, отдавая предпочтение пути из CONFIG_PATH.
func Load() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := Config{}
	if err := readYAML(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env vars: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config yaml: %w", err)
	}
	return nil
}

// normalize устанавливает значения по умолчанию для всех полей конфигурации, если они не заданы.
func (c *Config) normalize() {
	// HTTP настройки
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 5 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 5 * time.Minute
	}

	// Database настройки
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	// Таймауты операций
	if c.Timeouts.Operation <= 0 {
		c.Timeouts.Operation = 30 * time.Second
	}
	if c.Timeouts.LongOperation <= 0 {
		c.Timeouts.LongOperation = 60 * time.Second
	}
	if c.Timeouts.Shutdown <= 0 {
		c.Timeouts.Shutdown = 10 * time.Second
	}
	// Логирование
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	// Swagger
	if c.Swagger.SpecPath == "" {
		c.Swagger.SpecPath = "openapi.yml"
	}
	// Авторизация
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "trouvemamission"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	// Назначения
	if c.Assignments.EndingSoonWindow <= 0 {
		c.Assignments.EndingSoonWindow = 30 * 24 * time.Hour
	}
	if c.Assignments.RecentWindow <= 0 {
		c.Assignments.RecentWindow = 7 * 24 * time.Hour
	}
	if c.Assignments.CreateAttempts <= 0 {
		c.Assignments.CreateAttempts = 3
	}
	if c.Assignments.RetryBaseDelay <= 0 {
		c.Assignments.RetryBaseDelay = 50 * time.Millisecond
	}
	if c.LoadTests.TargetsPath == "" {
		c.LoadTests.TargetsPath = "load/artifacts/targets.json"
	}
}

// Validate проверяет обязательные параметры, без которых сервис не стартует.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	return nil
}

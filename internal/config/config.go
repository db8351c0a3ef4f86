package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the FMEDA service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	Logging     LoggingConfig     `yaml:"logging"`
	Standards   StandardsConfig   `yaml:"standards"`
	Calculation CalculationConfig `yaml:"calculation"`
}

// ServerConfig controls the gRPC, HTTP and metrics listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnectTimeout  time.Duration `yaml:"connectTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// StandardsConfig selects the constants pack and the standard used when a request names none.
type StandardsConfig struct {
	ConstantsPath   string  `yaml:"constantsPath"`
	DefaultStandard string  `yaml:"defaultStandard"`
	CrossCheckRatio float64 `yaml:"crossCheckRatio"`
}

// CalculationConfig bounds project calculations.
type CalculationConfig struct {
	Concurrency   int `yaml:"concurrency"`
	FamilyLimit   int `yaml:"familyLimit"`
	MaxComponents int `yaml:"maxComponents"`
}

// CacheConfig controls Redis-backed caching of record lookups and project results.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	RecordTTL    time.Duration `yaml:"recordTTL"`
	ResultTTL    time.Duration `yaml:"resultTTL"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("FMEDA_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Address == "" && c.Server.HTTPAddress == "" {
		return errors.New("config: at least one of server.address and server.httpAddress is required")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return errors.New("config: cache.addr is required when the cache is enabled")
	}
	if c.Calculation.Concurrency < 1 {
		return fmt.Errorf("config: calculation.concurrency must be positive, got %d", c.Calculation.Concurrency)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			HTTPAddress:     ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Standards: StandardsConfig{
			ConstantsPath:   "configs/standards/default.yaml",
			DefaultStandard: "SN29500",
			CrossCheckRatio: 10,
		},
		Calculation: CalculationConfig{
			Concurrency:   4,
			FamilyLimit:   10,
			MaxComponents: 5000,
		},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			RecordTTL:    10 * time.Minute,
			ResultTTL:    2 * time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	envString("FMEDA_SERVER_ADDRESS", &cfg.Server.Address)
	envString("FMEDA_HTTP_ADDRESS", &cfg.Server.HTTPAddress)
	envString("FMEDA_METRICS_ADDRESS", &cfg.Server.MetricsAddress)
	envDuration("FMEDA_GRACEFUL_TIMEOUT", &cfg.Server.GracefulTimeout)
	envDuration("FMEDA_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)

	envString("FMEDA_DATABASE_DSN", &cfg.Database.DSN)
	if cfg.Database.DSN == "" {
		envString("DATABASE_URL", &cfg.Database.DSN)
	}
	envInt("FMEDA_DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	envInt("FMEDA_DATABASE_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	envDuration("FMEDA_DATABASE_CONNECT_TIMEOUT", &cfg.Database.ConnectTimeout)

	envString("FMEDA_LOG_LEVEL", &cfg.Logging.Level)
	if v := os.Getenv("FMEDA_LOG_FORMAT"); v != "" {
		cfg.Logging.JSON = strings.EqualFold(v, "json")
	}

	envString("FMEDA_CONSTANTS_PATH", &cfg.Standards.ConstantsPath)
	envString("FMEDA_DEFAULT_STANDARD", &cfg.Standards.DefaultStandard)
	envInt("FMEDA_CONCURRENCY", &cfg.Calculation.Concurrency)
	envInt("FMEDA_FAMILY_LIMIT", &cfg.Calculation.FamilyLimit)

	envBool("FMEDA_CACHE_ENABLED", &cfg.Cache.Enabled)
	envString("FMEDA_CACHE_ADDR", &cfg.Cache.Addr)
	envString("FMEDA_CACHE_USERNAME", &cfg.Cache.Username)
	envString("FMEDA_CACHE_PASSWORD", &cfg.Cache.Password)
	envInt("FMEDA_CACHE_DB", &cfg.Cache.DB)
	envBool("FMEDA_CACHE_TLS", &cfg.Cache.TLS)
	envDuration("FMEDA_CACHE_DIAL_TIMEOUT", &cfg.Cache.DialTimeout)
	envDuration("FMEDA_CACHE_READ_TIMEOUT", &cfg.Cache.ReadTimeout)
	envDuration("FMEDA_CACHE_WRITE_TIMEOUT", &cfg.Cache.WriteTimeout)
	envInt("FMEDA_CACHE_MAX_RETRIES", &cfg.Cache.MaxRetries)
	envDuration("FMEDA_CACHE_RECORD_TTL", &cfg.Cache.RecordTTL)
	envDuration("FMEDA_CACHE_RESULT_TTL", &cfg.Cache.ResultTTL)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Package config provides unified configuration loading for the matching
// engine. Supports YAML files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the matching engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Matching      MatchingConfig      `yaml:"matching"`
	Availability  AvailabilityConfig  `yaml:"availability"`
	Procurement   ProcurementConfig   `yaml:"procurement"`
	Readiness     ReadinessConfig     `yaml:"readiness"`
	Tables        TablesConfig        `yaml:"tables"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the API adapter.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds database connection settings for the inventory store.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds availability-result cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// MatchingConfig holds match scorer settings.
type MatchingConfig struct {
	Tolerance             float64 `yaml:"tolerance"`
	FuzzyOverlapThreshold float64 `yaml:"fuzzy_overlap_threshold"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MaxWorkers            int     `yaml:"max_workers"`
	MinSimilarity         float64 `yaml:"min_similarity"`
}

// AvailabilityConfig holds availability analyzer settings.
type AvailabilityConfig struct {
	AlternativeConfidence    float64 `yaml:"alternative_confidence"`
	MaxAlternatives          int     `yaml:"max_alternatives"`
	DefaultLeadTimeDays      int     `yaml:"default_lead_time_days"`
	NoMatchLeadTimeDays      int     `yaml:"no_match_lead_time_days"`
	ImmediateDays            int     `yaml:"immediate_days"`
	NormalDays               int     `yaml:"normal_days"`
	MinMatchesForLowCostRisk int     `yaml:"min_matches_for_low_cost_risk"`
}

// ProcurementConfig holds prioritizer settings.
type ProcurementConfig struct {
	BlockingDependencyCount int `yaml:"blocking_dependency_count"`
	CriticalBufferDays      int `yaml:"critical_buffer_days"`
	HighBufferDays          int `yaml:"high_buffer_days"`
	MediumBufferDays        int `yaml:"medium_buffer_days"`
	CriticalOrderBufferDays int `yaml:"critical_order_buffer_days"`
	StandardOrderBufferDays int `yaml:"standard_order_buffer_days"`
	WindowDays              int `yaml:"window_days"`
}

// ReadinessConfig holds readiness aggregator settings.
type ReadinessConfig struct {
	ReadyThreshold         float64 `yaml:"ready_threshold"`
	PartialThreshold       float64 `yaml:"partial_threshold"`
	CriticalPathClearRatio float64 `yaml:"critical_path_clear_ratio"`
	AtRiskBufferDays       int     `yaml:"at_risk_buffer_days"`
	StandardBufferDays     int     `yaml:"standard_buffer_days"`
}

// TablesConfig points at the injectable lookup tables.
type TablesConfig struct {
	// Path is a YAML file holding manufacturer aliases and the equivalence
	// table. Empty means compiled-in defaults.
	Path string `yaml:"path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with the documented policy defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "/tmp/matching-engine.db",
				MaxOpenConns: 1,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Matching: MatchingConfig{
			Tolerance:             0.1,
			FuzzyOverlapThreshold: 0.6,
			MinConfidence:         0.7,
			MaxWorkers:            4,
			MinSimilarity:         0.5,
		},
		Availability: AvailabilityConfig{
			AlternativeConfidence:    0.6,
			MaxAlternatives:          5,
			DefaultLeadTimeDays:      30,
			NoMatchLeadTimeDays:      60,
			ImmediateDays:            7,
			NormalDays:               30,
			MinMatchesForLowCostRisk: 3,
		},
		Procurement: ProcurementConfig{
			BlockingDependencyCount: 3,
			CriticalBufferDays:      7,
			HighBufferDays:          14,
			MediumBufferDays:        30,
			CriticalOrderBufferDays: 7,
			StandardOrderBufferDays: 3,
			WindowDays:              14,
		},
		Readiness: ReadinessConfig{
			ReadyThreshold:         90,
			PartialThreshold:       60,
			CriticalPathClearRatio: 0.7,
			AtRiskBufferDays:       7,
			StandardBufferDays:     3,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "matching-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Matching.Tolerance <= 0 || c.Matching.Tolerance >= 1 {
		return fmt.Errorf("matching tolerance must be in (0, 1)")
	}

	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1]")
	}

	if c.Availability.ImmediateDays >= c.Availability.NormalDays {
		return fmt.Errorf("immediate_days must be below normal_days")
	}

	if c.Readiness.PartialThreshold >= c.Readiness.ReadyThreshold {
		return fmt.Errorf("partial_threshold must be below ready_threshold")
	}

	return nil
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("MATCH_MIN_CONFIDENCE"); v != "" {
		if conf, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.MinConfidence = conf
		}
	}

	if v := os.Getenv("MATCH_TOLERANCE"); v != "" {
		if tol, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.Tolerance = tol
		}
	}

	if v := os.Getenv("LOOKUP_TABLES_PATH"); v != "" {
		cfg.Tables.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig selects the driver. "mysql" uses the host/port/user fields;
// "sqlite" uses Path. An empty Driver disables persistence.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"`
}

type SourceConfig struct {
	TimeoutStr   string            `yaml:"timeout"`
	MaxRetries   int               `yaml:"max_retries"`
	BackoffStr   string            `yaml:"backoff"`
	ProxyURL     string            `yaml:"proxy_url"`
	UserAgent    string            `yaml:"user_agent"`
	Headers      map[string]string `yaml:"headers"`
	HTMLSelector string            `yaml:"html_selector"`
	Timeout      time.Duration     // Parsed duration
	Backoff      time.Duration     // Parsed duration
}

type CacheConfig struct {
	Size   int           `yaml:"size"`
	TTLStr string        `yaml:"ttl"`
	TTL    time.Duration // Parsed duration
}

type AirlinesConfig struct {
	DirectoryPath string `yaml:"directory_path"` // optional override file merged over the built-in directory
}

type ExportConfig struct {
	Dir            string   `yaml:"dir"`
	Formats        []string `yaml:"formats"`
	ValidateSchema bool     `yaml:"validate_schema"`
}

type ObjectStoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Source      SourceConfig      `yaml:"source"`
	Cache       CacheConfig       `yaml:"cache"`
	Airlines    AirlinesConfig    `yaml:"airlines"`
	Export      ExportConfig      `yaml:"export"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Logging     LoggingConfig     `yaml:"logging"`
}

var AppConfig Config

// Default returns a configuration that works without any file: no database,
// exports under ./output, JSON and CSV formats.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Source: SourceConfig{
			TimeoutStr: "20s",
			MaxRetries: 2,
			BackoffStr: "500ms",
			UserAgent:  "flightscrape/1.0",
			Timeout:    20 * time.Second,
			Backoff:    500 * time.Millisecond,
		},
		Cache: CacheConfig{Size: 128, TTLStr: "10m", TTL: 10 * time.Minute},
		Export: ExportConfig{
			Dir:     "output",
			Formats: []string{"json", "csv"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from the YAML file at configPath, layered
// over Default(), then applies .env and environment overrides. An empty
// path skips the file.
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load is LoadConfig without touching AppConfig.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.parseDurations(); err != nil {
		return cfg, err
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("SERVER_PORT", &cfg.Server.Port)
	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_PATH", &cfg.Database.Path)
	setString("FLIGHTS_PROXY_URL", &cfg.Source.ProxyURL)
	setString("OBJECT_STORE_ENDPOINT", &cfg.ObjectStore.Endpoint)
	setString("OBJECT_STORE_ACCESS_KEY", &cfg.ObjectStore.AccessKey)
	setString("OBJECT_STORE_SECRET_KEY", &cfg.ObjectStore.SecretKey)
	setString("OBJECT_STORE_BUCKET", &cfg.ObjectStore.Bucket)
	setString("LOG_LEVEL", &cfg.Logging.Level)

	if v := os.Getenv("OBJECT_STORE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OBJECT_STORE_ENABLED %q: %w", v, err)
		}
		cfg.ObjectStore.Enabled = enabled
	}
	return nil
}

func (c *Config) parseDurations() error {
	var err error
	if c.Source.TimeoutStr != "" {
		if c.Source.Timeout, err = time.ParseDuration(c.Source.TimeoutStr); err != nil {
			return fmt.Errorf("failed to parse source timeout: %w", err)
		}
	} else {
		c.Source.Timeout = 20 * time.Second // Default
	}

	if c.Source.BackoffStr != "" {
		if c.Source.Backoff, err = time.ParseDuration(c.Source.BackoffStr); err != nil {
			return fmt.Errorf("failed to parse source backoff: %w", err)
		}
	} else {
		c.Source.Backoff = 500 * time.Millisecond // Default
	}
	if c.Source.MaxRetries < 0 {
		c.Source.MaxRetries = 0
	}

	if c.Cache.TTLStr != "" {
		if c.Cache.TTL, err = time.ParseDuration(c.Cache.TTLStr); err != nil {
			return fmt.Errorf("failed to parse cache ttl: %w", err)
		}
	} else {
		c.Cache.TTL = 10 * time.Minute // Default
	}
	return nil
}

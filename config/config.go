package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Port          string  `yaml:"port"`
	DatabaseURL   string  `yaml:"database_url"`
	RedisAddr     string  `yaml:"redis_addr"`
	RedisPassword string  `yaml:"redis_password"`
	RedisDB       int     `yaml:"redis_db"`
	JWTSecret     string  `yaml:"jwt_secret"`
	TokenTTLHours int     `yaml:"token_ttl_hours"`
	CookieSecure  bool    `yaml:"cookie_secure"`
	ClientURL     string  `yaml:"client_url"`
	CloudinaryURL string  `yaml:"cloudinary_url"`
	GoogleClient  string  `yaml:"google_client_id"`
	DBTimeoutMS   int     `yaml:"db_timeout_ms"`
	CacheTTLSec   int     `yaml:"cache_ttl_seconds"`
	CleaningFee   float64 `yaml:"cleaning_fee"`
}

func defaults() Config {
	return Config{
		Port:          "8000",
		RedisAddr:     "localhost:6379",
		TokenTTLHours: 72,
		CookieSecure:  true,
		ClientURL:     "http://localhost:5173",
		DBTimeoutMS:   5000,
		CacheTTLSec:   3600,
	}
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutMS) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Verify filters out settings the server cannot start without.
func (c *Config) Verify() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be at least 16 bytes")
	}
	if c.TokenTTLHours <= 0 {
		return errors.New("config: TOKEN_TTL_HOURS must be positive")
	}
	return nil
}

// LoadEnv reads .env (if present), then the YAML file named by CONFIG_FILE
// (default config.yaml, optional), then lets process env override both.
func LoadEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	if err := readFile(path, &cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.ClientURL, "CLIENT_URL")
	setString(&cfg.CloudinaryURL, "CLOUDINARY_URL")
	setString(&cfg.GoogleClient, "GOOGLE_CLIENT_ID")

	ints := map[string]*int{
		"REDIS_DB":          &cfg.RedisDB,
		"TOKEN_TTL_HOURS":   &cfg.TokenTTLHours,
		"DB_TIMEOUT_MS":     &cfg.DBTimeoutMS,
		"CACHE_TTL_SECONDS": &cfg.CacheTTLSec,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}

	if v := os.Getenv("CLEANING_FEE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: CLEANING_FEE: %w", err)
		}
		cfg.CleaningFee = f
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

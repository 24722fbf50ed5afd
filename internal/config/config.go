package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string         `yaml:"addr"`
	Environment    string         `yaml:"environment"`
	APITimeout     time.Duration  `yaml:"timeout"`
	DatabasePath   string         `yaml:"database_path"`
	MigrateOnStart bool           `yaml:"migrate_on_start"`
	Log            LogConfig      `yaml:"log"`
	Auth           AuthConfig     `yaml:"auth"`
	Realtime       RealtimeConfig `yaml:"realtime"`
	CORS           CORSConfig     `yaml:"cors"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig controls bearer token verification on /api routes.
// Tokens are issued by the external identity provider; only the
// HMAC secret is needed here.
type AuthConfig struct {
	Require   bool   `yaml:"require"`
	JWTSecret string `yaml:"jwt_secret"`
}

type RealtimeConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	PingInterval time.Duration `yaml:"ping_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// AllowedOrigins restricts websocket upgrades; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type CORSConfig struct {
	AllowOrigin string `yaml:"allow_origin"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("B2B_ADDR", ":3002"),
		Environment:    getEnv("B2B_ENV", "development"),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("B2B_DATABASE_PATH", "marketplace.db"),
		MigrateOnStart: getEnvBool("B2B_MIGRATE_ON_START", true),
		Log: LogConfig{
			Level:  getEnv("B2B_LOG_LEVEL", "info"),
			Format: getEnv("B2B_LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Require:   getEnvBool("B2B_AUTH_REQUIRE", false),
			JWTSecret: getEnv("B2B_JWT_SECRET", insecureJWTSecret),
		},
		Realtime: RealtimeConfig{
			SendBuffer:   16,
			PingInterval: 25 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		CORS: CORSConfig{AllowOrigin: getEnv("B2B_CORS_ORIGIN", "*")},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the config for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.APITimeout)
	}
	if c.Realtime.SendBuffer <= 0 {
		c.Realtime.SendBuffer = 16
	}
	if c.Realtime.PingInterval <= 0 {
		c.Realtime.PingInterval = 25 * time.Second
	}
	if c.Realtime.WriteTimeout <= 0 {
		c.Realtime.WriteTimeout = 10 * time.Second
	}
	if c.Auth.Require {
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required when auth.require is set")
		}
		if c.Auth.JWTSecret == insecureJWTSecret && !c.IsDevelopment() {
			return errors.New("refusing to start with the default jwt secret outside development")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}

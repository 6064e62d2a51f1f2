// Package config loads the service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// HELLO_* environment variables. The CLI applies its flags last.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/hello/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultShutdownTimeout = 5 * time.Second
	DefaultCSRFMaxAge      = time.Hour
)

var (
	// ErrInvalidPort is returned when the listen port is outside 0-65535.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidConfig wraps every other validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	CSRF    CSRFConfig    `mapstructure:"csrf"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CSRFConfig controls the anti-forgery middleware.
type CSRFConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Secret         string        `mapstructure:"secret"`
	FieldName      string        `mapstructure:"field_name"`
	HeaderName     string        `mapstructure:"header_name"`
	CookieName     string        `mapstructure:"cookie_name"`
	MaxAge         time.Duration `mapstructure:"max_age"`
	Secure         bool          `mapstructure:"secure"`
	TrustedOrigins []string      `mapstructure:"trusted_origins"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig selects the shared key store when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              DefaultHost,
			Port:              DefaultPort,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatAuto,
		},
		CSRF: CSRFConfig{
			Enabled:    true,
			FieldName:  "csrf_token",
			HeaderName: "X-CSRFToken",
			CookieName: "_csrf",
			MaxAge:     DefaultCSRFMaxAge,
		},
		Redis: RedisConfig{
			Prefix: "hello:",
		},
	}
}

// envBindings maps environment variables to their config path.
var envBindings = map[string][]string{
	"HELLO_HOST":                 {"server", "host"},
	"HELLO_PORT":                 {"server", "port"},
	"HELLO_SHUTDOWN_TIMEOUT":     {"server", "shutdown_timeout"},
	"HELLO_LOG_LEVEL":            {"log", "level"},
	"HELLO_LOG_FORMAT":           {"log", "format"},
	"HELLO_CSRF_ENABLED":         {"csrf", "enabled"},
	"HELLO_CSRF_SECRET":          {"csrf", "secret"},
	"HELLO_CSRF_SECURE":          {"csrf", "secure"},
	"HELLO_CSRF_TRUSTED_ORIGINS": {"csrf", "trusted_origins"},
	"HELLO_METRICS_ADDR":         {"metrics", "addr"},
	"HELLO_REDIS_ADDR":           {"redis", "addr"},
	"HELLO_REDIS_PASSWORD":       {"redis", "password"},
	"HELLO_REDIS_DB":             {"redis", "db"},
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. The result is validated.
func Load(path string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for env, keys := range envBindings {
		if v, ok := os.LookupEnv(env); ok {
			setPath(raw, keys, v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func setPath(m map[string]any, keys []string, value any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}

// Validate checks the values that cannot be caught by decoding.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.CSRF.Enabled && c.CSRF.MaxAge <= 0 {
		return fmt.Errorf("%w: csrf.max_age must be positive", ErrInvalidConfig)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis.db must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// TrimmedOrigins returns the trusted origins without blanks.
func (c CSRFConfig) TrimmedOrigins() []string {
	var out []string
	for _, o := range c.TrustedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

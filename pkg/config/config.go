// Package config loads service configuration from a properties file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LESSONHUB_DB_USER.
const EnvPrefix = "LESSONHUB"

// Order store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Images    ImagesConfig
	Orders    OrdersConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
	Log       LogConfig
	CORS      CORSConfig
}

// DBConfig holds the MongoDB connection fragments. URI, when set, is used
// verbatim instead of composing the fragments.
type DBConfig struct {
	Prefix         string
	User           string
	Password       string
	Host           string
	Params         string
	Name           string
	URI            string
	ConnectTimeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ImagesConfig holds the lesson image directory.
type ImagesConfig struct {
	Dir string
}

// OrdersConfig selects where orders are written.
type OrdersConfig struct {
	Backend     string
	PostgresURL string
}

// RedisConfig enables order announcements when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// TelemetryConfig holds tracing settings. An empty OTelHost disables export.
type TelemetryConfig struct {
	ServiceName string
	OTelHost    string
	Probability float64
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// CORSConfig lists allowed origins, "*" allows any.
type CORSConfig struct {
	Origins []string
}

// ConnectionURI assembles the MongoDB connection string. Credentials that
// already carry percent escapes are used as written.
func (c DBConfig) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}
	return c.Prefix + escapeUserinfo(c.User) + ":" + escapeUserinfo(c.Password) + c.Host + c.Params
}

// escapeUserinfo percent-encodes s for the userinfo part of a URI. The driver
// decodes userinfo with path rules, so a space is %20, never '+'.
func escapeUserinfo(s string) string {
	if strings.Contains(s, "%") {
		if _, err := url.PathUnescape(s); err == nil {
			return s
		}
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Load reads the properties file at path (optional; a missing file is not an
// error) and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind port env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("properties")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		DB: DBConfig{
			Prefix:         v.GetString("db.prefix"),
			User:           v.GetString("db.user"),
			Password:       v.GetString("db.password"),
			Host:           v.GetString("db.host"),
			Params:         v.GetString("db.params"),
			Name:           v.GetString("db.name"),
			URI:            v.GetString("db.uri"),
			ConnectTimeout: v.GetDuration("db.connect_timeout"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Images: ImagesConfig{
			Dir: v.GetString("images.dir"),
		},
		Orders: OrdersConfig{
			Backend:     strings.ToLower(v.GetString("orders.backend")),
			PostgresURL: v.GetString("postgres.url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Stream:   v.GetString("redis.stream"),
		},
		Telemetry: TelemetryConfig{
			ServiceName: v.GetString("otel.service_name"),
			OTelHost:    v.GetString("otel.host"),
			Probability: v.GetFloat64("otel.probability"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString("cors.origins")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.prefix", "mongodb://")
	v.SetDefault("db.connect_timeout", 10*time.Second)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 20*time.Second)
	v.SetDefault("images.dir", "images")
	v.SetDefault("orders.backend", BackendMongo)
	v.SetDefault("redis.stream", "orders.created")
	v.SetDefault("otel.service_name", "lessonhub")
	v.SetDefault("otel.probability", 0.05)
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.origins", "*")
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	if c.DB.Name == "" {
		return fmt.Errorf("db.name is required")
	}
	if c.DB.URI == "" && c.DB.Host == "" {
		return fmt.Errorf("db.host or db.uri is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Orders.Backend {
	case BackendMongo:
	case BackendPostgres:
		if c.Orders.PostgresURL == "" {
			return fmt.Errorf("postgres.url is required for the postgres order backend")
		}
	default:
		return fmt.Errorf("invalid orders.backend: %s (must be %s or %s)", c.Orders.Backend, BackendMongo, BackendPostgres)
	}

	if c.Telemetry.Probability < 0 || c.Telemetry.Probability > 1 {
		return fmt.Errorf("otel.probability must be within [0,1]")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

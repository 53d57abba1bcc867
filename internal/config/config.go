package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultAdminSecret = "your-secret-key"

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            string   `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout    int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout     int      `mapstructure:"idle_timeout_seconds"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout_seconds"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	TrustedProxies  int      `mapstructure:"trusted_proxies"`
	BodyLimitBytes  int64    `mapstructure:"body_limit_bytes"`
	IndexFile       string   `mapstructure:"index_file"`
}

type DatabaseConfig struct {
	Path         string `mapstructure:"path"`
	QueryTimeout int    `mapstructure:"query_timeout_seconds"`
}

// AdminConfig selects how the administrative credential is verified.
// Mode is one of "secret", "bcrypt" or "jwt".
type AdminConfig struct {
	Mode       string `mapstructure:"mode"`
	Secret     string `mapstructure:"secret"`
	SecretHash string `mapstructure:"secret_hash"`
	JWTSecret  string `mapstructure:"jwt_secret"`
}

type RateLimitConfig struct {
	Backend         string       `mapstructure:"backend"`
	Global          PolicyConfig `mapstructure:"global"`
	Contact         PolicyConfig `mapstructure:"contact"`
	CleanupInterval int          `mapstructure:"cleanup_interval_seconds"`
}

type PolicyConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func (p PolicyConfig) Window() time.Duration {
	return time.Duration(p.WindowMinutes) * time.Minute
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.QueryTimeout) * time.Second
}

var (
	productionOrigins = []string{"https://your-domain.com", "https://www.your-domain.com"}
	localOrigins      = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
)

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // container mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	setDefaults(v, env)

	// Config file is optional - continue with defaults and ENV variables
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("env", "ENV")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("admin.mode", "ADMIN_MODE")
	v.BindEnv("admin.secret", "ADMIN_KEY")
	v.BindEnv("admin.secret_hash", "ADMIN_KEY_HASH")
	v.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")
	v.BindEnv("ratelimit.backend", "RATE_LIMIT_BACKEND")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("nats.url", "NATS_URL")
	v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Server.CORSOrigins) == 0 {
		config.Server.CORSOrigins = localOrigins
		if config.IsProduction() {
			config.Server.CORSOrigins = productionOrigins
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.trusted_proxies", 0)
	v.SetDefault("server.body_limit_bytes", 10<<20)

	v.SetDefault("database.path", "./portfolio.db")
	v.SetDefault("database.query_timeout_seconds", 3)

	v.SetDefault("admin.mode", "secret")
	v.SetDefault("admin.secret", DefaultAdminSecret)

	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.global.limit", 100)
	v.SetDefault("ratelimit.global.window_minutes", 15)
	v.SetDefault("ratelimit.contact.limit", 5)
	v.SetDefault("ratelimit.contact.window_minutes", 60)
	v.SetDefault("ratelimit.cleanup_interval_seconds", 120)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "portfolio:ratelimit")

	v.SetDefault("nats.subject", "contact.submitted")
}

func (c *Config) Validate() error {
	switch c.Admin.Mode {
	case "secret":
		if c.Admin.Secret == "" {
			return errors.New("admin.secret is required when admin.mode is secret")
		}
		if c.IsProduction() && c.Admin.Secret == DefaultAdminSecret {
			return errors.New("admin.secret must be changed from the default in production")
		}
	case "bcrypt":
		if c.Admin.SecretHash == "" {
			return errors.New("admin.secret_hash is required when admin.mode is bcrypt")
		}
	case "jwt":
		if c.Admin.JWTSecret == "" {
			return errors.New("admin.jwt_secret is required when admin.mode is jwt")
		}
	default:
		return fmt.Errorf("unknown admin.mode %q", c.Admin.Mode)
	}

	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown ratelimit.backend %q", c.RateLimit.Backend)
	}

	for name, p := range map[string]PolicyConfig{"global": c.RateLimit.Global, "contact": c.RateLimit.Contact} {
		if p.Limit <= 0 || p.WindowMinutes <= 0 {
			return fmt.Errorf("ratelimit.%s needs a positive limit and window", name)
		}
	}

	return nil
}

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

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	Env     string `yaml:"env"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
}

type FrontendConfig struct {
	AdminPanelURL string `yaml:"admin_panel_url"`
	WebAppURL     string `yaml:"web_app_url"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	CollectorAddr string `yaml:"collector_addr"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Frontend  FrontendConfig  `yaml:"frontend"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type Config struct {
	Port             string
	GinMode          string
	Env              string
	DSN              string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	BcryptCost       int
	AdminPanelURL    string
	WebAppURL        string
	TwilioSID        string
	TwilioToken      string
	TwilioFrom       string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SMTPFrom         string
	TracingEnabled   bool
	CollectorAddr    string
}

// IsProduction reports whether cookies must be marked secure
func (c *Config) IsProduction() bool { return c.Env == "production" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (default config/config.yml, optional), then applies environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	file, err := loadConfigFile(env("CONFIG_FILE", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg, err := fromFile(file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromFile(f *ConfigFile) (*Config, error) {
	accTTL, err := ParseDuration(env("JWT_ACCESS_EXPIRES_IN", orDefault(f.JWT.AccessTTL, "15m")))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := ParseDuration(env("JWT_REFRESH_EXPIRES_IN", orDefault(f.JWT.RefreshTTL, "7d")))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	redisDB, err := strconv.Atoi(env("REDIS_DB", strconv.Itoa(f.Redis.DB)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	bcryptCost, err := strconv.Atoi(env("BCRYPT_COST", strconv.Itoa(f.JWT.BcryptCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	port := "5000"
	if f.App.Port != 0 {
		port = strconv.Itoa(f.App.Port)
	}

	return &Config{
		Port:             env("PORT", port),
		GinMode:          env("GIN_MODE", orDefault(f.App.GinMode, "release")),
		Env:              env("NODE_ENV", orDefault(f.App.Env, "development")),
		DSN:              env("DATABASE_URL", f.Database.DSN),
		RedisAddr:        env("REDIS_ADDR", orDefault(f.Redis.Addr, "localhost:6379")),
		RedisPassword:    env("REDIS_PASSWORD", f.Redis.Password),
		RedisDB:          redisDB,
		JWTSecret:        env("JWT_SECRET", f.JWT.Secret),
		JWTRefreshSecret: env("JWT_REFRESH_SECRET", f.JWT.RefreshSecret),
		AccessTTL:        accTTL,
		RefreshTTL:       refTTL,
		BcryptCost:       bcryptCost,
		AdminPanelURL:    env("ADMIN_PANEL_URL", orDefault(f.Frontend.AdminPanelURL, "http://localhost:5173")),
		WebAppURL:        env("WEB_APP_URL", orDefault(f.Frontend.WebAppURL, "http://localhost:5174")),
		TwilioSID:        env("TWILIO_ACCOUNT_SID", f.Twilio.AccountSID),
		TwilioToken:      env("TWILIO_AUTH_TOKEN", f.Twilio.AuthToken),
		TwilioFrom:       env("TWILIO_FROM_NUMBER", f.Twilio.FromNumber),
		SMTPHost:         env("SMTP_HOST", f.SMTP.Host),
		SMTPPort:         env("SMTP_PORT", orDefault(f.SMTP.Port, "465")),
		SMTPUsername:     env("SMTP_USERNAME", f.SMTP.Username),
		SMTPPassword:     env("SMTP_PASSWORD", f.SMTP.Password),
		SMTPFrom:         env("SMTP_FROM", f.SMTP.From),
		TracingEnabled:   env("OTEL_ENABLED", strconv.FormatBool(f.Telemetry.Enabled)) == "true",
		CollectorAddr:    env("OTEL_EXPORTER_OTLP_ENDPOINT", orDefault(f.Telemetry.CollectorAddr, "localhost:4317")),
	}, nil
}

// Validate rejects configurations that would make tokens forgeable
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTRefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET is required")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

// ParseDuration accepts Go durations ("15m", "1h30m") and whole days ("7d")
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	var config ConfigFile

	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage     string           `yaml:"storage"` // "postgres" or "memory"
	AutoMigrate bool             `yaml:"auto_migrate"`
	LogLevel    string           `yaml:"log_level"`
	DB          DBConfig         `yaml:"database"`
	HTTP        HTTPConfig       `yaml:"http"`
	Restaurant  RestaurantConfig `yaml:"restaurant"`
	Auth        AuthConfig       `yaml:"auth"`
	Telegram    TelegramConfig   `yaml:"telegram"`
	RabbitMQ    RabbitMQConfig   `yaml:"rabbitmq"`
	SMTP        SMTPConfig       `yaml:"smtp"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	PublicURL      string        `yaml:"public_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SecureCookies  bool          `yaml:"secure_cookies"`
}

type RestaurantConfig struct {
	Name               string        `yaml:"name"`
	TimeZone           string        `yaml:"time_zone"`
	StatusPollInterval time.Duration `yaml:"status_poll_interval"`
	CartTTL            time.Duration `yaml:"cart_ttl"`
}

type AuthConfig struct {
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	ResetTTL      time.Duration `yaml:"reset_ttl"`
}

type TelegramConfig struct {
	MessageToken string `yaml:"message_token"` // bot that pushes new orders to staff
	StaffChatID  int64  `yaml:"staff_chat_id"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func Default() *Config {
	return &Config{
		Storage:  "postgres",
		LogLevel: "info",
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "lunch",
		},
		HTTP: HTTPConfig{
			Port:           8080,
			PublicURL:      "http://localhost:8080",
			RequestTimeout: 15 * time.Second,
		},
		Restaurant: RestaurantConfig{
			Name:               "Restaurante Benito Gomes",
			TimeZone:           "America/Sao_Paulo",
			StatusPollInterval: time.Minute,
			CartTTL:            6 * time.Hour,
		},
		Auth: AuthConfig{
			SessionTTL: 12 * time.Hour,
			ResetTTL:   time.Hour,
		},
		SMTP: SMTPConfig{Port: 587},
	}
}

// Load reads .env (if present), then the optional YAML file named by
// CONFIG_FILE, then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	c.Storage = getEnv("STORAGE", c.Storage)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		c.AutoMigrate = true
	}

	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Database = getEnv("DB_NAME", c.DB.Database)
	if c.DB.Port, err = getInt("DB_PORT", c.DB.Port); err != nil {
		return err
	}

	if c.HTTP.Port, err = getInt("HTTP_PORT", c.HTTP.Port); err != nil {
		return err
	}
	c.HTTP.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", c.HTTP.PublicURL), "/")
	if c.HTTP.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", c.HTTP.RequestTimeout); err != nil {
		return err
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		c.HTTP.SecureCookies = v == "1" || strings.EqualFold(v, "true")
	}

	c.Restaurant.Name = getEnv("RESTAURANT_NAME", c.Restaurant.Name)
	c.Restaurant.TimeZone = getEnv("RESTAURANT_TZ", c.Restaurant.TimeZone)
	if c.Restaurant.StatusPollInterval, err = getDuration("STATUS_POLL_INTERVAL", c.Restaurant.StatusPollInterval); err != nil {
		return err
	}
	if c.Restaurant.CartTTL, err = getDuration("CART_TTL", c.Restaurant.CartTTL); err != nil {
		return err
	}

	c.Auth.AdminEmail = getEnv("ADMIN_EMAIL", c.Auth.AdminEmail)
	c.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", c.Auth.AdminPassword)
	if c.Auth.SessionTTL, err = getDuration("SESSION_TTL", c.Auth.SessionTTL); err != nil {
		return err
	}
	if c.Auth.ResetTTL, err = getDuration("RESET_TTL", c.Auth.ResetTTL); err != nil {
		return err
	}

	c.Telegram.MessageToken = getEnv("MESSAGE_TOKEN", c.Telegram.MessageToken)
	if v := os.Getenv("STAFF_CHAT_ID"); v != "" {
		id, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return fmt.Errorf("STAFF_CHAT_ID: %w", perr)
		}
		c.Telegram.StaffChatID = id
	}

	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.User = getEnv("SMTP_USER", c.SMTP.User)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)
	if c.SMTP.Port, err = getInt("SMTP_PORT", c.SMTP.Port); err != nil {
		return err
	}
	return nil
}

// Location resolves the restaurant time zone, falling back to UTC for an
// empty name.
func (c *Config) Location() (*time.Location, error) {
	if c.Restaurant.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Restaurant.TimeZone)
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c DBConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

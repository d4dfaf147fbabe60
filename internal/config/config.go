package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
	AdminKey  string `yaml:"admin_key"` // bearer key for the back-office API
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type PaymentConfig struct {
	OxaPay struct {
		MerchantKey   string  `yaml:"merchant_key"`
		BaseURL       string  `yaml:"base_url"`
		CallbackURL   string  `yaml:"callback_url"`
		ReturnURL     string  `yaml:"return_url"`
		Sandbox       bool    `yaml:"sandbox"`
		WebhookSecret string  `yaml:"webhook_secret"` // empty disables HMAC verification
		VIPPriceUSD   float64 `yaml:"vip_price_usd"`
	} `yaml:"oxapay"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // AES key for message content at rest
}

type SchedulerConfig struct {
	PublishInterval time.Duration `yaml:"publish_interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Security  SecurityConfig  `yaml:"security"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Payment.OxaPay.BaseURL == "" {
		cfg.Payment.OxaPay.BaseURL = "https://api.oxapay.com"
	}
	if cfg.Payment.OxaPay.VIPPriceUSD <= 0 {
		cfg.Payment.OxaPay.VIPPriceUSD = 50
	}
	if cfg.Scheduler.PublishInterval <= 0 {
		cfg.Scheduler.PublishInterval = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("server.jwt_secret is required")
	}
	if cfg.Payment.OxaPay.MerchantKey == "" {
		return nil, errors.New("payment.oxapay.merchant_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	GatewaySandbox    = "sandbox"
	GatewayProduction = "production"

	sandboxBaseURL    = "https://api.leanx.dev"
	productionBaseURL = "https://api.leanx.io"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Payment  PaymentConfig  `yaml:"payment"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	PaymentsTopic      string   `yaml:"payments_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// GatewayConfig holds the Lean.x merchant credentials. Secrets are normally
// supplied through the environment rather than the YAML file.
type GatewayConfig struct {
	Environment    string `yaml:"environment" envconfig:"LEANX_ENV"`
	BaseURL        string `yaml:"base_url" envconfig:"LEANX_BASE_URL"`
	AuthToken      string `yaml:"auth_token" envconfig:"LEANX_AUTH_TOKEN"`
	CollectionUUID string `yaml:"collection_uuid" envconfig:"LEANX_COLLECTION_UUID"`
	WebhookSecret  string `yaml:"webhook_secret" envconfig:"LEANX_WEBHOOK_SECRET"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"LEANX_TIMEOUT_SECONDS"`
}

// Endpoint returns the API host for the selected environment. An explicit
// base_url always wins.
func (g GatewayConfig) Endpoint() string {
	if g.BaseURL != "" {
		return strings.TrimRight(g.BaseURL, "/")
	}
	if strings.EqualFold(g.Environment, GatewayProduction) {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type PaymentConfig struct {
	DepositAmount          float64 `yaml:"deposit_amount"`
	BillCacheTTLSeconds    int     `yaml:"bill_cache_ttl_seconds"`
	WebhookDedupTTLSeconds int     `yaml:"webhook_dedup_ttl_seconds"`
	RateLimitRPS           float64 `yaml:"rate_limit_rps"`
	RateLimitBurst         int     `yaml:"rate_limit_burst"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overlays LEANX_* variables onto the gateway section. Unset
// variables leave the YAML values untouched.
func applyEnv(cfg *Config) error {
	var fromEnv GatewayConfig
	if err := envconfig.Process("", &fromEnv); err != nil {
		return fmt.Errorf("failed to read gateway env: %w", err)
	}

	g := &cfg.Gateway
	if fromEnv.Environment != "" {
		g.Environment = fromEnv.Environment
	}
	if fromEnv.BaseURL != "" {
		g.BaseURL = fromEnv.BaseURL
	}
	if fromEnv.AuthToken != "" {
		g.AuthToken = fromEnv.AuthToken
	}
	if fromEnv.CollectionUUID != "" {
		g.CollectionUUID = fromEnv.CollectionUUID
	}
	if fromEnv.WebhookSecret != "" {
		g.WebhookSecret = fromEnv.WebhookSecret
	}
	if fromEnv.TimeoutSeconds != 0 {
		g.TimeoutSeconds = fromEnv.TimeoutSeconds
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Gateway.Environment == "" {
		c.Gateway.Environment = GatewaySandbox
	}
	if c.Payment.DepositAmount == 0 {
		c.Payment.DepositAmount = 1.00
	}
	if c.Payment.BillCacheTTLSeconds == 0 {
		c.Payment.BillCacheTTLSeconds = 1800
	}
	if c.Payment.WebhookDedupTTLSeconds == 0 {
		c.Payment.WebhookDedupTTLSeconds = 86400
	}
	if c.Payment.RateLimitRPS == 0 {
		c.Payment.RateLimitRPS = 5
	}
	if c.Payment.RateLimitBurst == 0 {
		c.Payment.RateLimitBurst = 10
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "boox-payments"
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	PublicURL   string `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:8080"`
	HTTPServer  `yaml:"http_server"`
	OpenAI      `yaml:"openai"`
	Postgres    `yaml:"postgres"`
	Redis       `yaml:"redis"`
	RabbitMQ    `yaml:"rabbitmq"`
	ChatHistory `yaml:"chat_history"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"90s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// OpenAI without an API key switches both assistants to their canned answers.
type OpenAI struct {
	APIKey  string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" env-default:"60s"`
}

// Postgres without a URL disables auth (500) and support chat history.
type Postgres struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"10"`
	Migrate  bool   `yaml:"migrate" env:"DATABASE_MIGRATE" env-default:"true"`
}

// Redis holds login sessions. Without an address tokens are issued but
// cannot be checked later.
type Redis struct {
	Addr       string        `yaml:"addr" env:"REDIS_ADDR"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"REDIS_SESSION_TTL" env-default:"720h"`
}

// RabbitMQ receives verification e-mail jobs. Without a URL none are sent.
type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL"`
	QueueName string `yaml:"queue_name" env:"RABBITMQ_QUEUE" env-default:"verification_emails"`
}

type ChatHistory struct {
	WriteTimeout time.Duration `yaml:"write_timeout" env:"CHAT_HISTORY_WRITE_TIMEOUT" env-default:"5s"`
}

func (c OpenAI) Enabled() bool   { return c.APIKey != "" }
func (c Postgres) Enabled() bool { return c.URL != "" }
func (c Redis) Enabled() bool    { return c.Addr != "" }
func (c RabbitMQ) Enabled() bool { return c.URL != "" }

// MustLoad reads the YAML file named by CONFIG_PATH when it is set and the
// environment otherwise. Environment variables win over the file.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to read environment: %w", op, err)
		}

		return &cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to read config: %w", op, err)
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

type DatabaseConfig struct {
	URL            string `env:"DATABASE_URL,required"`
	MaxConns       int    `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns       int    `env:"DB_MIN_CONNS" envDefault:"5"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
}

type LLMConfig struct {
	Provider     string        `env:"LLM_PROVIDER" envDefault:"openai"`
	Model        string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIKey    string        `env:"OPENAI_API_KEY" envDefault:""`
	AnthropicKey string        `env:"ANTHROPIC_API_KEY" envDefault:""`
	Timeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// SeedConfig controls the flat-file prompt import.
type SeedConfig struct {
	PromptsDir   string `env:"PROMPTS_DIR" envDefault:"prompts"`
	TenantName   string `env:"SEED_TENANT_NAME" envDefault:"Default Tenant"`
	TenantDomain string `env:"SEED_TENANT_DOMAIN" envDefault:"bidforge.local"`
	AdminEmail   string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@bidforge.local"`
}

// Load reads configuration from the environment, consulting a local .env
// file first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks settings the API server cannot run without. The seed and
// worker commands only need the database, so this is not part of Load.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing required env var: JWT_SECRET")
	}
	return nil
}

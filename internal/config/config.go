package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	Port       int    `env:"PORT" envDefault:"3000"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Completion providers. Anthropic is preferred when configured since the
	// food agent persona was tuned against Claude; OpenAI is the fallback.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4.5"`
	LLMAPIKey       string `env:"LLM_API_KEY"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	RateLimitRPS    int    `env:"RATE_LIMIT_RPS" envDefault:"1"`

	// Delivery channel (chat platform API).
	DeliveryAPIURL string `env:"DELIVERY_API_URL,required"`
	DeliveryAPIKey string `env:"DELIVERY_API_KEY,required"`
	AgentID        string `env:"AGENT_ID,required"`

	CatalogPath  string `env:"CATALOG_PATH" envDefault:"./files/brandoneats.csv"`
	HistoryLimit int    `env:"HISTORY_LIMIT" envDefault:"10"`

	// Chats whose id carries this prefix get replies computed but not delivered.
	TestChatPrefix string `env:"TEST_CHAT_PREFIX" envDefault:"test-"`

	DedupExpiry        time.Duration `env:"DEDUP_EXPIRY" envDefault:"5m"`
	DedupSweepInterval time.Duration `env:"DEDUP_SWEEP_INTERVAL" envDefault:"1m"`

	ConvCacheExpiry        time.Duration `env:"CONV_CACHE_EXPIRY" envDefault:"30m"`
	ConvCacheSweepInterval time.Duration `env:"CONV_CACHE_SWEEP_INTERVAL" envDefault:"5m"`
	ConvCacheMaxRequests   int           `env:"CONV_CACHE_MAX_REQUESTS" envDefault:"10"`

	MaxLinks        int `env:"MAX_LINKS" envDefault:"5"`
	MaxAlternatives int `env:"MAX_ALTERNATIVES" envDefault:"3"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	DBPath    string `envconfig:"DB_PATH" default:"./data/junkfu.db"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json|console

	// Telegram hosts reminders; without a token the daemon runs headless.
	BotToken string `envconfig:"BOT_TOKEN"`
	ChatID   int64  `envconfig:"CHAT_ID"` // restricts /start to one chat when set

	HTTPAddr string `envconfig:"HTTP_ADDR" default:"127.0.0.1:8080"` // empty disables the status API

	AnthropicAPIKey  string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `envconfig:"ANTHROPIC_BASE_URL"`
	EstimatorModel   string        `envconfig:"ESTIMATOR_MODEL" default:"claude-haiku-4-5"`
	EstimatorTimeout time.Duration `envconfig:"ESTIMATOR_TIMEOUT" default:"30s"`

	BridgeGrace time.Duration `envconfig:"BRIDGE_GRACE" default:"500ms"`
	ProfilePoll time.Duration `envconfig:"PROFILE_POLL" default:"5s"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.EstimatorTimeout <= 0 {
		return fmt.Errorf("ESTIMATOR_TIMEOUT must be positive")
	}
	if c.BridgeGrace < 0 {
		return fmt.Errorf("BRIDGE_GRACE must not be negative")
	}
	if c.ProfilePoll < time.Second {
		return fmt.Errorf("PROFILE_POLL must be at least 1s")
	}
	return nil
}

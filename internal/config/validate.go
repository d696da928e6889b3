package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStartupConfig marks configuration problems that must stop the process
// before it starts serving.
var ErrStartupConfig = errors.New("invalid startup configuration")

func startupError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStartupConfig, fmt.Sprintf(format, args...))
}

// Validate checks everything needed to talk to the model and serve
// recommendations. It does not require the Telegram token; see ValidateTelegram.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGigaChat:
		if c.LLM.Credentials == "" {
			return startupError("llm.credentials (GIGACHAT_CREDENTIALS) is required for the gigachat provider")
		}
		if c.LLM.AuthURL == "" {
			return startupError("llm.auth_url is required for the gigachat provider")
		}
	case ProviderOpenAI, ProviderGemini:
		if c.LLM.APIKey == "" {
			return startupError("llm.api_key is required for the %s provider", c.LLM.Provider)
		}
	default:
		return startupError("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return startupError("llm.model is required")
	}
	if c.LLM.ClassifierTemperature < 0 || c.LLM.FormatterTemperature < 0 {
		return startupError("llm temperatures must not be negative")
	}

	if c.Catalog.Path == "" {
		return startupError("catalog.path is required")
	}
	if c.Catalog.MaxResults <= 0 {
		return startupError("catalog.max_results must be a positive integer")
	}

	switch c.Usage.Driver {
	case "", "none":
	case "sqlite", "postgres":
		if c.Usage.DSN == "" {
			return startupError("usage.dsn is required when usage.driver is %s", c.Usage.Driver)
		}
	default:
		return startupError("unknown usage.driver %q", c.Usage.Driver)
	}
	if c.Usage.Async && c.Redis.Address == "" {
		return startupError("redis.address is required when usage.async is true")
	}

	for provider, models := range c.Pricing {
		for model, price := range models {
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return startupError("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}
	return nil
}

// ValidateTelegram checks the settings needed by the Telegram front-end.
func (c *Config) ValidateTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return startupError("telegram.token (TELEGRAM_BOT_TOKEN) is required")
	}
	if c.Telegram.PollTimeout < 0 {
		return startupError("telegram.poll_timeout must not be negative")
	}
	return nil
}

// ValidateWorker checks the queue worker settings.
func (c *Config) ValidateWorker() error {
	if c.Redis.Address == "" {
		return startupError("redis.address is required")
	}
	if c.Worker.Concurrency <= 0 {
		return startupError("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return startupError("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return startupError("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return startupError("worker.queues priority for queue '%s' must be positive", name)
		}
	}
	return nil
}

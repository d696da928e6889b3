package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// Supported model providers.
const (
	ProviderGigaChat = "gigachat"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// GigaChat endpoints used when llm.base_url and llm.auth_url are not set.
const (
	DefaultGigaChatBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultGigaChatAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
)

type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	Telegram struct {
		Token         string        `mapstructure:"token"`
		PollTimeout   int           `mapstructure:"poll_timeout"` // seconds
		Debug         bool          `mapstructure:"debug"`
		SessionTTL    time.Duration `mapstructure:"session_ttl"` // 0 disables idle expiry
		SweepEvery    time.Duration `mapstructure:"sweep_every"`
		MaxMessageLen int           `mapstructure:"max_message_len"`
	} `mapstructure:"telegram"`

	LLM struct {
		Provider              string  `mapstructure:"provider"`
		Model                 string  `mapstructure:"model"`
		Credentials           string  `mapstructure:"credentials"` // GigaChat authorization key
		APIKey                string  `mapstructure:"api_key"`     // OpenAI / Gemini key
		BaseURL               string  `mapstructure:"base_url"`
		AuthURL               string  `mapstructure:"auth_url"`
		Scope                 string  `mapstructure:"scope"`
		InsecureSkipVerify    bool    `mapstructure:"insecure_skip_verify"`
		ClassifierTemperature float32 `mapstructure:"classifier_temperature"`
		FormatterTemperature  float32 `mapstructure:"formatter_temperature"`
		ClassifierPrompt      string  `mapstructure:"classifier_prompt"` // optional prompt file
		FormatterPrompt       string  `mapstructure:"formatter_prompt"`  // optional prompt file
	} `mapstructure:"llm"`

	Catalog struct {
		Path           string `mapstructure:"path"`
		Fallback       string `mapstructure:"fallback"`
		MaxResults     int    `mapstructure:"max_results"`
		ValidateSchema bool   `mapstructure:"validate_schema"`
	} `mapstructure:"catalog"`

	Usage struct {
		Driver string `mapstructure:"driver"` // "none", "sqlite" or "postgres"
		DSN    string `mapstructure:"dsn"`
		Async  bool   `mapstructure:"async"` // queue usage records through redis
	} `mapstructure:"usage"`

	Redis struct {
		Address  string
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	}

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

// keyDelimiter separates nested config keys inside viper.
const keyDelimiter = "::"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log::level", "info")
	v.SetDefault("log::format", "text")

	v.SetDefault("telegram::poll_timeout", 60)
	v.SetDefault("telegram::session_ttl", 24*time.Hour)
	v.SetDefault("telegram::sweep_every", 10*time.Minute)
	v.SetDefault("telegram::max_message_len", 4000)

	v.SetDefault("llm::provider", ProviderGigaChat)
	v.SetDefault("llm::model", "GigaChat:latest")
	v.SetDefault("llm::auth_url", DefaultGigaChatAuthURL)
	v.SetDefault("llm::scope", "GIGACHAT_API_PERS")
	v.SetDefault("llm::classifier_temperature", 0.1)
	v.SetDefault("llm::formatter_temperature", 0.7)

	v.SetDefault("catalog::path", "database.json")
	v.SetDefault("catalog::fallback", "GENERAL")
	v.SetDefault("catalog::max_results", 5)

	v.SetDefault("usage::driver", "none")
	v.SetDefault("redis::address", "localhost:6379")
	v.SetDefault("worker::concurrency", 5)
	v.SetDefault("worker::queues", map[string]int{"usage": 1})
}

// LoadConfig reads config.yaml (from the given file, the working directory or
// ~/.config/dosug), a .env file if present, and the environment.
func LoadConfig(configFile string) (*Config, error) {
	// .env is optional; secrets may already be exported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env file: %v", err)
	}

	// Pricing keys are model names like "gpt-4.1" and must not split on dots.
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/dosug")
		}
	}

	v.SetEnvPrefix("DOSUG")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	// The two secrets keep the names the bot has always been deployed with.
	_ = v.BindEnv("telegram::token", "TELEGRAM_BOT_TOKEN", "DOSUG_TELEGRAM_TOKEN")
	_ = v.BindEnv("llm::credentials", "GIGACHAT_CREDENTIALS", "DOSUG_LLM_CREDENTIALS")
	_ = v.BindEnv("llm::api_key", "DOSUG_LLM_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		// A missing config.yaml is fine, an explicit --config that is missing is not.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debugf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ModelBaseURL is the chat API endpoint for the configured provider. Empty
// means the provider's own default.
func (c *Config) ModelBaseURL() string {
	if c.LLM.BaseURL != "" {
		return c.LLM.BaseURL
	}
	if strings.EqualFold(c.LLM.Provider, ProviderGigaChat) {
		return DefaultGigaChatBaseURL
	}
	return ""
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.LLM.Provider = ProviderGigaChat
	cfg.LLM.Model = "GigaChat:latest"
	cfg.LLM.Credentials = "secret"
	cfg.LLM.BaseURL = "https://example.test/api/v1"
	cfg.LLM.AuthURL = "https://example.test/oauth"
	cfg.Catalog.Path = "database.json"
	cfg.Catalog.MaxResults = 5
	cfg.Telegram.Token = "123:abc"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestValidate_MissingSecrets(t *testing.T) {
	t.Run("model credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.LLM.Credentials = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStartupConfig)
		assert.Contains(t, err.Error(), "GIGACHAT_CREDENTIALS")
	})

	t.Run("telegram token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telegram.Token = "   "
		err := cfg.ValidateTelegram()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStartupConfig)
		assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	})

	t.Run("openai key", func(t *testing.T) {
		cfg := validConfig()
		cfg.LLM.Provider = ProviderOpenAI
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStartupConfig)
	})
}

func TestValidate_Usage(t *testing.T) {
	cfg := validConfig()
	cfg.Usage.Driver = "sqlite"
	assert.ErrorIs(t, cfg.Validate(), ErrStartupConfig)

	cfg.Usage.DSN = ":memory:"
	assert.NoError(t, cfg.Validate())

	cfg.Usage.Driver = "mongo"
	assert.ErrorIs(t, cfg.Validate(), ErrStartupConfig)
}

func TestValidateWorker(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Address = "localhost:6379"
	cfg.Worker.Concurrency = 2
	cfg.Worker.Queues = map[string]int{"usage": 1}
	assert.NoError(t, cfg.ValidateWorker())

	cfg.Worker.Queues = map[string]int{"usage": 0}
	assert.ErrorIs(t, cfg.ValidateWorker(), ErrStartupConfig)
}

func TestLoadConfig_EnvSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GIGACHAT_CREDENTIALS", "c2VjcmV0")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "c2VjcmV0", cfg.LLM.Credentials)
	assert.Equal(t, ProviderGigaChat, cfg.LLM.Provider)
	assert.Equal(t, "GigaChat:latest", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.ClassifierTemperature, 1e-6)
	assert.InDelta(t, 0.7, cfg.LLM.FormatterTemperature, 1e-6)
	assert.Equal(t, "GENERAL", cfg.Catalog.Fallback)
	assert.Equal(t, 5, cfg.Catalog.MaxResults)
	assert.Equal(t, DefaultGigaChatBaseURL, cfg.ModelBaseURL())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := `
llm:
  provider: gemini
  model: gemini-1.5-flash
  api_key: from-file
catalog:
  path: venues.yaml
  max_results: 3
pricing:
  gemini:
    gemini-1.5-flash:
      input_per_token: 0.0000001
      output_per_token: 0.0000004
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "venues.yaml", cfg.Catalog.Path)
	assert.Equal(t, 3, cfg.Catalog.MaxResults)
	assert.Empty(t, cfg.ModelBaseURL(), "gemini uses its client default")
	assert.InDelta(t, 0.0000004, cfg.Pricing["gemini"]["gemini-1.5-flash"].OutputPerToken, 1e-12)
}

func TestLoadConfig_DottedModelPricing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  provider: openai
  model: gpt-4.1
pricing:
  openai:
    gpt-4.1:
      input_per_token: 0.000002
      output_per_token: 0.000008
    gpt-4.1-mini:
      input_per_token: 0.0000004
      output_per_token: 0.0000016
  gigachat:
    GigaChat:latest:
      input_per_token: 0.0000002
      output_per_token: 0.0000002
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DOSUG_LLM_API_KEY", "sk-test")
	t.Setenv("DOSUG_CATALOG_MAX_RESULTS", "4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Pricing["openai"], 2)
	assert.InDelta(t, 0.000008, cfg.Pricing["openai"]["gpt-4.1"].OutputPerToken, 1e-12)
	assert.InDelta(t, 0.0000004, cfg.Pricing["openai"]["gpt-4.1-mini"].InputPerToken, 1e-12)
	assert.Contains(t, cfg.Pricing["gigachat"], "gigachat:latest")
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 4, cfg.Catalog.MaxResults)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadConfig("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadPromptContent(t *testing.T) {
	t.Run("fallback when unset", func(t *testing.T) {
		got, err := LoadPromptContent("", "default prompt")
		require.NoError(t, err)
		assert.Equal(t, "default prompt", got)
	})

	t.Run("absolute override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "classify.txt")
		require.NoError(t, os.WriteFile(path, []byte("  custom prompt\n"), 0o600))
		got, err := LoadPromptContent(path, "default prompt")
		require.NoError(t, err)
		assert.Equal(t, "custom prompt", got)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		_, err := LoadPromptContent(path, "default prompt")
		assert.Error(t, err)
	})
}

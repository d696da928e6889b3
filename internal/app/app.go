// Package app wires configuration into the long-lived components shared by
// the bot, the HTTP API and the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dosug/internal/catalog"
	"dosug/internal/config"
	"dosug/internal/costtracker"
	"dosug/internal/llm"
	"dosug/internal/recommend"
	"dosug/internal/services"
	"dosug/internal/store"
	"dosug/internal/store/primary"
	"dosug/internal/store/sqlite"
	"dosug/pkg/categorizer"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config

	Catalog     *catalog.Catalog
	UsageStore  store.UsageStore // nil when usage.driver is none
	JobClient   store.JobClient  // nil unless usage.async
	CostTracker costtracker.CostTracker

	Completer  llm.Completer
	Classifier categorizer.Classifier
	Formatter  *services.LLMFormatter
	Pipeline   *recommend.Pipeline

	CostService *services.CostService
}

// NewApp builds every component needed to serve recommendations.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.initCatalog()
	if err := app.initUsageStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initCostTracker()
	if err := app.initCompleter(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initClassifier(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initFormatter(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.Pipeline = recommend.NewPipeline(app.Classifier, app.Catalog, app.Formatter)

	log.Info("Application initialization complete.")
	return app, nil
}

// NewUsageApp opens only the usage store, for the worker and cost reports.
func NewUsageApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	if err := app.initUsageStore(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initCatalog() {
	cfg := a.Config.Catalog
	a.Catalog = catalog.LoadOrEmpty(cfg.Path,
		catalog.WithFallback(cfg.Fallback),
		catalog.WithMaxResults(cfg.MaxResults),
		catalog.WithSchemaValidation(cfg.ValidateSchema),
	)
	log.Infof("Catalog loaded from %s: %d venues in %d categories", cfg.Path, a.Catalog.Len(), len(a.Catalog.Categories()))
}

func (a *App) initUsageStore(ctx context.Context) error {
	cfg := a.Config.Usage
	var err error
	switch cfg.Driver {
	case "", "none":
		log.Debug("Usage tracking disabled (usage.driver=none)")
	case "postgres":
		a.UsageStore, err = primary.NewPrimaryStore(ctx, cfg.DSN)
	case "sqlite":
		a.UsageStore, err = sqlite.NewStore(ctx, cfg.DSN)
	default:
		err = fmt.Errorf("unknown usage driver %q", cfg.Driver)
	}
	if err != nil {
		a.UsageStore = nil
		return fmt.Errorf("init usage store: %w", err)
	}
	a.CostService = services.NewCostService(a.UsageStore)
	return nil
}

func (a *App) initJobClient() error {
	if !a.Config.Usage.Async {
		return nil
	}
	jc, err := store.NewAsynqJobClient(asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initCostTracker() {
	switch {
	case a.JobClient != nil:
		a.CostTracker = costtracker.NewQueueTracker(a.JobClient)
		log.Info("Usage records are queued for the worker")
	case a.UsageStore != nil:
		a.CostTracker = costtracker.NewStoreTracker(a.UsageStore)
	default:
		a.CostTracker = costtracker.New()
	}
}

func (a *App) initCompleter(ctx context.Context) error {
	cfg := a.Config
	provider := strings.ToLower(cfg.LLM.Provider)
	pricing := cfg.Pricing[provider]

	switch provider {
	case config.ProviderGigaChat:
		auth := services.NewGigaChatAuth(cfg.LLM.AuthURL, cfg.LLM.Credentials, cfg.LLM.Scope, cfg.LLM.InsecureSkipVerify)
		a.Completer = services.NewOpenAIProvider(services.OpenAIOptions{
			Name:       config.ProviderGigaChat,
			BaseURL:    cfg.ModelBaseURL(),
			Model:      cfg.LLM.Model,
			HTTPClient: &http.Client{Transport: auth},
			Tracker:    a.CostTracker,
			Pricing:    pricing,
		})
	case config.ProviderOpenAI:
		a.Completer = services.NewOpenAIProvider(services.OpenAIOptions{
			Name:    config.ProviderOpenAI,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.ModelBaseURL(),
			Model:   cfg.LLM.Model,
			Tracker: a.CostTracker,
			Pricing: pricing,
		})
	case config.ProviderGemini:
		gp, err := services.NewGeminiProvider(ctx, cfg.LLM.APIKey, cfg.LLM.Model, a.CostTracker, pricing)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini completion provider: %w", err)
		}
		a.Completer = gp
	default:
		return fmt.Errorf("unknown or unsupported model provider configured: %s", cfg.LLM.Provider)
	}
	return nil
}

func (a *App) initClassifier() error {
	prompt, err := config.LoadPromptContent(a.Config.LLM.ClassifierPrompt, categorizer.DefaultPrompt)
	if err != nil {
		return fmt.Errorf("load classifier prompt: %w", err)
	}
	a.Classifier = categorizer.NewLLMCategorizer(a.Completer, prompt, a.Config.LLM.ClassifierTemperature)
	return nil
}

func (a *App) initFormatter() error {
	prompt, err := config.LoadPromptContent(a.Config.LLM.FormatterPrompt, services.DefaultFormatterPrompt)
	if err != nil {
		return fmt.Errorf("load formatter prompt: %w", err)
	}
	a.Formatter = services.NewLLMFormatter(a.Completer, prompt, a.Config.LLM.FormatterTemperature)
	return nil
}

// Close releases every resource the app opened.
func (a *App) Close() error {
	var errs []error
	if c, ok := a.Completer.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.JobClient != nil {
		errs = append(errs, a.JobClient.Close())
	}
	if a.UsageStore != nil {
		errs = append(errs, a.UsageStore.Close())
	}
	return errors.Join(errs...)
}

func (a *App) cleanupPartialInit() {
	if err := a.Close(); err != nil {
		log.Warnf("Error during cleanup after failed initialization: %v", err)
	}
}

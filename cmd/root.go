package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dosug/internal/app"
	"dosug/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command annotations telling the root which components to build.
const (
	annotationApp = "dosug/app"

	appFull    = "full"     // model, catalog, pipeline, usage store
	appFullBot = "full-bot" // full, plus the Telegram token is required
	appUsage   = "usage"    // usage store only
)

var (
	configFile string
	logLevel   string

	// openedApp is the app built for the running command. It is closed after
	// the command, including when RunE fails and PersistentPostRunE is skipped.
	openedApp *app.App
)

var rootCmd = &cobra.Command{
	Use:   "dosug",
	Short: "Venue recommendation bot",
	Long: `dosug asks a few questions in Telegram, classifies the user's interests with a
language model and recommends venues from a local catalog.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__complete") {
			return nil
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := setupLogging(cfg); err != nil {
			return err
		}

		ctx := context.WithValue(cmd.Context(), configKey, cfg)

		var appInstance *app.App
		switch cmd.Annotations[annotationApp] {
		case appFullBot:
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}
			fallthrough
		case appFull:
			if err := cfg.Validate(); err != nil {
				return err
			}
			appInstance, err = app.NewApp(ctx, cfg)
		case appUsage:
			appInstance, err = app.NewUsageApp(ctx, cfg)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		if appInstance != nil {
			openedApp = appInstance
			ctx = context.WithValue(ctx, appKey, appInstance)
		}
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml or ~/.config/dosug/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func Execute() {
	if err := execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeApp(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close app: %w", closeErr))
	}
	return err
}

// closeApp releases the app opened for the current command, once.
func closeApp() error {
	if openedApp == nil {
		return nil
	}
	a := openedApp
	openedApp = nil
	return a.Close()
}

func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: invalid log.level %q", config.ErrStartupConfig, cfg.Log.Level)
	}
	log.SetLevel(level)
	switch cfg.Log.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const (
	appKey    contextKey = "app"
	configKey contextKey = "config"
)

// GetAppFromContext retrieves the app instance built by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

// GetConfigFromContext retrieves the loaded configuration.
func GetConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}

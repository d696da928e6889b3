package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"dosug/internal/app"
	"dosug/internal/dialogue"
	"dosug/internal/transport/telegram"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:         "bot",
	Short:       "Run the Telegram bot",
	Long:        `Connects to Telegram with long polling and runs the recommendation dialogue until interrupted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationApp: appFullBot},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		return runBot(cmd.Context(), appInstance)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(ctx context.Context, appInstance *app.App) error {
	cfg := appInstance.Config

	api, err := telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		return err
	}
	bot := telegram.New(api, telegram.Options{
		PollTimeout:   time.Duration(cfg.Telegram.PollTimeout) * time.Second,
		MaxMessageLen: cfg.Telegram.MaxMessageLen,
	})
	flow := dialogue.NewFlow(appInstance.Pipeline, bot)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ttl := cfg.Telegram.SessionTTL; ttl > 0 {
		go sweepSessions(ctx, flow, ttl, cfg.Telegram.SweepEvery)
	}

	log.Infof("Bot running with %s model %s", appInstance.Completer.Name(), appInstance.Completer.ModelName())
	if err := bot.Run(ctx, flow); err != nil {
		return fmt.Errorf("telegram bot stopped: %w", err)
	}
	log.Info("Bot shutdown complete.")
	return nil
}

// sweepSessions drops abandoned conversations until ctx is done.
func sweepSessions(ctx context.Context, flow *dialogue.Flow, ttl, every time.Duration) {
	if every <= 0 {
		every = ttl
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := flow.ExpireIdle(ttl); n > 0 {
				log.Infof("Expired %d idle sessions, %d active", n, flow.Active())
			}
		}
	}
}

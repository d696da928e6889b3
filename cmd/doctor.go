package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dosug/internal/app"
	"dosug/internal/catalog"
	"dosug/internal/config"
	"dosug/pkg/categorizer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// doctorCmd checks the deployment without talking to Telegram.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, dataset, model provider and usage store",
	Long: `Runs each check and prints OK or FAIL. The model check makes one real
classification call, which is billed like any other.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if failed := runDoctor(cmd.Context(), cfg); failed > 0 {
			return fmt.Errorf("%d checks failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorSample is classified once to prove the model answers.
const doctorSample = "живой джаз"

// checkModel makes one real classification call.
func checkModel(ctx context.Context, classifier categorizer.Classifier) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	label, err := classifier.Classify(ctx, doctorSample)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(label) == "" {
		return "", fmt.Errorf("model returned an empty category")
	}
	return label, nil
}

func report(name string, err error, detail string) int {
	if err != nil {
		fmt.Printf("%-10s %s %v\n", name, color.RedString("FAIL"), err)
		return 1
	}
	fmt.Printf("%-10s %s %s\n", name, color.GreenString("OK"), detail)
	return 0
}

func runDoctor(ctx context.Context, cfg *config.Config) int {
	failed := report("telegram", cfg.ValidateTelegram(), "token set")

	cat, err := catalog.Load(cfg.Catalog.Path, catalogOptions(cfg)...)
	detail := ""
	if err == nil {
		detail = fmt.Sprintf("%s: %d venues in %d categories", cfg.Catalog.Path, cat.Len(), len(cat.Categories()))
		if len(cat.Venues(cat.FallbackCategory())) == 0 {
			detail += color.YellowString(" (%s bucket is empty)", cat.FallbackCategory())
		}
	}
	failed += report("catalog", err, detail)

	if err := cfg.Validate(); err != nil {
		return failed + report("config", err, "")
	}
	appInstance, err := app.NewApp(ctx, cfg)
	if err != nil {
		return failed + report("app", err, "")
	}
	defer appInstance.Close()

	completer := appInstance.Completer
	label, err := checkModel(ctx, appInstance.Classifier)
	failed += report("model", err, fmt.Sprintf("%s %s classified %q as %s", completer.Name(), completer.ModelName(), doctorSample, label))

	if appInstance.UsageStore == nil {
		fmt.Printf("%-10s %s\n", "usage", color.YellowString("disabled"))
		return failed
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return failed + report("usage", appInstance.UsageStore.Ping(pingCtx), cfg.Usage.Driver)
}

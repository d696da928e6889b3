package cmd

import (
	"fmt"
	"strings"

	"dosug/internal/catalog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var classifyFormat bool // also run the formatter

// classifyCmd runs the pipeline from the command line, for prompt tuning.
var classifyCmd = &cobra.Command{
	Use:   "classify <interests...>",
	Short: "Classify free-text interests into a venue category",
	Long: `Sends the interests to the configured model, prints the category label and
the venues it resolves to. With --format the full recommendation message is
generated as well.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationApp: appFull},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		interests := strings.Join(args, " ")

		if classifyFormat {
			result, err := appInstance.Pipeline.Run(cmd.Context(), interests)
			if err != nil {
				return err
			}
			fmt.Printf("Category: %s (bucket %s)\n\n", color.CyanString(result.Category), result.Bucket)
			fmt.Println(result.Text)
			return nil
		}

		label, err := appInstance.Classifier.Classify(cmd.Context(), interests)
		if err != nil {
			return err
		}
		bucket := appInstance.Catalog.ResolveCategory(label)
		fmt.Printf("Category: %s (bucket %s)\n\n", color.CyanString(catalog.NormalizeCategory(label)), bucket)

		venues := appInstance.Catalog.Lookup(label)
		if len(venues) == 0 {
			fmt.Println("No venues.")
			return nil
		}
		printVenues(venues)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyFormat, "format", false, "generate the recommendation message too")
}

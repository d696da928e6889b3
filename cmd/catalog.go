package cmd

import (
	"fmt"
	"os"
	"strconv"

	"dosug/internal/catalog"
	"dosug/internal/config"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var catalogPath string // overrides catalog.path

// catalogCmd groups the dataset inspection commands. They need the config
// only, never a model or a store.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the venue dataset",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories and venue counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		categories := cat.Categories()
		if len(categories) == 0 {
			fmt.Println("Catalog is empty.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Category", "Venues", "Fallback"})
		table.SetBorder(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, info := range categories {
			fallback := ""
			if info.Name == cat.FallbackCategory() {
				fallback = "yes"
			}
			table.Append([]string{info.Name, strconv.Itoa(info.Count), fallback})
		}
		table.Render()
		fmt.Printf("\n%d venues in %d categories.\n", cat.Len(), len(categories))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <category>",
	Short: "Show every venue stored under a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		key := catalog.NormalizeCategory(args[0])
		if !cat.Has(key) {
			return fmt.Errorf("category %q not found", key)
		}
		printVenues(cat.Venues(key))
		return nil
	},
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <category>",
	Short: "Pick venues for a category the way the bot does",
	Long: `Resolves the category (falling back when it is unknown or empty) and prints
the shuffled, capped selection the recommendation pipeline would use.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		bucket := cat.ResolveCategory(args[0])
		venues := cat.Lookup(args[0])
		fmt.Printf("Bucket: %s\n\n", color.CyanString(bucket))
		if len(venues) == 0 {
			fmt.Println("No venues.")
			return nil
		}
		printVenues(venues)
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a dataset file against the venue schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := datasetPath(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			path = args[0]
		}

		violations, err := catalog.Validate(path)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Printf("%s %s\n", color.GreenString("OK"), path)
			return nil
		}
		for _, v := range violations {
			fmt.Printf("  - %s: %s\n", color.RedString("INVALID"), v)
		}
		return fmt.Errorf("%s: %d schema violations", path, len(violations))
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogLookupCmd, catalogValidateCmd)

	catalogCmd.PersistentFlags().StringVar(&catalogPath, "path", "", "dataset file (default catalog.path from config)")
}

func datasetPath(cmd *cobra.Command) (string, error) {
	if catalogPath != "" {
		return catalogPath, nil
	}
	cfg, err := GetConfigFromContext(cmd.Context())
	if err != nil {
		return "", err
	}
	return cfg.Catalog.Path, nil
}

// loadCatalog fails on a broken dataset, unlike the bot which starts empty.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, err := datasetPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := GetConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	return catalog.Load(path, catalogOptions(cfg)...)
}

func catalogOptions(cfg *config.Config) []catalog.Option {
	return []catalog.Option{
		catalog.WithFallback(cfg.Catalog.Fallback),
		catalog.WithMaxResults(cfg.Catalog.MaxResults),
		catalog.WithSchemaValidation(cfg.Catalog.ValidateSchema),
	}
}

func printVenues(venues []catalog.Venue) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Address", "Price", "URL"})
	table.SetBorder(false)
	table.SetAutoWrapText(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, v := range venues {
		table.Append([]string{v.Name, v.Address, v.Price, v.URL})
	}
	table.Render()
}

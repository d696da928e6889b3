package cmd

import (
	"fmt"
	"os"
	"strconv"

	"dosug/internal/clix"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// costCmd represents the base command for cost operations.
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "View model usage and costs",
	Long:  `Provides subcommands to list recorded model calls and view cost summaries.`,
}

// costListCmd represents the command to list cost logs.
var costListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List recorded model calls",
	Long:        `Displays a paginated list of recorded model calls with token counts and costs.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationApp: appUsage},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if !appInstance.CostService.Enabled() {
			return fmt.Errorf("usage recording is disabled (usage.driver is none)")
		}

		page, err := clix.ParsePage(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}

		logs, err := appInstance.CostService.ListUsage(cmd.Context(), page.Limit, page.Offset)
		if err != nil {
			return fmt.Errorf("failed to list cost logs: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println("No cost logs found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Timestamp", "Provider", "Service", "Model", "In", "Out", "Cost", "Request"})
		table.SetBorder(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, l := range logs {
			requestID := "N/A"
			if l.RequestID != nil {
				requestID = l.RequestID.String()
			}
			table.Append([]string{
				strconv.FormatInt(l.ID, 10),
				l.Timestamp.Format("2006-01-02 15:04:05"),
				l.ProviderName,
				l.ServiceType,
				l.ModelName,
				strconv.Itoa(l.InputTokens),
				strconv.Itoa(l.OutputTokens),
				fmt.Sprintf("%.6f", l.Cost),
				requestID,
			})
		}
		table.Render()

		fmt.Printf("\nDisplayed %d logs.\n", len(logs))
		return nil
	},
}

// costSummaryCmd represents the command to view cost summary.
var costSummaryCmd = &cobra.Command{
	Use:         "summary",
	Short:       "Show total cost and token usage",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationApp: appUsage},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if !appInstance.CostService.Enabled() {
			return fmt.Errorf("usage recording is disabled (usage.driver is none)")
		}

		summary, err := appInstance.CostService.GetSummary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get cost summary: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetBorder(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk([][]string{
			{"Calls", strconv.FormatInt(summary.Calls, 10)},
			{"Input tokens", strconv.FormatInt(summary.TotalInputTokens, 10)},
			{"Output tokens", strconv.FormatInt(summary.TotalOutputTokens, 10)},
			{"Total cost", fmt.Sprintf("%.6f", summary.TotalCost)},
		})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(costCmd)
	costCmd.AddCommand(costListCmd, costSummaryCmd)

	clix.AddPageFlags(costListCmd.Flags(), 50)
}

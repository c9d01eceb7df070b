package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omniswap/config"
	"omniswap/pkg/api"
	"omniswap/pkg/quote"
	"omniswap/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <quote-id>",
	Short: "Check the execution status of a swap",
	Long: `Check the execution status of a swap by its quote id.

With --watch the status is polled until it reaches a terminal state
(COMPLETED, FAILED, or REFUNDED).

Examples:
  omniswap status q-1234abcd
  omniswap status q-1234abcd --watch
  omniswap status q-1234abcd --watch --interval 5`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Poll until a terminal status")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 2, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	quoteID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := api.NewClient(cfg.BaseURL, cfg.APIKey)
	ctx := context.Background()

	if watchStatus {
		watchSwapStatus(ctx, apiClient, cfg, quoteID, jsonOutput)
	} else {
		checkSwapStatus(ctx, apiClient, quoteID, jsonOutput)
	}
}

func checkSwapStatus(ctx context.Context, apiClient *api.Client, quoteID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := apiClient.ExecutionStatus(ctx, quoteID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status)
	}
}

func watchSwapStatus(ctx context.Context, apiClient *api.Client, cfg *config.Config, quoteID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching swap status (Quote: %s)\n", color.CyanString(quoteID))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	poller := quote.NewPoller(apiClient.ExecutionStatus,
		quote.WithInterval(time.Duration(watchInterval)*time.Second),
		quote.WithMaxAttempts(cfg.PollMaxAttempts),
		quote.WithOnUpdate(displayStatus),
	)

	status, err := poller.Run(ctx, quoteID)
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Swap reached terminal status: %s", getColoredStatus(status.Status)))
}

func displayStatus(status *types.QuoteStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Quote ID:        %s\n", color.CyanString(status.QuoteID))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.Status))

	for _, receipt := range status.OriginChainOperations {
		if receipt.Hash == "" {
			continue
		}
		fmt.Printf("  Origin Tx:       %s\n", color.HiBlackString(receipt.Hash))
		if receipt.ExplorerURL != "" {
			fmt.Printf("                   %s\n", receipt.ExplorerURL)
		}
	}
	for _, receipt := range status.DestinationChainOperations {
		if receipt.Hash == "" {
			continue
		}
		fmt.Printf("  Destination Tx:  %s\n", color.HiBlackString(receipt.Hash))
		if receipt.ExplorerURL != "" {
			fmt.Printf("                   %s\n", receipt.ExplorerURL)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status types.Status) string {
	switch status {
	case types.StatusCompleted:
		return color.GreenString(string(status))
	case types.StatusPending, types.StatusInProgress:
		return color.YellowString(string(status))
	case types.StatusFailed, types.StatusRefunded:
		return color.RedString(string(status))
	default:
		return string(status)
	}
}

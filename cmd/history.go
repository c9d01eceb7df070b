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
	"omniswap/pkg/types"
	"omniswap/pkg/wallet"
)

var (
	historyLimit        int
	historyContinuation string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your swap history",
	Long: `Show past swaps for your account, newest first. Pagination uses an
opaque continuation token printed at the bottom of each page.

Examples:
  omniswap history
  omniswap history --limit 50
  omniswap history --continuation <token>`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries per page")
	historyCmd.Flags().StringVar(&historyContinuation, "continuation", "", "Continuation token from the previous page")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := wallet.New(cfg.SessionKey, cfg.SolanaKey, cfg.AdminAddress)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := api.NewClient(cfg.BaseURL, cfg.APIKey)
	ctx := context.Background()

	user := w.PredictedAddress()
	if user == "" {
		predicted, err := apiClient.PredictAddress(ctx, w.Address().Hex(), w.Account().AdminAddress)
		if err != nil {
			printClassified(err)
			os.Exit(1)
		}
		w.SetPredictedAddress(predicted)
		user = predicted
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching history..."
		s.Start()
	}

	page, err := apiClient.TransactionHistory(ctx, user, historyLimit, historyContinuation)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(page, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayHistory(page)
}

func displayHistory(page *types.TransactionPage) {
	if len(page.Transactions) == 0 {
		fmt.Println("\nNo transactions yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                           SWAP HISTORY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	for _, tx := range page.Transactions {
		when := time.Unix(tx.Timestamp, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("  %s  %-12s %s -> %s  %s\n",
			color.HiBlackString(when),
			getColoredStatus(tx.Status),
			tx.OriginToken.AggregatedAssetID,
			tx.DestinationToken.AggregatedAssetID,
			color.CyanString(tx.QuoteID))
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	if page.Continuation != "" {
		fmt.Printf("\nNext page: omniswap history --continuation %s\n\n", page.Continuation)
	} else {
		fmt.Println()
	}
}

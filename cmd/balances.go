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
	"omniswap/pkg/amount"
	"omniswap/pkg/api"
	"omniswap/pkg/types"
	"omniswap/pkg/wallet"
)

var (
	balanceAsset  string
	legacyBalance bool
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show aggregated balances for your account",
	Long: `Show your balances aggregated across chains. Each aggregated asset
sums per-chain holdings into a single number with its fiat value.

Examples:
  omniswap balances
  omniswap balances --asset ob:usdc
  omniswap balances --legacy`,
	Run: runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)

	balancesCmd.Flags().StringVar(&balanceAsset, "asset", "", "Limit to one aggregated asset id")
	balancesCmd.Flags().BoolVar(&legacyBalance, "legacy", false, "Use the legacy v2 balances endpoint")
}

func runBalances(cmd *cobra.Command, args []string) {
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

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching balances..."
		s.Start()
	}

	var balance *types.AggregatedBalance
	if legacyBalance {
		balance, err = apiClient.LegacyAggregatedBalance(ctx, w.Address().Hex())
	} else {
		account := w.PredictedAddress()
		if account == "" {
			var predicted string
			predicted, err = apiClient.PredictAddress(ctx, w.Address().Hex(), w.Account().AdminAddress)
			if err == nil {
				w.SetPredictedAddress(predicted)
				account = predicted
			}
		}
		if err == nil {
			balance, err = apiClient.AggregatedBalance(ctx, account, balanceAsset, "")
		}
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(balance, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	assets, err := apiClient.ListAssets(ctx)
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}
	decimalsByID := make(map[string]int, len(assets))
	symbolByID := make(map[string]string, len(assets))
	for _, asset := range assets {
		decimalsByID[asset.AggregatedAssetID] = asset.Decimals
		symbolByID[asset.AggregatedAssetID] = asset.Symbol
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                    AGGREGATED BALANCES")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	for _, entry := range balance.BalanceByAsset {
		symbol := symbolByID[entry.AggregatedAssetID]
		if symbol == "" {
			symbol = entry.AggregatedAssetID
		}
		formatted := entry.Balance
		if decimals, ok := decimalsByID[entry.AggregatedAssetID]; ok {
			if human, err := amount.FromBaseUnits(entry.Balance, decimals); err == nil {
				formatted = human
			}
		}
		line := fmt.Sprintf("  %-10s %20s", color.YellowString(symbol), formatted)
		if entry.FiatValue != nil {
			line += fmt.Sprintf("   $%.2f", entry.FiatValue.Total())
		}
		fmt.Println(line)

		for _, chainBalance := range entry.IndividualBalances {
			fmt.Printf("      %-40s %s\n",
				color.HiBlackString(chainBalance.AssetID), chainBalance.Balance)
		}
	}

	if balance.TotalBalance != nil {
		fmt.Printf("\n  Total value: $%.2f\n", balance.TotalBalance.Total())
	}
	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

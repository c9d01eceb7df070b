package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omniswap/config"
	"omniswap/pkg/api"
	"omniswap/pkg/types"
)

var filterSymbol string

var assetsCmd = &cobra.Command{
	Use:     "assets",
	Aliases: []string{"list-assets", "ls"},
	Short:   "List all supported aggregated assets",
	Long: `List the aggregated assets supported by the backend. An aggregated
asset sums balances of the same logical token across chains.

Examples:
  omniswap assets
  omniswap assets --symbol USDC`,
	Run: runListAssets,
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List all supported chains",
	Run:   runListChains,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(chainsCmd)

	assetsCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by asset symbol")
}

func runListAssets(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := api.NewClient(cfg.BaseURL, cfg.APIKey)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported assets..."
		s.Start()
	}

	assets, err := apiClient.ListAssets(context.Background())
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	filtered := assets
	if filterSymbol != "" {
		var temp []types.Asset
		for _, asset := range filtered {
			if strings.Contains(strings.ToUpper(asset.Symbol), strings.ToUpper(filterSymbol)) {
				temp = append(temp, asset)
			}
		}
		filtered = temp
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(filtered, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayAssets(filtered)
	}
}

func displayAssets(assets []types.Asset) {
	if len(assets) == 0 {
		fmt.Println("\nNo assets found matching the criteria.")
		return
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     AGGREGATED ASSETS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	for _, asset := range assets {
		fmt.Printf("  %-10s  %2d decimals  %-24s %s\n",
			color.YellowString(asset.Symbol),
			asset.Decimals,
			asset.Name,
			color.HiBlackString(asset.AggregatedAssetID))
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("\nTotal: %d assets\n\n", len(assets))
}

func runListChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := api.NewClient(cfg.BaseURL, cfg.APIKey)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported chains..."
		s.Start()
	}

	chains, err := apiClient.SupportedChains(context.Background())
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(chains, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     SUPPORTED CHAINS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	for _, chain := range chains {
		label := chain.Chain.Chain
		if chain.IsTestnet {
			label += color.MagentaString("  (testnet)")
		}
		fmt.Printf("  %-28s namespace=%-10s reference=%s\n",
			label, chain.Chain.Namespace, chain.Chain.Reference)
	}

	fmt.Printf("\nTotal: %d chains\n\n", len(chains))
}

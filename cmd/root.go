package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "omniswap",
	Short: "A CLI for chain-abstracted token swaps over aggregated balances",
	Long: `omniswap is a command-line client for a chain-abstracted swap backend.
Balances are aggregated across chains into logical assets; the backend quotes
and settles swaps, and omniswap signs the per-chain operations with your
session wallet.

Examples:
  omniswap swap 10 USDC to ETH
  omniswap balances
  omniswap assets
  omniswap status <quote-id> --watch
  omniswap history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omniswap/config"
	"omniswap/pkg/api"
	"omniswap/pkg/wallet"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show your session wallet and predicted account address",
	Long: `Show the addresses derived from your configured keys and the
smart-account address the backend predicts for them. The predicted address
is deterministic and valid before the account is deployed on-chain.`,
	Run: runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, args []string) {
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
	predicted, err := apiClient.PredictAddress(context.Background(), w.Address().Hex(), w.Account().AdminAddress)
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}
	w.SetPredictedAddress(predicted)
	account := w.Account()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(account, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                       ACCOUNT")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Session:    %s\n", account.SessionAddress)
	fmt.Printf("  Admin:      %s\n", account.AdminAddress)
	fmt.Printf("  Predicted:  %s\n", color.CyanString(account.AccountAddress))
	if solAddr, ok := w.SolanaAddress(); ok {
		fmt.Printf("  Solana:     %s\n", solAddr.String())
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

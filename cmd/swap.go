package cmd

import (
	"bufio"
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
	"omniswap/pkg/parser"
	"omniswap/pkg/quote"
	"omniswap/pkg/tour"
	"omniswap/pkg/types"
	"omniswap/pkg/wallet"
)

var (
	recipientAddr string
	noConfirm     bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-asset> to <dest-asset>",
	Short: "Swap between aggregated assets",
	Long: `Swap aggregated assets through the chain-abstraction backend.

The backend quotes the swap and returns the per-chain operations; omniswap
signs them with your session wallet, submits the signed quote, and polls
until settlement.

Examples:
  # Swap into your own account
  omniswap swap 10 USDC to ETH

  # Send the output somewhere else
  omniswap swap 10 USDC to ETH --recipient 0x123...

  # Skip the confirmation prompt
  omniswap swap 10 USDC to ETH --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address (optional - defaults to your account)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if recipientAddr != "" {
		swapReq.RecipientAddr = recipientAddr
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
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

	progress, err := tour.NewStore(cfg.TourFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if !jsonOutput && !progress.Progress().HasSeenWelcome {
		displayWelcome()
		_ = progress.MarkWelcomeSeen()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Preparing account..."
		s.Start()
	}

	predicted, err := apiClient.PredictAddress(ctx, w.Address().Hex(), w.Account().AdminAddress)
	if err == nil {
		w.SetPredictedAddress(predicted)
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	fromAsset, toAsset, err := resolveAssetPair(ctx, apiClient, swapReq)
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}

	// Client-side pre-check: do not even request a quote the balance
	// cannot cover.
	if err := checkBalance(ctx, apiClient, w, fromAsset, swapReq.Amount); err != nil {
		printClassified(err)
		os.Exit(1)
	}

	requote := make(chan *types.Quote, 1)
	controller := quote.NewController(apiClient, w,
		quote.WithPolling(time.Duration(cfg.PollIntervalSeconds)*time.Second, cfg.PollMaxAttempts),
		quote.WithOnQuote(func(q *types.Quote) {
			select {
			case requote <- q:
			default:
			}
		}),
		quote.WithOnComplete(func(st *types.QuoteStatus) {
			_ = progress.RecordAction("swap-completed")
			_ = progress.CompleteStep("first-swap")
		}),
	)

	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}
	q, err := controller.RequestQuote(ctx, quote.Input{
		FromAsset: *fromAsset,
		ToAsset:   *toAsset,
		Amount:    swapReq.Amount,
		Recipient: swapReq.RecipientAddr,
		Account:   w.Account(),
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printClassified(err)
		os.Exit(1)
	}
	<-requote // drain the initial quote notification
	_ = progress.RecordAction("quote-requested")
	_ = progress.CompleteStep("first-quote")

	if verbose {
		quoteJSON, _ := json.MarshalIndent(q, "", "  ")
		fmt.Println(string(quoteJSON))
	}

	if jsonOutput {
		output := map[string]interface{}{
			"quote_id":     q.ID,
			"source":       q.OriginToken,
			"destination":  q.DestinationToken,
			"expires_at":   q.ExpirationTimestamp,
			"status":       "quote_generated",
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayQuote(q, fromAsset, toAsset)
	}

	if !noConfirm && !jsonOutput {
		if !confirmSwap() {
			controller.ResetQuote()
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
		// The quote may have expired and been re-requested while the
		// prompt was open; show the fresh one.
		select {
		case fresh := <-requote:
			color.Yellow("\nQuote expired while waiting; a new quote was fetched:")
			displayQuote(fresh, fromAsset, toAsset)
		default:
		}
	}

	if !jsonOutput {
		s.Suffix = " Signing and executing swap..."
		s.Start()
	}
	status, err := controller.ExecuteQuote(ctx)
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
		return
	}

	displayOutcome(status)

	// Refresh balances after settlement so the numbers shown are current.
	if balance, err := apiClient.AggregatedBalance(ctx, w.PredictedAddress(), "", ""); err == nil {
		if entry, ok := balance.FindAsset(fromAsset.AggregatedAssetID); ok {
			if left, err := amount.FromBaseUnits(entry.Balance, fromAsset.Decimals); err == nil {
				fmt.Printf("Remaining %s balance: %s\n\n", fromAsset.Symbol, left)
			}
		}
	}
}

func resolveAssetPair(ctx context.Context, apiClient *api.Client, req *types.SwapRequest) (*types.Asset, *types.Asset, error) {
	fromAsset, err := apiClient.FindAsset(ctx, parser.NormalizeAssetSymbol(req.SourceAsset))
	if err != nil {
		return nil, nil, fmt.Errorf("source asset error: %w", err)
	}
	toAsset, err := apiClient.FindAsset(ctx, parser.NormalizeAssetSymbol(req.DestAsset))
	if err != nil {
		return nil, nil, fmt.Errorf("destination asset error: %w", err)
	}
	return fromAsset, toAsset, nil
}

func checkBalance(ctx context.Context, apiClient *api.Client, w *wallet.Wallet, asset *types.Asset, amt string) error {
	balance, err := apiClient.AggregatedBalance(ctx, w.PredictedAddress(), asset.AggregatedAssetID, "")
	if err != nil {
		return err
	}
	entry, ok := balance.FindAsset(asset.AggregatedAssetID)
	if !ok {
		return fmt.Errorf("insufficient balance: no %s held", asset.Symbol)
	}
	sufficient, err := amount.HasSufficientBalance(entry.Balance, amt, asset.Decimals)
	if err != nil {
		return err
	}
	if !sufficient {
		have, _ := amount.FromBaseUnits(entry.Balance, asset.Decimals)
		return fmt.Errorf("insufficient balance: have %s %s, need %s", have, asset.Symbol, amt)
	}
	return nil
}

func displayWelcome() {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                 WELCOME TO OMNISWAP")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("\nYour balances are aggregated across chains. Swap with a")
	fmt.Println("single command; omniswap signs and settles for you.")
	fmt.Println("\nRun 'omniswap tour' to see your onboarding progress.")
	fmt.Println(strings.Repeat("=", 60))
}

func displayQuote(q *types.Quote, from, to *types.Asset) {
	fromAmt, _ := amount.FromBaseUnits(q.OriginToken.Amount, from.Decimals)
	toAmt, _ := amount.FromBaseUnits(q.DestinationToken.Amount, to.Decimals)
	remaining := quote.Remaining(q.ExpirationTimestamp, time.Now())

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Quote ID:     %s\n", color.CyanString(q.ID))
	fmt.Printf("  From:         %s %s\n", fromAmt, color.YellowString(from.Symbol))
	fmt.Printf("  To:           ~%s %s\n", toAmt, color.YellowString(to.Symbol))
	fmt.Printf("  Operations:   %d origin", len(q.OriginChainsOperations))
	if q.DestinationChainOperation != nil {
		fmt.Printf(" + 1 destination")
	}
	fmt.Println()
	fmt.Printf("  Expires in:   %d seconds\n", remaining)
	if q.OriginToken.FiatValue != nil {
		fmt.Printf("  Value:        $%.2f\n", q.OriginToken.FiatValue.Total())
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayOutcome(status *types.QuoteStatus) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	switch status.Status {
	case types.StatusCompleted:
		color.Green("                  SWAP COMPLETED")
	case types.StatusRefunded:
		color.Yellow("                  SWAP REFUNDED")
	default:
		color.Red("                  SWAP FAILED")
	}
	fmt.Println(strings.Repeat("=", 60))

	for _, receipt := range status.OriginChainOperations {
		fmt.Printf("\n  Origin Tx:      %s\n", color.HiBlackString(receipt.Hash))
		if receipt.ExplorerURL != "" {
			fmt.Printf("  Explorer:       %s\n", color.CyanString(receipt.ExplorerURL))
		}
	}
	for _, receipt := range status.DestinationChainOperations {
		fmt.Printf("\n  Destination Tx: %s\n", color.HiBlackString(receipt.Hash))
		if receipt.ExplorerURL != "" {
			fmt.Printf("  Explorer:       %s\n", color.CyanString(receipt.ExplorerURL))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func printClassified(err error) {
	classified := api.Classify(err)
	color.Red("\n%s", classified.Title)
	fmt.Printf("%s\n", classified.Message)
	if classified.Retryable {
		fmt.Println("You can retry this operation.")
	}
	fmt.Println()
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

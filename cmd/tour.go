package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omniswap/config"
	"omniswap/pkg/tour"
)

var resetTour bool

var tourCmd = &cobra.Command{
	Use:   "tour",
	Short: "Show onboarding progress",
	Long: `Show (or reset) the guided-tour progress recorded as you use the
CLI: welcome screen, first quote, first completed swap.`,
	Run: runTour,
}

func init() {
	rootCmd.AddCommand(tourCmd)

	tourCmd.Flags().BoolVar(&resetTour, "reset", false, "Reset onboarding progress")
}

func runTour(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	store, err := tour.NewStore(cfg.TourFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if resetTour {
		if err := store.Reset(); err != nil {
			printError(err)
			os.Exit(1)
		}
		printSuccess("Onboarding progress reset.")
		return
	}

	progress := store.Progress()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(progress, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  ONBOARDING PROGRESS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	for i, step := range tour.Steps {
		marker := color.HiBlackString("[ ]")
		if progress.CompletedSteps[step] {
			marker = color.GreenString("[x]")
		} else if progress.Active && i == progress.StepIndex {
			marker = color.YellowString("[>]")
		}
		fmt.Printf("  %s %s\n", marker, step)
	}

	if len(progress.CompletedActions) > 0 {
		fmt.Println("\n  Recorded actions:")
		for action := range progress.CompletedActions {
			fmt.Printf("    - %s\n", action)
		}
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

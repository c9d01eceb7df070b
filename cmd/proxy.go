package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"omniswap/config"
	"omniswap/pkg/proxy"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the local API relay",
	Long: `Run a local relay in front of the swap backend. The relay injects
the backend base URL and API key so frontends on this machine never hold the
credential; query parameters and bodies pass through verbatim.`,
	Run: runProxy,
}

func init() {
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	handler := proxy.NewHandler(cfg.BaseURL, cfg.APIKey, logrus.NewEntry(log))

	fmt.Printf("Relaying %s on http://%s\n", cfg.BaseURL, cfg.ProxyListen)
	if err := http.ListenAndServe(cfg.ProxyListen, handler); err != nil {
		printError(err)
		os.Exit(1)
	}
}

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	APIKey  string
	BaseURL string

	// Session wallet key material
	SessionKey   string // hex-encoded EVM session key
	AdminAddress string // admin address of the smart account
	SolanaKey    string // base58-encoded Solana key (optional)

	// Status polling
	PollIntervalSeconds int
	PollMaxAttempts     int

	// Local proxy
	ProxyListen string

	// Onboarding progress file (defaults to $HOME/.omniswap-tour.json)
	TourFile string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".omniswap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://api.omniswap.example.com")
	viper.SetDefault("poll_interval_seconds", 2)
	viper.SetDefault("poll_max_attempts", 150)
	viper.SetDefault("proxy_listen", "127.0.0.1:8787")

	// Read from environment variables
	viper.SetEnvPrefix("OMNISWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		APIKey:              viper.GetString("api_key"),
		BaseURL:             viper.GetString("base_url"),
		SessionKey:          viper.GetString("session_key"),
		AdminAddress:        viper.GetString("admin_address"),
		SolanaKey:           viper.GetString("solana_key"),
		PollIntervalSeconds: viper.GetInt("poll_interval_seconds"),
		PollMaxAttempts:     viper.GetInt("poll_max_attempts"),
		ProxyListen:         viper.GetString("proxy_listen"),
		TourFile:            viper.GetString("tour_file"),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not found. Please set OMNISWAP_API_KEY environment variable or create a .omniswap.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

package parser

import (
	"fmt"
	"regexp"
	"strings"

	"omniswap/pkg/types"
)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 10 USDC to ETH"
//   - "1.5 ETH to USDT"
//   - "100 USDC to SOL"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "SWAP" if present at the beginning
	command = strings.TrimPrefix(command, "SWAP ")

	// Pattern: <amount> <source_asset> TO <dest_asset>
	// Matches: "10 USDC TO ETH", "1.5 ETH TO USDT", "100.25 USDC TO SOL"
	pattern := regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

	matches := pattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <asset> to <asset>' (e.g., 'swap 10 USDC to ETH')")
	}

	return &types.SwapRequest{
		Amount:      matches[1],
		SourceAsset: matches[2],
		DestAsset:   matches[3],
	}, nil
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *types.SwapRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if req.SourceAsset == "" {
		return fmt.Errorf("source asset is required")
	}
	if req.DestAsset == "" {
		return fmt.Errorf("destination asset is required")
	}
	if req.SourceAsset == req.DestAsset {
		return fmt.Errorf("source and destination assets must differ")
	}
	return nil
}

// NormalizeAssetSymbol normalizes asset symbols to standard format
func NormalizeAssetSymbol(symbol string) string {
	// Convert to uppercase for consistency
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Handle common aliases
	aliases := map[string]string{
		"WBTC": "BTC",
		"WETH": "ETH",
		"WSOL": "SOL",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}

package types

import (
	"encoding/json"
	"fmt"
)

// Asset is static reference data for a backend-defined aggregated asset.
// Fetched once and read-only for the session.
type Asset struct {
	AggregatedAssetID string `json:"aggregatedAssetId"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Decimals          int    `json:"decimals"`
	Icon              string `json:"icon,omitempty"`
}

// ChainID is a CAIP-2 chain identifier split into its parts.
type ChainID struct {
	Chain     string `json:"chain"` // e.g. "eip155:1"
	Namespace string `json:"namespace"`
	Reference string `json:"reference"`
}

// Chain is one supported chain from the reference list.
type Chain struct {
	Chain     ChainID `json:"chain"`
	IsTestnet bool    `json:"isTestnet"`
}

// FiatValue is either a single scalar valuation or a per-asset breakdown.
// The backend sends both shapes under the same field.
type FiatValue struct {
	Scalar    *float64
	Breakdown []AssetFiatValue
}

// AssetFiatValue is one entry of a per-asset fiat breakdown.
type AssetFiatValue struct {
	AssetID   string  `json:"assetId"`
	FiatValue float64 `json:"fiatValue"`
}

// UnmarshalJSON accepts a JSON number or an array of per-asset entries and
// rejects anything else at the boundary.
func (f *FiatValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty fiat value")
	}
	switch data[0] {
	case '[':
		var breakdown []AssetFiatValue
		if err := json.Unmarshal(data, &breakdown); err != nil {
			return fmt.Errorf("fiat breakdown: %w", err)
		}
		f.Breakdown = breakdown
		f.Scalar = nil
		return nil
	case 'n': // null
		*f = FiatValue{}
		return nil
	default:
		var scalar float64
		if err := json.Unmarshal(data, &scalar); err != nil {
			return fmt.Errorf("fiat value: %w", err)
		}
		f.Scalar = &scalar
		f.Breakdown = nil
		return nil
	}
}

// MarshalJSON writes back the shape that was decoded.
func (f FiatValue) MarshalJSON() ([]byte, error) {
	if f.Breakdown != nil {
		return json.Marshal(f.Breakdown)
	}
	if f.Scalar != nil {
		return json.Marshal(*f.Scalar)
	}
	return []byte("null"), nil
}

// Total sums the fiat value regardless of which shape was sent.
func (f FiatValue) Total() float64 {
	if f.Scalar != nil {
		return *f.Scalar
	}
	var total float64
	for _, entry := range f.Breakdown {
		total += entry.FiatValue
	}
	return total
}

// AssetBalance is a per-aggregated-asset snapshot of amount and fiat value.
// Refreshed on demand, never incrementally updated.
type AssetBalance struct {
	AggregatedAssetID string         `json:"aggregatedAssetId"`
	Balance           string         `json:"balance"` // base units
	FiatValue         *FiatValue     `json:"fiatValue,omitempty"`
	IndividualBalances []ChainBalance `json:"individualAssetBalances,omitempty"`
}

// ChainBalance is the share of an aggregated balance held on one chain.
type ChainBalance struct {
	AssetID   string     `json:"assetId"` // CAIP asset id
	Balance   string     `json:"balance"`
	FiatValue *FiatValue `json:"fiatValue,omitempty"`
}

// AggregatedBalance is the response of the balances endpoints.
type AggregatedBalance struct {
	BalanceByAsset []AssetBalance `json:"balanceByAggregatedAsset"`
	TotalBalance   *FiatValue     `json:"totalBalance,omitempty"`
}

// FindAsset returns the balance entry for an aggregated asset id, if present.
func (b *AggregatedBalance) FindAsset(aggregatedAssetID string) (AssetBalance, bool) {
	for _, entry := range b.BalanceByAsset {
		if entry.AggregatedAssetID == aggregatedAssetID {
			return entry, true
		}
	}
	return AssetBalance{}, false
}

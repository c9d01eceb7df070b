package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiatValueScalar(t *testing.T) {
	var f FiatValue
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &f))
	require.NotNil(t, f.Scalar)
	assert.Equal(t, 12.5, *f.Scalar)
	assert.Nil(t, f.Breakdown)
	assert.Equal(t, 12.5, f.Total())
}

func TestFiatValueBreakdown(t *testing.T) {
	data := []byte(`[
		{"assetId": "eip155:1/erc20:0xa0b8", "fiatValue": 10},
		{"assetId": "eip155:137/erc20:0x2791", "fiatValue": 2.5}
	]`)

	var f FiatValue
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Nil(t, f.Scalar)
	require.Len(t, f.Breakdown, 2)
	assert.Equal(t, 12.5, f.Total())
}

func TestFiatValueNull(t *testing.T) {
	var f FiatValue
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Nil(t, f.Scalar)
	assert.Nil(t, f.Breakdown)
	assert.Equal(t, 0.0, f.Total())
}

func TestFiatValueRejectsOtherShapes(t *testing.T) {
	var f FiatValue
	assert.Error(t, json.Unmarshal([]byte(`"12.5"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{"value": 1}`), &f))
}

func TestFiatValueMarshalRoundTrip(t *testing.T) {
	scalar := 3.25
	f := FiatValue{Scalar: &scalar}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, "3.25", string(data))

	f = FiatValue{Breakdown: []AssetFiatValue{{AssetID: "a", FiatValue: 1}}}
	data, err = json.Marshal(f)
	require.NoError(t, err)

	var back FiatValue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f.Breakdown, back.Breakdown)
}

func TestAggregatedBalanceFindAsset(t *testing.T) {
	b := AggregatedBalance{BalanceByAsset: []AssetBalance{
		{AggregatedAssetID: "ob:usdc", Balance: "5000000"},
		{AggregatedAssetID: "ob:eth", Balance: "1000000000000000000"},
	}}

	entry, ok := b.FindAsset("ob:usdc")
	require.True(t, ok)
	assert.Equal(t, "5000000", entry.Balance)

	_, ok = b.FindAsset("ob:doge")
	assert.False(t, ok)
}

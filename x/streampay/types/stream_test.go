package types_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/x/streampay/types"
)

func TestDeriveStreamAddress(t *testing.T) {
	base := types.DeriveStreamAddress("pay1alice", "pay1bob", 0)
	require.Len(t, string(base), 40)
	require.Equal(t, base, types.DeriveStreamAddress("pay1alice", "pay1bob", 0))

	others := []types.StreamAddress{
		types.DeriveStreamAddress("pay1alice", "pay1bob", 1),
		types.DeriveStreamAddress("pay1bob", "pay1alice", 0),
		types.DeriveStreamAddress("pay1alicx", "pay1bob", 0),
	}
	for _, other := range others {
		require.NotEqual(t, base, other)
	}

	// Field boundaries are delimited, so shifting bytes between sender and
	// recipient cannot collide.
	require.NotEqual(t,
		types.DeriveStreamAddress("ab", "c", 0),
		types.DeriveStreamAddress("a", "bc", 0))
}

func TestEffectiveTimeClampsToEnd(t *testing.T) {
	bounded := types.StreamRecord{StartTime: 100, EndTime: 200}
	require.EqualValues(t, 150, bounded.EffectiveTime(150))
	require.EqualValues(t, 200, bounded.EffectiveTime(200))
	require.EqualValues(t, 200, bounded.EffectiveTime(10_000))

	unbounded := types.StreamRecord{StartTime: 100}
	require.EqualValues(t, 10_000, unbounded.EffectiveTime(10_000))
}

func validRecord() types.StreamRecord {
	return types.StreamRecord{
		Address:            types.DeriveStreamAddress("pay1alice", "pay1bob", 0),
		Sender:             "pay1alice",
		Recipient:          "pay1bob",
		Kind:               types.KindFixedRate,
		Denom:              "utoken",
		RatePerSecond:      math.NewInt(types.Precision),
		UsdPerMonth:        math.ZeroInt(),
		LastPrice:          math.ZeroInt(),
		StartTime:          1_000,
		LastSettlementTime: 1_000,
		PrincipalBalance:   math.NewInt(5_000),
		FeeReserveBalance:  math.ZeroInt(),
		TotalDeposited:     math.NewInt(5_000),
		TotalWithdrawn:     math.ZeroInt(),
		TotalUsdSettled:    math.ZeroInt(),

		MinBalanceUsdThreshold: math.ZeroInt(),
		IsActive:               true,
	}
}

func TestStreamRecordValidate(t *testing.T) {
	valid := validRecord()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*types.StreamRecord)
	}{
		{"missing sender", func(r *types.StreamRecord) { r.Sender = "" }},
		{"self stream", func(r *types.StreamRecord) { r.Recipient = r.Sender }},
		{"bad kind", func(r *types.StreamRecord) { r.Kind = 0 }},
		{"settlement before start", func(r *types.StreamRecord) { r.LastSettlementTime = 999 }},
		{"negative balance", func(r *types.StreamRecord) { r.PrincipalBalance = math.NewInt(-1) }},
		{"withdrawn over deposited", func(r *types.StreamRecord) { r.TotalWithdrawn = math.NewInt(5_001) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := validRecord()
			tc.mutate(&record)
			require.Error(t, record.Validate())
		})
	}
}

func TestStreamRecordJSONRoundTrip(t *testing.T) {
	record := validRecord()
	record.Kind = types.KindUsdPegged
	record.PriceFeedId = "feed-1"
	record.LastPrice = math.NewInt(200_000_000)
	record.UsdPerMonth = math.NewInt(500_000)

	body, err := json.Marshal(record)
	require.NoError(t, err)

	var restored types.StreamRecord
	require.NoError(t, json.Unmarshal(body, &restored))
	require.Equal(t, record, restored)
}

func TestStreamKind(t *testing.T) {
	require.True(t, types.KindFixedRate.Valid())
	require.True(t, types.KindUsdPegged.Valid())
	require.False(t, types.StreamKind(0).Valid())
	require.False(t, types.StreamKind(3).Valid())
	require.Equal(t, "fixed-rate", types.KindFixedRate.String())
	require.Equal(t, "usd-pegged", types.KindUsdPegged.String())
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, types.DefaultParams().Validate())

	bad := types.DefaultParams()
	bad.MaxPriceAgeSeconds = 0
	require.Error(t, bad.Validate())

	bad = types.DefaultParams()
	bad.DefaultMaxDeviationBps = 10_001
	require.Error(t, bad.Validate())

	bad = types.DefaultParams()
	bad.MinInitialDeposit = math.ZeroInt()
	require.Error(t, bad.Validate())

	bad = types.DefaultParams()
	bad.NativeFeeDenom = ""
	require.Error(t, bad.Validate())
}

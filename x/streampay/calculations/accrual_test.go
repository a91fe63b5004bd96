package calculations

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/x/streampay/types"
)

func TestFixedRateAccrual(t *testing.T) {
	tests := []struct {
		name          string
		elapsed       int64
		ratePerSecond math.Int
		principal     math.Int
		wantAmount    math.Int
		wantDepleted  bool
	}{
		{
			name:          "plain accrual",
			elapsed:       10,
			ratePerSecond: math.NewInt(5 * types.Precision),
			principal:     math.NewInt(1_000),
			wantAmount:    math.NewInt(50),
		},
		{
			name:          "sub-unit rate truncates",
			elapsed:       3,
			ratePerSecond: math.NewInt(types.Precision / 2),
			principal:     math.NewInt(1_000),
			wantAmount:    math.NewInt(1),
		},
		{
			name:          "capped at principal and depleted",
			elapsed:       15,
			ratePerSecond: math.NewInt(100 * types.Precision),
			principal:     math.NewInt(1_000),
			wantAmount:    math.NewInt(1_000),
			wantDepleted:  true,
		},
		{
			name:          "exact exhaustion is depletion",
			elapsed:       10,
			ratePerSecond: math.NewInt(100 * types.Precision),
			principal:     math.NewInt(1_000),
			wantAmount:    math.NewInt(1_000),
			wantDepleted:  true,
		},
		{
			name:          "zero elapsed",
			elapsed:       0,
			ratePerSecond: math.NewInt(100 * types.Precision),
			principal:     math.NewInt(1_000),
			wantAmount:    math.ZeroInt(),
		},
		{
			name:          "negative elapsed yields nothing",
			elapsed:       -5,
			ratePerSecond: math.NewInt(100 * types.Precision),
			principal:     math.NewInt(1_000),
			wantAmount:    math.ZeroInt(),
		},
		{
			name:          "huge rate does not overflow",
			elapsed:       1 << 40,
			ratePerSecond: math.NewInt(1 << 62),
			principal:     math.NewIntFromUint64(1 << 63).MulRaw(1 << 20),
			wantAmount:    math.NewInt(1 << 62).MulRaw(1 << 40).QuoRaw(types.Precision),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixedRateAccrual(tt.elapsed, tt.ratePerSecond, tt.principal)
			require.Equal(t, tt.wantAmount.String(), got.Amount.String())
			require.Equal(t, tt.wantDepleted, got.Depleted)
		})
	}
}

func TestUsdPeggedAccrual(t *testing.T) {
	// $5000.00/month at $2.00 per token, one full month elapsed:
	// 500000 cents -> 500000 * 1e8 / (2e8 * 100) = 2500 tokens.
	oneMonth := types.SecondsPerMonth
	twoDollars := math.NewInt(200_000_000)

	tests := []struct {
		name         string
		elapsed      int64
		usdPerMonth  math.Int
		price        math.Int
		principal    math.Int
		wantAmount   math.Int
		wantUsd      math.Int
		wantDepleted bool
	}{
		{
			name:        "full month at two dollars",
			elapsed:     oneMonth,
			usdPerMonth: math.NewInt(500_000),
			price:       twoDollars,
			principal:   math.NewInt(1_000_000),
			wantAmount:  math.NewInt(2_500),
			wantUsd:     math.NewInt(500_000),
		},
		{
			name:        "one second of a month",
			elapsed:     1,
			usdPerMonth: math.NewInt(2_592_000 * 100), // one cent per second
			price:       math.NewInt(100_000_000),     // $1.00
			principal:   math.NewInt(1_000_000),
			wantAmount:  math.NewInt(1),
			wantUsd:     math.NewInt(100),
		},
		{
			name:         "capped at principal",
			elapsed:      oneMonth,
			usdPerMonth:  math.NewInt(500_000),
			price:        twoDollars,
			principal:    math.NewInt(100),
			wantAmount:   math.NewInt(100),
			wantUsd:      math.NewInt(500_000),
			wantDepleted: true,
		},
		{
			name:        "zero price yields nothing",
			elapsed:     oneMonth,
			usdPerMonth: math.NewInt(500_000),
			price:       math.ZeroInt(),
			principal:   math.NewInt(1_000_000),
			wantAmount:  math.ZeroInt(),
			wantUsd:     math.ZeroInt(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsdPeggedAccrual(tt.elapsed, tt.usdPerMonth, tt.price, tt.principal)
			require.Equal(t, tt.wantAmount.String(), got.Amount.String())
			require.Equal(t, tt.wantUsd.String(), got.UsdValue.String())
			require.Equal(t, tt.wantDepleted, got.Depleted)
		})
	}
}

func TestUsdValueOf(t *testing.T) {
	// 2500 tokens at $2.00 -> 500000 cents
	require.Equal(t, "500000", UsdValueOf(math.NewInt(2_500), math.NewInt(200_000_000)).String())
	require.Equal(t, "0", UsdValueOf(math.ZeroInt(), math.NewInt(200_000_000)).String())
	require.Equal(t, "0", UsdValueOf(math.NewInt(2_500), math.ZeroInt()).String())
}

package calculations

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/x/streampay/types"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name    string
		reading types.PriceReading
		want    string
		wantErr error
	}{
		{
			name:    "pyth style negative exponent",
			reading: types.PriceReading{Magnitude: 6_025_000, Exponent: -5},
			want:    "6025000000", // $60.25 at 8 decimals
		},
		{
			name:    "already canonical",
			reading: types.PriceReading{Magnitude: 200_000_000, Exponent: -8},
			want:    "200000000",
		},
		{
			name:    "positive exponent",
			reading: types.PriceReading{Magnitude: 3, Exponent: 2},
			want:    "30000000000",
		},
		{
			name:    "zero magnitude rejected",
			reading: types.PriceReading{Magnitude: 0, Exponent: -8},
			wantErr: types.ErrNegativePrice,
		},
		{
			name:    "negative magnitude rejected",
			reading: types.PriceReading{Magnitude: -100, Exponent: -8},
			wantErr: types.ErrNegativePrice,
		},
		{
			name:    "dust truncating to zero rejected",
			reading: types.PriceReading{Magnitude: 1, Exponent: -12},
			wantErr: types.ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePrice(tt.reading)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestDeviationBps(t *testing.T) {
	tests := []struct {
		name     string
		oldPrice int64
		newPrice int64
		want     uint64
	}{
		{name: "no movement", oldPrice: 100, newPrice: 100, want: 0},
		{name: "up fifteen percent", oldPrice: 100, newPrice: 115, want: 1500},
		{name: "up nine percent", oldPrice: 100, newPrice: 109, want: 900},
		{name: "down ten percent", oldPrice: 100, newPrice: 90, want: 1000},
		{name: "zero old price", oldPrice: 0, newPrice: 115, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviationBps(math.NewInt(tt.oldPrice), math.NewInt(tt.newPrice))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePrice(t *testing.T) {
	now := int64(1_700_000_000)
	fresh := types.PriceReading{Magnitude: 115, Exponent: 0, PublishTime: now - 5}

	t.Run("stale reading rejected", func(t *testing.T) {
		old := types.PriceReading{Magnitude: 115, Exponent: 0, PublishTime: now - 120}
		_, err := ValidatePrice(old, now, 60, math.ZeroInt(), 1000)
		require.ErrorIs(t, err, types.ErrStalePrice)
	})

	t.Run("deviation beyond bound rejected", func(t *testing.T) {
		last := math.NewInt(100).MulRaw(types.Precision)
		_, err := ValidatePrice(fresh, now, 60, last, 1000)
		require.ErrorIs(t, err, types.ErrPriceDeviationTooHigh)
	})

	t.Run("deviation within bound accepted", func(t *testing.T) {
		last := math.NewInt(109_00_000_000) // $109
		got, err := ValidatePrice(fresh, now, 60, last, 1000)
		require.NoError(t, err)
		require.Equal(t, "11500000000", got.String())
	})

	t.Run("first observation skips deviation check", func(t *testing.T) {
		got, err := ValidatePrice(fresh, now, 60, math.ZeroInt(), 1)
		require.NoError(t, err)
		require.Equal(t, "11500000000", got.String())
	})
}

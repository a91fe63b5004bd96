package types

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	// Precision scales RatePerSecond so sub-unit rates are representable.
	Precision = int64(100_000_000)

	// PriceDecimals is the canonical fixed-point scale for oracle prices.
	PriceDecimals = 8

	// SecondsPerMonth converts a monthly USD rate to a per-second one.
	SecondsPerMonth = int64(2_592_000)
)

// Default parameter values
var (
	DefaultMaxPriceAgeSeconds = int64(60)
	DefaultMaxDeviationBps    = uint64(1000) // 10%
	DefaultMinInitialDeposit  = math.NewInt(1000)
	DefaultNativeFeeDenom     = "nstream"
)

// Params holds the engine-wide settings. Per-stream settings (deviation
// bound, end time, thresholds) live on the StreamRecord instead.
type Params struct {
	// MaxPriceAgeSeconds rejects oracle readings published longer ago than this.
	MaxPriceAgeSeconds int64
	// DefaultMaxDeviationBps bounds price movement per update when the
	// creator does not override it.
	DefaultMaxDeviationBps uint64
	// MinInitialDeposit is the dust threshold for stream creation.
	MinInitialDeposit math.Int
	// NativeFeeDenom is the asset fee reserves are denominated in.
	NativeFeeDenom string
}

// NewParams creates a new Params instance
func NewParams(maxPriceAge int64, maxDeviationBps uint64, minDeposit math.Int, feeDenom string) Params {
	return Params{
		MaxPriceAgeSeconds:     maxPriceAge,
		DefaultMaxDeviationBps: maxDeviationBps,
		MinInitialDeposit:      minDeposit,
		NativeFeeDenom:         feeDenom,
	}
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return NewParams(
		DefaultMaxPriceAgeSeconds,
		DefaultMaxDeviationBps,
		DefaultMinInitialDeposit,
		DefaultNativeFeeDenom,
	)
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.MaxPriceAgeSeconds <= 0 {
		return fmt.Errorf("max price age must be positive, got %d", p.MaxPriceAgeSeconds)
	}
	if p.DefaultMaxDeviationBps == 0 || p.DefaultMaxDeviationBps > 10_000 {
		return fmt.Errorf("default max deviation must be in (0, 10000] bps, got %d", p.DefaultMaxDeviationBps)
	}
	if p.MinInitialDeposit.IsNil() || !p.MinInitialDeposit.IsPositive() {
		return fmt.Errorf("min initial deposit must be positive")
	}
	if p.NativeFeeDenom == "" {
		return fmt.Errorf("native fee denom must be set")
	}
	return nil
}

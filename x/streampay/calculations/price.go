package calculations

import (
	"cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/productscience/streampay/x/streampay/types"
)

var bpsDenominator = decimal.NewFromInt(10_000)

// NormalizePrice converts a raw oracle reading to the canonical 8-decimal
// fixed-point representation. Readings with zero or negative magnitude are
// rejected with ErrNegativePrice.
func NormalizePrice(reading types.PriceReading) (math.Int, error) {
	if reading.Magnitude <= 0 {
		return math.Int{}, types.ErrNegativePrice.Wrapf("magnitude %d", reading.Magnitude)
	}
	// decimal.New(m, e) is m * 10^e; shifting by PriceDecimals lands on the
	// canonical scale with truncation toward zero.
	normalized := decimal.New(reading.Magnitude, reading.Exponent).Shift(types.PriceDecimals).Truncate(0)
	if !normalized.IsPositive() {
		return math.Int{}, types.ErrNegativePrice.Wrapf("price %s truncates to zero at %d decimals", normalized, types.PriceDecimals)
	}
	out, ok := math.NewIntFromString(normalized.String())
	if !ok {
		return math.Int{}, types.ErrNegativePrice.Wrapf("price %s is not an integer", normalized)
	}
	return out, nil
}

// DeviationBps returns the absolute price movement from oldPrice to newPrice
// in basis points, truncated. A zero oldPrice returns zero: the first
// observation has nothing to deviate from.
func DeviationBps(oldPrice, newPrice math.Int) uint64 {
	if !oldPrice.IsPositive() {
		return 0
	}
	oldDec := decimal.NewFromBigInt(oldPrice.BigInt(), 0)
	newDec := decimal.NewFromBigInt(newPrice.BigInt(), 0)
	bps := newDec.Sub(oldDec).Abs().Div(oldDec).Mul(bpsDenominator).Truncate(0)
	return uint64(bps.IntPart())
}

// ValidatePrice runs the full validation pipeline for a raw reading against
// the stream's last accepted price: staleness, normalization, and deviation
// bounding. On success it returns the canonical 8-decimal price.
func ValidatePrice(reading types.PriceReading, now int64, maxAgeSeconds int64, lastPrice math.Int, maxDeviationBps uint64) (math.Int, error) {
	if now-reading.PublishTime > maxAgeSeconds {
		return math.Int{}, types.ErrStalePrice.Wrapf("published %ds ago, max age %ds", now-reading.PublishTime, maxAgeSeconds)
	}
	price, err := NormalizePrice(reading)
	if err != nil {
		return math.Int{}, err
	}
	if lastPrice.IsPositive() {
		if dev := DeviationBps(lastPrice, price); dev > maxDeviationBps {
			return math.Int{}, types.ErrPriceDeviationTooHigh.Wrapf("deviation %d bps exceeds %d bps", dev, maxDeviationBps)
		}
	}
	return price, nil
}

package calculations

import (
	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/types"
)

// priceScale is 10^PriceDecimals, the canonical oracle price scale.
var priceScale = math.NewInt(100_000_000)

// Accrual is the settlement amount owed to the recipient since the last
// settlement, capped at the remaining principal.
type Accrual struct {
	// Amount is the payable amount in asset base units, already capped.
	Amount math.Int
	// UsdValue is the USD cents represented by Amount. Zero for fixed-rate
	// streams.
	UsdValue math.Int
	// Depleted is true when the uncapped amount met or exceeded the
	// principal, i.e. the stream runs dry with this settlement.
	Depleted bool
}

// FixedRateAccrual computes elapsed * rate / Precision in arbitrary
// precision, then caps at the principal balance.
func FixedRateAccrual(elapsed int64, ratePerSecond math.Int, principal math.Int) Accrual {
	if elapsed <= 0 || !ratePerSecond.IsPositive() {
		return Accrual{Amount: math.ZeroInt(), UsdValue: math.ZeroInt()}
	}
	uncapped := ratePerSecond.Mul(math.NewInt(elapsed)).Quo(math.NewInt(types.Precision))
	return capAtPrincipal(uncapped, math.ZeroInt(), principal)
}

// UsdPeggedAccrual converts an elapsed period and a monthly USD-cents rate
// into asset base units at the given 8-decimal price:
//
//	usdEarned = elapsed * usdPerMonth / SecondsPerMonth
//	amount    = usdEarned * 10^8 / (price * 100)
//
// The price carries 8 decimals and usdEarned is in cents, hence the
// price*100 divisor. A zero price yields a zero accrual rather than a
// division panic; the caller decides whether that is an error.
func UsdPeggedAccrual(elapsed int64, usdPerMonth math.Int, price math.Int, principal math.Int) Accrual {
	if elapsed <= 0 || !usdPerMonth.IsPositive() || !price.IsPositive() {
		return Accrual{Amount: math.ZeroInt(), UsdValue: math.ZeroInt()}
	}
	usdEarned := usdPerMonth.Mul(math.NewInt(elapsed)).Quo(math.NewInt(types.SecondsPerMonth))
	uncapped := usdEarned.Mul(priceScale).Quo(price.MulRaw(100))
	return capAtPrincipal(uncapped, usdEarned, principal)
}

// UsdValueOf prices an asset amount in USD cents at the given 8-decimal
// price. Used for low-balance threshold checks.
func UsdValueOf(amount math.Int, price math.Int) math.Int {
	if !amount.IsPositive() || !price.IsPositive() {
		return math.ZeroInt()
	}
	return amount.Mul(price).MulRaw(100).Quo(priceScale)
}

func capAtPrincipal(uncapped, usdValue, principal math.Int) Accrual {
	if uncapped.GTE(principal) {
		return Accrual{Amount: principal, UsdValue: usdValue, Depleted: true}
	}
	return Accrual{Amount: uncapped, UsdValue: usdValue}
}

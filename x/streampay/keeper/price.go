package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/calculations"
	"github.com/productscience/streampay/x/streampay/types"
)

// fetchInitialPrice validates a feed for stream creation. Creation has no
// fallback price yet, so every failure is a hard error.
func (k *Keeper) fetchInitialPrice(ctx context.Context, feedId string, now int64) (math.Int, error) {
	if k.oracle == nil {
		return math.Int{}, types.ErrFeedNotFound.Wrap("no oracle configured")
	}
	if feedId == "" {
		return math.Int{}, types.ErrInvalidFeedId.Wrap("empty feed id")
	}
	if !k.oracle.FeedExists(ctx, feedId) {
		return math.Int{}, types.ErrFeedNotFound.Wrap(feedId)
	}
	reading, err := k.oracle.GetPrice(ctx, feedId)
	if err != nil {
		return math.Int{}, types.ErrFeedNotFound.Wrapf("feed %s: %v", feedId, err)
	}
	return calculations.ValidatePrice(reading, now, k.params.MaxPriceAgeSeconds, math.ZeroInt(), 0)
}

// refreshPrice re-reads the feed during settlement. Soft failures (feed
// absent, unreadable, or non-positive reading) fall back to the record's
// last accepted price, preserving liveness. Staleness and deviation breaches
// stay hard errors unless force is set; cancellation passes force because it
// must always be able to complete.
func (k *Keeper) refreshPrice(ctx context.Context, record *types.StreamRecord, now int64, force bool) (price math.Int, changed bool, err error) {
	last := record.LastPrice
	if k.oracle == nil || !k.oracle.FeedExists(ctx, record.PriceFeedId) {
		return last, false, nil
	}
	reading, readErr := k.oracle.GetPrice(ctx, record.PriceFeedId)
	if readErr != nil {
		k.Logger().Warn("price feed unavailable, falling back to last price",
			"feed", record.PriceFeedId, "stream", record.Address, "error", readErr)
		return last, false, nil
	}
	price, err = calculations.ValidatePrice(reading, now, k.params.MaxPriceAgeSeconds, last, record.MaxPriceDeviationBps)
	if err != nil {
		if force || reading.Magnitude <= 0 {
			k.Logger().Warn("price rejected, falling back to last price",
				"feed", record.PriceFeedId, "stream", record.Address, "error", err)
			return last, false, nil
		}
		// Stale or deviating readings abort the settlement rather than
		// silently settling on a price nobody trusts.
		return math.Int{}, false, err
	}
	return price, !price.Equal(last), nil
}

package keeper

import (
	"context"

	"cosmossdk.io/math"
	"golang.org/x/sync/errgroup"

	"github.com/productscience/streampay/x/streampay/types"
)

// BatchEntryResult is the per-stream outcome of a batch withdrawal. Failures
// never propagate to the caller; they show up here as skips.
type BatchEntryResult struct {
	Address types.StreamAddress `json:"address"`
	Amount  math.Int            `json:"amount"`
	Settled bool                `json:"settled"`
	Reason  string              `json:"reason,omitempty"`
}

// BatchWithdraw settles many streams with one shared oracle update. The fee
// for the update is split equally across the eligible USD-pegged streams and
// pulled from each stream's own reserve; streams that cannot pay their share
// are silently skipped so they never block the rest of the batch. After the
// single price update, settlements are independent and run in parallel.
func (k *Keeper) BatchWithdraw(ctx context.Context, caller string, addresses []types.StreamAddress, priceUpdate []byte) []BatchEntryResult {
	results := make([]BatchEntryResult, len(addresses))
	entries := make([]*streamEntry, len(addresses))
	seen := make(map[types.StreamAddress]bool, len(addresses))

	// Serialized prefix: figure out who shares the update fee.
	var feePayers []*streamEntry
	for i, addr := range addresses {
		results[i] = BatchEntryResult{Address: addr, Amount: math.ZeroInt()}
		if seen[addr] {
			results[i].Reason = "duplicate entry"
			continue
		}
		seen[addr] = true
		entry, ok := k.getEntry(addr)
		if !ok {
			results[i].Reason = "stream not found"
			continue
		}
		entry.mu.Lock()
		record := &entry.record
		switch {
		case !record.IsActive:
			results[i].Reason = "stream inactive"
		case record.Recipient != caller:
			results[i].Reason = "caller is not the recipient"
		case record.EmergencyPause:
			results[i].Reason = "stream paused"
		default:
			entries[i] = entry
			if record.Kind == types.KindUsdPegged {
				feePayers = append(feePayers, entry)
			}
		}
		entry.mu.Unlock()
	}

	if len(feePayers) > 0 && k.oracle != nil {
		k.collectSharedFee(ctx, feePayers, priceUpdate, entries, results)
	}

	// Independent settlements; the shared fee is already paid. Each
	// goroutine writes only its own result slot.
	var wg errgroup.Group
	for i, entry := range entries {
		if entry == nil {
			continue
		}
		i, entry := i, entry
		wg.Go(func() error {
			entry.mu.Lock()
			res, err := k.settleLocked(ctx, entry, settleOptions{caller: caller, skipFee: true})
			entry.mu.Unlock()
			if err != nil {
				results[i].Reason = err.Error()
				return nil
			}
			results[i].Amount = res.Amount
			results[i].Settled = true
			return nil
		})
	}
	// Goroutines never return errors; Wait just joins them.
	_ = wg.Wait()

	return results
}

// collectSharedFee pulls an equal share of the oracle update fee from each
// paying stream's reserve (remainder charged to the first payer, matching
// how stream vesting splits remainders) and applies the update once. Streams
// whose reserve is short are dropped from the batch.
func (k *Keeper) collectSharedFee(ctx context.Context, feePayers []*streamEntry, priceUpdate []byte, entries []*streamEntry, results []BatchEntryResult) {
	fee, err := k.oracle.GetUpdateFee(ctx, priceUpdate)
	if err != nil {
		k.Logger().Warn("oracle fee quote failed, settling batch on last prices", "error", err)
		return
	}
	if !fee.IsPositive() {
		return
	}

	n := math.NewInt(int64(len(feePayers)))
	share := fee.Quo(n)
	remainder := fee.Mod(n)

	collected := math.ZeroInt()
	for idx, entry := range feePayers {
		want := share
		if idx == 0 {
			want = want.Add(remainder)
		}
		entry.mu.Lock()
		if entry.record.FeeReserveBalance.LT(want) {
			// Drop this stream from settlement without blocking the batch.
			for i := range entries {
				if entries[i] == entry {
					entries[i] = nil
					results[i].Reason = "insufficient fee reserve for shared update"
				}
			}
			entry.mu.Unlock()
			continue
		}
		entry.record.FeeReserveBalance = entry.record.FeeReserveBalance.Sub(want)
		k.persistStreamLocked(ctx, entry.record)
		entry.mu.Unlock()
		collected = collected.Add(want)
	}

	if collected.IsPositive() && len(priceUpdate) > 0 {
		if err := k.oracle.ApplyUpdate(ctx, priceUpdate, collected); err != nil {
			k.Logger().Warn("shared oracle update failed, settling batch on last prices", "error", err)
		}
	}
}

package keeper

import (
	"context"

	"github.com/productscience/streampay/x/streampay/types"
)

// SetEmergencyPause toggles the sender-controlled pause on a USD-pegged
// stream. A paused stream rejects withdrawals; accrual keeps running and
// cancellation stays available.
func (k *Keeper) SetEmergencyPause(ctx context.Context, caller string, address types.StreamAddress, paused bool) error {
	entry, ok := k.getEntry(address)
	if !ok {
		return types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	record := &entry.record

	if !record.IsActive {
		return types.ErrStreamInactive.Wrap(string(address))
	}
	if caller != record.Sender {
		return types.ErrUnauthorized.Wrapf("caller %s is not the sender", caller)
	}
	if record.Kind != types.KindUsdPegged {
		return types.ErrWrongStreamKind.Wrap("emergency pause only exists on usd-pegged streams")
	}

	if record.EmergencyPause == paused {
		return nil
	}
	record.EmergencyPause = paused
	k.persistStreamLocked(ctx, *record)
	k.Logger().Info("stream pause toggled", "address", address, "paused", paused)
	return nil
}

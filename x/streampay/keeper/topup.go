package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/types"
)

// TopUpPrincipal lets the sender add funds to an active stream's principal.
func (k *Keeper) TopUpPrincipal(ctx context.Context, caller string, address types.StreamAddress, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("top-up amount must be positive")
	}
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

	if err := k.bankKeeper.SendToModule(ctx, caller, record.Denom, amount, "stream top-up "+string(address)); err != nil {
		return err
	}
	record.PrincipalBalance = record.PrincipalBalance.Add(amount)
	record.TotalDeposited = record.TotalDeposited.Add(amount)
	k.persistStreamLocked(ctx, *record)

	k.Logger().Info("stream principal topped up", "address", address, "amount", amount.String())
	return nil
}

// TopUpFeeReserve adds to the oracle fee reserve of a USD-pegged stream.
// The principal balance is never touched.
func (k *Keeper) TopUpFeeReserve(ctx context.Context, caller string, address types.StreamAddress, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("top-up amount must be positive")
	}
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
		return types.ErrWrongStreamKind.Wrap("fee reserve only exists on usd-pegged streams")
	}

	if err := k.bankKeeper.SendToModule(ctx, caller, k.params.NativeFeeDenom, amount, "fee reserve top-up "+string(address)); err != nil {
		return err
	}
	record.FeeReserveBalance = record.FeeReserveBalance.Add(amount)
	k.persistStreamLocked(ctx, *record)

	k.events.Emit(types.EventFeeReserveTopUp{
		Address: address,
		Sender:  record.Sender,
		Amount:  amount,
		Time:    k.clock.Now(),
	})
	return nil
}

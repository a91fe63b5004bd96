package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/calculations"
	"github.com/productscience/streampay/x/streampay/types"
)

// CancelResult reports the final split of a cancelled stream.
type CancelResult struct {
	Address          types.StreamAddress `json:"address"`
	SentToRecipient  math.Int            `json:"sent_to_recipient"`
	ReturnedToSender math.Int            `json:"returned_to_sender"`
	FeeReserveRefund math.Int            `json:"fee_reserve_refund"`
	Time             int64               `json:"time"`
}

// Cancel closes a cancelable stream: the accrued-but-unwithdrawn amount goes
// to the recipient, the rest of the principal and the whole fee reserve go
// back to the sender. Cancellation never hard-fails on the oracle; a bad or
// missing price falls back to the last accepted one so funds cannot get
// stuck behind a dead feed.
func (k *Keeper) Cancel(ctx context.Context, caller string, address types.StreamAddress) (*CancelResult, error) {
	entry, ok := k.getEntry(address)
	if !ok {
		return nil, types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	record := &entry.record

	if !record.IsActive {
		return nil, types.ErrStreamInactive.Wrap(string(address))
	}
	if caller != record.Sender {
		return nil, types.ErrUnauthorized.Wrapf("caller %s is not the sender", caller)
	}
	if !record.IsCancelable {
		return nil, types.ErrNotCancelable.Wrap(string(address))
	}

	now := k.clock.Now()
	effective := record.EffectiveTime(now)
	elapsed := effective - record.LastSettlementTime

	var accrual calculations.Accrual
	switch record.Kind {
	case types.KindFixedRate:
		accrual = calculations.FixedRateAccrual(elapsed, record.RatePerSecond, record.PrincipalBalance)
	case types.KindUsdPegged:
		price, _, _ := k.refreshPrice(ctx, record, now, true)
		accrual = calculations.UsdPeggedAccrual(elapsed, record.UsdPerMonth, price, record.PrincipalBalance)
	}

	if accrual.Amount.IsPositive() {
		if err := k.bankKeeper.SendFromModule(ctx, record.Recipient, record.Denom, accrual.Amount, "stream cancel payout "+string(address)); err != nil {
			return nil, err
		}
	}
	remainder := record.PrincipalBalance.Sub(accrual.Amount)
	if remainder.IsPositive() {
		if err := k.bankKeeper.SendFromModule(ctx, record.Sender, record.Denom, remainder, "stream cancel refund "+string(address)); err != nil {
			return nil, err
		}
	}
	feeRefund := record.FeeReserveBalance
	if feeRefund.IsPositive() {
		if err := k.bankKeeper.SendFromModule(ctx, record.Sender, k.params.NativeFeeDenom, feeRefund, "fee reserve refund "+string(address)); err != nil {
			return nil, err
		}
	}

	record.PrincipalBalance = math.ZeroInt()
	record.FeeReserveBalance = math.ZeroInt()
	record.LastSettlementTime = now
	record.TotalWithdrawn = record.TotalWithdrawn.Add(accrual.Amount)
	record.TotalUsdSettled = record.TotalUsdSettled.Add(accrual.UsdValue)
	record.IsActive = false
	k.deregister(ctx, record)
	k.persistStreamLocked(ctx, *record)

	k.events.Emit(types.EventCancelled{
		Address:          address,
		Sender:           record.Sender,
		Recipient:        record.Recipient,
		ReturnedToSender: remainder,
		SentToRecipient:  accrual.Amount,
		FeeReserveRefund: feeRefund,
		Time:             now,
	})
	k.Logger().Info("stream cancelled",
		"address", address,
		"to_recipient", accrual.Amount.String(),
		"to_sender", remainder.String(),
		"fee_refund", feeRefund.String(),
	)

	return &CancelResult{
		Address:          address,
		SentToRecipient:  accrual.Amount,
		ReturnedToSender: remainder,
		FeeReserveRefund: feeRefund,
		Time:             now,
	}, nil
}

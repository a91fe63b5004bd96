package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/calculations"
	"github.com/productscience/streampay/x/streampay/types"
)

// WithdrawResult reports what a settlement actually paid out.
type WithdrawResult struct {
	Address  types.StreamAddress `json:"address"`
	Amount   math.Int            `json:"amount"`
	UsdValue math.Int            `json:"usd_value"`
	Price    math.Int            `json:"price"`
	Depleted bool                `json:"depleted"`
	Time     int64               `json:"time"`
}

type settleOptions struct {
	caller      string
	priceUpdate []byte // oracle update blob, single withdrawals only
	skipFee     bool   // batch settlement prepays the shared fee
}

// Withdraw settles everything accrued since the last settlement and pays it
// to the recipient. USD-pegged streams pay the oracle update fee out of
// their fee reserve first, then refresh the price.
func (k *Keeper) Withdraw(ctx context.Context, caller string, address types.StreamAddress, priceUpdate []byte) (*WithdrawResult, error) {
	entry, ok := k.getEntry(address)
	if !ok {
		return nil, types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return k.settleLocked(ctx, entry, settleOptions{caller: caller, priceUpdate: priceUpdate})
}

// settleLocked is the single settlement path behind Withdraw and
// BatchWithdraw. The caller holds the entry lock; no record field is
// mutated until the outbound transfer has succeeded, so a failed settlement
// leaves no partial state.
func (k *Keeper) settleLocked(ctx context.Context, entry *streamEntry, opts settleOptions) (*WithdrawResult, error) {
	record := &entry.record

	if !record.IsActive {
		return nil, types.ErrStreamInactive.Wrap(string(record.Address))
	}
	if opts.caller != record.Recipient {
		return nil, types.ErrUnauthorized.Wrapf("caller %s is not the recipient", opts.caller)
	}
	if record.EmergencyPause {
		return nil, types.ErrStreamPaused.Wrap(string(record.Address))
	}

	now := k.clock.Now()
	effective := record.EffectiveTime(now)
	elapsed := effective - record.LastSettlementTime
	if elapsed <= 0 || !record.PrincipalBalance.IsPositive() {
		return nil, types.ErrInsufficientAccrual.Wrapf("stream %s", record.Address)
	}

	price := record.LastPrice
	priceChanged := false
	newReserve := record.FeeReserveBalance

	if record.Kind == types.KindUsdPegged {
		// Pre-check with the last accepted price so a zero accrual rejects
		// before the fee reserve is touched.
		pre := calculations.UsdPeggedAccrual(elapsed, record.UsdPerMonth, price, record.PrincipalBalance)
		if !pre.Amount.IsPositive() {
			return nil, types.ErrInsufficientAccrual.Wrapf("stream %s", record.Address)
		}

		if !opts.skipFee && k.oracle != nil {
			fee, err := k.oracle.GetUpdateFee(ctx, opts.priceUpdate)
			if err != nil {
				k.Logger().Warn("oracle fee quote failed, skipping update", "stream", record.Address, "error", err)
			} else if fee.IsPositive() {
				if newReserve.LT(fee) {
					return nil, types.ErrInsufficientFeeReserve.Wrapf("reserve %s, fee %s", newReserve, fee)
				}
				if len(opts.priceUpdate) > 0 {
					if err := k.oracle.ApplyUpdate(ctx, opts.priceUpdate, fee); err != nil {
						return nil, types.ErrFeedNotFound.Wrapf("oracle update failed: %v", err)
					}
				}
				newReserve = newReserve.Sub(fee)
			}
		}

		var err error
		price, priceChanged, err = k.refreshPrice(ctx, record, now, false)
		if err != nil {
			return nil, err
		}
	}

	var accrual calculations.Accrual
	switch record.Kind {
	case types.KindFixedRate:
		accrual = calculations.FixedRateAccrual(elapsed, record.RatePerSecond, record.PrincipalBalance)
	case types.KindUsdPegged:
		accrual = calculations.UsdPeggedAccrual(elapsed, record.UsdPerMonth, price, record.PrincipalBalance)
	}
	if !accrual.Amount.IsPositive() {
		return nil, types.ErrInsufficientAccrual.Wrapf("stream %s", record.Address)
	}

	if err := k.bankKeeper.SendFromModule(ctx, record.Recipient, record.Denom, accrual.Amount, "stream withdrawal "+string(record.Address)); err != nil {
		return nil, err
	}

	// Transfer succeeded; commit the settlement as one unit.
	oldPrice := record.LastPrice
	record.FeeReserveBalance = newReserve
	if priceChanged {
		record.LastPrice = price
		record.LastPriceUpdate = now
	}
	record.PrincipalBalance = record.PrincipalBalance.Sub(accrual.Amount)
	record.LastSettlementTime = now
	record.TotalWithdrawn = record.TotalWithdrawn.Add(accrual.Amount)
	record.TotalUsdSettled = record.TotalUsdSettled.Add(accrual.UsdValue)

	if priceChanged {
		k.events.Emit(types.EventPriceAdjusted{
			Address:  record.Address,
			OldPrice: oldPrice,
			NewPrice: price,
			Time:     now,
		})
	}

	if accrual.Depleted {
		record.IsActive = false
		k.deregister(ctx, record)
		k.persistStreamLocked(ctx, *record)
		k.events.Emit(types.EventDepleted{
			Address:   record.Address,
			Recipient: record.Recipient,
			Time:      now,
		})
		k.Logger().Info("stream depleted", "address", record.Address, "final_amount", accrual.Amount.String())
	} else {
		k.ensureRecipientRegistered(ctx, record)
		k.persistStreamLocked(ctx, *record)
		event := types.EventWithdrawn{
			Address:   record.Address,
			Recipient: record.Recipient,
			Amount:    accrual.Amount,
			Time:      now,
		}
		if record.Kind == types.KindUsdPegged {
			usd := accrual.UsdValue
			p := price
			event.UsdValue = &usd
			event.Price = &p
		}
		k.events.Emit(event)
		k.maybeEmitLowBalance(record, price)
	}

	return &WithdrawResult{
		Address:  record.Address,
		Amount:   accrual.Amount,
		UsdValue: accrual.UsdValue,
		Price:    price,
		Depleted: accrual.Depleted,
		Time:     now,
	}, nil
}

// maybeEmitLowBalance fires the advisory notification when the remaining
// principal's USD value drops under the stream's threshold.
func (k *Keeper) maybeEmitLowBalance(record *types.StreamRecord, price math.Int) {
	if record.Kind != types.KindUsdPegged || !record.MinBalanceUsdThreshold.IsPositive() {
		return
	}
	usdValue := calculations.UsdValueOf(record.PrincipalBalance, price)
	if usdValue.LT(record.MinBalanceUsdThreshold) {
		k.events.Emit(types.EventLowBalance{
			Address:   record.Address,
			Sender:    record.Sender,
			Balance:   record.PrincipalBalance,
			UsdValue:  usdValue,
			Threshold: record.MinBalanceUsdThreshold,
		})
	}
}

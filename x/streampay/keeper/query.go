package keeper

import (
	"sort"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/calculations"
	"github.com/productscience/streampay/x/streampay/types"
)

// WithdrawableAmount is the advisory "withdrawable now" query. It uses the
// stream's last accepted price and never consults the oracle, so it has no
// side effects and no fee.
func (k *Keeper) WithdrawableAmount(address types.StreamAddress) (math.Int, error) {
	entry, ok := k.getEntry(address)
	if !ok {
		return math.Int{}, types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return k.withdrawableLocked(&entry.record), nil
}

func (k *Keeper) withdrawableLocked(record *types.StreamRecord) math.Int {
	if !record.IsActive {
		return math.ZeroInt()
	}
	elapsed := record.EffectiveTime(k.clock.Now()) - record.LastSettlementTime
	switch record.Kind {
	case types.KindFixedRate:
		return calculations.FixedRateAccrual(elapsed, record.RatePerSecond, record.PrincipalBalance).Amount
	case types.KindUsdPegged:
		return calculations.UsdPeggedAccrual(elapsed, record.UsdPerMonth, record.LastPrice, record.PrincipalBalance).Amount
	default:
		return math.ZeroInt()
	}
}

// GetStream returns the full stream info tuple, including the advisory
// withdrawable amount at query time.
func (k *Keeper) GetStream(address types.StreamAddress) (types.StreamInfo, error) {
	entry, ok := k.getEntry(address)
	if !ok {
		return types.StreamInfo{}, types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return types.StreamInfo{
		Record:       entry.record,
		Withdrawable: k.withdrawableLocked(&entry.record),
		QueriedAt:    k.clock.Now(),
	}, nil
}

// StreamAddress exposes deterministic address derivation as a query so
// off-chain callers can predict stream locations before creation.
func (k *Keeper) StreamAddress(sender, recipient string, index uint64) types.StreamAddress {
	return types.DeriveStreamAddress(sender, recipient, index)
}

// SenderStreams returns the account's active outgoing streams, sorted for a
// stable response. The registry itself is an unordered set.
func (k *Keeper) SenderStreams(account string) []types.StreamAddress {
	reg, ok := k.getRegistry(account)
	if !ok {
		return nil
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.sender == nil {
		return nil
	}
	return sorted(types.Addresses(reg.sender.ActiveStreams))
}

// RecipientStreams returns the account's active incoming streams.
func (k *Keeper) RecipientStreams(account string) []types.StreamAddress {
	reg, ok := k.getRegistry(account)
	if !ok {
		return nil
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.recipient == nil {
		return nil
	}
	return sorted(types.Addresses(reg.recipient.ActiveStreams))
}

// NextStreamIndex returns the index the account's next outgoing stream will
// be assigned, for predicting its address ahead of creation.
func (k *Keeper) NextStreamIndex(account string) (uint64, error) {
	reg, ok := k.getRegistry(account)
	if !ok {
		return 0, types.ErrRegistryNotFound.Wrap(account)
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.sender == nil {
		return 0, types.ErrRegistryNotFound.Wrap(account)
	}
	return reg.sender.NextIndex, nil
}

// IsActive reports whether the stream exists and is still active.
func (k *Keeper) IsActive(address types.StreamAddress) bool {
	entry, ok := k.getEntry(address)
	if !ok {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.record.IsActive
}

// TotalStreamsCreated returns the global creation counter.
func (k *Keeper) TotalStreamsCreated() uint64 {
	k.counterMu.Lock()
	defer k.counterMu.Unlock()
	return k.totalStreams
}

// FeeReserveBalance returns the oracle fee reserve of a USD-pegged stream.
func (k *Keeper) FeeReserveBalance(address types.StreamAddress) (math.Int, error) {
	entry, ok := k.getEntry(address)
	if !ok {
		return math.Int{}, types.ErrStreamNotFound.Wrap(string(address))
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.record.Kind != types.KindUsdPegged {
		return math.Int{}, types.ErrWrongStreamKind.Wrap("fee reserve only exists on usd-pegged streams")
	}
	return entry.record.FeeReserveBalance, nil
}

func sorted(addresses []types.StreamAddress) []types.StreamAddress {
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })
	return addresses
}

package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/types"
)

// CreateStreamInput carries everything needed to open a stream. Exactly one
// of RatePerSecond / UsdPerMonth applies depending on Kind.
type CreateStreamInput struct {
	Sender    string
	Recipient string
	Kind      types.StreamKind
	Denom     string

	// Fixed-rate model
	RatePerSecond math.Int

	// USD-pegged model
	UsdPerMonth          math.Int
	PriceFeedId          string
	MaxPriceDeviationBps uint64 // 0 uses the engine default
	FeeReserve           math.Int

	InitialDeposit         math.Int
	DurationSeconds        int64 // 0 means unbounded
	Cancelable             bool
	MinBalanceUsdThreshold math.Int // USD cents, zero disables the check
}

// CreateStream allocates a new stream record at its deterministic address,
// escrows the initial deposit (and fee reserve for USD-pegged streams),
// registers it, and increments the global counter. Every validation happens
// before any balance moves.
func (k *Keeper) CreateStream(ctx context.Context, in CreateStreamInput) (*types.StreamRecord, error) {
	if in.Sender == "" || in.Recipient == "" {
		return nil, types.ErrInvalidAmount.Wrap("sender and recipient must be set")
	}
	if in.Sender == in.Recipient {
		return nil, types.ErrSelfStream
	}
	if !in.Kind.Valid() {
		return nil, types.ErrWrongStreamKind.Wrapf("kind %d", in.Kind)
	}
	if in.Denom == "" {
		return nil, types.ErrInvalidAmount.Wrap("denom must be set")
	}
	if in.InitialDeposit.IsNil() || in.InitialDeposit.LT(k.params.MinInitialDeposit) {
		return nil, types.ErrDepositTooSmall.Wrapf("deposit %s below minimum %s", in.InitialDeposit, k.params.MinInitialDeposit)
	}
	if in.DurationSeconds < 0 {
		return nil, types.ErrInvalidAmount.Wrapf("duration %d", in.DurationSeconds)
	}

	now := k.clock.Now()
	lastPrice := math.ZeroInt()
	deviationBps := uint64(0)

	switch in.Kind {
	case types.KindFixedRate:
		if in.RatePerSecond.IsNil() || !in.RatePerSecond.IsPositive() {
			return nil, types.ErrInvalidRate.Wrap("rate per second must be positive")
		}
	case types.KindUsdPegged:
		if in.UsdPerMonth.IsNil() || !in.UsdPerMonth.IsPositive() {
			return nil, types.ErrInvalidRate.Wrap("usd per month must be positive")
		}
		if in.FeeReserve.IsNil() || !in.FeeReserve.IsPositive() {
			return nil, types.ErrInvalidAmount.Wrap("fee reserve must be positive")
		}
		deviationBps = in.MaxPriceDeviationBps
		if deviationBps == 0 {
			deviationBps = k.params.DefaultMaxDeviationBps
		}
		// Creation has no fallback price, so oracle failures reject here.
		var err error
		lastPrice, err = k.fetchInitialPrice(ctx, in.PriceFeedId, now)
		if err != nil {
			return nil, err
		}
	}

	index := k.reserveStreamIndex(in.Sender)
	address := types.DeriveStreamAddress(in.Sender, in.Recipient, index)
	if _, exists := k.getEntry(address); exists {
		return nil, types.ErrStreamExists.Wrap(string(address))
	}

	if err := k.bankKeeper.SendToModule(ctx, in.Sender, in.Denom, in.InitialDeposit, "stream deposit "+string(address)); err != nil {
		return nil, err
	}
	if in.Kind == types.KindUsdPegged {
		if err := k.bankKeeper.SendToModule(ctx, in.Sender, k.params.NativeFeeDenom, in.FeeReserve, "fee reserve "+string(address)); err != nil {
			// Unwind the principal escrow so a failed creation moves nothing.
			if refundErr := k.bankKeeper.SendFromModule(ctx, in.Sender, in.Denom, in.InitialDeposit, "creation unwind "+string(address)); refundErr != nil {
				k.Logger().Error("failed to unwind deposit after fee reserve failure",
					"address", address, "error", refundErr)
			}
			return nil, err
		}
	}

	record := types.StreamRecord{
		Address:                address,
		Sender:                 in.Sender,
		Recipient:              in.Recipient,
		StreamIndex:            index,
		Kind:                   in.Kind,
		Denom:                  in.Denom,
		RatePerSecond:          orZero(in.RatePerSecond),
		UsdPerMonth:            orZero(in.UsdPerMonth),
		PriceFeedId:            in.PriceFeedId,
		LastPrice:              lastPrice,
		LastPriceUpdate:        now,
		MaxPriceDeviationBps:   deviationBps,
		StartTime:              now,
		LastSettlementTime:     now,
		PrincipalBalance:       in.InitialDeposit,
		FeeReserveBalance:      orZero(in.FeeReserve),
		TotalDeposited:         in.InitialDeposit,
		TotalWithdrawn:         math.ZeroInt(),
		TotalUsdSettled:        math.ZeroInt(),
		IsActive:               true,
		IsCancelable:           in.Cancelable,
		MinBalanceUsdThreshold: orZero(in.MinBalanceUsdThreshold),
	}
	if in.DurationSeconds > 0 {
		record.EndTime = now + in.DurationSeconds
	}

	entry := &streamEntry{record: record}
	k.mu.Lock()
	k.streams[address] = entry
	k.mu.Unlock()

	k.registerStream(ctx, &record)

	k.counterMu.Lock()
	k.totalStreams++
	total := k.totalStreams
	k.counterMu.Unlock()
	k.persistCounter(ctx, total)

	entry.mu.Lock()
	k.persistStreamLocked(ctx, entry.record)
	entry.mu.Unlock()

	rate := record.RatePerSecond.String()
	if record.Kind == types.KindUsdPegged {
		rate = record.UsdPerMonth.String()
	}
	k.events.Emit(types.EventStreamCreated{
		Address:        address,
		Sender:         record.Sender,
		Recipient:      record.Recipient,
		Kind:           record.Kind.String(),
		Denom:          record.Denom,
		Rate:           rate,
		InitialDeposit: record.TotalDeposited,
		Time:           now,
	})
	k.Logger().Info("stream created",
		"address", address,
		"sender", record.Sender,
		"recipient", record.Recipient,
		"kind", record.Kind.String(),
		"deposit", record.TotalDeposited.String(),
	)

	result := record
	return &result, nil
}

// reserveStreamIndex assigns the sender's next stream index, initializing
// the sender registry on first use. Burned indexes (a creation failing after
// reservation) are acceptable: the counter only needs to be monotonic.
func (k *Keeper) reserveStreamIndex(sender string) uint64 {
	reg := k.getOrCreateRegistry(sender)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.sender == nil {
		reg.sender = types.NewSenderRegistry()
	}
	index := reg.sender.NextIndex
	reg.sender.NextIndex++
	return index
}

// registerStream adds the new stream to the sender registry and, when the
// recipient account is already set up, to the recipient registry. Otherwise
// the recipient side is registered lazily on first withdrawal.
func (k *Keeper) registerStream(ctx context.Context, record *types.StreamRecord) {
	senderReg := k.getOrCreateRegistry(record.Sender)
	senderReg.mu.Lock()
	senderReg.sender.ActiveStreams[record.Address] = struct{}{}
	k.persistRegistriesLocked(ctx, record.Sender, senderReg)
	senderReg.mu.Unlock()

	if reg, ok := k.getRegistry(record.Recipient); ok {
		reg.mu.Lock()
		if reg.recipient != nil {
			reg.recipient.ActiveStreams[record.Address] = struct{}{}
			k.persistRegistriesLocked(ctx, record.Recipient, reg)
		}
		reg.mu.Unlock()
	}
}

func orZero(v math.Int) math.Int {
	if v.IsNil() {
		return math.ZeroInt()
	}
	return v
}

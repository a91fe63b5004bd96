package types

import (
	"context"

	"cosmossdk.io/math"
)

// BankKeeper is the external value-transfer primitive. Implementations must
// be atomic: a failed transfer leaves both accounts untouched.
type BankKeeper interface {
	// SendToModule moves amount of denom from an account into the module
	// escrow. Fails with an insufficient-balance error when short.
	SendToModule(ctx context.Context, from string, denom string, amount math.Int, memo string) error
	// SendFromModule pays amount of denom out of the module escrow.
	SendFromModule(ctx context.Context, to string, denom string, amount math.Int, memo string) error
}

// PriceReading is a raw oracle observation before validation.
type PriceReading struct {
	// Magnitude is the signed price mantissa.
	Magnitude int64
	// Exponent scales Magnitude by 10^Exponent (typically negative).
	Exponent int32
	// PublishTime is the unix time the reading was produced.
	PublishTime int64
}

// PriceOracle is the external price feed service.
type PriceOracle interface {
	FeedExists(ctx context.Context, feedId string) bool
	GetPrice(ctx context.Context, feedId string) (PriceReading, error)
	// GetUpdateFee quotes the fee for applying the given update blob.
	GetUpdateFee(ctx context.Context, update []byte) (math.Int, error)
	// ApplyUpdate applies the update blob, consuming the quoted fee.
	ApplyUpdate(ctx context.Context, update []byte, fee math.Int) error
}

// EventEmitter is the fire-and-forget notification sink. Emission failures
// must never affect settlement, so the interface returns nothing.
type EventEmitter interface {
	Emit(event Event)
}

// Persistence is the storage substrate that survives restarts. The keeper
// writes through on every committed mutation; loads happen once at startup.
type Persistence interface {
	SaveStream(ctx context.Context, record StreamRecord) error
	SaveSenderRegistry(ctx context.Context, account string, reg SenderRegistry) error
	SaveRecipientRegistry(ctx context.Context, account string, reg RecipientRegistry) error
	SaveCounter(ctx context.Context, total uint64) error
	LoadAll(ctx context.Context) (Snapshot, error)
}

// Snapshot is the persisted engine state handed back by Persistence.LoadAll.
type Snapshot struct {
	Streams             []StreamRecord
	SenderRegistries    map[string]SenderRegistry
	RecipientRegistries map[string]RecipientRegistry
	TotalStreams        uint64
}

// Clock supplies the injected current time. Every operation reads it exactly
// once, so all timestamps within one operation agree.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

package keeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"

	"github.com/productscience/streampay/x/streampay/types"
)

// streamEntry is one arena slot: a record plus the mutex that linearizes
// every mutation of it. Operations on different entries never contend.
type streamEntry struct {
	mu     sync.Mutex
	record types.StreamRecord
}

// accountRegistry holds both registry roles for one account. A nil role
// means the account has not been set up for it yet.
type accountRegistry struct {
	mu        sync.Mutex
	sender    *types.SenderRegistry
	recipient *types.RecipientRegistry
}

type (
	Keeper struct {
		logger log.Logger
		params types.Params

		bankKeeper  types.BankKeeper
		oracle      types.PriceOracle
		events      types.EventEmitter
		persistence types.Persistence
		clock       types.Clock

		// mu guards the shape of the two maps below, never their contents.
		mu         sync.RWMutex
		streams    map[types.StreamAddress]*streamEntry
		registries map[string]*accountRegistry

		counterMu    sync.Mutex
		totalStreams uint64
	}
)

func NewKeeper(
	logger log.Logger,
	params types.Params,

	bankKeeper types.BankKeeper,
	oracle types.PriceOracle,
	events types.EventEmitter,
	persistence types.Persistence,
	clock types.Clock,
) *Keeper {
	if err := params.Validate(); err != nil {
		panic(fmt.Sprintf("invalid streampay params: %v", err))
	}
	if bankKeeper == nil {
		panic("bank keeper is required")
	}
	if events == nil {
		events = noopEmitter{}
	}
	if clock == nil {
		clock = types.ClockFunc(func() int64 { return time.Now().Unix() })
	}

	return &Keeper{
		logger:      logger,
		params:      params,
		bankKeeper:  bankKeeper,
		oracle:      oracle,
		events:      events,
		persistence: persistence,
		clock:       clock,
		streams:     make(map[types.StreamAddress]*streamEntry),
		registries:  make(map[string]*accountRegistry),
	}
}

// Logger returns a module-specific logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger.With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetParams returns the engine parameters.
func (k *Keeper) GetParams() types.Params {
	return k.params
}

type noopEmitter struct{}

func (noopEmitter) Emit(types.Event) {}

// SetupAccount initializes both registry roles for an account. Calling it
// twice is a no-op, not an error.
func (k *Keeper) SetupAccount(ctx context.Context, account string) error {
	if account == "" {
		return types.ErrInvalidAmount.Wrap("account must be set")
	}
	reg := k.getOrCreateRegistry(account)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	changed := false
	if reg.sender == nil {
		reg.sender = types.NewSenderRegistry()
		changed = true
	}
	if reg.recipient == nil {
		reg.recipient = types.NewRecipientRegistry()
		changed = true
	}
	if changed {
		k.persistRegistriesLocked(ctx, account, reg)
	}
	return nil
}

func (k *Keeper) getEntry(addr types.StreamAddress) (*streamEntry, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	entry, ok := k.streams[addr]
	return entry, ok
}

func (k *Keeper) getRegistry(account string) (*accountRegistry, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	reg, ok := k.registries[account]
	return reg, ok
}

func (k *Keeper) getOrCreateRegistry(account string) *accountRegistry {
	if reg, ok := k.getRegistry(account); ok {
		return reg
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if reg, ok := k.registries[account]; ok {
		return reg
	}
	reg := &accountRegistry{}
	k.registries[account] = reg
	return reg
}

// deregister drops the stream from both account registries. Called with the
// stream entry lock held; registry locks nest inside entry locks everywhere.
func (k *Keeper) deregister(ctx context.Context, record *types.StreamRecord) {
	if reg, ok := k.getRegistry(record.Sender); ok {
		reg.mu.Lock()
		if reg.sender != nil {
			delete(reg.sender.ActiveStreams, record.Address)
			k.persistRegistriesLocked(ctx, record.Sender, reg)
		}
		reg.mu.Unlock()
	}
	if reg, ok := k.getRegistry(record.Recipient); ok {
		reg.mu.Lock()
		if reg.recipient != nil {
			delete(reg.recipient.ActiveStreams, record.Address)
			k.persistRegistriesLocked(ctx, record.Recipient, reg)
		}
		reg.mu.Unlock()
	}
}

// ensureRecipientRegistered performs the lazy registration of a stream in
// the recipient registry on first withdrawal.
func (k *Keeper) ensureRecipientRegistered(ctx context.Context, record *types.StreamRecord) {
	reg := k.getOrCreateRegistry(record.Recipient)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.recipient == nil {
		reg.recipient = types.NewRecipientRegistry()
	}
	if _, ok := reg.recipient.ActiveStreams[record.Address]; !ok {
		reg.recipient.ActiveStreams[record.Address] = struct{}{}
		k.persistRegistriesLocked(ctx, record.Recipient, reg)
	}
}

// persistStreamLocked writes the record through to the persistence substrate.
// Called with the entry lock held so the snapshot is a committed state.
// Persistence failures are logged, never surfaced: the in-memory arena stays
// authoritative while the substrate is unavailable.
func (k *Keeper) persistStreamLocked(ctx context.Context, record types.StreamRecord) {
	if k.persistence == nil {
		return
	}
	if err := k.persistence.SaveStream(ctx, record); err != nil {
		k.Logger().Error("failed to persist stream", "address", record.Address, "error", err)
	}
}

func (k *Keeper) persistRegistriesLocked(ctx context.Context, account string, reg *accountRegistry) {
	if k.persistence == nil {
		return
	}
	if reg.sender != nil {
		if err := k.persistence.SaveSenderRegistry(ctx, account, *reg.sender); err != nil {
			k.Logger().Error("failed to persist sender registry", "account", account, "error", err)
		}
	}
	if reg.recipient != nil {
		if err := k.persistence.SaveRecipientRegistry(ctx, account, *reg.recipient); err != nil {
			k.Logger().Error("failed to persist recipient registry", "account", account, "error", err)
		}
	}
}

func (k *Keeper) persistCounter(ctx context.Context, total uint64) {
	if k.persistence == nil {
		return
	}
	if err := k.persistence.SaveCounter(ctx, total); err != nil {
		k.Logger().Error("failed to persist stream counter", "error", err)
	}
}

// Load restores the arena from the persistence substrate. It is meant to be
// called once, before the keeper starts serving operations.
func (k *Keeper) Load(ctx context.Context) error {
	if k.persistence == nil {
		return nil
	}
	snapshot, err := k.persistence.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load streampay snapshot: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, record := range snapshot.Streams {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("corrupt stream record %s: %w", record.Address, err)
		}
		k.streams[record.Address] = &streamEntry{record: record}
	}
	for account, sr := range snapshot.SenderRegistries {
		reg := k.registries[account]
		if reg == nil {
			reg = &accountRegistry{}
			k.registries[account] = reg
		}
		cp := sr
		reg.sender = &cp
	}
	for account, rr := range snapshot.RecipientRegistries {
		reg := k.registries[account]
		if reg == nil {
			reg = &accountRegistry{}
			k.registries[account] = reg
		}
		cp := rr
		reg.recipient = &cp
	}
	k.counterMu.Lock()
	k.totalStreams = snapshot.TotalStreams
	k.counterMu.Unlock()

	k.Logger().Info("restored streampay state",
		"streams", len(snapshot.Streams),
		"accounts", len(k.registries),
		"total_created", snapshot.TotalStreams)
	return nil
}

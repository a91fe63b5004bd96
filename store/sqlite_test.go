package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/oracle"
	"github.com/productscience/streampay/store"
	keepertest "github.com/productscience/streampay/testutil/keeper"
	"github.com/productscience/streampay/x/streampay/keeper"
	"github.com/productscience/streampay/x/streampay/types"
)

func openStore(t *testing.T, path string) *store.SqliteStore {
	t.Helper()
	s := store.NewSqliteStore(store.SqliteConfig{Path: path})
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newKeeper(t *testing.T, s *store.SqliteStore, clock *keepertest.TestClock) (*keeper.Keeper, *bank.Ledger, *oracle.FeedTable) {
	t.Helper()
	ledger := bank.NewLedger(log.NewNopLogger(), bank.LogConfig{})
	feeds := oracle.NewFeedTable(keepertest.DefaultUpdateFee)
	k := keeper.NewKeeper(log.NewNopLogger(), types.DefaultParams(), ledger, feeds, nil, s, clock)
	return k, ledger, feeds
}

func TestSqliteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "streampay.db")
	clock := keepertest.NewTestClock()

	s := openStore(t, path)
	k, ledger, feeds := newKeeper(t, s, clock)

	ledger.Mint("pay1alice", "utoken", math.NewInt(200_000))
	ledger.Mint("pay1alice", types.DefaultNativeFeeDenom, math.NewInt(500))
	feeds.SetPrice("feed-1", types.PriceReading{
		Magnitude:   200_000_000,
		Exponent:    -8,
		PublishTime: clock.Now(),
	})

	fixed, err := k.CreateStream(ctx, keeper.CreateStreamInput{
		Sender:         "pay1alice",
		Recipient:      "pay1bob",
		Kind:           types.KindFixedRate,
		Denom:          "utoken",
		RatePerSecond:  math.NewInt(100 * types.Precision),
		InitialDeposit: math.NewInt(100_000),
		Cancelable:     true,
	})
	require.NoError(t, err)
	usd, err := k.CreateStream(ctx, keeper.CreateStreamInput{
		Sender:         "pay1alice",
		Recipient:      "pay1bob",
		Kind:           types.KindUsdPegged,
		Denom:          "utoken",
		UsdPerMonth:    math.NewInt(500_000),
		PriceFeedId:    "feed-1",
		FeeReserve:     math.NewInt(500),
		InitialDeposit: math.NewInt(100_000),
	})
	require.NoError(t, err)

	// A settlement mutates the record; the write-through must capture it.
	clock.Advance(30)
	_, err = k.Withdraw(ctx, "pay1bob", fixed.Address, nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())

	// Restart: a fresh keeper over the same file sees the same state.
	s2 := openStore(t, path)
	k2, _, _ := newKeeper(t, s2, clock)
	require.NoError(t, k2.Load(ctx))

	require.EqualValues(t, 2, k2.TotalStreamsCreated())
	require.ElementsMatch(t,
		[]types.StreamAddress{fixed.Address, usd.Address},
		k2.SenderStreams("pay1alice"))
	require.Equal(t, []types.StreamAddress{fixed.Address}, k2.RecipientStreams("pay1bob"))

	info, err := k2.GetStream(fixed.Address)
	require.NoError(t, err)
	require.Equal(t, "97000", info.Record.PrincipalBalance.String())
	require.Equal(t, "3000", info.Record.TotalWithdrawn.String())
	require.True(t, info.Record.IsActive)

	usdInfo, err := k2.GetStream(usd.Address)
	require.NoError(t, err)
	require.Equal(t, types.KindUsdPegged, usdInfo.Record.Kind)
	require.Equal(t, "200000000", usdInfo.Record.LastPrice.String())
	require.Equal(t, "500", usdInfo.Record.FeeReserveBalance.String())

	// The restored sender index keeps growing instead of reusing slots.
	next := k2.StreamAddress("pay1alice", "pay1bob", 2)
	require.NotEqual(t, fixed.Address, next)
	require.NotEqual(t, usd.Address, next)
}

func TestSqliteCounterPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "counter.db")

	s := openStore(t, path)
	require.NoError(t, s.SaveCounter(ctx, 42))
	require.NoError(t, s.SaveCounter(ctx, 43))
	require.NoError(t, s.Close())

	s2 := openStore(t, path)
	snapshot, err := s2.LoadAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 43, snapshot.TotalStreams)
	require.Empty(t, snapshot.Streams)
}

func TestSqliteRegistryUpsert(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")
	s := openStore(t, path)

	reg := types.SenderRegistry{
		ActiveStreams: map[types.StreamAddress]struct{}{"aa": {}, "bb": {}},
		NextIndex:     2,
	}
	require.NoError(t, s.SaveSenderRegistry(ctx, "pay1alice", reg))

	delete(reg.ActiveStreams, "aa")
	reg.NextIndex = 3
	require.NoError(t, s.SaveSenderRegistry(ctx, "pay1alice", reg))
	require.NoError(t, s.SaveRecipientRegistry(ctx, "pay1bob", types.RecipientRegistry{
		ActiveStreams: map[types.StreamAddress]struct{}{"bb": {}},
	}))

	snapshot, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.SenderRegistries, 1)
	restored := snapshot.SenderRegistries["pay1alice"]
	require.EqualValues(t, 3, restored.NextIndex)
	require.Equal(t, map[types.StreamAddress]struct{}{"bb": {}}, restored.ActiveStreams)
	require.Contains(t, snapshot.RecipientRegistries, "pay1bob")
}

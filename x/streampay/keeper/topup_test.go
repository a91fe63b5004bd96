package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/x/streampay/types"
)

func TestTopUpPrincipal(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	addr := createFixedStream(t, k, mocks, ctx, "pay1alice", "pay1bob", 100, 1_000)
	mocks.FundAccount("pay1alice", testDenom, 5_000)

	require.NoError(t, k.TopUpPrincipal(ctx, "pay1alice", addr, math.NewInt(5_000)))

	info, err := k.GetStream(addr)
	require.NoError(t, err)
	require.Equal(t, "6000", info.Record.PrincipalBalance.String())
	require.Equal(t, "6000", info.Record.TotalDeposited.String())
	require.Equal(t, "0", mocks.Ledger.Balance("pay1alice", testDenom).String())

	// The extended runway is withdrawable: 30s at 100/s needs the top-up.
	mocks.Clock.Advance(30)
	res, err := k.Withdraw(ctx, "pay1bob", addr, nil)
	require.NoError(t, err)
	require.Equal(t, "3000", res.Amount.String())
	require.False(t, res.Depleted)
}

func TestTopUpPrincipalValidation(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	addr := createFixedStream(t, k, mocks, ctx, "pay1alice", "pay1bob", 100, 1_000)
	mocks.FundAccount("pay1bob", testDenom, 5_000)

	err := k.TopUpPrincipal(ctx, "pay1alice", addr, math.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	err = k.TopUpPrincipal(ctx, "pay1bob", addr, math.NewInt(100))
	require.ErrorIs(t, err, types.ErrUnauthorized)

	err = k.TopUpPrincipal(ctx, "pay1alice", types.StreamAddress("deadbeef"), math.NewInt(100))
	require.ErrorIs(t, err, types.ErrStreamNotFound)

	_, err = k.Cancel(ctx, "pay1alice", addr)
	require.NoError(t, err)
	mocks.FundAccount("pay1alice", testDenom, 100)
	err = k.TopUpPrincipal(ctx, "pay1alice", addr, math.NewInt(100))
	require.ErrorIs(t, err, types.ErrStreamInactive)
}

func TestTopUpFeeReserve(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	addr := createUsdStream(t, k, mocks, ctx, "pay1alice", "pay1bob", "feed-1", 500_000, 100_000, 500)
	mocks.FundAccount("pay1alice", types.DefaultNativeFeeDenom, 250)

	require.NoError(t, k.TopUpFeeReserve(ctx, "pay1alice", addr, math.NewInt(250)))

	// Reserve and principal are separate pools; only the reserve moved.
	info, err := k.GetStream(addr)
	require.NoError(t, err)
	require.Equal(t, "750", info.Record.FeeReserveBalance.String())
	require.Equal(t, "100000", info.Record.PrincipalBalance.String())

	topped := mocks.Events.OfType(types.EventTypeFeeReserveTopUp)
	require.Len(t, topped, 1)
	event := topped[0].(types.EventFeeReserveTopUp)
	require.Equal(t, addr, event.Address)
	require.Equal(t, "250", event.Amount.String())
}

func TestTopUpFeeReserveRequiresUsdPegged(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	addr := createFixedStream(t, k, mocks, ctx, "pay1alice", "pay1bob", 100, 1_000)
	mocks.FundAccount("pay1alice", types.DefaultNativeFeeDenom, 250)

	err := k.TopUpFeeReserve(ctx, "pay1alice", addr, math.NewInt(250))
	require.ErrorIs(t, err, types.ErrWrongStreamKind)
}

func TestEmergencyPause(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	addr := createUsdStream(t, k, mocks, ctx, "pay1alice", "pay1bob", "feed-1", 500_000, 100_000, 500)

	require.NoError(t, k.SetEmergencyPause(ctx, "pay1alice", addr, true))
	// Repeating the same state is a no-op, not an error.
	require.NoError(t, k.SetEmergencyPause(ctx, "pay1alice", addr, true))

	mocks.Clock.Advance(types.SecondsPerMonth / 2)
	_, err := k.Withdraw(ctx, "pay1bob", addr, nil)
	require.ErrorIs(t, err, types.ErrStreamPaused)

	// Accrual kept running while paused; unpausing releases it all.
	require.NoError(t, k.SetEmergencyPause(ctx, "pay1alice", addr, false))
	mocks.Oracle.SetPrice("feed-1", types.PriceReading{
		Magnitude:   twoDollars,
		Exponent:    -8,
		PublishTime: mocks.Clock.Now(),
	})
	res, err := k.Withdraw(ctx, "pay1bob", addr, nil)
	require.NoError(t, err)
	require.Equal(t, "1250", res.Amount.String())
}

func TestEmergencyPauseAuthorization(t *testing.T) {
	k, mocks, ctx := setupKeeper(t)
	usd := createUsdStream(t, k, mocks, ctx, "pay1alice", "pay1bob", "feed-1", 500_000, 100_000, 500)
	fixed := createFixedStream(t, k, mocks, ctx, "pay1alice", "pay1bob", 100, 1_000)

	err := k.SetEmergencyPause(ctx, "pay1bob", usd, true)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	err = k.SetEmergencyPause(ctx, "pay1alice", fixed, true)
	require.ErrorIs(t, err, types.ErrWrongStreamKind)

	err = k.SetEmergencyPause(ctx, "pay1alice", types.StreamAddress("deadbeef"), true)
	require.ErrorIs(t, err, types.ErrStreamNotFound)
}

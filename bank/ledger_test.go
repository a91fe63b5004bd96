package bank_test

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/x/streampay/types"
)

func TestLedgerEscrowRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := bank.NewLedger(log.NewNopLogger(), bank.LogConfig{})
	ledger.Mint("pay1alice", "utoken", math.NewInt(1_000))

	require.NoError(t, ledger.SendToModule(ctx, "pay1alice", "utoken", math.NewInt(600), "escrow"))
	require.Equal(t, "400", ledger.Balance("pay1alice", "utoken").String())
	require.Equal(t, "600", ledger.Balance(types.ModuleAccount, "utoken").String())

	require.NoError(t, ledger.SendFromModule(ctx, "pay1bob", "utoken", math.NewInt(250), "payout"))
	require.Equal(t, "250", ledger.Balance("pay1bob", "utoken").String())
	require.Equal(t, "350", ledger.Balance(types.ModuleAccount, "utoken").String())
}

func TestLedgerTransferIsAtomic(t *testing.T) {
	ctx := context.Background()
	ledger := bank.NewLedger(log.NewNopLogger(), bank.LogConfig{DoubleEntry: true})
	ledger.Mint("pay1alice", "utoken", math.NewInt(100))

	err := ledger.SendToModule(ctx, "pay1alice", "utoken", math.NewInt(101), "too much")
	require.ErrorIs(t, err, bank.ErrInsufficientBalance)
	require.Equal(t, "100", ledger.Balance("pay1alice", "utoken").String())
	require.Equal(t, "0", ledger.Balance(types.ModuleAccount, "utoken").String())

	err = ledger.SendToModule(ctx, "pay1alice", "utoken", math.ZeroInt(), "nothing")
	require.ErrorIs(t, err, bank.ErrInsufficientBalance)
}

func TestLedgerTracksDenomsIndependently(t *testing.T) {
	ctx := context.Background()
	ledger := bank.NewLedger(log.NewNopLogger(), bank.LogConfig{})
	ledger.Mint("pay1alice", "utoken", math.NewInt(100))
	ledger.Mint("pay1alice", "nstream", math.NewInt(50))

	require.NoError(t, ledger.SendToModule(ctx, "pay1alice", "nstream", math.NewInt(50), "fee reserve"))
	require.Equal(t, "100", ledger.Balance("pay1alice", "utoken").String())
	require.Equal(t, "0", ledger.Balance("pay1alice", "nstream").String())

	// An unknown account or denom reads as zero, not an error.
	require.Equal(t, "0", ledger.Balance("pay1nobody", "utoken").String())
	require.Equal(t, "0", ledger.Balance("pay1alice", "uother").String())
}

package keeper

import (
	"sync"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/events"
	"github.com/productscience/streampay/oracle"
	"github.com/productscience/streampay/x/streampay/keeper"
	"github.com/productscience/streampay/x/streampay/types"
)

// TestEpoch is the fixed starting time of every test clock.
const TestEpoch = int64(1_700_000_000)

// DefaultUpdateFee is what the test oracle charges per price update blob.
var DefaultUpdateFee = math.NewInt(10)

// TestClock is a manually driven clock.
type TestClock struct {
	mu  sync.Mutex
	now int64
}

func NewTestClock() *TestClock {
	return &TestClock{now: TestEpoch}
}

func (c *TestClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Advance(seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

func (c *TestClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// StreampayMocks holds the in-memory collaborators wired into a test keeper.
type StreampayMocks struct {
	Ledger *bank.Ledger
	Oracle *oracle.FeedTable
	Events *events.MemoryEmitter
	Clock  *TestClock
}

// FundAccount mints spendable balance for a test account.
func (m StreampayMocks) FundAccount(account, denom string, amount int64) {
	m.Ledger.Mint(account, denom, math.NewInt(amount))
}

// StreampayKeeper builds a keeper on in-memory collaborators and default
// params.
func StreampayKeeper(t testing.TB) (*keeper.Keeper, StreampayMocks) {
	return StreampayKeeperWithParams(t, types.DefaultParams())
}

func StreampayKeeperWithParams(t testing.TB, params types.Params) (*keeper.Keeper, StreampayMocks) {
	t.Helper()
	mocks := StreampayMocks{
		Ledger: bank.NewLedger(log.NewNopLogger(), bank.LogConfig{}),
		Oracle: oracle.NewFeedTable(DefaultUpdateFee),
		Events: events.NewMemoryEmitter(),
		Clock:  NewTestClock(),
	}
	k := keeper.NewKeeper(
		log.NewNopLogger(),
		params,
		mocks.Ledger,
		mocks.Oracle,
		mocks.Events,
		nil,
		mocks.Clock,
	)
	return k, mocks
}

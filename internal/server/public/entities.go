package public

import (
	"cosmossdk.io/math"

	"github.com/productscience/streampay/x/streampay/keeper"
	"github.com/productscience/streampay/x/streampay/types"
)

type SetupAccountDto struct {
	Account string `json:"account"`
}

type CreateStreamDto struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Denom     string `json:"denom"`

	// RatePerSecond is the fixed-rate amount per second, scaled by the
	// engine precision. Decimal string.
	RatePerSecond string `json:"rate_per_second,omitempty"`

	// UsdPerMonth is the pegged monthly rate in USD cents. Decimal string.
	UsdPerMonth          string `json:"usd_per_month,omitempty"`
	PriceFeedId          string `json:"price_feed_id,omitempty"`
	MaxPriceDeviationBps uint64 `json:"max_price_deviation_bps,omitempty"`
	FeeReserve           string `json:"fee_reserve,omitempty"`

	InitialDeposit         string `json:"initial_deposit"`
	DurationSeconds        int64  `json:"duration_seconds,omitempty"`
	Cancelable             bool   `json:"cancelable"`
	MinBalanceUsdThreshold string `json:"min_balance_usd_threshold,omitempty"`
}

type WithdrawDto struct {
	Caller string `json:"caller"`
	// PriceUpdate is a base64-encoded oracle update blob.
	PriceUpdate string `json:"price_update,omitempty"`
}

type BatchWithdrawDto struct {
	Caller      string   `json:"caller"`
	Addresses   []string `json:"addresses"`
	PriceUpdate string   `json:"price_update,omitempty"`
}

type TopUpDto struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type CancelDto struct {
	Caller string `json:"caller"`
}

type PauseDto struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

type WithdrawableResponse struct {
	Address      types.StreamAddress `json:"address"`
	Withdrawable math.Int            `json:"withdrawable"`
}

type FeeReserveResponse struct {
	Address    types.StreamAddress `json:"address"`
	FeeReserve math.Int            `json:"fee_reserve"`
}

type AccountStreamsResponse struct {
	Account string                `json:"account"`
	Streams []types.StreamAddress `json:"streams"`
}

type NextIndexResponse struct {
	Account   string `json:"account"`
	NextIndex uint64 `json:"next_index"`
}

type AddressResponse struct {
	Address types.StreamAddress `json:"address"`
}

type StatsResponse struct {
	TotalStreamsCreated uint64       `json:"total_streams_created"`
	Params              types.Params `json:"params"`
}

type BatchWithdrawResponse struct {
	Results []keeper.BatchEntryResult `json:"results"`
}

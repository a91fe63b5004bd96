package types

import (
	"cosmossdk.io/math"
)

// Event types, doubling as NATS subject suffixes.
const (
	EventTypeStreamCreated   = "stream_created"
	EventTypeWithdrawn       = "withdrawn"
	EventTypePriceAdjusted   = "price_adjusted"
	EventTypeLowBalance      = "low_balance"
	EventTypeCancelled       = "cancelled"
	EventTypeDepleted        = "depleted"
	EventTypeFeeReserveTopUp = "fee_reserve_top_up"
)

// Event is implemented by every notification payload.
type Event interface {
	EventType() string
}

type EventStreamCreated struct {
	Address        StreamAddress `json:"address"`
	Sender         string        `json:"sender"`
	Recipient      string        `json:"recipient"`
	Kind           string        `json:"kind"`
	Denom          string        `json:"denom"`
	Rate           string        `json:"rate"`
	InitialDeposit math.Int      `json:"initial_deposit"`
	Time           int64         `json:"time"`
}

func (EventStreamCreated) EventType() string { return EventTypeStreamCreated }

type EventWithdrawn struct {
	Address   StreamAddress `json:"address"`
	Recipient string        `json:"recipient"`
	Amount    math.Int      `json:"amount"`
	UsdValue  *math.Int     `json:"usd_value,omitempty"`
	Price     *math.Int     `json:"price,omitempty"`
	Time      int64         `json:"time"`
}

func (EventWithdrawn) EventType() string { return EventTypeWithdrawn }

type EventPriceAdjusted struct {
	Address  StreamAddress `json:"address"`
	OldPrice math.Int      `json:"old_price"`
	NewPrice math.Int      `json:"new_price"`
	Time     int64         `json:"time"`
}

func (EventPriceAdjusted) EventType() string { return EventTypePriceAdjusted }

type EventLowBalance struct {
	Address   StreamAddress `json:"address"`
	Sender    string        `json:"sender"`
	Balance   math.Int      `json:"balance"`
	UsdValue  math.Int      `json:"usd_value"`
	Threshold math.Int      `json:"threshold"`
}

func (EventLowBalance) EventType() string { return EventTypeLowBalance }

type EventCancelled struct {
	Address          StreamAddress `json:"address"`
	Sender           string        `json:"sender"`
	Recipient        string        `json:"recipient"`
	ReturnedToSender math.Int      `json:"returned_to_sender"`
	SentToRecipient  math.Int      `json:"sent_to_recipient"`
	FeeReserveRefund math.Int      `json:"fee_reserve_refund"`
	Time             int64         `json:"time"`
}

func (EventCancelled) EventType() string { return EventTypeCancelled }

type EventDepleted struct {
	Address   StreamAddress `json:"address"`
	Recipient string        `json:"recipient"`
	Time      int64         `json:"time"`
}

func (EventDepleted) EventType() string { return EventTypeDepleted }

type EventFeeReserveTopUp struct {
	Address StreamAddress `json:"address"`
	Sender  string        `json:"sender"`
	Amount  math.Int      `json:"amount"`
	Time    int64         `json:"time"`
}

func (EventFeeReserveTopUp) EventType() string { return EventTypeFeeReserveTopUp }

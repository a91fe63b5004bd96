package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"cosmossdk.io/math"
)

// StreamAddress is the deterministic identifier of a stream, derived from
// (namespace, sender, recipient, index). It is stable before creation so
// off-chain callers can compute it without a lookup.
type StreamAddress string

// DeriveStreamAddress is a pure function: identical inputs always yield the
// identical address, and any differing input yields a different one.
func DeriveStreamAddress(sender, recipient string, index uint64) StreamAddress {
	h := sha256.New()
	h.Write([]byte(AddressNamespace))
	h.Write([]byte{0})
	h.Write([]byte(sender))
	h.Write([]byte{0})
	h.Write([]byte(recipient))
	h.Write([]byte{0})
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	h.Write(idx[:])
	sum := h.Sum(nil)
	return StreamAddress(hex.EncodeToString(sum[:20]))
}

// StreamRecord is the unit of mutable state: one isolated record per
// (sender, recipient, stream index) triple. All balance fields use math.Int,
// so intermediate products never overflow.
type StreamRecord struct {
	Address     StreamAddress `json:"address"`
	Sender      string        `json:"sender"`
	Recipient   string        `json:"recipient"`
	StreamIndex uint64        `json:"stream_index"`
	Kind        StreamKind    `json:"kind"`
	Denom       string        `json:"denom"`

	// Fixed-rate model: asset base units per second, scaled by Precision.
	RatePerSecond math.Int `json:"rate_per_second"`

	// USD-pegged model: monthly rate in USD cents plus oracle linkage.
	UsdPerMonth          math.Int `json:"usd_per_month"`
	PriceFeedId          string   `json:"price_feed_id,omitempty"`
	LastPrice            math.Int `json:"last_price"`
	LastPriceUpdate      int64    `json:"last_price_update"`
	MaxPriceDeviationBps uint64   `json:"max_price_deviation_bps"`

	StartTime          int64 `json:"start_time"`
	LastSettlementTime int64 `json:"last_settlement_time"`
	// EndTime of zero means the stream is unbounded.
	EndTime int64 `json:"end_time"`

	PrincipalBalance  math.Int `json:"principal_balance"`
	FeeReserveBalance math.Int `json:"fee_reserve_balance"`

	TotalDeposited  math.Int `json:"total_deposited"`
	TotalWithdrawn  math.Int `json:"total_withdrawn"`
	TotalUsdSettled math.Int `json:"total_usd_settled"`

	IsActive       bool `json:"is_active"`
	IsCancelable   bool `json:"is_cancelable"`
	EmergencyPause bool `json:"emergency_pause"`

	// MinBalanceUsdThreshold triggers an advisory LowBalance event when the
	// remaining principal's USD value drops under it. Zero disables it.
	MinBalanceUsdThreshold math.Int `json:"min_balance_usd_threshold"`
}

// EffectiveTime clamps now to the stream's end time, so nothing accrues past
// expiry.
func (s *StreamRecord) EffectiveTime(now int64) int64 {
	if s.EndTime > 0 && now > s.EndTime {
		return s.EndTime
	}
	return now
}

// Validate checks the internal invariants of a record. It is used by the
// persistence layer on load and by tests; the keeper maintains these
// invariants by construction.
func (s *StreamRecord) Validate() error {
	if s.Sender == "" || s.Recipient == "" {
		return ErrInvalidAmount.Wrap("sender and recipient must be set")
	}
	if s.Sender == s.Recipient {
		return ErrSelfStream
	}
	if !s.Kind.Valid() {
		return ErrWrongStreamKind.Wrapf("kind %d", s.Kind)
	}
	if s.LastSettlementTime < s.StartTime {
		return ErrStreamInactive.Wrapf("settlement time %d before start %d", s.LastSettlementTime, s.StartTime)
	}
	if s.PrincipalBalance.IsNegative() || s.FeeReserveBalance.IsNegative() {
		return ErrInvalidAmount.Wrap("negative balance")
	}
	if s.TotalWithdrawn.GT(s.TotalDeposited) {
		return ErrInvalidAmount.Wrapf("withdrawn %s exceeds deposited %s", s.TotalWithdrawn, s.TotalDeposited)
	}
	return nil
}

// StreamInfo is the read-only projection returned by queries.
type StreamInfo struct {
	Record       StreamRecord `json:"record"`
	Withdrawable math.Int     `json:"withdrawable"`
	QueriedAt    int64        `json:"queried_at"`
}

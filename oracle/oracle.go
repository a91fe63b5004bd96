// Package oracle provides an in-process price feed table implementing the
// streampay PriceOracle interface. Updates arrive as JSON blobs and charge a
// flat per-update fee, mirroring how on-chain pull oracles are paid.
package oracle

import (
	"context"
	"encoding/json"
	"sync"

	"cosmossdk.io/math"
	"github.com/pkg/errors"

	"github.com/productscience/streampay/x/streampay/types"
)

// Update is the wire format of a price update blob.
type Update struct {
	FeedId      string `json:"feed_id"`
	Magnitude   int64  `json:"magnitude"`
	Exponent    int32  `json:"exponent"`
	PublishTime int64  `json:"publish_time"`
}

// FeedTable is a thread-safe set of price feeds.
type FeedTable struct {
	updateFee math.Int

	mu    sync.RWMutex
	feeds map[string]types.PriceReading
}

var _ types.PriceOracle = (*FeedTable)(nil)

func NewFeedTable(updateFee math.Int) *FeedTable {
	if updateFee.IsNil() {
		updateFee = math.ZeroInt()
	}
	return &FeedTable{
		updateFee: updateFee,
		feeds:     make(map[string]types.PriceReading),
	}
}

// SetPrice publishes a reading directly, bypassing the update-blob path.
func (f *FeedTable) SetPrice(feedId string, reading types.PriceReading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeds[feedId] = reading
}

// DeleteFeed removes a feed, simulating an unavailable oracle.
func (f *FeedTable) DeleteFeed(feedId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.feeds, feedId)
}

func (f *FeedTable) FeedExists(ctx context.Context, feedId string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.feeds[feedId]
	return ok
}

func (f *FeedTable) GetPrice(ctx context.Context, feedId string) (types.PriceReading, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	reading, ok := f.feeds[feedId]
	if !ok {
		return types.PriceReading{}, errors.Errorf("feed %s not found", feedId)
	}
	return reading, nil
}

// GetUpdateFee quotes a flat fee per update blob. An empty blob is free:
// nothing gets applied for it.
func (f *FeedTable) GetUpdateFee(ctx context.Context, update []byte) (math.Int, error) {
	if len(update) == 0 {
		return math.ZeroInt(), nil
	}
	return f.updateFee, nil
}

// ApplyUpdate parses and applies an update blob. The fee is considered
// consumed regardless of whether the payload supersedes the stored reading.
func (f *FeedTable) ApplyUpdate(ctx context.Context, update []byte, fee math.Int) error {
	if len(update) == 0 {
		return nil
	}
	if fee.LT(f.updateFee) {
		return errors.Errorf("fee %s below required %s", fee, f.updateFee)
	}
	var parsed Update
	if err := json.Unmarshal(update, &parsed); err != nil {
		return errors.Wrap(err, "malformed price update")
	}
	if parsed.FeedId == "" {
		return errors.New("price update missing feed id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.feeds[parsed.FeedId]
	if ok && current.PublishTime > parsed.PublishTime {
		// Stale update blobs are a no-op, not an error.
		return nil
	}
	f.feeds[parsed.FeedId] = types.PriceReading{
		Magnitude:   parsed.Magnitude,
		Exponent:    parsed.Exponent,
		PublishTime: parsed.PublishTime,
	}
	return nil
}

// MarshalUpdate builds the JSON blob for an update, the inverse of
// ApplyUpdate's parsing.
func MarshalUpdate(u Update) []byte {
	blob, err := json.Marshal(u)
	if err != nil {
		panic(err) // struct of scalars, cannot fail
	}
	return blob
}

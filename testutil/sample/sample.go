package sample

import (
	"crypto/rand"
	"encoding/hex"
)

// AccAddress returns a sample account address
func AccAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "pay1" + hex.EncodeToString(buf)
}

// FeedId returns a sample price feed identifier
func FeedId() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "feed-" + hex.EncodeToString(buf)
}

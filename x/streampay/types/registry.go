package types

// SenderRegistry tracks an account's outgoing active streams and the next
// stream index to assign. Membership is a set: order is not meaningful.
type SenderRegistry struct {
	ActiveStreams map[StreamAddress]struct{} `json:"active_streams"`
	NextIndex     uint64                     `json:"next_index"`
}

func NewSenderRegistry() *SenderRegistry {
	return &SenderRegistry{ActiveStreams: make(map[StreamAddress]struct{})}
}

// RecipientRegistry tracks an account's incoming active streams.
type RecipientRegistry struct {
	ActiveStreams map[StreamAddress]struct{} `json:"active_streams"`
}

func NewRecipientRegistry() *RecipientRegistry {
	return &RecipientRegistry{ActiveStreams: make(map[StreamAddress]struct{})}
}

// Addresses returns the membership as a slice for query responses. The order
// is unspecified.
func Addresses(set map[StreamAddress]struct{}) []StreamAddress {
	out := make([]StreamAddress, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	return out
}

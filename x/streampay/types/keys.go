package types

const (
	// ModuleName defines the module name
	ModuleName = "streampay"

	// ModuleAccount is the escrow account that holds stream principal and
	// fee reserves while a stream is open.
	ModuleAccount = "streampay-escrow"

	// AddressNamespace is the domain-separation tag mixed into every
	// deterministic stream address.
	AddressNamespace = "streampay/v1"
)

// StreamKind selects the rate model of a stream.
type StreamKind int32

const (
	// KindFixedRate streams a constant amount of the asset per second.
	KindFixedRate StreamKind = iota + 1
	// KindUsdPegged streams a monthly USD amount, converted to asset units
	// through an oracle price at settlement time.
	KindUsdPegged
)

func (k StreamKind) String() string {
	switch k {
	case KindFixedRate:
		return "fixed-rate"
	case KindUsdPegged:
		return "usd-pegged"
	default:
		return "unknown"
	}
}

// Valid reports whether the kind is one of the two supported rate models.
func (k StreamKind) Valid() bool {
	return k == KindFixedRate || k == KindUsdPegged
}

package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// streampay module sentinel errors
var (
	ErrStreamNotFound         = sdkerrors.Register(ModuleName, 1100, "stream not found")
	ErrRegistryNotFound       = sdkerrors.Register(ModuleName, 1101, "account registry not found")
	ErrUnauthorized           = sdkerrors.Register(ModuleName, 1102, "caller not authorized for this operation")
	ErrInvalidAmount          = sdkerrors.Register(ModuleName, 1103, "amount must be positive")
	ErrInvalidRate            = sdkerrors.Register(ModuleName, 1104, "rate must be positive")
	ErrDepositTooSmall        = sdkerrors.Register(ModuleName, 1105, "initial deposit below minimum")
	ErrSelfStream             = sdkerrors.Register(ModuleName, 1106, "sender and recipient must differ")
	ErrInvalidFeedId          = sdkerrors.Register(ModuleName, 1107, "malformed price feed id")
	ErrStreamExists           = sdkerrors.Register(ModuleName, 1108, "stream already exists at address")
	ErrStreamInactive         = sdkerrors.Register(ModuleName, 1109, "stream is not active")
	ErrStreamPaused           = sdkerrors.Register(ModuleName, 1110, "stream is emergency paused")
	ErrNotCancelable          = sdkerrors.Register(ModuleName, 1111, "stream is not cancelable")
	ErrInsufficientAccrual    = sdkerrors.Register(ModuleName, 1112, "nothing accrued to withdraw")
	ErrInsufficientFeeReserve = sdkerrors.Register(ModuleName, 1113, "fee reserve cannot cover oracle update fee")
	ErrFeedNotFound           = sdkerrors.Register(ModuleName, 1114, "price feed not found")
	ErrStalePrice             = sdkerrors.Register(ModuleName, 1115, "oracle price is stale")
	ErrNegativePrice          = sdkerrors.Register(ModuleName, 1116, "oracle price is zero or negative")
	ErrPriceDeviationTooHigh  = sdkerrors.Register(ModuleName, 1117, "price deviation exceeds allowed basis points")
	ErrWrongStreamKind        = sdkerrors.Register(ModuleName, 1118, "operation not supported for this stream kind")
)

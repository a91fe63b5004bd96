package public

import (
	"encoding/base64"
	"net/http"

	"cosmossdk.io/math"
	"github.com/labstack/echo/v4"

	"github.com/productscience/streampay/logging"
	"github.com/productscience/streampay/x/streampay/keeper"
	"github.com/productscience/streampay/x/streampay/types"
)

func (s *Server) postAccount(c echo.Context) error {
	var dto SetupAccountDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	if dto.Account == "" {
		return ErrAccountRequired
	}
	if err := s.engine.SetupAccount(c.Request().Context(), dto.Account); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto)
}

func (s *Server) postStream(c echo.Context) error {
	var dto CreateStreamDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	kind, ok := parseKind(dto.Kind)
	if !ok {
		return ErrInvalidKind
	}
	deposit, ok := parseAmount(dto.InitialDeposit)
	if !ok {
		return ErrInvalidAmount
	}
	in := keeper.CreateStreamInput{
		Sender:               dto.Sender,
		Recipient:            dto.Recipient,
		Kind:                 kind,
		Denom:                dto.Denom,
		PriceFeedId:          dto.PriceFeedId,
		MaxPriceDeviationBps: dto.MaxPriceDeviationBps,
		InitialDeposit:       deposit,
		DurationSeconds:      dto.DurationSeconds,
		Cancelable:           dto.Cancelable,
	}
	var err error
	if in.RatePerSecond, err = parseOptionalAmount(dto.RatePerSecond); err != nil {
		return ErrInvalidAmount
	}
	if in.UsdPerMonth, err = parseOptionalAmount(dto.UsdPerMonth); err != nil {
		return ErrInvalidAmount
	}
	if in.FeeReserve, err = parseOptionalAmount(dto.FeeReserve); err != nil {
		return ErrInvalidAmount
	}
	if in.MinBalanceUsdThreshold, err = parseOptionalAmount(dto.MinBalanceUsdThreshold); err != nil {
		return ErrInvalidAmount
	}

	record, err := s.engine.CreateStream(c.Request().Context(), in)
	if err != nil {
		logging.Error("stream creation failed", logging.Server, "sender", dto.Sender, "error", err)
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

func (s *Server) postWithdraw(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	var dto WithdrawDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	if dto.Caller == "" {
		return ErrCallerRequired
	}
	blob, err := decodeBlob(dto.PriceUpdate)
	if err != nil {
		return ErrInvalidBlob
	}
	res, err := s.engine.Withdraw(c.Request().Context(), dto.Caller, address, blob)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) postBatchWithdraw(c echo.Context) error {
	var dto BatchWithdrawDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	if dto.Caller == "" {
		return ErrCallerRequired
	}
	if len(dto.Addresses) == 0 {
		return ErrAddressesRequired
	}
	blob, err := decodeBlob(dto.PriceUpdate)
	if err != nil {
		return ErrInvalidBlob
	}
	addresses := make([]types.StreamAddress, len(dto.Addresses))
	for i, addr := range dto.Addresses {
		addresses[i] = types.StreamAddress(addr)
	}
	results := s.engine.BatchWithdraw(c.Request().Context(), dto.Caller, addresses, blob)
	return c.JSON(http.StatusOK, BatchWithdrawResponse{Results: results})
}

func (s *Server) postTopUp(c echo.Context) error {
	caller, address, amount, err := bindTopUp(c)
	if err != nil {
		return err
	}
	if err := s.engine.TopUpPrincipal(c.Request().Context(), caller, address, amount); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postFeeReserveTopUp(c echo.Context) error {
	caller, address, amount, err := bindTopUp(c)
	if err != nil {
		return err
	}
	if err := s.engine.TopUpFeeReserve(c.Request().Context(), caller, address, amount); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postCancel(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	var dto CancelDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	if dto.Caller == "" {
		return ErrCallerRequired
	}
	res, err := s.engine.Cancel(c.Request().Context(), dto.Caller, address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) postPause(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	var dto PauseDto
	if err := c.Bind(&dto); err != nil {
		return err
	}
	if dto.Caller == "" {
		return ErrCallerRequired
	}
	if err := s.engine.SetEmergencyPause(c.Request().Context(), dto.Caller, address, dto.Paused); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindTopUp(c echo.Context) (string, types.StreamAddress, math.Int, error) {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return "", "", math.Int{}, ErrAddressRequired
	}
	var dto TopUpDto
	if err := c.Bind(&dto); err != nil {
		return "", "", math.Int{}, err
	}
	if dto.Caller == "" {
		return "", "", math.Int{}, ErrCallerRequired
	}
	amount, ok := parseAmount(dto.Amount)
	if !ok {
		return "", "", math.Int{}, ErrInvalidAmount
	}
	return dto.Caller, address, amount, nil
}

func parseKind(kind string) (types.StreamKind, bool) {
	switch kind {
	case types.KindFixedRate.String():
		return types.KindFixedRate, true
	case types.KindUsdPegged.String():
		return types.KindUsdPegged, true
	default:
		return 0, false
	}
}

func parseAmount(value string) (math.Int, bool) {
	amount, ok := math.NewIntFromString(value)
	if !ok || !amount.IsPositive() {
		return math.Int{}, false
	}
	return amount, true
}

// parseOptionalAmount treats an empty string as absent.
func parseOptionalAmount(value string) (math.Int, error) {
	if value == "" {
		return math.Int{}, nil
	}
	amount, ok := math.NewIntFromString(value)
	if !ok {
		return math.Int{}, ErrInvalidAmount
	}
	return amount, nil
}

func decodeBlob(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

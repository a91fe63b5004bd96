package public

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/productscience/streampay/x/streampay/types"
)

func (s *Server) getStream(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	info, err := s.engine.GetStream(address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) getWithdrawable(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	amount, err := s.engine.WithdrawableAmount(address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, WithdrawableResponse{Address: address, Withdrawable: amount})
}

func (s *Server) getFeeReserve(c echo.Context) error {
	address := types.StreamAddress(c.Param("address"))
	if address == "" {
		return ErrAddressRequired
	}
	balance, err := s.engine.FeeReserveBalance(address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, FeeReserveResponse{Address: address, FeeReserve: balance})
}

func (s *Server) getOutgoingStreams(c echo.Context) error {
	account := c.Param("account")
	if account == "" {
		return ErrAccountRequired
	}
	return c.JSON(http.StatusOK, AccountStreamsResponse{
		Account: account,
		Streams: s.engine.SenderStreams(account),
	})
}

func (s *Server) getIncomingStreams(c echo.Context) error {
	account := c.Param("account")
	if account == "" {
		return ErrAccountRequired
	}
	return c.JSON(http.StatusOK, AccountStreamsResponse{
		Account: account,
		Streams: s.engine.RecipientStreams(account),
	})
}

func (s *Server) getNextStreamIndex(c echo.Context) error {
	account := c.Param("account")
	if account == "" {
		return ErrAccountRequired
	}
	index, err := s.engine.NextStreamIndex(account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NextIndexResponse{Account: account, NextIndex: index})
}

// getDerivedAddress predicts a stream address before creation.
func (s *Server) getDerivedAddress(c echo.Context) error {
	sender := c.QueryParam("sender")
	recipient := c.QueryParam("recipient")
	if sender == "" || recipient == "" {
		return ErrAccountRequired
	}
	index := uint64(0)
	if raw := c.QueryParam("index"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return ErrInvalidIndex
		}
		index = parsed
	}
	return c.JSON(http.StatusOK, AddressResponse{
		Address: s.engine.StreamAddress(sender, recipient, index),
	})
}

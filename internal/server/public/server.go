// Package public exposes the streampay engine over HTTP. Operations are
// POSTs under /v1/streams; queries are side-effect-free GETs.
package public

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/productscience/streampay/internal/server/middleware"
	"github.com/productscience/streampay/logging"
	"github.com/productscience/streampay/x/streampay/keeper"
)

type Server struct {
	e      *echo.Echo
	engine *keeper.Keeper
}

func NewServer(engine *keeper.Keeper) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.EngineErrorHandler
	e.Use(middleware.LoggingMiddleware)

	s := &Server{e: e, engine: engine}

	g := e.Group("/v1/")

	g.GET("status", s.getStatus)
	g.GET("stats", s.getStats)

	g.POST("accounts", s.postAccount)
	g.GET("accounts/:account/streams/outgoing", s.getOutgoingStreams)
	g.GET("accounts/:account/streams/incoming", s.getIncomingStreams)
	g.GET("accounts/:account/next-index", s.getNextStreamIndex)

	g.GET("streams/address", s.getDerivedAddress)
	g.POST("streams", s.postStream)
	g.GET("streams/:address", s.getStream)
	g.GET("streams/:address/withdrawable", s.getWithdrawable)
	g.GET("streams/:address/fee-reserve", s.getFeeReserve)
	g.POST("streams/:address/withdrawals", s.postWithdraw)
	g.POST("streams/:address/top-ups", s.postTopUp)
	g.POST("streams/:address/fee-reserve/top-ups", s.postFeeReserveTopUp)
	g.POST("streams/:address/cancel", s.postCancel)
	g.POST("streams/:address/pause", s.postPause)
	g.POST("streams/withdrawals", s.postBatchWithdraw)

	return s
}

func (s *Server) Start(addr string) error {
	logging.Info("starting public server", logging.Server, "addr", addr)
	return s.e.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.e.Close()
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (s *Server) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, StatsResponse{
		TotalStreamsCreated: s.engine.TotalStreamsCreated(),
		Params:              s.engine.GetParams(),
	})
}

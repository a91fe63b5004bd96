package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sdklog "cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/productscience/streampay/apiconfig"
	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/events"
	natsserver "github.com/productscience/streampay/internal/nats/server"
	"github.com/productscience/streampay/internal/server/public"
	"github.com/productscience/streampay/logging"
	"github.com/productscience/streampay/oracle"
	"github.com/productscience/streampay/store"
	"github.com/productscience/streampay/x/streampay/keeper"
	"github.com/productscience/streampay/x/streampay/types"
)

func main() {
	configPath := os.Getenv("STREAMPAY_CONFIG")
	if len(os.Args) >= 2 {
		configPath = os.Args[1]
	}

	cfg, err := apiconfig.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.Api.LogLevel))
	logging.Info("loaded configuration", logging.Config, "path", configPath)

	params := cfg.Engine.Params()
	if err := params.Validate(); err != nil {
		log.Fatalf("Invalid engine params: %v", err)
	}

	engineLogger := sdklog.NewLogger(os.Stdout)

	ledger := bank.NewLedger(engineLogger, bank.LogConfig{
		DoubleEntry: cfg.Bank.DoubleEntry,
		LogLevel:    cfg.Bank.LogLevel,
	})
	for account, denoms := range cfg.Bank.Genesis {
		for denom, amount := range denoms {
			ledger.Mint(account, denom, math.NewInt(amount))
		}
	}

	feeds := oracle.NewFeedTable(math.NewInt(cfg.Oracle.UpdateFee))

	ctx := context.Background()
	db := store.NewSqliteStore(store.SqliteConfig{Path: cfg.Store.SqlitePath})
	if err := db.Open(ctx); err != nil {
		log.Fatalf("Error opening sqlite store: %v", err)
	}
	defer db.Close()

	var emitter types.EventEmitter
	if cfg.Nats.Embedded {
		natssrv := natsserver.NewServer(cfg.Nats)
		if err := natssrv.Start(); err != nil {
			log.Fatalf("Error starting nats server: %v", err)
		}
		defer natssrv.Shutdown()
	}
	nc, err := events.ConnectToNats(cfg.Nats.Host, cfg.Nats.Port, "streampayd")
	if err != nil {
		log.Fatalf("Error connecting to nats: %v", err)
	}
	defer nc.Close()
	emitter = events.NewNatsEmitter(nc)

	engine := keeper.NewKeeper(engineLogger, params, ledger, feeds, emitter, db, nil)
	if err := engine.Load(ctx); err != nil {
		log.Fatalf("Error restoring engine state: %v", err)
	}

	srv := public.NewServer(engine)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Api.Port)); err != nil {
			logging.Error("public server stopped", logging.Server, "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logging.Info("shutting down", logging.System)
	_ = srv.Shutdown()
}

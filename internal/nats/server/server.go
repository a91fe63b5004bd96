// Package server runs the embedded NATS server that carries streampay
// event notifications when no external broker is configured.
package server

import (
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/pkg/errors"

	"github.com/productscience/streampay/apiconfig"
	"github.com/productscience/streampay/logging"
)

type NatsServer interface {
	Start() error
	Shutdown()
}

type server struct {
	conf apiconfig.NatsConfig
	ns   *natssrv.Server
}

func NewServer(config apiconfig.NatsConfig) NatsServer {
	return &server{conf: config}
}

func (s *server) Start() error {
	logging.Info("starting nats server", logging.Events, "host", s.conf.Host, "port", s.conf.Port)

	opts := &natssrv.Options{
		Host:      s.conf.Host,
		Port:      s.conf.Port,
		JetStream: true,
		StoreDir:  s.conf.StoreDir,
	}

	ns, err := natssrv.NewServer(opts)
	if err != nil {
		return errors.Wrap(err, "failed to create NATS server")
	}

	s.ns = ns
	go ns.Start()

	for i := 0; i < 3; i++ {
		time.Sleep(1 * time.Second)
		if ns.ReadyForConnections(2 * time.Second) {
			return nil
		}
	}
	return errors.New("NATS server not ready after 3 attempts")
}

func (s *server) Shutdown() {
	if s.ns != nil {
		s.ns.Shutdown()
	}
}

// Package events provides EventEmitter implementations for the streampay
// engine: a NATS JSON publisher for deployments and an in-memory recorder
// for tests.
package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/productscience/streampay/logging"
	"github.com/productscience/streampay/x/streampay/types"
)

const (
	SubjectPrefix = "streampay.events."

	DefaultHost = "0.0.0.0"
	DefaultPort = 4222
)

// ConnectToNats dials the NATS server with unbounded reconnects, so a sink
// outage never takes the engine down with it.
func ConnectToNats(host string, port int, name string) (*nats.Conn, error) {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return nats.Connect(
		"nats://"+host+":"+strconv.Itoa(port),
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// envelope wraps every published event with an id and publish timestamp.
type envelope struct {
	Id          string      `json:"id"`
	Type        string      `json:"type"`
	PublishedAt int64       `json:"published_at"`
	Payload     types.Event `json:"payload"`
}

// NatsEmitter publishes engine events as JSON on streampay.events.<type>.
// Emission is fire-and-forget: failures are logged and dropped.
type NatsEmitter struct {
	conn *nats.Conn
}

var _ types.EventEmitter = (*NatsEmitter)(nil)

func NewNatsEmitter(conn *nats.Conn) *NatsEmitter {
	return &NatsEmitter{conn: conn}
}

func (e *NatsEmitter) Emit(event types.Event) {
	body, err := json.Marshal(envelope{
		Id:          uuid.NewString(),
		Type:        event.EventType(),
		PublishedAt: time.Now().Unix(),
		Payload:     event,
	})
	if err != nil {
		logging.Error("failed to marshal event", logging.Events, "type", event.EventType(), "error", err)
		return
	}
	if err := e.conn.Publish(SubjectPrefix+event.EventType(), body); err != nil {
		logging.Error("failed to publish event", logging.Events, "type", event.EventType(), "error", err)
	}
}

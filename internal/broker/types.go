package broker

import (
	"context"
	"time"
)

// Message is one inbound broker delivery.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

type ConnState int

const (
	StateConnected ConnState = iota
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client is the broker connection collaborator. Deliveries arrive on
// Messages in broker order; connection transitions arrive on States.
// After the initial Connect succeeds the client reconnects on its own
// and re-subscribes, reporting each transition on States.
type Client interface {
	Connect(ctx context.Context) error
	Messages() <-chan Message
	States() <-chan ConnState
	Disconnect(quiesce time.Duration)
}

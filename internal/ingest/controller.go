// Package ingest owns the broker connection lifecycle and the single
// write path into the event store.
package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mqttlog/internal/broker"
	"mqttlog/internal/constants"
	"mqttlog/internal/event"
	"mqttlog/internal/logger"
	"mqttlog/internal/store"
	"mqttlog/pkg/metrics"
	"mqttlog/pkg/retry"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Controller consumes broker deliveries one at a time, in order, and
// appends each as an event record. It is the store's only writer, so
// appends need no locking. A failed append drops that one message and
// keeps the subscription alive (skip policy; see DESIGN.md).
type Controller struct {
	client broker.Client
	store  store.Store
	flood  *FloodDetector
	logger logger.Logger
	policy retry.Policy

	state atomic.Int32
}

func NewController(client broker.Client, st store.Store, flood *FloodDetector, log logger.Logger, policy retry.Policy) *Controller {
	return &Controller{
		client: client,
		store:  st,
		flood:  flood,
		logger: log,
		policy: policy,
	}
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	metrics.SetIngestState(int(s))
}

// Run drives the controller until ctx is cancelled, which is the only
// graceful exit path. The initial connection attempt is retried under
// the backoff policy; once established, reconnection is the broker
// client's job and arrives here as state notifications.
func (c *Controller) Run(ctx context.Context) error {
	c.setState(StateConnecting)

	err := retry.RetryNotify(ctx, c.policy, func() error {
		return c.client.Connect(ctx)
	}, func(err error, nextDelay time.Duration) {
		c.logger.Warnw("Broker connection attempt failed, retrying",
			"error", err,
			"next_delay", nextDelay,
		)
	})
	if err != nil {
		c.setState(StateTerminated)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil

		case state := <-c.client.States():
			c.handleConnState(state)

		case msg := <-c.client.Messages():
			c.process(msg)
			metrics.SetIngestQueueSize(len(c.client.Messages()))
		}
	}
}

func (c *Controller) handleConnState(state broker.ConnState) {
	switch state {
	case broker.StateConnected:
		c.setState(StateSubscribed)
		metrics.BrokerConnectsTotal.Inc()
		c.logger.Infow("Broker connection established")
	case broker.StateDisconnected:
		c.setState(StateConnecting)
		metrics.BrokerDisconnectsTotal.Inc()
		c.logger.Warnw("Broker connection lost, messages in flight are not recovered")
	}
}

// process records one delivery. The append runs on a detached timeout
// context so an in-progress write completes even while shutdown is
// being requested.
func (c *Controller) process(msg broker.Message) {
	receivedAt := time.Now()
	payload, binary, sender := event.Decode(msg.Payload)

	rec := &event.Record{
		Timestamp: receivedAt,
		Topic:     msg.Topic,
		Sender:    sender,
		Payload:   payload,
		Binary:    binary,
		QoS:       msg.QoS,
		Retained:  msg.Retained,
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.StoreAppendTimeout)
	defer cancel()

	start := time.Now()
	if _, err := c.store.Append(ctx, rec); err != nil {
		metrics.StoreWriteFailuresTotal.Inc()
		c.logger.Errorw("Dropping message, event store append failed",
			"topic", msg.Topic,
			"error", err,
		)
		return
	}
	metrics.ObserveStoreAppendDuration(time.Since(start))

	metrics.EventsIngestedTotal.Inc()
	metrics.EventsBytesTotal.Add(float64(len(msg.Payload)))
	if binary {
		metrics.EventsBinaryTotal.Inc()
	}
	if msg.Retained {
		metrics.EventsRetainedTotal.Inc()
	}

	if c.flood != nil {
		if count, alert := c.flood.Record(msg.Topic); alert {
			metrics.FloodAlertsTotal.Inc()
			c.logger.Warnw("Message flood detected",
				"topic", msg.Topic,
				"count", count,
				"window", c.flood.Window(),
			)
		}
	}

	c.logger.Debugw("Recorded event",
		"id", rec.ID,
		"topic", rec.Topic,
		"payload", truncate(rec.Payload, constants.LogPayloadTruncateLen),
	)
}

func (c *Controller) shutdown() {
	c.setState(StateShuttingDown)
	c.logger.Infow("Shutting down ingest controller")

	c.client.Disconnect(constants.DisconnectQuiesce)

	c.setState(StateTerminated)
	c.logger.Infow("Ingest controller stopped")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

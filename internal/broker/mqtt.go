package broker

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mqttlog/internal/config"
	"mqttlog/internal/constants"
	"mqttlog/internal/logger"
	apperrors "mqttlog/pkg/errors"
)

// PahoClient wraps the paho MQTT client behind the Client interface,
// turning its callback dispatch into ordered channels.
type PahoClient struct {
	cfg      config.BrokerConfig
	logger   logger.Logger
	client   mqtt.Client
	messages chan Message
	states   chan ConnState
}

func NewPahoClient(cfg config.BrokerConfig, log logger.Logger) *PahoClient {
	p := &PahoClient{
		cfg:      cfg,
		logger:   log,
		messages: make(chan Message, cfg.QueueSize),
		states:   make(chan ConnState, 16),
	}

	scheme := "tcp"
	var tlsConfig *tls.Config
	if cfg.TLS {
		scheme = "tls"
		tlsConfig = &tls.Config{}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetKeepAlive(cfg.KeepAliveSeconds * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.Reconnect.MaxInterval).
		SetConnectRetry(false).
		SetOrderMatters(true).
		SetCleanSession(true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect performs a single connection attempt; retry policy belongs to
// the caller. Reconnection after an established session is handled by
// the paho client itself.
func (p *PahoClient) Connect(ctx context.Context) error {
	token := p.client.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	}

	if err := token.Error(); err != nil {
		return apperrors.ErrConnection.WithCause(err)
	}
	return nil
}

func (p *PahoClient) Messages() <-chan Message {
	return p.messages
}

func (p *PahoClient) States() <-chan ConnState {
	return p.states
}

func (p *PahoClient) Disconnect(quiesce time.Duration) {
	p.client.Disconnect(uint(quiesce.Milliseconds()))
}

// onConnect runs on every (re)connection; the subscription does not
// survive a clean session, so it is re-issued each time. A connection
// without the subscription records nothing, so a failed subscribe is
// reported as a disconnect and retried until it lands or the
// connection drops.
func (p *PahoClient) onConnect(c mqtt.Client) {
	if err := p.subscribe(c); err != nil {
		p.logger.Errorw("Failed to subscribe after connect, retrying",
			"topic", constants.SubscribeAllTopics,
			"error", err,
		)
		p.notify(StateDisconnected)
		go p.resubscribe(c)
		return
	}

	p.logger.Infow("Subscribed to all application topics",
		"topic", constants.SubscribeAllTopics,
	)
	p.notify(StateConnected)
}

func (p *PahoClient) subscribe(c mqtt.Client) error {
	token := c.Subscribe(constants.SubscribeAllTopics, 0, p.handleMessage)
	token.Wait()
	return token.Error()
}

// resubscribe keeps retrying the wildcard subscription on a live
// connection. A connection loss ends the loop; the next onConnect
// starts over.
func (p *PahoClient) resubscribe(c mqtt.Client) {
	for c.IsConnected() {
		time.Sleep(p.cfg.Reconnect.InitialInterval)

		if !c.IsConnected() {
			return
		}
		if err := p.subscribe(c); err != nil {
			p.logger.Warnw("Subscribe retry failed",
				"topic", constants.SubscribeAllTopics,
				"error", err,
			)
			continue
		}

		p.logger.Infow("Subscribed to all application topics",
			"topic", constants.SubscribeAllTopics,
		)
		p.notify(StateConnected)
		return
	}
}

func (p *PahoClient) onConnectionLost(c mqtt.Client, err error) {
	p.logger.Warnw("Broker connection lost, reconnecting",
		"error", err,
	)
	p.notify(StateDisconnected)
}

// handleMessage blocks when the channel is full, which backpressures
// the paho delivery loop instead of dropping messages.
func (p *PahoClient) handleMessage(c mqtt.Client, m mqtt.Message) {
	p.messages <- Message{
		Topic:    m.Topic(),
		Payload:  m.Payload(),
		QoS:      m.Qos(),
		Retained: m.Retained(),
	}
}

func (p *PahoClient) notify(state ConnState) {
	select {
	case p.states <- state:
	default:
		p.logger.Warnw("Dropping connection state notification, channel full",
			"state", state.String(),
		)
	}
}

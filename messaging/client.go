package messaging

import (
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"maitred/config"
)

// DispatchFunc receives every inbound (topic, payload) pair. The client never
// interprets payload content.
type DispatchFunc func(topic string, payload []byte)

// MessageCallback is an optional per-subscription callback. It only sees
// messages whose topic exactly equals the subscribed topic.
type MessageCallback func(topic string, payload string)

// StateEmitter is notified on every connection state change.
type StateEmitter interface {
	EmitConnectionState(old, new ConnectionState)
}

// Client owns the lifecycle of the broker connection. The dining room keeps
// running whether or not the broker is reachable, so precondition failures on
// subscribe/publish log and return instead of erroring, and reconnection is
// automatic and unbounded.
type Client struct {
	mu       sync.RWMutex
	cfg      config.MessagingConfig
	conn     mqtt.Client
	state    ConnectionState
	dispatch DispatchFunc
	emitter  StateEmitter

	// newClient is a test hook; defaults to mqtt.NewClient.
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

// NewClient creates a broker client. dispatch receives all inbound messages
// and may be nil. emitter may be nil.
func NewClient(dispatch DispatchFunc, emitter StateEmitter) *Client {
	return &Client{
		state:     StateDisconnected,
		dispatch:  dispatch,
		emitter:   emitter,
		newClient: mqtt.NewClient,
	}
}

// Connect opens the broker transport with the given config and returns
// immediately; it does not block until the connection is up. Calling it while
// already connected is a warned no-op.
func (c *Client) Connect(cfg config.MessagingConfig) {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting || c.state == StateReconnecting {
		c.mu.Unlock()
		log.Printf("messaging: already connected to broker, ignoring connect")
		return
	}

	c.cfg = cfg
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "maitred_" + uuid.New().String()[:8]
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(cfg.CleanSession).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetReconnectingHandler(c.onReconnecting).
		SetDefaultPublishHandler(c.onMessage)

	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.ReconnectPeriod > 0 {
		opts.SetConnectRetryInterval(cfg.ReconnectPeriod)
		opts.SetMaxReconnectInterval(cfg.ReconnectPeriod)
	}
	if cfg.KeepAlive > 0 {
		opts.SetKeepAlive(cfg.KeepAlive)
	}
	if cfg.ProtocolVersion > 0 {
		opts.SetProtocolVersion(cfg.ProtocolVersion)
	}

	conn := c.newClient(opts)
	c.conn = conn
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	log.Printf("messaging: connecting to %s (client_id=%s)", cfg.BrokerURL(), clientID)
	conn.Connect()
}

func (c *Client) onConnect(_ mqtt.Client) {
	c.mu.Lock()
	c.setStateLocked(StateConnected)
	c.mu.Unlock()
	log.Printf("messaging: connected to broker")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.mu.Lock()
	// A user-initiated Disconnect also fires this; Closed is terminal.
	if c.state != StateClosed {
		c.setStateLocked(StateReconnecting)
	}
	c.mu.Unlock()
	log.Printf("messaging: connection lost: %v", err)
}

func (c *Client) onReconnecting(_ mqtt.Client, _ *mqtt.ClientOptions) {
	c.mu.Lock()
	if c.state != StateClosed {
		c.setStateLocked(StateReconnecting)
	}
	c.mu.Unlock()
	log.Printf("messaging: reconnecting to broker")
}

func (c *Client) onMessage(_ mqtt.Client, msg mqtt.Message) {
	c.mu.RLock()
	dispatch := c.dispatch
	c.mu.RUnlock()
	if dispatch != nil {
		dispatch(msg.Topic(), msg.Payload())
	}
}

// setStateLocked updates the state; callers hold c.mu.
func (c *Client) setStateLocked(next ConnectionState) {
	if c.state == next {
		return
	}
	old := c.state
	c.state = next
	if c.emitter != nil {
		go c.emitter.EmitConnectionState(old, next)
	}
}

// Subscribe registers interest in a topic. Logs and returns when not
// connected. The optional callback only receives messages matching the
// subscribed topic exactly; all messages also flow to the dispatch func.
func (c *Client) Subscribe(topic string, qos byte, callback MessageCallback) {
	c.mu.RLock()
	conn, state := c.conn, c.state
	c.mu.RUnlock()

	if conn == nil || state != StateConnected {
		log.Printf("messaging: not connected, cannot subscribe to %s", topic)
		return
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		c.onMessage(nil, msg)
		if callback != nil && msg.Topic() == topic {
			callback(msg.Topic(), string(msg.Payload()))
		}
	}

	token := conn.Subscribe(topic, qos, handler)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("messaging: subscribe %s: %v", topic, err)
		return
	}
	log.Printf("messaging: subscribed to %s (qos=%d)", topic, qos)
}

// SubscribeMany subscribes to each topic independently; one topic failing
// does not stop the rest.
func (c *Client) SubscribeMany(topics []string, qos byte) {
	for _, topic := range topics {
		c.Subscribe(topic, qos, nil)
	}
}

// Publish sends a message. Logs and returns when not connected.
func (c *Client) Publish(topic string, payload []byte, qos byte, retain bool) {
	c.mu.RLock()
	conn, state := c.conn, c.state
	c.mu.RUnlock()

	if conn == nil || state != StateConnected {
		log.Printf("messaging: not connected, cannot publish to %s", topic)
		return
	}

	token := conn.Publish(topic, qos, retain, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("messaging: publish %s: %v", topic, err)
		return
	}
	log.Printf("messaging: published %d bytes to %s", len(payload), topic)
}

// Unsubscribe removes interest in a topic. Attempted whenever a transport
// handle exists, regardless of tracked state.
func (c *Client) Unsubscribe(topic string) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		log.Printf("messaging: no client handle, cannot unsubscribe from %s", topic)
		return
	}

	token := conn.Unsubscribe(topic)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("messaging: unsubscribe %s: %v", topic, err)
		return
	}
	log.Printf("messaging: unsubscribed from %s", topic)
}

// Disconnect forcibly tears down the transport and discards the handle.
// Terminal and idempotent: calling it on a closed client is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if c.state != StateClosed {
			c.setStateLocked(StateClosed)
		}
		return
	}

	c.setStateLocked(StateClosed)
	c.conn.Disconnect(250)
	c.conn = nil
	log.Printf("messaging: disconnected from broker")
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the tracked state is Connected.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

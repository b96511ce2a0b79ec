package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"maitred/config"
	"maitred/store"
)

// Item is one line of a customer order.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Manager submits customer orders to the venue backend and tracks the
// in-flight order in the session. The robot's arrival announcement keys off
// the session flag this sets.
type Manager struct {
	db         *store.DB
	session    *Session
	emitter    EventEmitter
	orderURL   string
	httpClient *http.Client
}

// NewManager creates an order manager.
func NewManager(db *store.DB, session *Session, emitter EventEmitter, cfg *config.BackendConfig) *Manager {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Manager{
		db:         db,
		session:    session,
		emitter:    emitter,
		orderURL:   cfg.OrderURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Session returns the shared order session.
func (m *Manager) Session() *Session { return m.session }

// Submit posts the order to the backend, persists it, and marks the session
// as having an order in flight. The flag stays set until a caller clears it.
func (m *Manager) Submit(items []Item) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("submit order: empty cart")
	}

	orderUUID := uuid.New().String()
	payload, err := json.Marshal(map[string]any{
		"orderId": orderUUID,
		"items":   items,
	})
	if err != nil {
		return "", fmt.Errorf("submit order: marshal: %w", err)
	}

	resp, err := m.httpClient.Post(m.orderURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("submit order: backend HTTP %d", resp.StatusCode)
	}

	itemsJSON, _ := json.Marshal(items)
	if _, err := m.db.InsertOrder(orderUUID, string(itemsJSON)); err != nil {
		// The backend accepted the order; a failed audit row is logged, not fatal.
		log.Printf("orders: persist order %s: %v", orderUUID, err)
	}

	m.session.MarkSubmitted(orderUUID)
	if m.emitter != nil {
		m.emitter.EmitOrderSubmitted(orderUUID, len(items))
	}
	log.Printf("orders: submitted order %s (%d items)", orderUUID, len(items))
	return orderUUID, nil
}

// MarkDelivered closes out the in-flight order after the robot's delivery
// announcement; the next submission starts a new cycle.
func (m *Manager) MarkDelivered(orderUUID string) {
	if err := m.db.UpdateOrderStatus(orderUUID, "delivered"); err != nil {
		log.Printf("orders: mark delivered %s: %v", orderUUID, err)
	}
	m.session.Clear()
	if m.emitter != nil {
		m.emitter.EmitOrderDelivered(orderUUID)
	}
}

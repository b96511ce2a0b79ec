package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"maitred/config"
	"maitred/store"
)

func testManager(t *testing.T, handler http.HandlerFunc) (*Manager, *store.DB) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(db, NewSession(), nil, &config.BackendConfig{
		OrderURL:    srv.URL,
		HTTPTimeout: 5 * time.Second,
	})
	return m, db
}

func TestSubmitSetsSessionFlag(t *testing.T) {
	m, db := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OrderID string `json:"orderId"`
			Items   []Item `json:"items"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Items) != 2 {
			t.Errorf("items = %d, want 2", len(body.Items))
		}
		w.WriteHeader(http.StatusOK)
	})

	uuid, err := m.Submit([]Item{{Name: "Sushi", Quantity: 1}, {Name: "Beer", Quantity: 2}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !m.Session().Submitted() {
		t.Error("session flag not set after submit")
	}
	if m.Session().LastOrder() != uuid {
		t.Errorf("last order = %q, want %q", m.Session().LastOrder(), uuid)
	}

	o, err := db.GetOrder(uuid)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if o.Status != "submitted" {
		t.Errorf("status = %q, want submitted", o.Status)
	}
}

func TestSubmitBackendFailureLeavesFlagClear(t *testing.T) {
	m, _ := testManager(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	if _, err := m.Submit([]Item{{Name: "Pizza", Quantity: 1}}); err == nil {
		t.Fatal("expected error on backend failure")
	}
	if m.Session().Submitted() {
		t.Error("session flag set despite failed submit")
	}
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	m, _ := testManager(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := m.Submit(nil); err == nil {
		t.Fatal("expected error for empty cart")
	}
}

func TestMarkDeliveredClearsSession(t *testing.T) {
	m, db := testManager(t, func(w http.ResponseWriter, r *http.Request) {})

	uuid, err := m.Submit([]Item{{Name: "Salad", Quantity: 1}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.MarkDelivered(uuid)

	if m.Session().Submitted() {
		t.Error("session flag still set after delivery")
	}
	o, _ := db.GetOrder(uuid)
	if o.Status != "delivered" {
		t.Errorf("status = %q, want delivered", o.Status)
	}
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.MarkSubmitted("o")
			s.Clear()
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		s.Submitted()
	}
	<-done
}

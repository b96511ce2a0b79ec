package www

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"maitred/config"
	"maitred/engine"
	"maitred/store"
)

// fakeVendor answers the control API endpoints with success unless failAll.
type fakeVendor struct {
	failAll bool
	calls   int
}

func (v *fakeVendor) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.calls++
		w.Header().Set("Content-Type", "application/json")
		if v.failAll {
			json.NewEncoder(w).Encode(map[string]interface{}{"messageCode": 20001, "message": "robot offline"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"messageCode": 10000, "message": "success"})
	})
}

func newTestServer(t *testing.T, vendor *fakeVendor) (*httptest.Server, *engine.Engine) {
	t.Helper()

	vendorSrv := httptest.NewServer(vendor.handler())
	t.Cleanup(vendorSrv.Close)
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(backendSrv.Close)

	cfg := config.Defaults()
	cfg.Robot.ControlAPI.BaseURL = vendorSrv.URL
	cfg.Robot.ControlAPI.AppKey = "key"
	cfg.Robot.ControlAPI.AppToken = "token"
	cfg.Backend.OrderURL = backendSrv.URL

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(cfg, db)
	eng.Start()

	router, stop := NewRouter(eng)
	t.Cleanup(stop)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, eng
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestLoginBootstrapsFirstAdmin(t *testing.T) {
	srv, eng := newTestServer(t, &fakeVendor{})
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/login", map[string]string{"username": "admin", "password": "secret"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Created bool `json:"created"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if !body.Created {
		t.Error("first login should create the admin account")
	}

	n, err := eng.DB().CountAdminUsers()
	if err != nil || n != 1 {
		t.Errorf("admin users = %d (err %v), want 1", n, err)
	}

	// Second login with wrong password must fail, not create another account.
	resp2 := postJSON(t, newClient(t), srv.URL+"/login", map[string]string{"username": "admin", "password": "wrong"})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp2.StatusCode)
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, &fakeVendor{})
	c := newClient(t)

	resp, err := c.Get(srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	postJSON(t, c, srv.URL+"/login", map[string]string{"username": "admin", "password": "secret"}).Body.Close()

	resp, err = c.Get(srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}
}

func TestGuideCommandSuccess(t *testing.T) {
	vendor := &fakeVendor{}
	srv, _ := newTestServer(t, vendor)
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/robot/guide", map[string]string{"table": "3"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	// Guide is speak then move.
	if vendor.calls != 2 {
		t.Errorf("vendor calls = %d, want 2", vendor.calls)
	}
}

func TestGuideCommandVendorFailure(t *testing.T) {
	srv, _ := newTestServer(t, &fakeVendor{failAll: true})
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/robot/guide", map[string]string{"table": "3"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestSpeakRequiresText(t *testing.T) {
	srv, _ := newTestServer(t, &fakeVendor{})
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/robot/speak", map[string]string{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDetectionsListAndClear(t *testing.T) {
	srv, eng := newTestServer(t, &fakeVendor{})
	c := newClient(t)

	eng.Router().Dispatch("robot-open/acct/pub/data", []byte(`{"t":"1108","m":{},"id":"visitor-1"}`))

	resp, err := c.Get(srv.URL + "/api/detections")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var body struct {
		Count      int      `json:"count"`
		Detections []string `json:"detections"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body.Count != 1 || len(body.Detections) != 1 {
		t.Fatalf("got count=%d detections=%v, want one entry", body.Count, body.Detections)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/detections", nil)
	dresp, err := c.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	dresp.Body.Close()

	if eng.Router().DetectionCount() != 0 {
		t.Error("detections not cleared")
	}
}

func TestOrderSubmitAndStatus(t *testing.T) {
	srv, _ := newTestServer(t, &fakeVendor{})
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"name": "dumplings", "quantity": 2}},
	})
	var body struct {
		OrderUUID string `json:"order_uuid"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body.OrderUUID == "" {
		t.Fatalf("submit status = %d uuid = %q", resp.StatusCode, body.OrderUUID)
	}

	sresp, err := c.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	var status struct {
		OrderPending bool   `json:"order_pending"`
		BrokerState  string `json:"broker_state"`
	}
	json.NewDecoder(sresp.Body).Decode(&status)
	sresp.Body.Close()
	if !status.OrderPending {
		t.Error("order_pending = false after submit")
	}
	if status.BrokerState != "disconnected" {
		t.Errorf("broker_state = %q, want %q", status.BrokerState, "disconnected")
	}

	dresp := postJSON(t, c, srv.URL+"/api/orders/"+body.OrderUUID+"/delivered", nil)
	dresp.Body.Close()

	sresp2, err := c.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	json.NewDecoder(sresp2.Body).Decode(&status)
	sresp2.Body.Close()
	if status.OrderPending {
		t.Error("order_pending = true after delivery")
	}
}

package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"maitred/orders"
	"maitred/robot"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// robotErrorStatus maps a command failure to an HTTP status. Vendor-side
// rejections surface as 502 so the tablet can tell them apart from bad input.
func robotErrorStatus(err error) int {
	var re *robot.RemoteError
	var te *robot.TransportError
	if errors.As(err, &re) || errors.As(err, &te) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// --- Auth ---

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	db := h.engine.DB()

	// First login on a fresh install creates the admin account.
	if n, err := db.CountAdminUsers(); err == nil && n == 0 {
		hash, err := hashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		if err := db.CreateAdminUser(req.Username, hash); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Printf("www: created initial admin account %q", req.Username)
		h.sessions.setUser(w, r, req.Username)
		writeJSON(w, map[string]interface{}{"status": "ok", "created": true})
		return
	}

	user, err := db.GetAdminUser(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil || !checkPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.sessions.setUser(w, r, req.Username)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, r)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	username, ok := h.sessions.getUser(r)
	writeJSON(w, map[string]interface{}{"logged_in": ok, "username": username})
}

// --- Robot commands ---

func (h *Handlers) apiGuideToTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table   string `json:"table"`
		PointID string `json:"point_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc := h.engine.AppConfig().Robot
	if req.PointID == "" {
		req.PointID = rc.DiningPointID
	}

	if err := h.engine.Composer().GuideToTable(rc.SerialNumber, rc.MapID, req.PointID, req.Table); err != nil {
		writeError(w, robotErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiDeliverFood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table   string `json:"table"`
		PointID string `json:"point_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc := h.engine.AppConfig().Robot
	if req.PointID == "" {
		req.PointID = rc.DiningPointID
	}

	if err := h.engine.Composer().DeliverFood(rc.SerialNumber, rc.MapID, req.PointID, req.Table); err != nil {
		writeError(w, robotErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiReturnHome(w http.ResponseWriter, r *http.Request) {
	rc := h.engine.AppConfig().Robot
	if err := h.engine.Composer().ReturnHome(rc.SerialNumber, rc.MapID, rc.HomePointID); err != nil {
		writeError(w, robotErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiSpeak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	rc := h.engine.AppConfig().Robot
	if err := h.engine.Composer().Say(rc.SerialNumber, req.Text); err != nil {
		writeError(w, robotErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiWelcome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	rc := h.engine.AppConfig().Robot
	if err := h.engine.Composer().Welcome(rc.SerialNumber, req.Message); err != nil {
		writeError(w, robotErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// --- Detections ---

func (h *Handlers) apiListDetections(w http.ResponseWriter, r *http.Request) {
	rt := h.engine.Router()
	writeJSON(w, map[string]interface{}{
		"count":      rt.DetectionCount(),
		"detections": rt.Detections(),
	})
}

func (h *Handlers) apiClearDetections(w http.ResponseWriter, r *http.Request) {
	h.engine.Router().ClearDetections()
	writeJSON(w, map[string]string{"status": "ok"})
}

// --- Orders ---

func (h *Handlers) apiSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []orders.Item `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orderUUID, err := h.engine.OrderManager().Submit(req.Items)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "order_uuid": orderUUID})
}

func (h *Handlers) apiMarkDelivered(w http.ResponseWriter, r *http.Request) {
	orderUUID := chi.URLParam(r, "orderUUID")
	if orderUUID == "" {
		writeError(w, http.StatusBadRequest, "order UUID required")
		return
	}
	h.engine.OrderManager().MarkDelivered(orderUUID)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.DB().ListOrders(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, list)
}

// --- Status ---

func (h *Handlers) apiStatus(w http.ResponseWriter, r *http.Request) {
	rt := h.engine.Router()
	sess := h.engine.OrderManager().Session()
	writeJSON(w, map[string]interface{}{
		"serial":        h.engine.AppConfig().Robot.SerialNumber,
		"broker_state":  h.engine.Broker().State().String(),
		"order_pending": sess.Submitted(),
		"last_order":    sess.LastOrder(),
		"detections":    rt.DetectionCount(),
		"decode_errors": rt.DecodeErrors(),
	})
}

// --- Audit trails ---

func (h *Handlers) apiListRobotEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.engine.DB().ListRobotEvents(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, events)
}

func (h *Handlers) apiListCommands(w http.ResponseWriter, r *http.Request) {
	cmds, err := h.engine.DB().ListCommands(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, cmds)
}

// --- Config ---

func (h *Handlers) apiUpdateMessaging(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host           string `json:"host"`
		Port           int    `json:"port"`
		Scheme         string `json:"scheme"`
		ClientID       string `json:"client_id"`
		TelemetryTopic string `json:"telemetry_topic"`
		CommandTopic   string `json:"command_topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	cfg.Messaging.Host = req.Host
	cfg.Messaging.Port = req.Port
	cfg.Messaging.Scheme = req.Scheme
	cfg.Messaging.ClientID = req.ClientID
	cfg.Messaging.TelemetryTopic = req.TelemetryTopic
	cfg.Messaging.CommandTopic = req.CommandTopic
	cfg.Unlock()

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := h.sessions.getUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.engine.DB().GetAdminUser(username)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "user not found")
		return
	}

	if !checkPassword(req.OldPassword, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := h.engine.DB().UpdateAdminPassword(username, hash); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update password: %v", err))
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

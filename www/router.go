package www

import (
	"net/http"

	"maitred/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessionStore
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
// The API is consumed by the front-of-house tablet app; pages are served by
// that app, not by this process.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: NewEventHub(),
	}

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE (no auth — the tablet is on the venue LAN)
	r.Get("/events", h.eventHub.HandleSSE)

	// Login/logout
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSessionInfo)

	r.Route("/api", func(r chi.Router) {
		// Public API (tablet actions)
		r.Post("/robot/guide", h.apiGuideToTable)
		r.Post("/robot/deliver", h.apiDeliverFood)
		r.Post("/robot/return", h.apiReturnHome)
		r.Post("/robot/speak", h.apiSpeak)
		r.Post("/robot/welcome", h.apiWelcome)

		r.Get("/detections", h.apiListDetections)
		r.Delete("/detections", h.apiClearDetections)

		r.Post("/orders", h.apiSubmitOrder)
		r.Post("/orders/{orderUUID}/delivered", h.apiMarkDelivered)
		r.Get("/orders", h.apiListOrders)

		r.Get("/status", h.apiStatus)

		// Admin API (audit trails and config mutations)
		r.Group(func(r chi.Router) {
			r.Use(h.adminMiddleware)

			r.Get("/events", h.apiListRobotEvents)
			r.Get("/commands", h.apiListCommands)
			r.Put("/config/messaging", h.apiUpdateMessaging)
			r.Post("/config/password", h.apiChangePassword)
		})
	})

	return r, func() {
		h.eventHub.Stop()
	}
}

func (h *Handlers) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := h.sessions.getUser(r)
		if !ok || username == "" {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

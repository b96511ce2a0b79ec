package engine

import (
	"fmt"
	"log"

	"maitred/config"
	"maitred/messaging"
	"maitred/orders"
	"maitred/robot"
	"maitred/store"
	"maitred/telemetry"
)

// Engine centralizes the gateway's business logic and wires the subsystems:
// control API client, command composer, telemetry router, order manager,
// and the broker client.
type Engine struct {
	cfg     *config.Config
	cfgPath string
	db      *store.DB

	robotClient *robot.Client
	composer    *robot.Composer
	session     *orders.Session
	orderMgr    *orders.Manager
	router      *telemetry.Router
	broker      *messaging.Client

	Events *EventBus
}

// New creates an Engine. Call Start to wire event listeners.
func New(cfg *config.Config, db *store.DB) *Engine {
	e := &Engine{
		cfg:    cfg,
		db:     db,
		Events: NewEventBus(),
	}

	e.session = orders.NewSession()
	e.robotClient = robot.NewClient(&cfg.Robot.ControlAPI)
	e.composer = robot.NewComposer(e.robotClient, &sequenceEmitter{bus: e.Events})
	e.orderMgr = orders.NewManager(db, e.session, &orderEmitter{bus: e.Events}, &cfg.Backend)
	e.router = telemetry.NewRouter(
		e.session,
		e.composer,
		nil,
		&telemetryEmitter{bus: e.Events},
		cfg.Robot.SerialNumber,
		cfg.Robot.DiningPointLabel,
		robot.ArrivalPhrase,
	)
	e.broker = messaging.NewClient(e.router.Dispatch, &connectionEmitter{bus: e.Events})

	return e
}

// Start wires persistent event listeners.
func (e *Engine) Start() {
	e.wireAuditListeners()

	// Subscriptions are not replayed across reconnects, so redrive the
	// telemetry subscription every time the broker comes up.
	e.Events.SubscribeTypes(func(evt Event) {
		p, ok := evt.Payload.(ConnectionStateEvent)
		if !ok || p.New != messaging.StateConnected.String() {
			return
		}
		e.SubscribeTelemetry()
	}, EventConnectionState)

	log.Printf("engine: started venue=%s robot=%s", e.cfg.VenueID, e.cfg.Robot.SerialNumber)
}

// Stop tears down the broker connection.
func (e *Engine) Stop() {
	e.broker.Disconnect()
	log.Printf("engine: stopped")
}

// ConnectBroker fetches fresh broker credentials from the control API and
// connects with them. When the fetch fails, the statically configured
// credentials are used so a cached token still gets the venue online.
func (e *Engine) ConnectBroker() {
	creds, err := e.robotClient.FetchBrokerCredentials()
	if err != nil {
		log.Printf("engine: fetch broker credentials: %v (using configured credentials)", err)
	} else {
		m := &e.cfg.Messaging
		m.Host = creds.Host
		m.Port = creds.Port
		m.ClientID = creds.ClientID
		m.Username = creds.Username
		m.Password = creds.Token
		for _, r := range creds.Robots {
			if r.SerialNumber == e.cfg.Robot.SerialNumber && r.PubTopic != "" {
				m.TelemetryTopic = r.PubTopic
				m.CommandTopic = r.PostTopic
			}
		}
	}

	e.broker.Connect(e.cfg.Messaging)
}

// SubscribeTelemetry subscribes to the robot's telemetry topic.
func (e *Engine) SubscribeTelemetry() {
	topic := e.cfg.Messaging.TelemetryTopic
	if topic == "" {
		log.Printf("engine: no telemetry topic configured")
		return
	}
	e.broker.Subscribe(topic, 1, nil)
}

// wireAuditListeners persists telemetry and command lifecycles to the store.
func (e *Engine) wireAuditListeners() {
	e.Events.SubscribeTypes(func(evt Event) {
		switch p := evt.Payload.(type) {
		case DetectionEvent:
			e.audit("1108", fmt.Sprintf("visitor %s (total %d)", p.VisitorID, p.Total))
		case VoiceEvent:
			e.audit("1109", fmt.Sprintf("text=%q signal=%q", p.Text, p.Signal))
		case ArrivalEvent:
			e.audit("1204", fmt.Sprintf("point=%s label=%q announced=%v", p.PointID, p.PointName, p.Announced))
		}
	}, EventDetection, EventVoice, EventArrival)

	e.Events.SubscribeTypes(func(evt Event) {
		p, ok := evt.Payload.(SequenceEvent)
		if !ok {
			return
		}
		var err error
		switch evt.Type {
		case EventSequenceStarted:
			err = e.db.InsertCommandStart(p.SeqID, p.Sequence, p.Serial)
		case EventSequenceCompleted:
			err = e.db.MarkCommandCompleted(p.SeqID)
		case EventSequenceFailed:
			err = e.db.MarkCommandFailed(p.SeqID, p.Step, p.Error)
		}
		if err != nil {
			log.Printf("engine: command audit %s: %v", p.SeqID, err)
		}
	}, EventSequenceStarted, EventSequenceCompleted, EventSequenceFailed)
}

func (e *Engine) audit(tag, detail string) {
	if _, err := e.db.InsertRobotEvent(tag, e.cfg.Messaging.TelemetryTopic, detail); err != nil {
		log.Printf("engine: telemetry audit: %v", err)
	}
}

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// SetConfigPath records where the config file lives so handlers can save it.
func (e *Engine) SetConfigPath(path string) { e.cfgPath = path }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.cfgPath }

// Composer returns the robot command composer.
func (e *Engine) Composer() *robot.Composer { return e.composer }

// RobotClient returns the control API client.
func (e *Engine) RobotClient() *robot.Client { return e.robotClient }

// OrderManager returns the order manager.
func (e *Engine) OrderManager() *orders.Manager { return e.orderMgr }

// Router returns the telemetry router.
func (e *Engine) Router() *telemetry.Router { return e.router }

// Broker returns the broker client.
func (e *Engine) Broker() *messaging.Client { return e.broker }

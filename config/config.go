package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	VenueID      string `yaml:"venue_id"`
	DatabasePath string `yaml:"database_path"`

	Robot     RobotConfig     `yaml:"robot"`
	Messaging MessagingConfig `yaml:"messaging"`
	Backend   BackendConfig   `yaml:"backend"`
	Web       WebConfig       `yaml:"web"`
}

// RobotConfig defines the robot identity, map points, and control API access.
type RobotConfig struct {
	SerialNumber string `yaml:"serial_number"`
	MapID        string `yaml:"map_id"`

	HomePointID       string `yaml:"home_point_id"`
	KitchenPointID    string `yaml:"kitchen_point_id"`
	DiningPointID     string `yaml:"dining_point_id"`
	DiningPointLabel  string `yaml:"dining_point_label"`

	ControlAPI ControlAPIConfig `yaml:"control_api"`
}

// ControlAPIConfig defines the vendor control API endpoints and credentials.
// AppKey and AppToken may be overridden by the APPKEY / APPTOKEN environment
// variables, which is how the provisioning script passes them.
type ControlAPIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	MovePath    string        `yaml:"move_path"`
	SpeechPath  string        `yaml:"speech_path"`
	MQTTPath    string        `yaml:"mqtt_path"`
	AppKey      string        `yaml:"appkey"   env:"APPKEY"`
	AppToken    string        `yaml:"apptoken" env:"APPTOKEN"`
	Language    string        `yaml:"language"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// MessagingConfig defines the MQTT broker connection.
type MessagingConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Path            string        `yaml:"path"`
	Scheme          string        `yaml:"scheme"` // "tcp", "ssl", "ws" or "wss"
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	CleanSession    bool          `yaml:"clean_session"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReconnectPeriod time.Duration `yaml:"reconnect_period"`
	KeepAlive       time.Duration `yaml:"keep_alive"`
	ProtocolVersion uint          `yaml:"protocol_version"`

	// TelemetryTopic carries robot telemetry (robot-open/<account>/pub/data).
	// CommandTopic is the robot's inbound command topic (robot-topic/<account>/sub).
	TelemetryTopic string `yaml:"telemetry_topic"`
	CommandTopic   string `yaml:"command_topic"`
}

// BackendConfig defines the order backend used by the ordering UI.
type BackendConfig struct {
	OrderURL    string        `yaml:"order_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// WebConfig defines the operator web server settings.
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		VenueID:      "venue-1",
		DatabasePath: "maitred.db",
		Robot: RobotConfig{
			SerialNumber:     "PX6397",
			MapID:            "1",
			HomePointID:      "1",
			KitchenPointID:   "2",
			DiningPointID:    "3",
			DiningPointLabel: "dining-area",
			ControlAPI: ControlAPIConfig{
				BaseURL:     "http://s.padbot.cn:9080",
				MovePath:    "/cloud/openapinav/controlRobotMoveToTargetPoint.action",
				SpeechPath:  "/cloud/openapirobot/speechSynthesis.action",
				MQTTPath:    "/cloud/openapirobot/applyRobotMqttInfo.action",
				Language:    "zh-CN",
				HTTPTimeout: 10 * time.Second,
			},
		},
		Messaging: MessagingConfig{
			Host:            "localhost",
			Port:            1883,
			Path:            "/",
			Scheme:          "tcp",
			CleanSession:    true,
			ConnectTimeout:  30 * time.Second,
			ReconnectPeriod: 4 * time.Second,
			KeepAlive:       60 * time.Second,
			ProtocolVersion: 4,
		},
		Backend: BackendConfig{
			OrderURL:    "http://localhost:3000/orders",
			HTTPTimeout: 8 * time.Second,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
	}
}

// Load reads a YAML config file and applies environment overrides.
// If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Robot.ControlAPI); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BrokerURL builds the broker connection URL from scheme, host, port and path.
// The websocket schemes need the path; raw TCP ignores it.
func (m *MessagingConfig) BrokerURL() string {
	switch m.Scheme {
	case "ws", "wss":
		return fmt.Sprintf("%s://%s:%d%s", m.Scheme, m.Host, m.Port, m.Path)
	default:
		return fmt.Sprintf("%s://%s:%d", m.Scheme, m.Host, m.Port)
	}
}

// Lock acquires the config mutex for multi-step mutations.
func (c *Config) Lock() { c.mu.Lock() }

// Unlock releases the config mutex.
func (c *Config) Unlock() { c.mu.Unlock() }

package robot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"maitred/config"
)

// Client issues authenticated requests against the vendor control API.
// Every request body is {"system": {...}} plus the business parameters, with
// the signature covering the business parameters only.
type Client struct {
	baseURL    string
	movePath   string
	speechPath string
	mqttPath   string
	appKey     string
	appToken   string
	language   string
	httpClient *http.Client

	now func() time.Time // test hook
}

// NewClient creates a control API client from config.
func NewClient(cfg *config.ControlAPIConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		movePath:   cfg.MovePath,
		speechPath: cfg.SpeechPath,
		mqttPath:   cfg.MQTTPath,
		appKey:     cfg.AppKey,
		appToken:   cfg.AppToken,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// MoveToPoint commands the robot to navigate to a map point.
func (c *Client) MoveToPoint(serial, mapID, targetPointID string) error {
	params := map[string]string{
		"serialNumber":  serial,
		"mapId":         mapID,
		"targetPointId": targetPointID,
	}
	var resp Response
	return c.post("move", c.movePath, params, &resp)
}

// Speak requests text-to-speech on the robot. webURL optionally puts a page
// on the robot's screen and may be empty.
func (c *Client) Speak(serial, text, webURL string) error {
	params := map[string]string{
		"serialNumber":     serial,
		"synthesisContent": text,
	}
	if webURL != "" {
		params["webUrl"] = webURL
	}
	var resp Response
	return c.post("speak", c.speechPath, params, &resp)
}

// FetchBrokerCredentials requests time-limited MQTT credentials for listening
// to the robot's telemetry topics.
func (c *Client) FetchBrokerCredentials() (*BrokerCredentials, error) {
	var resp credentialsResponse
	if err := c.post("mqtt-credentials", c.mqttPath, map[string]string{}, &resp); err != nil {
		return nil, err
	}
	return &resp.BrokerCredentials, nil
}

// post signs the business parameters, wraps them in the system envelope, and
// decodes the vendor response into result (which must embed or be a Response).
func (c *Client) post(op, path string, businessParams map[string]string, result any) error {
	ts := c.now().Unix()
	body := map[string]any{
		"system": map[string]any{
			"time":     ts,
			"appkey":   c.appKey,
			"language": c.language,
			"sign":     Sign(businessParams, ts, c.appKey, c.appToken),
		},
	}
	for k, v := range businessParams {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("robot %s: marshal: %w", op, err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json; charset=UTF-8", bytes.NewReader(data))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &RemoteError{Op: op, Code: resp.StatusCode, Msg: string(raw)}
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("robot %s: decode: %w", op, err)
	}
	return checkResponse(op, responseOf(result))
}

func responseOf(result any) *Response {
	switch r := result.(type) {
	case *Response:
		return r
	case *credentialsResponse:
		return &r.Response
	default:
		return nil
	}
}

// checkResponse validates the vendor response envelope code.
func checkResponse(op string, r *Response) error {
	if r == nil {
		return nil
	}
	if r.MessageCode != codeOK {
		return &RemoteError{Op: op, Code: r.MessageCode, Msg: r.Message}
	}
	return nil
}

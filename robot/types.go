package robot

import "fmt"

// Success code returned by the vendor control API.
const codeOK = 10000

// Response is the common vendor response envelope.
type Response struct {
	MessageCode int    `json:"messageCode"`
	Message     string `json:"message"`
}

// BrokerCredentials is returned by the apply-MQTT-info endpoint. The token is
// time-limited; ExpireTime is epoch milliseconds.
type BrokerCredentials struct {
	Host       string           `json:"host"`
	Port       int              `json:"port"`
	ClientID   string           `json:"clientId"`
	Username   string           `json:"username"`
	Token      string           `json:"token"`
	ExpireTime int64            `json:"expireTime"`
	Robots     []RobotTopicInfo `json:"robotMqttInfoList"`
}

// RobotTopicInfo maps a robot serial to its broker topics.
// PubTopic carries robot telemetry; PostTopic accepts commands.
type RobotTopicInfo struct {
	SerialNumber string `json:"serialNumber"`
	PostTopic    string `json:"postTopic"`
	PubTopic     string `json:"pubTopic"`
	SubTopic     string `json:"subTopic"`
}

type credentialsResponse struct {
	Response
	BrokerCredentials
}

// TransportError wraps a network-level failure reaching the control API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("robot %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError reports a non-success status from the control API.
type RemoteError struct {
	Op   string
	Code int
	Msg  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("robot %s: remote code %d: %s", e.Op, e.Code, e.Msg)
}

// SequenceError reports which step of a composite command failed. The steps
// before it have already executed on the robot and are not rolled back.
type SequenceError struct {
	Sequence string
	Step     string
	Err      error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s: step %s: %v", e.Sequence, e.Step, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }

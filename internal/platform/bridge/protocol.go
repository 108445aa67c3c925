package bridge

import "encoding/json"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is the body posted to the remote endpoint.
type Request struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// Envelope is the remote endpoint's reply.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

package amqp

import (
	"encoding/json"
	"time"

	"paydash/internal/core"
)

// RenderCompletedMessage announces a finished render cycle. Failed renders
// are announced too, with their error kind.
type RenderCompletedMessage struct {
	RenderID   string    `json:"render_id"`
	Source     string    `json:"source"`
	Variant    string    `json:"variant"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Records    int       `json:"records"`
	Users      int       `json:"users"`
	DurationMS int64     `json:"duration_ms"`
	RenderedAt time.Time `json:"rendered_at"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRenderCompletedMessage(o core.RenderOutcome) *RenderCompletedMessage {
	return &RenderCompletedMessage{
		RenderID:   o.ID,
		Source:     o.Source,
		Variant:    o.Variant,
		Status:     string(o.Status),
		ErrorKind:  o.ErrorKind,
		Records:    o.Records,
		Users:      o.Users,
		DurationMS: o.Duration.Milliseconds(),
		RenderedAt: o.At,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RenderCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RenderCompletedMessageFromJSON decodes a message body.
func RenderCompletedMessageFromJSON(data []byte) (*RenderCompletedMessage, error) {
	var msg RenderCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

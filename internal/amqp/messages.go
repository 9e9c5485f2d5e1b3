package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportEventType is the message type of ExportEvent.
const ExportEventType = "export.generated"

// ExportEvent announces that a filtered export was downloaded. It carries the
// selection that produced the file, not the file itself.
type ExportEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Format     string    `json:"format"`
	Rows       int       `json:"rows"`
	Bytes      int       `json:"bytes"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Categories []string  `json:"categories"`
	Regions    []string  `json:"regions"`
	Compare    string    `json:"compare"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewExportEvent creates an event with a fresh id and the current time.
func NewExportEvent(format string, rows, size int) *ExportEvent {
	return &ExportEvent{
		ID:        uuid.NewString(),
		Type:      ExportEventType,
		Format:    format,
		Rows:      rows,
		Bytes:     size,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportEventFromJSON creates a message from JSON bytes
func ExportEventFromJSON(data []byte) (*ExportEvent, error) {
	var msg ExportEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

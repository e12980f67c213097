package events

import (
	"encoding/json"
	"time"
)

// Event types published after a successful write.
const (
	TypeMaintenanceRecorded = "maintenance.recorded"
	TypePreCheckSaved       = "precheck.saved"
)

// Event is the JSON envelope published to the message broker.
type Event struct {
	Type       string    `json:"type"`
	MachineID  string    `json:"machine_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// MaintenanceRecorded is the payload of a maintenance.recorded event.
type MaintenanceRecorded struct {
	ItemID                string `json:"item_id"`
	LastMaintenanceAtHour int    `json:"last_maintenance_at_hour"`
}

// PreCheckSaved is the payload of a precheck.saved event.
type PreCheckSaved struct {
	ID                string          `json:"id"`
	TotalHoursAtCheck int             `json:"total_hours_at_check"`
	Result            json.RawMessage `json:"result"`
}

// Encode serializes the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

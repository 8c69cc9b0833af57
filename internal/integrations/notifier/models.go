package notifier

import "time"

// EventType тип события аллокатора
type EventType string

const (
	EventAllocationCreated  EventType = "allocation.created"
	EventAllocationReleased EventType = "allocation.released"
)

// Event событие, публикуемое после успешной записи в хранилище
type Event struct {
	ID              string    `json:"event_id"`
	Type            EventType `json:"event_type"`
	StaffID         int64     `json:"staff_id"`
	Date            string    `json:"date"`       // YYYY-MM-DD
	StartTime       string    `json:"start_time"` // HH:MM
	EndTime         string    `json:"end_time"`   // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Slots           []string  `json:"slots"`
	OccurredAt      time.Time `json:"occurred_at"`
}

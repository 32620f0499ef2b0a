// Package analytics holds the usage-event tracker and the dashboard aggregator.
package analytics

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Event is ephemeral telemetry; it lives for the process lifetime only.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"eventType"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Tracker is an append-only in-memory event list.
type Tracker struct {
	mu     sync.Mutex
	events []Event

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Track appends a fire-and-forget event stamped with the current time.
func (t *Tracker) Track(eventType, userID string, data map[string]any) {
	t.Append(Event{Type: eventType, UserID: userID, Data: data})
}

// Append stores an event, assigning id and timestamp when absent, and returns
// the stored copy.
func (t *Tracker) Append(ev Event) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	ev.ID = "evt_" + uuid.Must(uuid.NewV4()).String()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = t.now()
	}
	t.events = append(t.events, ev)
	return ev
}

type EventFilter struct {
	Type   string
	UserID string
	Since  time.Time
	Until  time.Time
}

func (t *Tracker) Events(f EventFilter) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, 0, len(t.events))
	for _, ev := range t.events {
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if f.UserID != "" && ev.UserID != f.UserID {
			continue
		}
		if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && ev.Timestamp.After(f.Until) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

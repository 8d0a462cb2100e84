// Package store holds the in-memory per-asset calendar event list that feeds
// the layout engine and the reschedule controller. It is rebuilt wholesale on
// every fetch; a reschedule mutates a single event in place pending
// confirmation, with Snapshot/Restore backing the rollback path.
package store

import (
	"sync"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

type EventStore struct {
	mu      sync.RWMutex
	assetID string
	events  []models.CalendarEvent
}

func New(assetID string) *EventStore {
	return &EventStore{assetID: assetID}
}

func (s *EventStore) AssetID() string {
	return s.assetID
}

// Replace swaps in a freshly fetched event list.
func (s *EventStore) Replace(events []models.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]models.CalendarEvent(nil), events...)
}

func (s *EventStore) Insert(ev models.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of the current list in insertion order.
func (s *EventStore) Events() []models.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CalendarEvent(nil), s.events...)
}

func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *EventStore) Find(id string) (models.CalendarEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.CalendarEvent{}, false
}

// SetTimes mutates one event's start/end in place. Applying the same absolute
// times twice is a no-op by construction, which keeps commit replays safe.
func (s *EventStore) SetTimes(id string, start, end time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Start = start
			s.events[i].End = end
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the current state for rollback.
func (s *EventStore) Snapshot() []models.CalendarEvent {
	return s.Events()
}

// Restore replaces the state with a previously taken snapshot.
func (s *EventStore) Restore(snapshot []models.CalendarEvent) {
	s.Replace(snapshot)
}

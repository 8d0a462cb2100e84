// Package reschedule implements the drag-to-move interaction as an explicit
// state machine: Idle → Dragging → PendingConfirmation → Committing → Idle,
// with an optimistic store update and snapshot rollback on commit failure.
package reschedule

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/Ross1116/sitespace-app-sub000/internal/store"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhasePendingConfirmation
	PhaseCommitting
)

var (
	ErrNotIdle            = errors.New("another drag is already in progress")
	ErrNotDragging        = errors.New("no drag in progress")
	ErrNothingToConfirm   = errors.New("no reschedule awaiting confirmation")
	ErrCommitInFlight     = errors.New("a reschedule is still being saved")
	ErrEventNotFound      = errors.New("booking not found in this calendar")
	ErrAssetBlocked       = errors.New("asset is unavailable")
	ErrCrossDay           = errors.New("bookings cannot be moved to a different day")
	ErrOutsideHours       = errors.New("bookings must stay within business hours")
	ErrMaintenanceBlocked = errors.New("the new time falls inside a maintenance window")
)

// Committer persists a confirmed reschedule with the backend. The backend
// stays the final authority: a commit may fail server-side even after passing
// every client-side check, and that is an expected, recoverable outcome.
type Committer interface {
	CommitReschedule(ctx context.Context, bookingKey string, payload models.ReschedulePayload) error
}

// BlockChecker answers whether the owning asset is unavailable at an instant.
type BlockChecker func(at time.Time) bool

type Config struct {
	PixelsPerHour int // vertical pixels spanning one hour row
	SnapMinutes   int // snap increment for drag deltas
	StartHour     int // earliest allowed start, inclusive
	EndHour       int // latest allowed end, as an hour boundary
}

func DefaultConfig() Config {
	return Config{PixelsPerHour: 60, SnapMinutes: 30, StartHour: 6, EndHour: 20}
}

// Proposal is a validated candidate reschedule awaiting user confirmation.
type Proposal struct {
	EventID      string    `json:"event_id"`
	BookingKey   string    `json:"booking_key"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DeltaMinutes int       `json:"delta_minutes"`
}

// Controller drives drag gestures for one asset's event store. Pointer input
// arrives through Begin/Move/End callbacks so no pointer library leaks in;
// snapping and validation are pure functions of the accumulated delta.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	store     *store.EventStore
	blocked   BlockChecker
	committer Committer

	// onCommitted, when set, runs after a successful commit so the caller can
	// refresh the wider view.
	onCommitted func(models.CalendarEvent)

	phase    Phase
	eventID  string
	originY  float64
	lastY    float64
	proposal *Proposal
	closed   bool
}

func NewController(cfg Config, st *store.EventStore, blocked BlockChecker, committer Committer) *Controller {
	return &Controller{cfg: cfg, store: st, blocked: blocked, committer: committer}
}

func (c *Controller) SetCommittedHook(fn func(models.CalendarEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCommitted = fn
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Begin starts a drag on a positioned event tile. Collapsed summary tiles are
// not draggable because their ids are not distinct events in the store from
// the caller's point of view; a blocked asset disables dragging outright, and
// a drag is refused while a commit is outstanding.
func (c *Controller) Begin(eventID string, pointerY float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseCommitting {
		return ErrCommitInFlight
	}
	if c.phase != PhaseIdle {
		return ErrNotIdle
	}
	ev, ok := c.store.Find(eventID)
	if !ok {
		return ErrEventNotFound
	}
	if c.blocked != nil && c.blocked(ev.Start) {
		return ErrAssetBlocked
	}

	c.phase = PhaseDragging
	c.eventID = eventID
	c.originY = pointerY
	c.lastY = pointerY
	return nil
}

// Move accumulates pointer travel. Ignored outside a drag.
func (c *Controller) Move(pointerY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseDragging {
		c.lastY = pointerY
	}
}

// End releases the drag, converting the pixel delta to a snapped minute delta
// and validating the candidate times. A zero snap is a no-op returning (nil,
// nil). Validation failures return the controller to Idle without touching
// the store.
func (c *Controller) End(pointerY float64) (*Proposal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseDragging {
		return nil, ErrNotDragging
	}
	c.lastY = pointerY

	deltaMinutes := c.snap(c.lastY - c.originY)
	if deltaMinutes == 0 {
		c.reset()
		return nil, nil
	}

	ev, ok := c.store.Find(c.eventID)
	if !ok {
		c.reset()
		return nil, ErrEventNotFound
	}

	newStart := ev.Start.Add(time.Duration(deltaMinutes) * time.Minute)
	newEnd := ev.End.Add(time.Duration(deltaMinutes) * time.Minute)

	if err := c.validate(ev, newStart, newEnd); err != nil {
		c.reset()
		return nil, err
	}

	c.phase = PhasePendingConfirmation
	c.proposal = &Proposal{
		EventID:      ev.ID,
		BookingKey:   ev.BookingKey,
		Start:        newStart,
		End:          newEnd,
		DeltaMinutes: deltaMinutes,
	}
	p := *c.proposal
	return &p, nil
}

// snap converts pointer pixels to minutes and rounds half away from zero to
// the nearest snap increment, so +47min snaps to +60 and +44min to +30, with
// symmetric behavior for upward drags.
func (c *Controller) snap(deltaPx float64) int {
	minutes := deltaPx / float64(c.cfg.PixelsPerHour) * 60
	increments := math.Round(minutes / float64(c.cfg.SnapMinutes))
	return int(increments) * c.cfg.SnapMinutes
}

func (c *Controller) validate(ev models.CalendarEvent, newStart, newEnd time.Time) error {
	// 1. The event must stay on its original calendar day.
	if !sameDay(newStart, ev.Start) || !sameDay(newEnd, ev.Start) {
		return ErrCrossDay
	}

	// 2. Business-hours bounds.
	dayStart := time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(),
		c.cfg.StartHour, 0, 0, 0, ev.Start.Location())
	dayEnd := time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(),
		c.cfg.EndHour, 0, 0, 0, ev.Start.Location())
	if newStart.Before(dayStart) || newEnd.After(dayEnd) {
		return ErrOutsideHours
	}

	// 3. The new slot must not land inside a blocked window, checked at the
	// new start and one tick before the new end.
	if c.blocked != nil && (c.blocked(newStart) || c.blocked(newEnd.Add(-time.Minute))) {
		return ErrMaintenanceBlocked
	}
	return nil
}

// Cancel abandons a drag or a pending confirmation without changes.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseDragging || c.phase == PhasePendingConfirmation {
		c.reset()
	}
}

// Confirm applies the pending proposal optimistically, commits it to the
// backend, and reconciles: success keeps the optimistic update and fires the
// completion hook, failure restores the pre-drag snapshot. A commit resolving
// after Close is discarded silently either way.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhasePendingConfirmation || c.proposal == nil {
		c.mu.Unlock()
		return ErrNothingToConfirm
	}

	p := *c.proposal
	ev, ok := c.store.Find(p.EventID)
	if !ok {
		c.reset()
		c.mu.Unlock()
		return ErrEventNotFound
	}

	snapshot := c.store.Snapshot()
	c.store.SetTimes(p.EventID, p.Start, p.End)
	c.phase = PhaseCommitting

	payload := models.ReschedulePayload{
		BookingDate: p.Start.Format("2006-01-02"),
		StartTime:   p.Start.Format("15:04"),
		EndTime:     p.End.Format("15:04"),
		Purpose:     ev.Purpose,
		Notes:       ev.Notes,
	}
	hook := c.onCommitted
	c.mu.Unlock()

	err := c.committer.CommitReschedule(ctx, p.BookingKey, payload)

	c.mu.Lock()
	if c.closed {
		// The owning view is gone; neither the update nor a rollback may
		// touch the store, and no message surfaces.
		c.reset()
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.store.Restore(snapshot)
		c.reset()
		c.mu.Unlock()
		return fmt.Errorf("reschedule was not saved: %w", err)
	}
	c.reset()
	c.mu.Unlock()

	if hook != nil {
		if updated, ok := c.store.Find(p.EventID); ok {
			hook(updated)
		}
	}
	return nil
}

// Close marks the controller's view as torn down. In-flight commits resolve
// without mutating the store.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// reset must be called with the mutex held.
func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.eventID = ""
	c.originY = 0
	c.lastY = 0
	c.proposal = nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

package models

import "time"

// EventColor is the closed set of tile colors the day grid renders. Several
// statuses may share a color, so the raw status is kept alongside it.
type EventColor string

const (
	ColorAmber   EventColor = "amber"
	ColorSky     EventColor = "sky"
	ColorEmerald EventColor = "emerald"
	ColorSlate   EventColor = "slate"
	ColorRose    EventColor = "rose"
	ColorRed     EventColor = "red"
)

// Lowercase booking status strings as the backend reports them.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// CalendarEvent is the engine's canonical unit: one normalized booking on one
// asset's calendar. Events never reference sibling events.
type CalendarEvent struct {
	ID          string     `json:"id"`
	BookingKey  string     `json:"booking_key"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Color       EventColor `json:"color"`
	Status      string     `json:"status"`
	AssetID     string     `json:"asset_id"`
	AssetName   string     `json:"asset_name"`
	AssetCode   string     `json:"asset_code"`
	Purpose     string     `json:"purpose"`
	Notes       string     `json:"notes"`
}

// AssetCalendar is the ordered event collection for one asset. Event order is
// backend iteration order; the layout engine does its own time filtering.
type AssetCalendar struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Events []CalendarEvent `json:"events"`
}

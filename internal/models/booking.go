package models

import "time"

// Raw shapes as returned by the sitespace backend API. The scheduler does not
// own these records; fields mirror the backend's JSON and every record is
// normalized into a CalendarEvent before anything renders it.

type AssetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RawBooking struct {
	BookingKey string `json:"booking_key"`
	Status     string `json:"status"`
	Purpose    string `json:"purpose"`
	Notes      string `json:"notes"`

	// Either structured timestamps...
	StartAt string `json:"start_at,omitempty"`
	EndAt   string `json:"end_at,omitempty"`

	// ...or a date plus wall-clock times.
	BookingDate string `json:"booking_date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`

	// Some records carry the full asset object, others only the id.
	Asset   *AssetRef `json:"asset,omitempty"`
	AssetID string    `json:"asset_id,omitempty"`

	Manager       *PartyRef `json:"manager,omitempty"`
	Subcontractor *PartyRef `json:"subcontractor,omitempty"`
	Project       *PartyRef `json:"project,omitempty"`
}

// Asset is the backend's asset entity, consumed by the availability oracle.
type Asset struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Code                 string `json:"code"`
	Status               string `json:"status"`
	MaintenanceStartDate string `json:"maintenance_start_date,omitempty"`
	MaintenanceEndDate   string `json:"maintenance_end_date,omitempty"`
}

// ReschedulePayload is the body of the backend's reschedule call. Purpose and
// notes ride along unchanged so the backend does not blank them out.
type ReschedulePayload struct {
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose"`
	Notes       string `json:"notes"`
}

// BookingSnapshot is the local read-model row holding the last raw booking
// JSON fetched (or pushed over RabbitMQ) for a project. It lets the day view
// degrade to stale data when the backend is unreachable.
type BookingSnapshot struct {
	BookingKey string    `gorm:"primaryKey" json:"booking_key"`
	ProjectKey string    `gorm:"index;not null" json:"project_key"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	FetchedAt  time.Time `json:"fetched_at"`
}

package normalize

import (
	"strings"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
	"github.com/google/uuid"
)

// fallbackDuration is applied when an event's end is missing or does not
// follow its start.
const fallbackDuration = time.Hour

// urgencyMarkers in free-text notes force the red color regardless of status.
var urgencyMarkers = []string{"urgent", "emergency"}

var statusColors = map[string]models.EventColor{
	models.StatusPending:    models.ColorAmber,
	models.StatusConfirmed:  models.ColorSky,
	models.StatusInProgress: models.ColorEmerald,
	models.StatusCompleted:  models.ColorSlate,
	models.StatusCancelled:  models.ColorRose,
}

// timestampLayouts are tried in order for structured start/end fields.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize converts one raw backend booking into a CalendarEvent. It never
// fails: unparseable times default to now, missing display strings get
// fallback text. An event with no resolvable asset identity comes back with
// an empty AssetID and must be discarded by the grouper.
func Normalize(raw models.RawBooking, now time.Time, cache *NameCache) models.CalendarEvent {
	assetID, assetName, assetCode := resolveAsset(raw, cache)

	start, end := resolveTimes(raw, now)

	status := strings.ToLower(strings.TrimSpace(raw.Status))
	if status == "" {
		status = models.StatusPending
	}

	title := strings.TrimSpace(raw.Purpose)
	if title == "" {
		title = "Booking " + raw.BookingKey
	}
	description := strings.TrimSpace(raw.Notes)
	if description == "" {
		description = "Status: " + status
	}

	return models.CalendarEvent{
		ID:          raw.BookingKey,
		BookingKey:  raw.BookingKey,
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
		Color:       colorFor(status, raw.Notes),
		Status:      status,
		AssetID:     assetID,
		AssetName:   assetName,
		AssetCode:   assetCode,
		Purpose:     raw.Purpose,
		Notes:       raw.Notes,
	}
}

// NormalizeDraft converts creation-dialog output into events. The dialog may
// hand over a single partial booking or one per asset for multi-asset
// creation; each draft gets a synthesized id distinct from any booking key so
// it can live in a store before the backend assigns one.
func NormalizeDraft(drafts []models.RawBooking, now time.Time, cache *NameCache) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(drafts))
	for _, d := range drafts {
		ev := Normalize(d, now, cache)
		ev.ID = uuid.NewString()
		events = append(events, ev)
	}
	return events
}

// resolveAsset applies the identity fallback chain: nested asset object →
// flat asset id with cached name → code placeholder → id placeholder. The raw
// "unknown" is never surfaced.
func resolveAsset(raw models.RawBooking, cache *NameCache) (id, name, code string) {
	if raw.Asset != nil && raw.Asset.ID != "" {
		id = raw.Asset.ID
		name = strings.TrimSpace(raw.Asset.Name)
		code = raw.Asset.Code
	} else if raw.AssetID != "" {
		id = raw.AssetID
		if cached, ok := cache.Lookup(id); ok {
			name = cached
		}
	}
	if id == "" {
		return "", "", ""
	}

	if name == "" {
		if cached, ok := cache.Lookup(id); ok {
			name = cached
		}
	}
	if name == "" && code != "" {
		name = placeholderPrefix + code
	}
	if name == "" {
		name = placeholderPrefix + truncateID(id)
	}

	cache.Remember(id, name)
	return id, name, code
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTimes parses structured timestamps first, then a booking date
// combined with wall-clock times. Any parse failure defaults to now so a
// single malformed record cannot abort rendering of the rest of the day.
// End is clamped after start and clipped to the start day (multi-day events
// are not supported).
func resolveTimes(raw models.RawBooking, now time.Time) (time.Time, time.Time) {
	start, okStart := parseStamp(raw.StartAt)
	if !okStart {
		start, okStart = combineDateTime(raw.BookingDate, raw.StartTime)
	}
	if !okStart {
		start = now.Truncate(time.Hour)
	}

	end, okEnd := parseStamp(raw.EndAt)
	if !okEnd {
		end, okEnd = combineDateTime(raw.BookingDate, raw.EndTime)
	}
	if !okEnd || !end.After(start) {
		end = start.Add(fallbackDuration)
	}

	dayEnd := time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, 0, start.Location())
	if end.After(dayEnd) {
		end = dayEnd
	}
	return start, end
}

func parseStamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func combineDateTime(date, clock string) (time.Time, bool) {
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.Local), true
		}
	}
	return time.Time{}, false
}

func colorFor(status, notes string) models.EventColor {
	lower := strings.ToLower(notes)
	for _, marker := range urgencyMarkers {
		if strings.Contains(lower, marker) {
			return models.ColorRed
		}
	}
	if color, ok := statusColors[status]; ok {
		return color
	}
	return models.ColorSlate
}

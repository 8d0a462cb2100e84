package normalize

import (
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

// Group normalizes a raw booking list and buckets the events into one
// AssetCalendar per asset, in first-seen order. Events with no resolvable
// asset identity are silently dropped rather than grouped under a synthetic
// bucket, so column counts stay meaningful.
//
// A calendar's name self-heals: when a later event carries a real (non
// placeholder) name for an asset first seen through an id-only record, the
// calendar's own name field is upgraded in place.
func Group(raws []models.RawBooking, now time.Time, cache *NameCache) []*models.AssetCalendar {
	calendars := make(map[string]*models.AssetCalendar)
	var order []string

	for _, raw := range raws {
		ev := Normalize(raw, now, cache)
		if ev.AssetID == "" {
			continue
		}

		cal, ok := calendars[ev.AssetID]
		if !ok {
			cal = &models.AssetCalendar{ID: ev.AssetID, Name: ev.AssetName}
			calendars[ev.AssetID] = cal
			order = append(order, ev.AssetID)
		}
		if IsPlaceholderName(cal.Name) && !IsPlaceholderName(ev.AssetName) {
			cal.Name = ev.AssetName
		}
		cal.Events = append(cal.Events, ev)
	}

	out := make([]*models.AssetCalendar, 0, len(order))
	for _, id := range order {
		out = append(out, calendars[id])
	}
	return out
}

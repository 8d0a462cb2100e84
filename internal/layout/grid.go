// Package layout computes tile geometry for one asset's events inside a
// fixed-height hour grid: vertical placement from start/duration, horizontal
// lane assignment for pending requests competing for the same hour.
package layout

import (
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

// Config holds the grid's presentation constants. The collapse threshold and
// reserved gap are legibility choices inherited from the product, not hard
// domain limits, so everything here is tunable.
type Config struct {
	StartHour          int     // first displayed hour row, e.g. 6
	EndHour            int     // exclusive last hour, e.g. 20
	MinHeightPct       float64 // floor so very short bookings stay clickable
	ReservedGapPct     float64 // right-hand gap non-pending events shrink into
	PendingMinWidthPct float64 // floor for side-by-side pending tiles
	CollapseThreshold  int     // pending count per hour that collapses to one tile
}

func DefaultConfig() Config {
	return Config{
		StartHour:          6,
		EndHour:            20,
		MinHeightPct:       25,
		ReservedGapPct:     18,
		PendingMinWidthPct: 25,
		CollapseThreshold:  4,
	}
}

// Box positions a tile within its hour row: Top and Height are percentages
// of one row's height (Height exceeds 100 for multi-row events), Left and
// Width are percentages of the column width.
type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// Tile is one positioned event, or a collapsed summary standing in for a
// crowd of pending requests in one hour.
type Tile struct {
	EventID      string `json:"event_id"`
	HourRow      int    `json:"hour_row"`
	Box          Box    `json:"box"`
	Collapsed    bool   `json:"collapsed"`
	PendingCount int    `json:"pending_count,omitempty"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Rows returns the number of hour rows the grid displays.
func (e *Engine) Rows() int {
	return e.cfg.EndHour - e.cfg.StartHour
}

// Layout positions one asset's events for the displayed day. Events outside
// the day or outside business hours are filtered out. Within an hour, pending
// events keep their input order (backend return order) in the shared lane.
func (e *Engine) Layout(events []models.CalendarEvent, day time.Time) []Tile {
	type hourBucket struct {
		pending []models.CalendarEvent
		others  []models.CalendarEvent
	}
	buckets := make(map[int]*hourBucket)

	for _, ev := range events {
		if !sameDay(ev.Start, day) {
			continue
		}
		hour := ev.Start.Hour()
		if hour < e.cfg.StartHour || hour >= e.cfg.EndHour {
			continue
		}
		b, ok := buckets[hour]
		if !ok {
			b = &hourBucket{}
			buckets[hour] = b
		}
		if ev.Status == models.StatusPending {
			b.pending = append(b.pending, ev)
		} else {
			b.others = append(b.others, ev)
		}
	}

	laneWidth := 100 - e.cfg.ReservedGapPct

	var tiles []Tile
	for hour := e.cfg.StartHour; hour < e.cfg.EndHour; hour++ {
		b, ok := buckets[hour]
		if !ok {
			continue
		}
		row := hour - e.cfg.StartHour

		switch n := len(b.pending); {
		case n >= e.cfg.CollapseThreshold:
			// Too many slivers to read; one full-lane summary tile keyed by
			// the first pending event.
			tiles = append(tiles, Tile{
				EventID:      b.pending[0].ID,
				HourRow:      row,
				Box:          Box{Top: 0, Height: 100, Left: 0, Width: laneWidth},
				Collapsed:    true,
				PendingCount: n,
			})
		case n > 0:
			width := laneWidth / float64(n)
			if width < e.cfg.PendingMinWidthPct {
				width = e.cfg.PendingMinWidthPct
			}
			for i, ev := range b.pending {
				top, height := e.vertical(ev)
				left := float64(i) * width
				// When the min-width floor engages the naive offsets would run
				// past the lane into the reserved gap; later tiles overlap at
				// the lane's right edge instead.
				if left+width > laneWidth {
					left = laneWidth - width
				}
				tiles = append(tiles, Tile{
					EventID: ev.ID,
					HourRow: row,
					Box:     Box{Top: top, Height: height, Left: left, Width: width},
				})
			}
		}

		for _, ev := range b.others {
			top, height := e.vertical(ev)
			box := Box{Top: top, Height: height, Left: 0, Width: 100}
			if len(b.pending) > 0 {
				// Pending requests own the lane; confirmed work shrinks into
				// the reserved gap on the right.
				box.Left = laneWidth
				box.Width = e.cfg.ReservedGapPct
			}
			tiles = append(tiles, Tile{EventID: ev.ID, HourRow: row, Box: box})
		}
	}
	return tiles
}

// vertical returns the tile's offset and extent as percentages of one hour
// row: a 90-minute event gets Height 150 and spans into the next row.
func (e *Engine) vertical(ev models.CalendarEvent) (top, height float64) {
	top = float64(ev.Start.Minute()) / 60 * 100
	height = ev.End.Sub(ev.Start).Minutes() / 60 * 100
	if height < e.cfg.MinHeightPct {
		height = e.cfg.MinHeightPct
	}
	return top, height
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

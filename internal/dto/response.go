package dto

import (
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/reschedule"
	"github.com/Ross1116/sitespace-app-sub000/internal/service"
)

type DayViewResponse struct {
	Date      string                `json:"date"`
	StartHour int                   `json:"start_hour"`
	EndHour   int                   `json:"end_hour"`
	Columns   []service.AssetColumn `json:"columns"`
}

type RescheduleResponse struct {
	Moved        bool      `json:"moved"`
	EventID      string    `json:"event_id,omitempty"`
	BookingKey   string    `json:"booking_key,omitempty"`
	Start        time.Time `json:"start,omitempty"`
	End          time.Time `json:"end,omitempty"`
	DeltaMinutes int       `json:"delta_minutes,omitempty"`
}

type DraftResponse struct {
	Placed int `json:"placed"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToRescheduleResponse(p *reschedule.Proposal) RescheduleResponse {
	if p == nil {
		return RescheduleResponse{Moved: false}
	}
	return RescheduleResponse{
		Moved:        true,
		EventID:      p.EventID,
		BookingKey:   p.BookingKey,
		Start:        p.Start,
		End:          p.End,
		DeltaMinutes: p.DeltaMinutes,
	}
}

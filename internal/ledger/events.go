package ledger

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/starford/moodlog/internal/models"
)

// ToCalendarEvents maps each entry to an all-day calendar event, keeping
// order and length.
func ToCalendarEvents(l Ledger) []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(l))
	for i, e := range l {
		out[i] = models.CalendarEvent{
			Title:  e.Emoji,
			Start:  e.Date,
			AllDay: true,
			ExtendedProps: models.EventProps{
				Mood:      e.Mood,
				Timestamp: e.Timestamp,
			},
		}
	}
	return out
}

// EventsFromJSON projects an untrusted serialized ledger. Input that is not
// a JSON array of entries is reported once to logger and yields no events,
// so the calendar always has something to render.
func EventsFromJSON(raw []byte, logger *slog.Logger) []models.CalendarEvent {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.Warn("ledger: mood data is not an array", slog.String("value", preview(trimmed)))
		return []models.CalendarEvent{}
	}
	var l Ledger
	if err := json.Unmarshal(trimmed, &l); err != nil {
		logger.Warn("ledger: mood data is not an array of entries", slog.String("error", err.Error()))
		return []models.CalendarEvent{}
	}
	return ToCalendarEvents(l)
}

func preview(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/moodlog/internal/models"
)

// recordedLayout renders recording instants for people.
const recordedLayout = "Jan 2, 2006, 3:04:05 PM"

// Inspection is what the click-to-inspect dialog shows for one event.
type Inspection struct {
	Date        string `json:"date"`
	Emoji       string `json:"emoji"`
	Mood        string `json:"mood"`
	Label       string `json:"label"`
	Timestamp   string `json:"timestamp"`
	RecordedAt  string `json:"recorded_at"`
	RecordedAgo string `json:"recorded_ago,omitempty"`
	Message     string `json:"message"`
}

// Inspect builds the dialog content for ev. The message uses the label
// stored with the entry; Label is the calendar's display label.
func Inspect(ev models.CalendarEvent, moods models.MoodSet, loc *time.Location, now time.Time) Inspection {
	in := Inspection{
		Date:       ev.Start,
		Emoji:      ev.Title,
		Mood:       ev.ExtendedProps.Mood,
		Label:      moods.DisplayLabel(ev.Title, ev.ExtendedProps.Mood),
		Timestamp:  ev.ExtendedProps.Timestamp,
		RecordedAt: "Invalid Date",
	}
	if ts, err := parseTimestamp(ev.ExtendedProps.Timestamp); err == nil {
		in.RecordedAt = ts.In(loc).Format(recordedLayout)
		in.RecordedAgo = humanize.RelTime(ts, now, "ago", "from now")
	}
	in.Message = fmt.Sprintf("Mood: %s (%s)\nRecorded on: %s", in.Mood, in.Emoji, in.RecordedAt)
	return in
}

// Inspect returns the dialog content for the entry recorded on date.
func (s *Service) Inspect(ctx context.Context, date string) (Inspection, error) {
	e, err := s.Entry(ctx, date)
	if err != nil {
		return Inspection{}, err
	}
	ev := ToCalendarEvents(Ledger{e})[0]
	return Inspect(ev, s.moods, s.loc, s.now()), nil
}

func parseTimestamp(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

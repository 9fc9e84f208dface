// Package models defines the domain types for moodlog.
package models

// MoodEntry is a single day's recorded mood.
type MoodEntry struct {
	Date      string `json:"date"`      // YYYY-MM-DD in the recorder's local time
	Emoji     string `json:"emoji"`
	Mood      string `json:"mood"`      // label of Emoji at recording time
	Timestamp string `json:"timestamp"` // ISO-8601 instant
}

// CalendarEvent is the projection of a MoodEntry consumed by the calendar renderer.
type CalendarEvent struct {
	Title         string     `json:"title"`
	Start         string     `json:"start"`
	AllDay        bool       `json:"allDay"`
	ExtendedProps EventProps `json:"extendedProps"`
}

// EventProps carries entry fields the presentation layer shows on click.
type EventProps struct {
	Mood      string `json:"mood"`
	Timestamp string `json:"timestamp"`
}

// Mood pairs a selectable emoji with its label.
type Mood struct {
	Emoji string `json:"emoji" yaml:"emoji"`
	Label string `json:"label" yaml:"label"`
}

// MoodSet is the ordered enumeration of recognized moods.
type MoodSet []Mood

// DefaultMoods returns the built-in mood set in display order.
func DefaultMoods() MoodSet {
	return MoodSet{
		{Emoji: "😊", Label: "Happy"},
		{Emoji: "😢", Label: "Sad"},
		{Emoji: "😐", Label: "Neutral"},
		{Emoji: "🤩", Label: "Excited"},
		{Emoji: "😴", Label: "Tired"},
		{Emoji: "😠", Label: "Angry"},
		{Emoji: "😌", Label: "Relaxed"},
		{Emoji: "🤔", Label: "Thoughtful"},
	}
}

// Label returns the label for emoji and whether the emoji is in the set.
func (s MoodSet) Label(emoji string) (string, bool) {
	for _, m := range s {
		if m.Emoji == emoji {
			return m.Label, true
		}
	}
	return "", false
}

// Contains reports whether emoji is a recognized mood.
func (s MoodSet) Contains(emoji string) bool {
	_, ok := s.Label(emoji)
	return ok
}

// DisplayLabel picks the label shown next to an event: the current set's
// label first, then the label stored with the entry, then nothing.
func (s MoodSet) DisplayLabel(emoji, stored string) string {
	if label, ok := s.Label(emoji); ok && label != "" {
		return label
	}
	return stored
}

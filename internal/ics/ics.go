// Package ics renders mood calendar events as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-ical"

	"github.com/starford/moodlog/internal/models"
)

const (
	productID = "-//moodlog//Mood Calendar//EN"
	uidDomain = "moodlog.local"
	dayLayout = "2006-01-02"

	propCalendarName = "X-WR-CALNAME"
)

// Encode writes one all-day VEVENT per calendar event. Events whose start is
// not a YYYY-MM-DD date are skipped.
func Encode(w io.Writer, name string, events []models.CalendarEvent, moods models.MoodSet, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	if name != "" {
		// Clients expect a bare X-WR-CALNAME; SetText would add VALUE=TEXT.
		cal.Props.Set(&ical.Prop{Name: propCalendarName, Params: ical.Params{}, Value: escapeText(name)})
	}

	stamp := now.UTC()
	for _, ev := range events {
		start, err := time.Parse(dayLayout, ev.Start)
		if err != nil {
			continue
		}

		summary := ev.Title
		if label := moods.DisplayLabel(ev.Title, ev.ExtendedProps.Mood); label != "" {
			summary += " " + label
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", ev.Start, uidDomain))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDate(ical.PropDateTimeStart, start)
		event.Props.SetDate(ical.PropDateTimeEnd, start.AddDate(0, 0, 1))
		event.Props.SetText(ical.PropSummary, summary)
		if ev.ExtendedProps.Timestamp != "" {
			event.Props.SetText(ical.PropDescription, "Recorded at "+ev.ExtendedProps.Timestamp)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	// go-ical refuses a VCALENDAR without components.
	if len(cal.Children) == 0 {
		return writeEmpty(w, name)
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ics: encode: %w", err)
	}
	return nil
}

// writeEmpty writes a calendar with the header properties and no events.
func writeEmpty(w io.Writer, name string) error {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + escapeText(productID),
		"CALSCALE:GREGORIAN",
	}
	if name != "" {
		lines = append(lines, propCalendarName+":"+escapeText(name))
	}
	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, l := range lines {
		writeFolded(&b, l)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("ics: write: %w", err)
	}
	return nil
}

// writeFolded writes line, folded to 75 octets without splitting a rune.
func writeFolded(b *strings.Builder, line string) {
	const limit = 75
	n := 0
	for _, r := range line {
		size := utf8.RuneLen(r)
		if n+size > limit {
			b.WriteString("\r\n ")
			n = 1
		}
		b.WriteRune(r)
		n += size
	}
	b.WriteString("\r\n")
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// escapeText escapes a TEXT value (RFC 5545, section 3.3.11).
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

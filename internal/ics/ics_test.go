package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/starford/moodlog/internal/models"
)

func sampleEvents() []models.CalendarEvent {
	return []models.CalendarEvent{
		{Title: "😊", Start: "2024-01-01", AllDay: true,
			ExtendedProps: models.EventProps{Mood: "Happy", Timestamp: "2024-01-01T10:00:00.000Z"}},
		{Title: "🦄", Start: "2024-01-02", AllDay: true,
			ExtendedProps: models.EventProps{Mood: "Magical", Timestamp: "2024-01-02T10:00:00.000Z"}},
		{Title: "😐", Start: "not-a-date", AllDay: true},
	}
}

func TestEncode_AllDayEvents(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	if err := Encode(&buf, "My moods", sampleEvents(), models.DefaultMoods(), now); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"X-WR-CALNAME:My moods",
		"DTSTART;VALUE=DATE:20240101",
		"DTEND;VALUE=DATE:20240102",
		"UID:2024-01-01@moodlog.local",
		"SUMMARY:😊 Happy",
		"SUMMARY:🦄 Magical",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Errorf("expected 2 events (bad date skipped), got %d", strings.Count(out, "BEGIN:VEVENT"))
	}
}

func TestEncode_Decodes(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, "", sampleEvents()[:1], models.DefaultMoods(), time.Now()); err != nil {
		t.Fatal(err)
	}
	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	summary, err := events[0].Props.Text(ical.PropSummary)
	if err != nil || summary != "😊 Happy" {
		t.Errorf("summary = %q, %v", summary, err)
	}
}

func TestEncode_Empty(t *testing.T) {
	cases := map[string][]models.CalendarEvent{
		"no events":     nil,
		"all bad dates": {{Title: "😊", Start: "yesterday", AllDay: true}},
	}
	for name, events := range cases {
		var buf bytes.Buffer
		if err := Encode(&buf, "My moods, 2024", events, models.DefaultMoods(), time.Now()); err != nil {
			t.Fatalf("%s: Encode: %v", name, err)
		}
		want := "BEGIN:VCALENDAR\r\n" +
			"VERSION:2.0\r\n" +
			"PRODID:-//moodlog//Mood Calendar//EN\r\n" +
			"CALSCALE:GREGORIAN\r\n" +
			"X-WR-CALNAME:My moods\\, 2024\r\n" +
			"END:VCALENDAR\r\n"
		if got := buf.String(); got != want {
			t.Errorf("%s: output = %q, want %q", name, got, want)
		}
	}
}

func TestEncode_EmptyFoldsLongName(t *testing.T) {
	var buf bytes.Buffer
	name := strings.Repeat("😊", 30)
	if err := Encode(&buf, name, nil, models.DefaultMoods(), time.Now()); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Errorf("line has %d octets: %q", len(line), line)
		}
	}
	if !strings.Contains(buf.String(), "\r\n 😊") {
		t.Error("long name was not folded")
	}
}

func TestEncode_StampFromClock(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	if err := Encode(&buf, "", sampleEvents()[:1], models.DefaultMoods(), now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "DTSTAMP:20240103T110000Z") {
		t.Errorf("DTSTAMP not taken from clock:\n%s", buf.String())
	}
}

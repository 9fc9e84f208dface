// Package ledger maintains the one-entry-per-day mood ledger and mediates
// every read and write of it against a key-value store.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/kv"
	"github.com/starford/moodlog/internal/models"
)

const (
	// DefaultKey is the store key holding the serialized ledger.
	DefaultKey = "moodEntries"
	// DateLayout formats the per-day key.
	DateLayout = "2006-01-02"
	// TimestampLayout formats recording instants in UTC with milliseconds.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Ledger is the full collection of mood entries, at most one per date.
type Ledger []models.MoodEntry

// Find returns the entry recorded for date.
func (l Ledger) Find(date string) (models.MoodEntry, bool) {
	for _, e := range l {
		if e.Date == date {
			return e, true
		}
	}
	return models.MoodEntry{}, false
}

// Upsert returns a ledger with e replacing the entry of the same date in
// place, or appended when the date is new. l is not modified.
func (l Ledger) Upsert(e models.MoodEntry) Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	for i := range out {
		if out[i].Date == e.Date {
			out[i] = e
			return out
		}
	}
	return append(out, e)
}

// Service owns the ledger's persistence contract.
type Service struct {
	store  kv.Store
	key    string
	moods  models.MoodSet
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithKey overrides the store key.
func WithKey(key string) Option {
	return func(s *Service) { s.key = key }
}

// WithMoods overrides the enumerated mood set.
func WithMoods(moods models.MoodSet) Option {
	return func(s *Service) { s.moods = moods }
}

// WithLocation sets the location used to compute today's date key.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the diagnostic channel.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a ledger service over store.
func NewService(store kv.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		key:    DefaultKey,
		moods:  models.DefaultMoods(),
		loc:    time.Local,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Moods returns the enumerated mood set.
func (s *Service) Moods() models.MoodSet { return s.moods }

// Logger returns the diagnostic channel.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Location returns the location dates are computed in.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the date key for the current local day.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// CheckMood returns apperr.ErrUnknownMood when emoji is not in the mood set.
func (s *Service) CheckMood(emoji string) error {
	if !s.moods.Contains(emoji) {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownMood, emoji)
	}
	return nil
}

// Load reads the ledger from the store. It never fails: absent, corrupt or
// unreadable data yields an empty ledger.
func (s *Service) Load(ctx context.Context) Ledger {
	l, _ := s.load(ctx)
	return l
}

// load returns the decoded ledger and any store read error. Decode
// problems are reported to the diagnostic channel, not returned.
func (s *Service) load(ctx context.Context) (Ledger, error) {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return Ledger{}, nil
		}
		s.logger.Warn("ledger: read store failed",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return Ledger{}, err
	}
	return Decode(raw, s.logger), nil
}

// RecordMood records emoji as today's mood, replacing any entry already
// recorded today, and writes the full ledger back to the store.
//
// The ledger is re-read first so entries written by another process since
// the last load are kept. This narrows the lost-update window between two
// writers but does not close it.
//
// The returned ledger always reflects the update, even when the error is
// non-nil and the store was not written.
func (s *Service) RecordMood(ctx context.Context, emoji string) (Ledger, error) {
	_, l, err := s.RecordEntry(ctx, emoji)
	return l, err
}

// RecordEntry is RecordMood that also returns the entry it recorded, whose
// Date is the day the clock was read, not the day the call returned.
func (s *Service) RecordEntry(ctx context.Context, emoji string) (models.MoodEntry, Ledger, error) {
	current, readErr := s.load(ctx)

	now := s.now()
	label, _ := s.moods.Label(emoji)
	entry := models.MoodEntry{
		Date:      now.In(s.loc).Format(DateLayout),
		Emoji:     emoji,
		Mood:      label,
		Timestamp: now.UTC().Format(TimestampLayout),
	}
	updated := current.Upsert(entry)

	// Writing over a store we could not read would drop its entries.
	if readErr != nil {
		return entry, updated, fmt.Errorf("ledger: skip write after read failure: %w", readErr)
	}

	data, err := json.Marshal(updated)
	if err != nil {
		s.logger.Warn("ledger: encode failed", slog.String("error", err.Error()))
		return entry, updated, fmt.Errorf("ledger: encode: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("ledger: write store failed",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return entry, updated, fmt.Errorf("ledger: write: %w", err)
	}

	s.logger.Debug("ledger: recorded",
		slog.String("date", entry.Date),
		slog.String("emoji", entry.Emoji),
		slog.Int("entries", len(updated)))
	return entry, updated, nil
}

// Entry returns the entry recorded for date.
func (s *Service) Entry(ctx context.Context, date string) (models.MoodEntry, error) {
	if err := ValidateDate(date); err != nil {
		return models.MoodEntry{}, err
	}
	e, ok := s.Load(ctx).Find(date)
	if !ok {
		return models.MoodEntry{}, apperr.ErrNotFound
	}
	return e, nil
}

// ValidateDate checks that date is a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidDate, date)
	}
	return nil
}

// Decode parses a stored ledger value. Accepted shapes are a JSON array of
// entries and, for data written by older versions, a single entry object.
// Anything else is reported once to logger and decodes to an empty ledger.
func Decode(raw []byte, logger *slog.Logger) Ledger {
	if len(raw) == 0 {
		return Ledger{}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		logger.Warn("ledger: parse stored mood data failed", slog.String("error", "blank value"))
		return Ledger{}
	}
	switch trimmed[0] {
	case '[':
		var l Ledger
		if err := json.Unmarshal(trimmed, &l); err != nil {
			logger.Warn("ledger: parse stored mood data failed", slog.String("error", err.Error()))
			return Ledger{}
		}
		return l
	case '{':
		var e models.MoodEntry
		if err := json.Unmarshal(trimmed, &e); err != nil {
			logger.Warn("ledger: parse stored mood data failed", slog.String("error", err.Error()))
			return Ledger{}
		}
		return Ledger{e}
	}
	if !json.Valid(trimmed) {
		logger.Warn("ledger: parse stored mood data failed", slog.String("error", "invalid JSON"))
	} else {
		logger.Warn("ledger: stored mood data is not a collection", slog.String("value", string(trimmed)))
	}
	return Ledger{}
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/moodlog/internal/apperr"
	"github.com/starford/moodlog/internal/checksum"
	"github.com/starford/moodlog/internal/ics"
	"github.com/starford/moodlog/internal/ledger"
)

// Notifier is told about every successfully recorded mood.
type Notifier interface {
	PublishMoodRecorded(date, emoji string)
}

// Handler holds API route handlers.
type Handler struct {
	svc          *ledger.Service
	notifier     Notifier
	calendarName string
}

// NewHandler creates a new Handler. notifier may be nil.
func NewHandler(svc *ledger.Service, notifier Notifier, calendarName string) *Handler {
	return &Handler{svc: svc, notifier: notifier, calendarName: calendarName}
}

// ListMoods handles GET /api/moods.
//
//	@Summary		List selectable moods and today's selection
//	@Tags			moods
//	@Produce		json
//	@Success		200	{object}	MoodsResponse
//	@Security		BearerAuth
//	@Router			/moods [get]
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	today := h.svc.Today()
	resp := MoodsResponse{Moods: h.svc.Moods(), Today: today}
	if e, ok := h.svc.Load(r.Context()).Find(today); ok {
		resp.Selected = e.Emoji
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordToday handles POST /api/moods/today.
//
//	@Summary		Record today's mood, replacing any earlier one today
//	@Tags			moods
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordMoodRequest	true	"Mood to record"
//	@Success		200		{object}	RecordMoodResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/moods/today [post]
func (h *Handler) RecordToday(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	var req RecordMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	entry, l, err := h.svc.RecordEntry(r.Context(), req.Emoji)
	if err != nil {
		slog.Error("record mood failed", slog.String("emoji", req.Emoji), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("mood was not saved"))
		return
	}

	if h.notifier != nil {
		h.notifier.PublishMoodRecorded(entry.Date, entry.Emoji)
	}
	writeJSON(w, http.StatusOK, RecordMoodResponse{Today: entry.Date, Entry: entry, Ledger: l})
}

// GetLedger handles GET /api/ledger.
//
//	@Summary		Get every recorded mood entry
//	@Tags			ledger
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"ETag from a previous response"
//	@Success		200	{object}	LedgerResponse
//	@Success		304	"Not modified"
//	@Security		BearerAuth
//	@Router			/ledger [get]
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	resp := LedgerResponse{Entries: h.svc.Load(r.Context())}
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("encode ledger failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	etag := checksum.ETag(data)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListEvents handles GET /api/events.
//
//	@Summary		Calendar events, one all-day event per recorded day
//	@Tags			calendar
//	@Produce		json
//	@Success		200	{array}	models.CalendarEvent
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.ToCalendarEvents(h.svc.Load(r.Context())))
}

// InspectEntry handles GET /api/entries/{date}.
//
//	@Summary		Click-to-inspect details for one day
//	@Tags			calendar
//	@Produce		json
//	@Param			date	path		string	true	"Day as YYYY-MM-DD"
//	@Success		200		{object}	Inspection
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{date} [get]
func (h *Handler) InspectEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	in, err := h.svc.Inspect(r.Context(), date)
	switch {
	case errors.Is(err, apperr.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case err != nil:
		slog.Error("inspect entry failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	default:
		writeJSON(w, http.StatusOK, in)
	}
}

// ExportICS handles GET /api/calendar.ics.
//
//	@Summary		iCalendar feed of recorded moods
//	@Tags			calendar
//	@Produce		text/calendar
//	@Success		200
//	@Security		BearerAuth
//	@Router			/calendar.ics [get]
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	events := ledger.ToCalendarEvents(h.svc.Load(r.Context()))
	var buf bytes.Buffer
	if err := ics.Encode(&buf, h.calendarName, events, h.svc.Moods(), h.svc.Now()); err != nil {
		slog.Error("export ics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="moods.ics"`)
	_, _ = buf.WriteTo(w)
}

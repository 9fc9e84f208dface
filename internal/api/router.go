package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Moods.
	r.Get("/moods", h.ListMoods)
	r.Post("/moods/today", h.RecordToday)

	// Ledger.
	r.Get("/ledger", h.GetLedger)

	// Calendar.
	r.Get("/events", h.ListEvents)
	r.Get("/entries/{date}", h.InspectEntry)
	r.Get("/calendar.ics", h.ExportICS)

	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}

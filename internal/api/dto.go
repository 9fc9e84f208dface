package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/moodlog/internal/ledger"
	"github.com/starford/moodlog/internal/models"
)

// RecordMoodRequest is the request body for recording today's mood.
type RecordMoodRequest struct {
	Emoji string `json:"emoji" example:"😊" validate:"required"`
}

// Validate validates the request.
func (r *RecordMoodRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Emoji, validation.Required, validation.RuneLength(1, 16)),
	)
}

// RecordMoodResponse is returned after recording a mood.
type RecordMoodResponse struct {
	Today  string           `json:"today" example:"2024-01-01" validate:"required"`
	Entry  models.MoodEntry `json:"entry" validate:"required"`
	Ledger ledger.Ledger    `json:"ledger" validate:"required"`
}

// MoodsResponse lists the selectable moods in display order.
type MoodsResponse struct {
	Moods models.MoodSet `json:"moods" validate:"required"`
	Today string         `json:"today" example:"2024-01-01" validate:"required"`
	// Selected is the emoji recorded today, if any.
	Selected string `json:"selected,omitempty" example:"😊"`
}

// LedgerResponse wraps the full ledger.
type LedgerResponse struct {
	Entries ledger.Ledger `json:"entries" validate:"required"`
}

// Inspection is the click-to-inspect payload (aliased from the ledger layer).
type Inspection = ledger.Inspection

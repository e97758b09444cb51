package dto

import "github.com/noah-isme/academy-desk-api/internal/models"

// DraftResponse answers GET /drafts/admission. Found is false when the slot is empty or unreadable.
type DraftResponse struct {
	Found bool                  `json:"found"`
	Draft models.AdmissionDraft `json:"draft"`
}

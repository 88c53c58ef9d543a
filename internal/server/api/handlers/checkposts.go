package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// CheckpostHandler handles checkpost management API endpoints.
//
// Checkposts are created and deleted, never moved: reassigning a checkpost
// to another segment would silently re-scope its historical passages.
type CheckpostHandler struct {
	store store.CheckpostStore
}

// NewCheckpostHandler creates a new CheckpostHandler.
func NewCheckpostHandler(s store.CheckpostStore) *CheckpostHandler {
	return &CheckpostHandler{store: s}
}

// CreateCheckpostRequest is the request body for POST /api/v1/checkposts.
type CreateCheckpostRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name,omitempty"`
	SegmentID     string `json:"segment_id"`
	PositionIndex int    `json:"position_index"`
}

// Create handles POST /api/v1/checkposts.
// Creates a checkpost on a segment (admin only). A segment holds exactly two
// checkposts, one per position.
func (h *CheckpostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckpostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	checkpost := &models.Checkpost{
		Code:          req.Code,
		Name:          req.Name,
		SegmentID:     req.SegmentID,
		PositionIndex: req.PositionIndex,
	}
	if err := checkpost.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if _, err := h.store.CreateCheckpost(r.Context(), checkpost); err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONCreated(w, checkpost)
}

// List handles GET /api/v1/checkposts.
// Accepts an optional segment_id query parameter.
func (h *CheckpostHandler) List(w http.ResponseWriter, r *http.Request) {
	checkposts, err := h.store.ListCheckposts(r.Context(), r.URL.Query().Get("segment_id"))
	if err != nil {
		InternalServerError(w, "Failed to list checkposts")
		return
	}

	WriteJSONOK(w, checkposts)
}

// Get handles GET /api/v1/checkposts/{id}.
func (h *CheckpostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Checkpost ID is required")
		return
	}

	checkpost, err := h.store.GetCheckpost(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONOK(w, checkpost)
}

// Delete handles DELETE /api/v1/checkposts/{id}.
// Deletes a checkpost (admin only). Refused while passages reference it.
func (h *CheckpostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Checkpost ID is required")
		return
	}

	if err := h.store.DeleteCheckpost(r.Context(), id); err != nil {
		HandleStoreError(w, err)
		return
	}

	NoContent(w)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/internal/plate"
	"github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// ViolationHandler handles violation read endpoints. Violations are
// immutable: there are no write operations.
type ViolationHandler struct {
	store store.ViolationStore
}

// NewViolationHandler creates a new ViolationHandler.
func NewViolationHandler(s store.ViolationStore) *ViolationHandler {
	return &ViolationHandler{store: s}
}

// List handles GET /api/v1/violations.
// Rangers see only their own segment regardless of the requested filter.
func (h *ViolationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	filter, ok := parseViolationFilter(w, r)
	if !ok {
		return
	}
	if claims.IsRanger() {
		if claims.SegmentID == "" {
			Forbidden(w, "No checkpost assignment")
			return
		}
		filter.SegmentID = claims.SegmentID
	}

	violations, err := h.store.ListViolations(r.Context(), filter)
	if err != nil {
		InternalServerError(w, "Failed to list violations")
		return
	}

	WriteJSONOK(w, violations)
}

// Get handles GET /api/v1/violations/{id}.
func (h *ViolationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Violation ID is required")
		return
	}

	violation, err := h.store.GetViolation(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}
	if claims.IsRanger() && violation.SegmentID != claims.SegmentID {
		NotFound(w, "Violation not found")
		return
	}

	WriteJSONOK(w, violation)
}

// parseViolationFilter builds a ViolationFilter from query parameters.
func parseViolationFilter(w http.ResponseWriter, r *http.Request) (store.ViolationFilter, bool) {
	q := r.URL.Query()
	filter := store.ViolationFilter{
		SegmentID:   q.Get("segment_id"),
		PlateNumber: plate.Normalize(q.Get("plate")),
		Kind:        q.Get("kind"),
	}

	var ok bool
	if filter.Since, ok = parseTimeParam(w, q.Get("since"), "since"); !ok {
		return filter, false
	}
	if filter.Until, ok = parseTimeParam(w, q.Get("until"), "until"); !ok {
		return filter, false
	}
	if filter.Limit, ok = parseIntParam(w, q.Get("limit"), "limit"); !ok {
		return filter, false
	}
	if filter.Offset, ok = parseIntParam(w, q.Get("offset"), "offset"); !ok {
		return filter, false
	}

	return filter, true
}

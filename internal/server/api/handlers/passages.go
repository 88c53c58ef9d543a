package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/internal/plate"
	"github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// PassageHandler handles passage intake and query endpoints.
type PassageHandler struct {
	store   store.Store
	metrics Metrics
}

// NewPassageHandler creates a new PassageHandler. metrics may be nil.
func NewPassageHandler(s store.Store, metrics Metrics) *PassageHandler {
	return &PassageHandler{
		store:   s,
		metrics: metrics,
	}
}

// CreatePassageRequest is the request body for POST /api/v1/passages.
//
// The ranger identity is taken from the access token, never from the body.
// The segment is derived from the checkpost server-side.
type CreatePassageRequest struct {
	ClientID    string    `json:"client_id"`
	PlateNumber string    `json:"plate_number"`
	VehicleType string    `json:"vehicle_type"`
	CheckpostID string    `json:"checkpost_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
}

// IntakeResponse is the response body for POST /api/v1/passages.
// Duplicate submissions return the originally stored passage with
// Duplicate=true and status 200 instead of 201.
type IntakeResponse struct {
	Passage        *models.Passage   `json:"passage"`
	Duplicate      bool              `json:"duplicate"`
	Matched        bool              `json:"matched"`
	Violation      *models.Violation `json:"violation,omitempty"`
	ResolvedAlerts int               `json:"resolved_alerts,omitempty"`
}

// Create handles POST /api/v1/passages.
//
// Rangers may only submit for their assigned checkpost; admins may submit
// for any checkpost. Replays of a known client_id are absorbed: the original
// row comes back with 200 and no new state is written.
func (h *PassageHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req CreatePassageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.CheckpostID == "" {
		BadRequest(w, "checkpost_id is required")
		return
	}
	if claims.IsRanger() && req.CheckpostID != claims.CheckpostID {
		h.observe(models.SourceApp, "rejected", nil)
		Forbidden(w, "Checkpost does not match your assignment")
		return
	}

	checkpost, err := h.store.GetCheckpost(r.Context(), req.CheckpostID)
	if err != nil {
		if errors.Is(err, models.ErrCheckpostNotFound) {
			h.observe(models.SourceApp, "rejected", nil)
			BadRequest(w, "Unknown checkpost")
			return
		}
		InternalServerError(w, "Failed to resolve checkpost")
		return
	}

	passage := &models.Passage{
		ClientID:       req.ClientID,
		PlateNumber:    plate.Normalize(req.PlateNumber),
		PlateNumberRaw: req.PlateNumber,
		VehicleType:    req.VehicleType,
		CheckpostID:    checkpost.ID,
		SegmentID:      checkpost.SegmentID,
		RecordedAt:     req.RecordedAt,
		RangerID:       claims.UserID,
		Source:         string(models.SourceApp),
		PhotoRef:       req.PhotoRef,
	}
	if err := passage.Validate(); err != nil {
		h.observe(models.SourceApp, "rejected", nil)
		BadRequest(w, err.Error())
		return
	}

	result, err := h.store.InsertPassage(r.Context(), passage)
	if err != nil {
		if errors.Is(err, models.ErrFutureRecordedAt) {
			h.observe(models.SourceApp, "rejected", nil)
		}
		HandleStoreError(w, err)
		return
	}

	if result.Duplicate {
		h.observe(models.SourceApp, "duplicate", nil)
	} else {
		h.observe(models.SourceApp, "created", result)
	}

	response := IntakeResponse{
		Passage:        result.Passage,
		Duplicate:      result.Duplicate,
		Matched:        result.Matched,
		Violation:      result.Violation,
		ResolvedAlerts: result.ResolvedAlerts,
	}
	if result.Duplicate {
		WriteJSONOK(w, response)
		return
	}
	WriteJSONCreated(w, response)
}

// List handles GET /api/v1/passages.
// Rangers see only their own segment regardless of the requested filter.
func (h *PassageHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	filter, ok := parsePassageFilter(w, r)
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

	passages, err := h.store.ListPassages(r.Context(), filter)
	if err != nil {
		InternalServerError(w, "Failed to list passages")
		return
	}

	WriteJSONOK(w, passages)
}

// Pull handles GET /api/v1/passages/pull.
//
// Returns unmatched passages from the opposite checkpost of the caller's
// segment, newest first, bounded by the cutoff the agent computed from its
// lookback window. Ranger only; the checkpost comes from the token.
func (h *PassageHandler) Pull(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}
	if claims.CheckpostID == "" || claims.SegmentID == "" {
		Forbidden(w, "No checkpost assignment")
		return
	}

	cutoffParam := r.URL.Query().Get("cutoff")
	if cutoffParam == "" {
		BadRequest(w, "cutoff query parameter is required")
		return
	}
	cutoff, err := time.Parse(time.RFC3339, cutoffParam)
	if err != nil {
		BadRequest(w, "cutoff must be an RFC 3339 timestamp")
		return
	}

	limit := store.DefaultPullLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
	}

	passages, err := h.store.ListUnmatchedOpposite(r.Context(), claims.SegmentID, claims.CheckpostID, cutoff, limit)
	if err != nil {
		InternalServerError(w, "Failed to pull passages")
		return
	}

	WriteJSONOK(w, passages)
}

// Get handles GET /api/v1/passages/{id}.
// Rangers get 404 for passages outside their segment so IDs cannot be probed
// across segments.
func (h *PassageHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Passage ID is required")
		return
	}

	passage, err := h.store.GetPassage(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}
	if claims.IsRanger() && passage.SegmentID != claims.SegmentID {
		NotFound(w, "Passage not found")
		return
	}

	WriteJSONOK(w, passage)
}

// observe reports one HTTP intake outcome to the metrics sink.
func (h *PassageHandler) observe(source models.PassageSource, status string, result *store.InsertResult) {
	violationKind := ""
	matched := false
	resolved := 0
	if result != nil {
		matched = result.Matched
		resolved = result.ResolvedAlerts
		if result.Violation != nil {
			violationKind = result.Violation.Kind
		}
	}
	observeIntakeResult(h.metrics, string(source), status, matched, violationKind, resolved)
}

// parsePassageFilter builds a PassageFilter from query parameters. On a bad
// parameter it writes a 400 and returns ok=false.
func parsePassageFilter(w http.ResponseWriter, r *http.Request) (store.PassageFilter, bool) {
	q := r.URL.Query()
	filter := store.PassageFilter{
		SegmentID:   q.Get("segment_id"),
		CheckpostID: q.Get("checkpost_id"),
		PlateNumber: plate.Normalize(q.Get("plate")),
		Source:      q.Get("source"),
	}

	if v := q.Get("matched"); v != "" {
		matched, err := strconv.ParseBool(v)
		if err != nil {
			BadRequest(w, "matched must be true or false")
			return filter, false
		}
		filter.Matched = &matched
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

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(w http.ResponseWriter, value, name string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		BadRequest(w, name+" must be an RFC 3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

// parseIntParam parses an optional non-negative integer query parameter.
func parseIntParam(w http.ResponseWriter, value, name string) (int, bool) {
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		BadRequest(w, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// SegmentHandler handles segment management API endpoints.
type SegmentHandler struct {
	store store.SegmentStore
}

// NewSegmentHandler creates a new SegmentHandler.
func NewSegmentHandler(s store.SegmentStore) *SegmentHandler {
	return &SegmentHandler{store: s}
}

// CreateSegmentRequest is the request body for POST /api/v1/segments.
type CreateSegmentRequest struct {
	Name        string  `json:"name"`
	DistanceKm  float64 `json:"distance_km"`
	MaxSpeedKmh float64 `json:"max_speed_kmh"`
	MinSpeedKmh float64 `json:"min_speed_kmh"`
}

// UpdateSegmentRequest is the request body for PUT /api/v1/segments/{id}.
// Nil fields are left unchanged.
type UpdateSegmentRequest struct {
	Name        *string  `json:"name,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	MaxSpeedKmh *float64 `json:"max_speed_kmh,omitempty"`
	MinSpeedKmh *float64 `json:"min_speed_kmh,omitempty"`
}

// SegmentResponse is the response body for segment endpoints. The travel
// time bounds are derived server-side so clients never re-implement the
// threshold math.
type SegmentResponse struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	DistanceKm           float64            `json:"distance_km"`
	MaxSpeedKmh          float64            `json:"max_speed_kmh"`
	MinSpeedKmh          float64            `json:"min_speed_kmh"`
	MinTravelTimeMinutes float64            `json:"min_travel_time_minutes"`
	MaxTravelTimeMinutes float64            `json:"max_travel_time_minutes"`
	Checkposts           []models.Checkpost `json:"checkposts,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// Create handles POST /api/v1/segments.
// Creates a new segment (admin only).
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSegmentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	segment := &models.Segment{
		Name:        req.Name,
		DistanceKm:  req.DistanceKm,
		MaxSpeedKmh: req.MaxSpeedKmh,
		MinSpeedKmh: req.MinSpeedKmh,
	}
	if err := segment.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if _, err := h.store.CreateSegment(r.Context(), segment); err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONCreated(w, segmentToResponse(segment))
}

// List handles GET /api/v1/segments.
// Any authenticated user may list segments; agents cache the parameters for
// offline threshold math.
func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	segments, err := h.store.ListSegments(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list segments")
		return
	}

	response := make([]SegmentResponse, len(segments))
	for i, s := range segments {
		response[i] = segmentToResponse(s)
	}

	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/segments/{id}.
func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Segment ID is required")
		return
	}

	segment, err := h.store.GetSegment(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONOK(w, segmentToResponse(segment))
}

// Update handles PUT /api/v1/segments/{id}.
// Updates a segment (admin only). Threshold changes apply to future
// judgements only; stored violations keep their snapshots.
func (h *SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Segment ID is required")
		return
	}

	var req UpdateSegmentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	segment, err := h.store.GetSegment(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	if req.Name != nil {
		segment.Name = *req.Name
	}
	if req.DistanceKm != nil {
		segment.DistanceKm = *req.DistanceKm
	}
	if req.MaxSpeedKmh != nil {
		segment.MaxSpeedKmh = *req.MaxSpeedKmh
	}
	if req.MinSpeedKmh != nil {
		segment.MinSpeedKmh = *req.MinSpeedKmh
	}
	if err := segment.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.store.UpdateSegment(r.Context(), segment); err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONOK(w, segmentToResponse(segment))
}

// Delete handles DELETE /api/v1/segments/{id}.
// Deletes a segment and its checkposts (admin only). Refused while passages
// reference the segment.
func (h *SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Segment ID is required")
		return
	}

	if err := h.store.DeleteSegment(r.Context(), id); err != nil {
		HandleStoreError(w, err)
		return
	}

	NoContent(w)
}

// segmentToResponse converts a Segment to a SegmentResponse for API output.
func segmentToResponse(s *models.Segment) SegmentResponse {
	return SegmentResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		DistanceKm:           s.DistanceKm,
		MaxSpeedKmh:          s.MaxSpeedKmh,
		MinSpeedKmh:          s.MinSpeedKmh,
		MinTravelTimeMinutes: s.MinTravelTimeMinutes(),
		MaxTravelTimeMinutes: s.MaxTravelTimeMinutes(),
		Checkposts:           s.Checkposts,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/internal/plate"
	"github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// AlertHandler handles overstay alert endpoints.
type AlertHandler struct {
	store   store.AlertStore
	metrics Metrics
}

// NewAlertHandler creates a new AlertHandler. metrics may be nil.
func NewAlertHandler(s store.AlertStore, metrics Metrics) *AlertHandler {
	return &AlertHandler{
		store:   s,
		metrics: metrics,
	}
}

// List handles GET /api/v1/alerts.
// Rangers see only their own segment regardless of the requested filter.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	filter, ok := parseAlertFilter(w, r)
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

	alerts, err := h.store.ListOverstayAlerts(r.Context(), filter)
	if err != nil {
		InternalServerError(w, "Failed to list alerts")
		return
	}

	WriteJSONOK(w, alerts)
}

// Get handles GET /api/v1/alerts/{id}.
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Alert ID is required")
		return
	}

	alert, err := h.store.GetOverstayAlert(r.Context(), id)
	if err != nil {
		HandleStoreError(w, err)
		return
	}
	if claims.IsRanger() && alert.SegmentID != claims.SegmentID {
		NotFound(w, "Alert not found")
		return
	}

	WriteJSONOK(w, alert)
}

// Resolve handles POST /api/v1/alerts/{id}/resolve (admin only).
// Resolving an already-resolved alert is a no-op and returns the alert
// unchanged, so retried requests are harmless.
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Alert ID is required")
		return
	}

	alert, err := h.store.ResolveOverstayAlert(r.Context(), id, nil)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveAlertsResolved(1)
	}
	WriteJSONOK(w, alert)
}

// parseAlertFilter builds an AlertFilter from query parameters.
func parseAlertFilter(w http.ResponseWriter, r *http.Request) (store.AlertFilter, bool) {
	q := r.URL.Query()
	filter := store.AlertFilter{
		SegmentID:   q.Get("segment_id"),
		PlateNumber: plate.Normalize(q.Get("plate")),
	}

	if v := q.Get("resolved"); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			BadRequest(w, "resolved must be true or false")
			return filter, false
		}
		filter.Resolved = &resolved
	}

	var ok bool
	if filter.Limit, ok = parseIntParam(w, q.Get("limit"), "limit"); !ok {
		return filter, false
	}
	if filter.Offset, ok = parseIntParam(w, q.Get("offset"), "offset"); !ok {
		return filter, false
	}

	return filter, true
}

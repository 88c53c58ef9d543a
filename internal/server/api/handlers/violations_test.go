//go:build integration

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// seedSpeedingViolation inserts a matched pair that clears the segment in
// 30 minutes, well under the 67.5-minute floor, and returns the violation.
func seedSpeedingViolation(t *testing.T, s store.Store, segment *models.Segment, plate string) *models.Violation {
	t.Helper()

	entryAt := time.Now().UTC().Add(-2 * time.Hour)
	seedPassage(t, s, fmt.Sprintf("entry-%s", plate), plate, segment.Checkposts[0].ID, segment.ID, entryAt)
	seedPassage(t, s, fmt.Sprintf("exit-%s", plate), plate, segment.Checkposts[1].ID, segment.ID, entryAt.Add(30*time.Minute))

	violations, err := s.ListViolations(context.Background(), store.ViolationFilter{
		SegmentID:   segment.ID,
		PlateNumber: plate,
	})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, string(models.ViolationSpeeding), violations[0].Kind)
	return violations[0]
}

func violationRequest(method, id, query string) *http.Request {
	target := "/api/v1/violations"
	if id != "" {
		target += "/" + id
	}
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(method, target, nil)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestViolationHandler_List(t *testing.T) {
	s := newTestStore(t)
	jwtService := newTestJWTService(t)
	handler := NewViolationHandler(s)

	first := seedTestSegment(t, s, "Mugling")
	second := seedTestSegment(t, s, "Narayanghat")
	seedSpeedingViolation(t, s, first, "BA1PA1111")
	seedSpeedingViolation(t, s, second, "BA2PA2222")

	admin := seedTestUser(t, s, "admin", "admin-pass-123", "admin", "", true)
	ranger := seedTestUser(t, s, "ranger", "ranger-pass-123", "ranger", first.Checkposts[0].ID, true)

	t.Run("admin sees all segments", func(t *testing.T) {
		w := serveAuthed(t, jwtService, admin, "", handler.List, violationRequest(http.MethodGet, "", ""))
		require.Equal(t, http.StatusOK, w.Code)

		var violations []models.Violation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&violations))
		assert.Len(t, violations, 2)
	})

	t.Run("ranger is scoped to own segment", func(t *testing.T) {
		// A filter asking for the other segment is overridden, not honored.
		w := serveAuthed(t, jwtService, ranger, first.ID, handler.List, violationRequest(http.MethodGet, "", "segment_id="+second.ID))
		require.Equal(t, http.StatusOK, w.Code)

		var violations []models.Violation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&violations))
		require.Len(t, violations, 1)
		assert.Equal(t, first.ID, violations[0].SegmentID)
		assert.Equal(t, "BA1PA1111", violations[0].PlateNumber)
	})

	t.Run("ranger without a segment claim is refused", func(t *testing.T) {
		w := serveAuthed(t, jwtService, ranger, "", handler.List, violationRequest(http.MethodGet, "", ""))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("plate filter normalizes input", func(t *testing.T) {
		w := serveAuthed(t, jwtService, admin, "", handler.List, violationRequest(http.MethodGet, "", "plate=ba+2+pa+2222"))
		require.Equal(t, http.StatusOK, w.Code)

		var violations []models.Violation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&violations))
		require.Len(t, violations, 1)
		assert.Equal(t, "BA2PA2222", violations[0].PlateNumber)
	})

	t.Run("invalid since parameter", func(t *testing.T) {
		w := serveAuthed(t, jwtService, admin, "", handler.List, violationRequest(http.MethodGet, "", "since=yesterday"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestViolationHandler_Get(t *testing.T) {
	s := newTestStore(t)
	jwtService := newTestJWTService(t)
	handler := NewViolationHandler(s)

	first := seedTestSegment(t, s, "Mugling")
	second := seedTestSegment(t, s, "Narayanghat")
	ownViolation := seedSpeedingViolation(t, s, first, "BA1PA1111")
	otherViolation := seedSpeedingViolation(t, s, second, "BA2PA2222")

	admin := seedTestUser(t, s, "admin", "admin-pass-123", "admin", "", true)
	ranger := seedTestUser(t, s, "ranger", "ranger-pass-123", "ranger", first.Checkposts[0].ID, true)

	t.Run("ranger reads own segment violation", func(t *testing.T) {
		w := serveAuthed(t, jwtService, ranger, first.ID, handler.Get, violationRequest(http.MethodGet, ownViolation.ID, ""))
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Violation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, ownViolation.ID, got.ID)
		assert.Equal(t, string(models.ViolationSpeeding), got.Kind)
		assert.InDelta(t, 30, got.TravelTimeMinutes, 0.01)
		assert.InDelta(t, 90, got.CalculatedSpeedKmh, 0.01)
	})

	t.Run("cross-segment read is not found", func(t *testing.T) {
		w := serveAuthed(t, jwtService, ranger, first.ID, handler.Get, violationRequest(http.MethodGet, otherViolation.ID, ""))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin reads any segment", func(t *testing.T) {
		w := serveAuthed(t, jwtService, admin, "", handler.Get, violationRequest(http.MethodGet, otherViolation.ID, ""))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown violation", func(t *testing.T) {
		w := serveAuthed(t, jwtService, admin, "", handler.Get, violationRequest(http.MethodGet, "no-such-id", ""))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

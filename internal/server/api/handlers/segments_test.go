//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/pkg/server/store"
)

func setupSegmentTest(t *testing.T) (store.Store, *SegmentHandler) {
	t.Helper()
	s := newTestStore(t)
	return s, NewSegmentHandler(s)
}

func segmentRequest(method, id string, body any) *http.Request {
	var reqBody *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	target := "/api/v1/segments"
	if id != "" {
		target += "/" + id
	}
	req := httptest.NewRequest(method, target, reqBody)
	req.Header.Set("Content-Type", "application/json")

	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestSegmentHandler_Create(t *testing.T) {
	_, handler := setupSegmentTest(t)

	t.Run("valid segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, segmentRequest(http.MethodPost, "", CreateSegmentRequest{
			Name:        "Thankot-Naubise",
			DistanceKm:  45,
			MaxSpeedKmh: 40,
			MinSpeedKmh: 10,
		}))

		if w.Code != http.StatusCreated {
			t.Fatalf("Create() status = %d, want %d, body = %s", w.Code, http.StatusCreated, w.Body.String())
		}

		var resp SegmentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.ID == "" {
			t.Error("Expected segment ID to be set")
		}
		// 45 km at 40 km/h floor and 10 km/h ceiling.
		if resp.MinTravelTimeMinutes != 67.5 {
			t.Errorf("MinTravelTimeMinutes = %v, want 67.5", resp.MinTravelTimeMinutes)
		}
		if resp.MaxTravelTimeMinutes != 270 {
			t.Errorf("MaxTravelTimeMinutes = %v, want 270", resp.MaxTravelTimeMinutes)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, segmentRequest(http.MethodPost, "", CreateSegmentRequest{
			Name:        "Thankot-Naubise",
			DistanceKm:  30,
			MaxSpeedKmh: 50,
			MinSpeedKmh: 15,
		}))

		if w.Code != http.StatusConflict {
			t.Errorf("Create() status = %d, want %d", w.Code, http.StatusConflict)
		}
	})

	t.Run("min speed above max", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, segmentRequest(http.MethodPost, "", CreateSegmentRequest{
			Name:        "Backwards",
			DistanceKm:  45,
			MaxSpeedKmh: 10,
			MinSpeedKmh: 40,
		}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Create() status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, segmentRequest(http.MethodPost, "", CreateSegmentRequest{
			DistanceKm:  45,
			MaxSpeedKmh: 40,
			MinSpeedKmh: 10,
		}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Create() status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestSegmentHandler_Get(t *testing.T) {
	s, handler := setupSegmentTest(t)

	segment := seedTestSegment(t, s, "THK")

	t.Run("existing segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Get(w, segmentRequest(http.MethodGet, segment.ID, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Get() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
		}
		var resp SegmentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(resp.Checkposts) != 2 {
			t.Errorf("Get() returned %d checkposts, want 2", len(resp.Checkposts))
		}
		if resp.MinTravelTimeMinutes <= 0 || resp.MaxTravelTimeMinutes <= resp.MinTravelTimeMinutes {
			t.Errorf("derived travel window [%v, %v] is not sane", resp.MinTravelTimeMinutes, resp.MaxTravelTimeMinutes)
		}
	})

	t.Run("unknown segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Get(w, segmentRequest(http.MethodGet, "no-such-segment", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Get() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestSegmentHandler_Update(t *testing.T) {
	s, handler := setupSegmentTest(t)

	segment := seedTestSegment(t, s, "THK")
	floatPtr := func(f float64) *float64 { return &f }

	t.Run("tighten the speed envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Update(w, segmentRequest(http.MethodPut, segment.ID, UpdateSegmentRequest{
			MaxSpeedKmh: floatPtr(30),
		}))

		if w.Code != http.StatusOK {
			t.Fatalf("Update() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
		}
		var resp SegmentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		// 45 km at 30 km/h is 90 minutes.
		if resp.MinTravelTimeMinutes != 90 {
			t.Errorf("MinTravelTimeMinutes = %v, want 90", resp.MinTravelTimeMinutes)
		}
	})

	t.Run("envelope inversion is refused", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Update(w, segmentRequest(http.MethodPut, segment.ID, UpdateSegmentRequest{
			MinSpeedKmh: floatPtr(80),
		}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Update() status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Update(w, segmentRequest(http.MethodPut, "no-such-segment", UpdateSegmentRequest{
			MaxSpeedKmh: floatPtr(30),
		}))

		if w.Code != http.StatusNotFound {
			t.Errorf("Update() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestSegmentHandler_Delete(t *testing.T) {
	s, handler := setupSegmentTest(t)
	ctx := context.Background()

	t.Run("empty segment deletes with its checkposts", func(t *testing.T) {
		segment := seedTestSegment(t, s, "THK")

		w := httptest.NewRecorder()
		handler.Delete(w, segmentRequest(http.MethodDelete, segment.ID, nil))

		if w.Code != http.StatusNoContent {
			t.Fatalf("Delete() status = %d, want %d, body = %s", w.Code, http.StatusNoContent, w.Body.String())
		}
		if _, err := s.GetCheckpost(ctx, segment.Checkposts[0].ID); err == nil {
			t.Error("checkposts should be deleted with their segment")
		}
	})

	t.Run("segment with passages is refused", func(t *testing.T) {
		segment := seedTestSegment(t, s, "MGL")
		seedPassage(t, s, "anchor", "BA1PA1111", segment.Checkposts[0].ID, segment.ID, time.Now().Add(-time.Hour))

		w := httptest.NewRecorder()
		handler.Delete(w, segmentRequest(http.MethodDelete, segment.ID, nil))

		if w.Code != http.StatusConflict {
			t.Errorf("Delete() status = %d, want %d", w.Code, http.StatusConflict)
		}
	})

	t.Run("unknown segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Delete(w, segmentRequest(http.MethodDelete, "no-such-segment", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Delete() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

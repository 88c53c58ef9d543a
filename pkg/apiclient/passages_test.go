package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePassage(t *testing.T) {
	recordedAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/passages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req CreatePassageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "client-1", req.ClientID)
		assert.Equal(t, "BA 12 PA 3456", req.PlateNumber)
		assert.Equal(t, "cp-entry", req.CheckpostID)
		assert.True(t, recordedAt.Equal(req.RecordedAt))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(IntakeResponse{
			Passage: &Passage{ID: "p-1", ClientID: "client-1", PlateNumber: "BA12PA3456"},
			Matched: true,
			Violation: &Violation{
				ID:   "v-1",
				Kind: "speeding",
			},
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	resp, err := client.CreatePassage(&CreatePassageRequest{
		ClientID:    "client-1",
		PlateNumber: "BA 12 PA 3456",
		VehicleType: "car",
		CheckpostID: "cp-entry",
		RecordedAt:  recordedAt,
	})
	require.NoError(t, err)
	assert.False(t, resp.Duplicate)
	assert.True(t, resp.Matched)
	require.NotNil(t, resp.Violation)
	assert.Equal(t, "speeding", resp.Violation.Kind)
}

func TestCreatePassage_Duplicate(t *testing.T) {
	// A replay comes back 200 with the original passage; the caller treats
	// it as success.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(IntakeResponse{
			Passage:   &Passage{ID: "p-1", ClientID: "client-1"},
			Duplicate: true,
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.CreatePassage(&CreatePassageRequest{ClientID: "client-1"})
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, "p-1", resp.Passage.ID)
}

func TestListPassages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/passages", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "seg-1", q.Get("segment_id"))
		assert.Equal(t, "BA12PA3456", q.Get("plate"))
		assert.Equal(t, "false", q.Get("matched"))
		assert.Equal(t, "25", q.Get("limit"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]Passage{
			{ID: "p-1", PlateNumber: "BA12PA3456"},
			{ID: "p-2", PlateNumber: "BA12PA3456"},
		})
	}))
	defer server.Close()

	matched := false
	client := New(server.URL)
	passages, err := client.ListPassages(&PassageListOptions{
		SegmentID: "seg-1",
		Plate:     "BA12PA3456",
		Matched:   &matched,
		Limit:     25,
	})
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "p-1", passages[0].ID)
}

func TestListPassages_NilOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]Passage{})
	}))
	defer server.Close()

	client := New(server.URL)
	passages, err := client.ListPassages(nil)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestPullPassages(t *testing.T) {
	cutoff := time.Date(2025, 3, 14, 4, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/passages/pull", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, cutoff.Format(time.RFC3339), q.Get("cutoff"))
		assert.Equal(t, "500", q.Get("limit"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]Passage{{ID: "p-9", CheckpostID: "cp-exit"}})
	}))
	defer server.Close()

	client := New(server.URL)
	passages, err := client.PullPassages(cutoff, 500)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "cp-exit", passages[0].CheckpostID)
}

func TestGetPassage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":  "Not Found",
			"status": 404,
			"detail": "Passage not found",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetPassage("nope")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestPassage_IsMatched(t *testing.T) {
	matched := "p-2"
	assert.False(t, (&Passage{}).IsMatched())
	assert.True(t, (&Passage{MatchedPassageID: &matched}).IsMatched())
}

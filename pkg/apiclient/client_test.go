package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	// Trailing slashes are trimmed so path joins stay predictable
	for in, want := range map[string]string{
		"http://localhost:8080":  "http://localhost:8080",
		"http://localhost:8080/": "http://localhost:8080",
	} {
		assert.Equal(t, want, New(in).baseURL)
	}
}

func TestTokenHandling(t *testing.T) {
	base := New("http://gw.example.com")

	derived := base.WithToken("ranger-token")
	assert.Empty(t, base.token, "WithToken must not mutate the receiver")
	assert.Equal(t, "ranger-token", derived.token)
	assert.Equal(t, base.baseURL, derived.baseURL)

	base.SetToken("admin-token")
	assert.Equal(t, "admin-token", base.token)
}

func TestDoSendsJSONAndBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer ranger-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("ranger-token")

	var resp map[string]string
	err := client.do(http.MethodGet, "/test", nil, &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestDoEmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	// A 204 with a non-nil result must not error
	var resp map[string]string
	err := New(server.URL).do(http.MethodGet, "/test", nil, &resp)
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestDoWithProblemResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":   "about:blank",
			"title":  "Unauthorized",
			"status": 401,
			"detail": "Invalid credentials",
		})
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.do(http.MethodGet, "/test", nil, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Title)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
	assert.True(t, apiErr.IsAuthError())
	assert.True(t, apiErr.IsUnauthorized())
	assert.False(t, apiErr.IsForbidden())
}

func TestDoWithNonProblemErrorBody(t *testing.T) {
	// Proxies and load balancers answer with whatever they like
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.do(http.MethodGet, "/test", nil, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Title)
	assert.Contains(t, apiErr.Detail, "upstream unavailable")
	assert.True(t, apiErr.IsRetryable())
}

func TestPostRoundTripsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "BA1PA1234", req["plate"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "p-550"})
	}))
	defer server.Close()

	var resp map[string]string
	err := New(server.URL).post("/test", map[string]string{"plate": "BA1PA1234"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "p-550", resp["id"])
}

func TestIsRetryable(t *testing.T) {
	// Transport failures are always retryable
	client := New("http://127.0.0.1:1") // nothing listens here
	err := client.do(http.MethodGet, "/test", nil, nil)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	// Client errors are not
	assert.False(t, IsRetryable(&APIError{StatusCode: http.StatusBadRequest, Title: "Bad Request"}))
	assert.False(t, IsRetryable(&APIError{StatusCode: http.StatusForbidden, Title: "Forbidden"}))

	// Server errors are
	assert.True(t, IsRetryable(&APIError{StatusCode: http.StatusServiceUnavailable, Title: "Service Unavailable"}))

	assert.False(t, IsRetryable(nil))
}

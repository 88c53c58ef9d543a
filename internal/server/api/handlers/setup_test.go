//go:build integration

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatewatch/gatewatch/internal/server/api/auth"
	"github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

const testJWTSecret = "test-secret-key-that-is-at-least-32-characters-long"

// newTestStore creates an in-memory SQLite store for handler tests.
func newTestStore(t *testing.T) *store.GORMStore {
	t.Helper()
	s, err := store.New(&store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret: testJWTSecret,
		Issuer: "test",
	})
	if err != nil {
		t.Fatalf("failed to create JWT service: %v", err)
	}
	return svc
}

// seedTestSegment creates a segment with checkposts at both ends: 45 km,
// 40 km/h max, 10 km/h min (travel window 67.5 to 270 minutes). Checkpost
// codes are name-A and name-B. Returns the segment with checkposts loaded.
func seedTestSegment(t *testing.T, s store.Store, name string) *models.Segment {
	t.Helper()
	ctx := context.Background()

	segment := &models.Segment{
		Name:        name,
		DistanceKm:  45,
		MaxSpeedKmh: 40,
		MinSpeedKmh: 10,
	}
	if _, err := s.CreateSegment(ctx, segment); err != nil {
		t.Fatalf("failed to create segment: %v", err)
	}

	// Collected in position order so callers can index entry/exit directly.
	for i, suffix := range []string{"A", "B"} {
		cp := &models.Checkpost{
			Code:          name + "-" + suffix,
			Name:          "Gate " + suffix,
			SegmentID:     segment.ID,
			PositionIndex: i,
		}
		if _, err := s.CreateCheckpost(ctx, cp); err != nil {
			t.Fatalf("failed to create checkpost: %v", err)
		}
		segment.Checkposts = append(segment.Checkposts, *cp)
	}

	return segment
}

// seedTestUser creates a user. Disabled users are created active and then
// updated, since the Active column carries a GORM default of true.
func seedTestUser(t *testing.T, s store.Store, username, password, role, checkpostID string, active bool) *models.User {
	t.Helper()
	ctx := context.Background()

	hash, err := models.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CheckpostID:  checkpostID,
		Active:       true,
	}
	if _, err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	if !active {
		user.Active = false
		if err := s.UpdateUser(ctx, user); err != nil {
			t.Fatalf("failed to disable test user: %v", err)
		}
	}

	return user
}

// serveAuthed runs a handler behind JWTAuth with a freshly minted access
// token for the user, mirroring how the router mounts protected routes.
func serveAuthed(t *testing.T, jwtService *auth.JWTService, user *models.User, segmentID string, handlerFunc http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	tokenPair, err := jwtService.GenerateTokenPair(user, segmentID)
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenPair.AccessToken)

	w := httptest.NewRecorder()
	middleware.JWTAuth(jwtService)(handlerFunc).ServeHTTP(w, req)
	return w
}

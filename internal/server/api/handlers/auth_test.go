//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatewatch/gatewatch/internal/server/api/auth"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

func setupAuthTest(t *testing.T) (store.Store, *auth.JWTService, *AuthHandler) {
	t.Helper()
	s := newTestStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(s, jwtService)
	return s, jwtService, handler
}

func TestAuthHandler_Login(t *testing.T) {
	s, _, handler := setupAuthTest(t)

	segment := seedTestSegment(t, s, "THK")
	seedTestUser(t, s, "thapa_br", "password123", "ranger", segment.Checkposts[0].ID, true)

	tests := []struct {
		name       string
		body       LoginRequest
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       LoginRequest{Username: "thapa_br", Password: "password123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid password",
			body:       LoginRequest{Username: "thapa_br", Password: "wrongpassword"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-existent user",
			body:       LoginRequest{Username: "nonexistent", Password: "password123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing username",
			body:       LoginRequest{Password: "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing password",
			body:       LoginRequest{Username: "thapa_br"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Login() status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if resp.AccessToken == "" {
					t.Error("Expected access token to be set")
				}
				if resp.RefreshToken == "" {
					t.Error("Expected refresh token to be set")
				}
				if resp.User.Username != tt.body.Username {
					t.Errorf("Expected username %s, got %s", tt.body.Username, resp.User.Username)
				}
			}
		})
	}
}

func TestAuthHandler_Login_DisabledUser(t *testing.T) {
	s, _, handler := setupAuthTest(t)

	seedTestUser(t, s, "disableduser", "password123", "admin", "", false)

	body, _ := json.Marshal(LoginRequest{Username: "disableduser", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Login() status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// A ranger's access token must carry the checkpost and its segment so scoped
// endpoints can enforce the assignment without a store round trip.
func TestAuthHandler_Login_ClaimsCarryAssignment(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)

	segment := seedTestSegment(t, s, "THK")
	entry := segment.Checkposts[0]
	seedTestUser(t, s, "thapa_br", "password123", "ranger", entry.ID, true)

	body, _ := json.Marshal(LoginRequest{Username: "thapa_br", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Login() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Failed to validate issued access token: %v", err)
	}
	if claims.CheckpostID != entry.ID {
		t.Errorf("claims.CheckpostID = %q, want %q", claims.CheckpostID, entry.ID)
	}
	if claims.SegmentID != segment.ID {
		t.Errorf("claims.SegmentID = %q, want %q", claims.SegmentID, segment.ID)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)

	user := seedTestUser(t, s, "admin", "password123", "admin", "", true)

	tokenPair, err := jwtService.GenerateTokenPair(user, "")
	if err != nil {
		t.Fatalf("Failed to generate token pair: %v", err)
	}

	tests := []struct {
		name         string
		refreshToken string
		wantStatus   int
	}{
		{
			name:         "valid refresh token",
			refreshToken: tokenPair.RefreshToken,
			wantStatus:   http.StatusOK,
		},
		{
			name:         "invalid refresh token",
			refreshToken: "invalid-token",
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:         "empty refresh token",
			refreshToken: "",
			wantStatus:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(RefreshRequest{RefreshToken: tt.refreshToken})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Refresh(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Refresh() status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if resp.AccessToken == "" {
					t.Error("Expected new access token")
				}
			}
		})
	}
}

func TestAuthHandler_Refresh_DisabledUser(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)
	ctx := context.Background()

	user := seedTestUser(t, s, "admin", "password123", "admin", "", true)

	tokenPair, err := jwtService.GenerateTokenPair(user, "")
	if err != nil {
		t.Fatalf("Failed to generate token pair: %v", err)
	}

	user.Active = false
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("Failed to disable user: %v", err)
	}

	body, _ := json.Marshal(RefreshRequest{RefreshToken: tokenPair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Refresh() status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// Reassigning a ranger takes effect on the next refresh: the new token pair
// must snapshot the new checkpost and segment.
func TestAuthHandler_Refresh_PicksUpReassignment(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)
	ctx := context.Background()

	first := seedTestSegment(t, s, "THK")
	second := seedTestSegment(t, s, "MGL")
	user := seedTestUser(t, s, "thapa_br", "password123", "ranger", first.Checkposts[0].ID, true)

	tokenPair, err := jwtService.GenerateTokenPair(user, first.ID)
	if err != nil {
		t.Fatalf("Failed to generate token pair: %v", err)
	}

	user.CheckpostID = second.Checkposts[1].ID
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("Failed to reassign user: %v", err)
	}

	body, _ := json.Marshal(RefreshRequest{RefreshToken: tokenPair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Refresh() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Failed to validate refreshed access token: %v", err)
	}
	if claims.CheckpostID != second.Checkposts[1].ID {
		t.Errorf("claims.CheckpostID = %q, want %q", claims.CheckpostID, second.Checkposts[1].ID)
	}
	if claims.SegmentID != second.ID {
		t.Errorf("claims.SegmentID = %q, want %q", claims.SegmentID, second.ID)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	s, jwtService, handler := setupAuthTest(t)

	segment := seedTestSegment(t, s, "THK")
	user := seedTestUser(t, s, "thapa_br", "password123", "ranger", segment.Checkposts[0].ID, true)

	t.Run("authenticated user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := serveAuthed(t, jwtService, user, segment.ID, handler.Me, req)

		if w.Code != http.StatusOK {
			t.Errorf("Me() status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp UserResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.Username != "thapa_br" {
			t.Errorf("Me() username = %s, want thapa_br", resp.Username)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := httptest.NewRecorder()

		handler.Me(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Me() status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

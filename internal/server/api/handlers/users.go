package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatewatch/gatewatch/internal/server/api/middleware"
	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// UserHandler handles user management API endpoints.
type UserHandler struct {
	store store.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// CreateUserRequest is the request body for POST /api/v1/users.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role,omitempty"`
	CheckpostID string `json:"checkpost_id,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

// UpdateUserRequest is the request body for PUT /api/v1/users/{username}.
// Nil fields are left unchanged. Setting Password resets the user's password.
type UpdateUserRequest struct {
	Password    *string `json:"password,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Role        *string `json:"role,omitempty"`
	CheckpostID *string `json:"checkpost_id,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// ChangePasswordRequest is the request body for POST /api/v1/users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Create handles POST /api/v1/users.
// Creates a new ranger or admin account (admin only).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" {
		BadRequest(w, "Username is required")
		return
	}
	if req.Password == "" {
		BadRequest(w, "Password is required")
		return
	}

	role := string(models.RoleRanger)
	if req.Role != "" {
		role = req.Role
	}

	user := &models.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        role,
		CheckpostID: req.CheckpostID,
		Active:      true,
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := user.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}
	if !h.checkpostExists(w, r, user.CheckpostID) {
		return
	}

	passwordHash, err := models.HashPassword(req.Password)
	if err != nil {
		InternalServerError(w, "Failed to hash password")
		return
	}
	user.PasswordHash = passwordHash

	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /api/v1/users.
// Lists all users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list users")
		return
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userToResponse(u)
	}

	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/users/{username} (admin only).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	user, err := h.store.GetUser(r.Context(), username)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

// Update handles PUT /api/v1/users/{username}.
// Updates a user (admin only). Reassigning a ranger's checkpost takes effect
// on the ranger's next token refresh.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	var req UpdateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUser(r.Context(), username)
	if err != nil {
		HandleStoreError(w, err)
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.CheckpostID != nil {
		user.CheckpostID = *req.CheckpostID
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := user.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}
	if req.CheckpostID != nil && !h.checkpostExists(w, r, user.CheckpostID) {
		return
	}

	if req.Password != nil {
		if *req.Password == "" {
			BadRequest(w, "Password must not be empty")
			return
		}
		passwordHash, err := models.HashPassword(*req.Password)
		if err != nil {
			InternalServerError(w, "Failed to hash password")
			return
		}
		user.PasswordHash = passwordHash
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		HandleStoreError(w, err)
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/{username}.
// Deletes a user (admin only). Self-deletion is refused.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims != nil && claims.Username == username {
		Forbidden(w, "Cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		HandleStoreError(w, err)
		return
	}

	NoContent(w)
}

// ChangeOwnPassword handles POST /api/v1/users/me/password.
// Changes the current user's own password. The current password is always
// required; issued tokens stay valid until they expire.
func (h *UserHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.CurrentPassword == "" {
		BadRequest(w, "Current password is required")
		return
	}
	if req.NewPassword == "" {
		BadRequest(w, "New password is required")
		return
	}

	if _, err := h.store.ValidateCredentials(r.Context(), claims.Username, req.CurrentPassword); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			Unauthorized(w, "Current password is incorrect")
			return
		}
		HandleStoreError(w, err)
		return
	}

	passwordHash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		InternalServerError(w, "Failed to hash password")
		return
	}

	if err := h.store.UpdatePassword(r.Context(), claims.Username, passwordHash); err != nil {
		HandleStoreError(w, err)
		return
	}

	NoContent(w)
}

// checkpostExists validates a checkpost reference on user create/update.
// Writes a 400 and returns false when the checkpost is unknown. An empty ID
// passes: admins carry no assignment.
func (h *UserHandler) checkpostExists(w http.ResponseWriter, r *http.Request, checkpostID string) bool {
	if checkpostID == "" {
		return true
	}
	if _, err := h.store.GetCheckpost(r.Context(), checkpostID); err != nil {
		if errors.Is(err, models.ErrCheckpostNotFound) {
			BadRequest(w, "Unknown checkpost")
			return false
		}
		InternalServerError(w, "Failed to resolve checkpost")
		return false
	}
	return true
}

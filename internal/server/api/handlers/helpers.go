package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// MapStoreError maps a store error to an HTTP status code and a safe,
// client-facing message. Unknown errors map to 500 without leaking detail.
//
// models.ErrDuplicatePassage is deliberately absent: a replayed client ID is
// a success at the API layer (the stored row is returned with 200), never a
// conflict.
func MapStoreError(err error) (int, string) {
	switch {
	// Not found errors -> 404
	case errors.Is(err, models.ErrPassageNotFound):
		return http.StatusNotFound, "Passage not found"
	case errors.Is(err, models.ErrSegmentNotFound):
		return http.StatusNotFound, "Segment not found"
	case errors.Is(err, models.ErrCheckpostNotFound):
		return http.StatusNotFound, "Checkpost not found"
	case errors.Is(err, models.ErrViolationNotFound):
		return http.StatusNotFound, "Violation not found"
	case errors.Is(err, models.ErrAlertNotFound):
		return http.StatusNotFound, "Alert not found"
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, "User not found"

	// Duplicate/conflict errors -> 409
	case errors.Is(err, models.ErrDuplicateSegment):
		return http.StatusConflict, "Segment already exists"
	case errors.Is(err, models.ErrDuplicateCheckpost):
		return http.StatusConflict, "Checkpost code already exists"
	case errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, models.ErrSegmentInUse):
		return http.StatusConflict, "Segment is referenced by passages"
	case errors.Is(err, models.ErrCheckpostInUse):
		return http.StatusConflict, "Checkpost is referenced by passages"
	case errors.Is(err, models.ErrSegmentComplete):
		return http.StatusConflict, "Segment already has two checkposts"
	case errors.Is(err, models.ErrPositionTaken):
		return http.StatusConflict, "Position is already occupied"

	// Policy errors -> 400/401/403
	case errors.Is(err, models.ErrFutureRecordedAt):
		return http.StatusBadRequest, "Recorded time is too far in the future"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, models.ErrUserDisabled):
		return http.StatusForbidden, "User account is disabled"

	// Unknown errors -> 500
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// HandleStoreError writes an RFC 7807 problem response for a store error.
func HandleStoreError(w http.ResponseWriter, err error) {
	status, msg := MapStoreError(err)
	WriteProblem(w, status, http.StatusText(status), msg)
}

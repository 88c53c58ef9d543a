// Package store provides the server persistence layer.
//
// This package implements the Store interface for managing passages, segments,
// checkposts, violations, overstay alerts, and user accounts.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (HA-capable)
package store

import (
	"context"
	"time"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// PassageFilter narrows ListPassages results. Zero-valued fields are ignored.
type PassageFilter struct {
	SegmentID   string
	CheckpostID string
	PlateNumber string
	Source      string

	// Matched filters by pairing state when non-nil.
	Matched *bool

	// Since and Until bound RecordedAt (inclusive lower, exclusive upper).
	Since time.Time
	Until time.Time

	Limit  int
	Offset int
}

// ViolationFilter narrows ListViolations results. Zero-valued fields are ignored.
type ViolationFilter struct {
	SegmentID   string
	PlateNumber string
	Kind        string
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

// AlertFilter narrows ListOverstayAlerts results. Zero-valued fields are ignored.
type AlertFilter struct {
	SegmentID   string
	PlateNumber string

	// Resolved filters by resolution state when non-nil.
	Resolved *bool

	Limit  int
	Offset int
}

// InsertResult reports what a single passage intake did.
type InsertResult struct {
	// Passage is the stored row. For duplicates this is the original row,
	// not the rejected submission.
	Passage *models.Passage

	// Duplicate is true when the client ID was already known and no new
	// row was written.
	Duplicate bool

	// Matched is true when the intake completed a pair.
	Matched bool

	// Violation is the violation generated by the match, if any.
	Violation *models.Violation

	// ResolvedAlerts is the number of overstay alerts closed by the match.
	ResolvedAlerts int
}

// ScanResult reports the outcome of one overstay scanner pass.
type ScanResult struct {
	// Scanned is the number of overdue unmatched passages examined.
	Scanned int

	// Created is the number of new alerts written.
	Created int

	// Alerts holds the created alerts.
	Alerts []*models.OverstayAlert
}

// Store provides the server persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from multiple
// goroutines. InsertPassage in particular runs the pair-matching step inside
// its own transaction so that two racing intakes for the same vehicle cannot
// both claim the same candidate.
type Store interface {
	// ============================================
	// PASSAGE OPERATIONS
	// ============================================

	// InsertPassage stores a passage and attempts to pair it with the latest
	// unmatched passage of the same plate on the same segment seen at the
	// other checkpost. Pairing, violation generation, and overstay alert
	// resolution happen in the same transaction as the insert.
	//
	// Submissions whose client ID is already known are not re-inserted; the
	// result carries the original row with Duplicate=true and no error.
	// Returns models.ErrFutureRecordedAt if the capture timestamp is further
	// in the future than the configured clock skew tolerance.
	InsertPassage(ctx context.Context, passage *models.Passage) (*InsertResult, error)

	// GetPassage returns a passage by ID.
	// Returns models.ErrPassageNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id string) (*models.Passage, error)

	// GetPassageByClientID returns a passage by its idempotency key.
	// Returns models.ErrPassageNotFound if the passage doesn't exist.
	GetPassageByClientID(ctx context.Context, clientID string) (*models.Passage, error)

	// ListPassages returns passages matching the filter, newest first.
	ListPassages(ctx context.Context, filter PassageFilter) ([]*models.Passage, error)

	// ListUnmatchedOpposite returns unmatched passages on a segment recorded
	// at any checkpost other than the caller's, with RecordedAt at or after
	// cutoff, newest first. This is the inbound-pull query: agents cache the
	// result locally so the field matcher can pair against the far side while
	// offline. Returns at most limit passages (capped at MaxPullLimit).
	ListUnmatchedOpposite(ctx context.Context, segmentID, myCheckpostID string, cutoff time.Time, limit int) ([]*models.Passage, error)

	// CountUnmatched returns the number of unmatched passages for a segment,
	// or for all segments when segmentID is empty.
	CountUnmatched(ctx context.Context, segmentID string) (int64, error)

	// ============================================
	// SEGMENT OPERATIONS
	// ============================================

	// GetSegment returns a segment by ID with checkposts preloaded.
	// Returns models.ErrSegmentNotFound if the segment doesn't exist.
	GetSegment(ctx context.Context, id string) (*models.Segment, error)

	// GetSegmentByName returns a segment by name with checkposts preloaded.
	// Returns models.ErrSegmentNotFound if the segment doesn't exist.
	GetSegmentByName(ctx context.Context, name string) (*models.Segment, error)

	// ListSegments returns all segments with checkposts preloaded.
	ListSegments(ctx context.Context) ([]*models.Segment, error)

	// CreateSegment creates a new segment.
	// The ID will be generated if empty. Returns the generated ID.
	// Returns models.ErrDuplicateSegment if a segment with the same name exists.
	CreateSegment(ctx context.Context, segment *models.Segment) (string, error)

	// UpdateSegment updates an existing segment's name and speed envelope.
	// Returns models.ErrSegmentNotFound if the segment doesn't exist.
	UpdateSegment(ctx context.Context, segment *models.Segment) error

	// DeleteSegment deletes a segment and its checkposts.
	// Returns models.ErrSegmentNotFound if the segment doesn't exist.
	// Returns models.ErrSegmentInUse if any passages reference the segment.
	DeleteSegment(ctx context.Context, id string) error

	// ============================================
	// CHECKPOST OPERATIONS
	// ============================================

	// GetCheckpost returns a checkpost by ID.
	// Returns models.ErrCheckpostNotFound if the checkpost doesn't exist.
	GetCheckpost(ctx context.Context, id string) (*models.Checkpost, error)

	// GetCheckpostByCode returns a checkpost by its short code.
	// Returns models.ErrCheckpostNotFound if the checkpost doesn't exist.
	GetCheckpostByCode(ctx context.Context, code string) (*models.Checkpost, error)

	// ListCheckposts returns checkposts, scoped to a segment when segmentID
	// is non-empty, ordered by position.
	ListCheckposts(ctx context.Context, segmentID string) ([]*models.Checkpost, error)

	// CreateCheckpost creates a new checkpost on a segment.
	// The ID will be generated if empty. Returns the generated ID.
	// Returns models.ErrSegmentNotFound if the segment doesn't exist.
	// Returns models.ErrSegmentComplete if the segment already has two checkposts.
	// Returns models.ErrPositionTaken if the position is already occupied.
	// Returns models.ErrDuplicateCheckpost if the code is already in use.
	CreateCheckpost(ctx context.Context, checkpost *models.Checkpost) (string, error)

	// DeleteCheckpost deletes a checkpost by ID.
	// Returns models.ErrCheckpostNotFound if the checkpost doesn't exist.
	// Returns models.ErrCheckpostInUse if any passages reference the checkpost.
	DeleteCheckpost(ctx context.Context, id string) error

	// ============================================
	// VIOLATION OPERATIONS
	// ============================================

	// GetViolation returns a violation by ID.
	// Returns models.ErrViolationNotFound if the violation doesn't exist.
	GetViolation(ctx context.Context, id string) (*models.Violation, error)

	// ListViolations returns violations matching the filter, newest first.
	ListViolations(ctx context.Context, filter ViolationFilter) ([]*models.Violation, error)

	// ============================================
	// OVERSTAY ALERT OPERATIONS
	// ============================================

	// GetOverstayAlert returns an overstay alert by ID.
	// Returns models.ErrAlertNotFound if the alert doesn't exist.
	GetOverstayAlert(ctx context.Context, id string) (*models.OverstayAlert, error)

	// ListOverstayAlerts returns alerts matching the filter, newest first.
	ListOverstayAlerts(ctx context.Context, filter AlertFilter) ([]*models.OverstayAlert, error)

	// ResolveOverstayAlert marks an alert resolved. byPassageID optionally
	// records the passage that closed it. Resolving an already-resolved
	// alert is a no-op and returns the alert unchanged.
	// Returns models.ErrAlertNotFound if the alert doesn't exist.
	ResolveOverstayAlert(ctx context.Context, id string, byPassageID *string) (*models.OverstayAlert, error)

	// ScanOverstays examines all unmatched passages whose maximum travel
	// time expired before now and creates one alert per overdue entry.
	// An entry that already has an alert is never alerted twice.
	// Safe to run concurrently from multiple server instances.
	ScanOverstays(ctx context.Context, now time.Time) (*ScanResult, error)

	// ============================================
	// USER OPERATIONS
	// ============================================

	// GetUser returns a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns a user by their unique ID (UUID).
	// Returns models.ErrUserNotFound if no user has this ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateUser creates a new user. PasswordHash must already be set.
	// The user ID will be generated if empty. Returns the generated ID.
	// Returns models.ErrDuplicateUser if a user with the same username exists.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// UpdateUser updates an existing user.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, username string) error

	// UpdatePassword updates a user's password hash.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// UpdateLastLogin updates the user's last login timestamp.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error

	// ValidateCredentials verifies username/password credentials.
	// Returns the user if credentials are valid.
	// Returns models.ErrInvalidCredentials if the credentials are invalid.
	// Returns models.ErrUserDisabled if the user account is disabled.
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)

	// ResolveRangerByPhoneSuffix finds the single active ranger whose phone
	// number ends with the given digits.
	// Returns models.ErrUnknownSender if no ranger matches.
	// Returns models.ErrAmbiguousSender if more than one ranger matches.
	ResolveRangerByPhoneSuffix(ctx context.Context, suffix string) (*models.User, error)

	// EnsureAdminUser ensures an admin user exists.
	// If no admin user exists, creates one with a generated password.
	// Returns the initial password if a new admin was created, empty string otherwise.
	// This should be called during server startup.
	EnsureAdminUser(ctx context.Context) (initialPassword string, err error)

	// IsAdminInitialized returns whether the admin user has been initialized.
	IsAdminInitialized(ctx context.Context) (bool, error)

	// ============================================
	// HEALTH & LIFECYCLE
	// ============================================

	// Healthcheck verifies the store is operational.
	// Returns an error if the store is not healthy.
	Healthcheck(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}

// SegmentStore is the subset of Store needed by segment management handlers.
type SegmentStore interface {
	GetSegment(ctx context.Context, id string) (*models.Segment, error)
	GetSegmentByName(ctx context.Context, name string) (*models.Segment, error)
	ListSegments(ctx context.Context) ([]*models.Segment, error)
	CreateSegment(ctx context.Context, segment *models.Segment) (string, error)
	UpdateSegment(ctx context.Context, segment *models.Segment) error
	DeleteSegment(ctx context.Context, id string) error
}

// CheckpostStore is the subset of Store needed by checkpost management handlers.
type CheckpostStore interface {
	GetCheckpost(ctx context.Context, id string) (*models.Checkpost, error)
	GetCheckpostByCode(ctx context.Context, code string) (*models.Checkpost, error)
	ListCheckposts(ctx context.Context, segmentID string) ([]*models.Checkpost, error)
	CreateCheckpost(ctx context.Context, checkpost *models.Checkpost) (string, error)
	DeleteCheckpost(ctx context.Context, id string) error
}

// ViolationStore is the subset of Store needed by violation read handlers.
type ViolationStore interface {
	GetViolation(ctx context.Context, id string) (*models.Violation, error)
	ListViolations(ctx context.Context, filter ViolationFilter) ([]*models.Violation, error)
}

// AlertStore is the subset of Store needed by overstay alert handlers.
type AlertStore interface {
	GetOverstayAlert(ctx context.Context, id string) (*models.OverstayAlert, error)
	ListOverstayAlerts(ctx context.Context, filter AlertFilter) ([]*models.OverstayAlert, error)
	ResolveOverstayAlert(ctx context.Context, id string, byPassageID *string) (*models.OverstayAlert, error)
}

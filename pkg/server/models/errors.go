package models

import "errors"

// Common errors for store and intake operations.
var (
	// Passage errors
	ErrPassageNotFound  = errors.New("passage not found")
	ErrDuplicatePassage = errors.New("passage already exists for client id")
	ErrFutureRecordedAt = errors.New("recorded_at is too far in the future")

	// Segment errors
	ErrSegmentNotFound  = errors.New("segment not found")
	ErrDuplicateSegment = errors.New("segment already exists")
	ErrSegmentInUse     = errors.New("segment is referenced by passages")

	// Checkpost errors
	ErrCheckpostNotFound  = errors.New("checkpost not found")
	ErrDuplicateCheckpost = errors.New("checkpost code already exists")
	ErrCheckpostInUse     = errors.New("checkpost is referenced by passages")
	ErrSegmentComplete    = errors.New("segment already has two checkposts")
	ErrPositionTaken      = errors.New("segment already has a checkpost at this position")

	// Violation and alert errors
	ErrViolationNotFound  = errors.New("violation not found")
	ErrDuplicateViolation = errors.New("violation already exists for entry passage")
	ErrAlertNotFound      = errors.New("overstay alert not found")
	ErrDuplicateAlert     = errors.New("overstay alert already exists for entry passage")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// SMS sender resolution errors
	ErrUnknownSender   = errors.New("no active ranger matches the sender phone suffix")
	ErrAmbiguousSender = errors.New("more than one active ranger matches the sender phone suffix")
)

// Package matcher pairs passages recorded on this device against the cache
// of passages pulled from the opposite checkpost. It gives the ranger an
// immediate travel-time verdict while offline; the server's matcher remains
// the authority and this package never writes server-side state.
package matcher

import (
	"context"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// CandidateStore is the slice of the agent store the matcher needs.
type CandidateStore interface {
	FindMatchCandidate(ctx context.Context, plateNumber, segmentID, excludeCheckpostID string) (*store.CachedRemotePassage, error)
	MarkRemoteMatched(ctx context.Context, remoteClientID, localClientID string) error
}

// SegmentParams are the assigned segment's matching thresholds, cached from
// the server so the verdict needs no connectivity.
type SegmentParams struct {
	SegmentID   string
	CheckpostID string
	DistanceKm  float64
	MaxSpeedKmh float64
	MinSpeedKmh float64
}

// MinTravelMinutes is the fastest legal traversal of the segment.
func (p SegmentParams) MinTravelMinutes() float64 {
	if p.MaxSpeedKmh <= 0 {
		return 0
	}
	return p.DistanceKm / p.MaxSpeedKmh * 60
}

// MaxTravelMinutes is the slowest expected traversal of the segment.
func (p SegmentParams) MaxTravelMinutes() float64 {
	if p.MinSpeedKmh <= 0 {
		return 0
	}
	return p.DistanceKm / p.MinSpeedKmh * 60
}

// LocalMatch is the device-local verdict for a paired passage. Kind is empty
// when the travel time sits inside the segment's speed envelope.
type LocalMatch struct {
	Local              *store.LocalPassage
	Remote             *store.CachedRemotePassage
	LocalIsEntry       bool
	TravelTimeMinutes  float64
	Kind               models.ViolationKind
	ThresholdMinutes   float64
	CalculatedSpeedKmh float64
	SpeedLimitKmh      float64
}

// Notifier receives each local match as it is found. rangerd uses it to
// print the verdict at record time.
type Notifier func(*LocalMatch)

// Matcher finds and judges local pairs.
type Matcher struct {
	store  CandidateStore
	params SegmentParams
	notify Notifier
}

// New creates a matcher for the assigned segment. notify may be nil.
func New(cs CandidateStore, params SegmentParams, notify Notifier) *Matcher {
	return &Matcher{
		store:  cs,
		params: params,
		notify: notify,
	}
}

// Match looks for a cached opposite-checkpost candidate for a freshly
// recorded passage. No candidate is the normal case and returns (nil, nil).
// On a pair the cached row is claimed so it cannot pair twice.
func (m *Matcher) Match(ctx context.Context, local *store.LocalPassage) (*LocalMatch, error) {
	candidate, err := m.store.FindMatchCandidate(ctx, local.PlateNumber, m.params.SegmentID, m.params.CheckpostID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, nil
	}

	if err := m.store.MarkRemoteMatched(ctx, candidate.ClientID, local.ClientID); err != nil {
		return nil, err
	}

	match := judge(local, candidate, m.params)

	if match.Kind == "" {
		logger.Info("Local match",
			logger.Plate(local.PlateNumber),
			logger.TravelMinutes(match.TravelTimeMinutes))
	} else {
		logger.Warn("Local match suggests violation",
			logger.Plate(local.PlateNumber),
			logger.Kind(string(match.Kind)),
			logger.TravelMinutes(match.TravelTimeMinutes),
			logger.ThresholdMinutes(match.ThresholdMinutes))
	}

	if m.notify != nil {
		m.notify(match)
	}
	return match, nil
}

// judge orders the pair and classifies its travel time the same way the
// server does. Equal instants treat the remote side as the entry; the server
// settles direction authoritatively when both rows reach it.
func judge(local *store.LocalPassage, remote *store.CachedRemotePassage, params SegmentParams) *LocalMatch {
	match := &LocalMatch{
		Local:        local,
		Remote:       remote,
		LocalIsEntry: local.RecordedAt.Before(remote.RecordedAt),
	}

	entryAt, exitAt := remote.RecordedAt, local.RecordedAt
	if match.LocalIsEntry {
		entryAt, exitAt = local.RecordedAt, remote.RecordedAt
	}
	match.TravelTimeMinutes = exitAt.Sub(entryAt).Minutes()

	minMinutes := params.MinTravelMinutes()
	maxMinutes := params.MaxTravelMinutes()
	switch {
	case match.TravelTimeMinutes < minMinutes:
		match.Kind = models.ViolationSpeeding
		match.ThresholdMinutes = minMinutes
		match.SpeedLimitKmh = params.MaxSpeedKmh
	case match.TravelTimeMinutes > maxMinutes:
		match.Kind = models.ViolationOverstay
		match.ThresholdMinutes = maxMinutes
		match.SpeedLimitKmh = params.MinSpeedKmh
	}

	if match.TravelTimeMinutes > 0 {
		match.CalculatedSpeedKmh = params.DistanceKm / (match.TravelTimeMinutes / 60)
	}
	return match
}

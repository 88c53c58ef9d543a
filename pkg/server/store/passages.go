package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// Pull limits. Agents refresh their inbound cache from the far checkpost
// on every sync cycle; the cap keeps a cold-starting agent from dragging
// a whole season of passages through one response.
const (
	DefaultPullLimit = 500
	MaxPullLimit     = 1000
)

// DefaultListLimit bounds ListPassages when the filter does not set one.
const DefaultListLimit = 100

// ============================================
// PASSAGE OPERATIONS
// ============================================

// InsertPassage stores a passage and runs pair matching inside the same
// transaction. The passage must arrive with a normalized plate number;
// intake handlers own transliteration.
func (s *GORMStore) InsertPassage(ctx context.Context, passage *models.Passage) (*InsertResult, error) {
	if err := passage.Validate(); err != nil {
		return nil, err
	}
	if passage.RecordedAt.After(time.Now().Add(s.clockSkew)) {
		return nil, models.ErrFutureRecordedAt
	}

	if passage.ID == "" {
		passage.ID = uuid.New().String()
	}
	passage.RecordedAt = passage.RecordedAt.UTC()

	result := &InsertResult{Passage: passage}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(passage).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicatePassage
			}
			return err
		}
		return s.matchPassage(tx, passage, result)
	})

	if errors.Is(err, models.ErrDuplicatePassage) {
		// Replay of a known client ID. Return the original row so the
		// caller can tell the client what the server already holds.
		existing, getErr := s.GetPassageByClientID(ctx, passage.ClientID)
		if getErr != nil {
			return nil, getErr
		}
		return &InsertResult{Passage: existing, Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GORMStore) GetPassage(ctx context.Context, id string) (*models.Passage, error) {
	return findBy[models.Passage](ctx, s.db, "id", id, models.ErrPassageNotFound)
}

func (s *GORMStore) GetPassageByClientID(ctx context.Context, clientID string) (*models.Passage, error) {
	return findBy[models.Passage](ctx, s.db, "client_id", clientID, models.ErrPassageNotFound)
}

func (s *GORMStore) ListPassages(ctx context.Context, filter PassageFilter) ([]*models.Passage, error) {
	q := s.db.WithContext(ctx).Model(&models.Passage{})

	if filter.SegmentID != "" {
		q = q.Where("segment_id = ?", filter.SegmentID)
	}
	if filter.CheckpostID != "" {
		q = q.Where("checkpost_id = ?", filter.CheckpostID)
	}
	if filter.PlateNumber != "" {
		q = q.Where("plate_number = ?", filter.PlateNumber)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.Matched != nil {
		if *filter.Matched {
			q = q.Where("matched_passage_id IS NOT NULL")
		} else {
			q = q.Where("matched_passage_id IS NULL")
		}
	}
	if !filter.Since.IsZero() {
		q = q.Where("recorded_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("recorded_at < ?", filter.Until)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxPullLimit {
		limit = MaxPullLimit
	}

	var passages []*models.Passage
	err := q.Order("recorded_at DESC").Order("id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&passages).Error
	if err != nil {
		return nil, err
	}
	return passages, nil
}

// ListUnmatchedOpposite serves the agent inbound pull: open sightings from
// the far end of the segment, newest first, bounded by the caller's lookback
// cutoff. Matched rows are excluded because the agent only needs candidates
// its local matcher could still pair against.
func (s *GORMStore) ListUnmatchedOpposite(ctx context.Context, segmentID, myCheckpostID string, cutoff time.Time, limit int) ([]*models.Passage, error) {
	if limit <= 0 {
		limit = DefaultPullLimit
	}
	if limit > MaxPullLimit {
		limit = MaxPullLimit
	}

	var passages []*models.Passage
	err := s.db.WithContext(ctx).
		Where("segment_id = ? AND checkpost_id <> ? AND matched_passage_id IS NULL AND recorded_at >= ?",
			segmentID, myCheckpostID, cutoff).
		Order("recorded_at DESC").Order("id DESC").
		Limit(limit).
		Find(&passages).Error
	if err != nil {
		return nil, err
	}
	return passages, nil
}

func (s *GORMStore) CountUnmatched(ctx context.Context, segmentID string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Passage{}).Where("matched_passage_id IS NULL")
	if segmentID != "" {
		q = q.Where("segment_id = ?", segmentID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

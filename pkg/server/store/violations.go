package store

import (
	"context"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// VIOLATION OPERATIONS
// ============================================

func (s *GORMStore) GetViolation(ctx context.Context, id string) (*models.Violation, error) {
	return findBy[models.Violation](ctx, s.db, "id", id, models.ErrViolationNotFound)
}

func (s *GORMStore) ListViolations(ctx context.Context, filter ViolationFilter) ([]*models.Violation, error) {
	q := s.db.WithContext(ctx).Model(&models.Violation{})

	if filter.SegmentID != "" {
		q = q.Where("segment_id = ?", filter.SegmentID)
	}
	if filter.PlateNumber != "" {
		q = q.Where("plate_number = ?", filter.PlateNumber)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("created_at < ?", filter.Until)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var violations []*models.Violation
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&violations).Error
	if err != nil {
		return nil, err
	}
	return violations, nil
}

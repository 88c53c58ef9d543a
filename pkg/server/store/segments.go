package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// SEGMENT OPERATIONS
// ============================================

func (s *GORMStore) GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	return findBy[models.Segment](ctx, s.db, "id", id, models.ErrSegmentNotFound, "Checkposts")
}

func (s *GORMStore) GetSegmentByName(ctx context.Context, name string) (*models.Segment, error) {
	return findBy[models.Segment](ctx, s.db, "name", name, models.ErrSegmentNotFound, "Checkposts")
}

func (s *GORMStore) ListSegments(ctx context.Context) ([]*models.Segment, error) {
	return findAll[models.Segment](ctx, s.db, "Checkposts")
}

func (s *GORMStore) CreateSegment(ctx context.Context, segment *models.Segment) (string, error) {
	if err := segment.Validate(); err != nil {
		return "", err
	}
	return insertWithID(ctx, s.db, segment, &segment.ID, models.ErrDuplicateSegment)
}

// UpdateSegment edits the segment's name and speed envelope. Existing
// violations keep their snapshots; only future matches see the new envelope.
func (s *GORMStore) UpdateSegment(ctx context.Context, segment *models.Segment) error {
	if err := segment.Validate(); err != nil {
		return err
	}

	var existing models.Segment
	if err := s.db.WithContext(ctx).Where("id = ?", segment.ID).First(&existing).Error; err != nil {
		return convertNotFoundError(err, models.ErrSegmentNotFound)
	}

	err := s.db.WithContext(ctx).
		Model(&existing).
		Select("Name", "DistanceKm", "MaxSpeedKmh", "MinSpeedKmh").
		Updates(segment).Error
	if isUniqueConstraintError(err) {
		return models.ErrDuplicateSegment
	}
	return err
}

func (s *GORMStore) DeleteSegment(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var segment models.Segment
		if err := tx.Where("id = ?", id).First(&segment).Error; err != nil {
			return convertNotFoundError(err, models.ErrSegmentNotFound)
		}

		var passages int64
		if err := tx.Model(&models.Passage{}).Where("segment_id = ?", id).Count(&passages).Error; err != nil {
			return err
		}
		if passages > 0 {
			return models.ErrSegmentInUse
		}

		if err := tx.Where("segment_id = ?", id).Delete(&models.Checkpost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&segment).Error
	})
}

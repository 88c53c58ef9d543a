package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// CHECKPOST OPERATIONS
// ============================================

func (s *GORMStore) GetCheckpost(ctx context.Context, id string) (*models.Checkpost, error) {
	return findBy[models.Checkpost](ctx, s.db, "id", id, models.ErrCheckpostNotFound)
}

func (s *GORMStore) GetCheckpostByCode(ctx context.Context, code string) (*models.Checkpost, error) {
	return findBy[models.Checkpost](ctx, s.db, "code", code, models.ErrCheckpostNotFound)
}

func (s *GORMStore) ListCheckposts(ctx context.Context, segmentID string) ([]*models.Checkpost, error) {
	q := s.db.WithContext(ctx).Order("segment_id").Order("position_index")
	if segmentID != "" {
		q = q.Where("segment_id = ?", segmentID)
	}
	var checkposts []*models.Checkpost
	if err := q.Find(&checkposts).Error; err != nil {
		return nil, err
	}
	return checkposts, nil
}

// CreateCheckpost enforces the segment shape: exactly two checkposts, one at
// each end. The existence and position checks share the insert transaction so
// concurrent creates cannot overfill a segment.
func (s *GORMStore) CreateCheckpost(ctx context.Context, checkpost *models.Checkpost) (string, error) {
	if err := checkpost.Validate(); err != nil {
		return "", err
	}
	if checkpost.ID == "" {
		checkpost.ID = uuid.New().String()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var segment models.Segment
		if err := tx.Where("id = ?", checkpost.SegmentID).First(&segment).Error; err != nil {
			return convertNotFoundError(err, models.ErrSegmentNotFound)
		}

		var siblings []models.Checkpost
		if err := tx.Where("segment_id = ?", checkpost.SegmentID).Find(&siblings).Error; err != nil {
			return err
		}
		if len(siblings) >= 2 {
			return models.ErrSegmentComplete
		}
		for _, sib := range siblings {
			if sib.PositionIndex == checkpost.PositionIndex {
				return models.ErrPositionTaken
			}
		}

		if err := tx.Create(checkpost).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateCheckpost
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return checkpost.ID, nil
}

func (s *GORMStore) DeleteCheckpost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var checkpost models.Checkpost
		if err := tx.Where("id = ?", id).First(&checkpost).Error; err != nil {
			return convertNotFoundError(err, models.ErrCheckpostNotFound)
		}

		var passages int64
		if err := tx.Model(&models.Passage{}).Where("checkpost_id = ?", id).Count(&passages).Error; err != nil {
			return err
		}
		if passages > 0 {
			return models.ErrCheckpostInUse
		}

		return tx.Delete(&checkpost).Error
	})
}

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// OVERSTAY ALERT OPERATIONS
// ============================================

func (s *GORMStore) GetOverstayAlert(ctx context.Context, id string) (*models.OverstayAlert, error) {
	return findBy[models.OverstayAlert](ctx, s.db, "id", id, models.ErrAlertNotFound)
}

func (s *GORMStore) ListOverstayAlerts(ctx context.Context, filter AlertFilter) ([]*models.OverstayAlert, error) {
	q := s.db.WithContext(ctx).Model(&models.OverstayAlert{})

	if filter.SegmentID != "" {
		q = q.Where("segment_id = ?", filter.SegmentID)
	}
	if filter.PlateNumber != "" {
		q = q.Where("plate_number = ?", filter.PlateNumber)
	}
	if filter.Resolved != nil {
		q = q.Where("resolved = ?", *filter.Resolved)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var alerts []*models.OverstayAlert
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *GORMStore) ResolveOverstayAlert(ctx context.Context, id string, byPassageID *string) (*models.OverstayAlert, error) {
	var alert models.OverstayAlert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&alert).Error; err != nil {
			return convertNotFoundError(err, models.ErrAlertNotFound)
		}
		if alert.Resolved {
			return nil // already closed, keep the original resolution
		}

		now := time.Now().UTC()
		alert.Resolved = true
		alert.ResolvedAt = &now
		alert.ResolvedByPassageID = byPassageID

		return tx.Model(&alert).Updates(map[string]any{
			"resolved":               true,
			"resolved_at":            now,
			"resolved_by_passage_id": byPassageID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ScanOverstays creates alerts for vehicles that entered a segment and have
// not appeared at the other checkpost within the segment's maximum travel
// time. One pass walks every segment in batches of ScanBatchSize; within a
// segment only unmatched rows older than the cutoff are examined, which the
// partial index keeps cheap. The scan can be cancelled between batches.
//
// The unique index on entry_passage_id makes the scan idempotent: a second
// scanner instance (or the next tick) hitting the same overdue entry loses
// the insert race and moves on. Alerted entries drop out of the batch query,
// so every batch makes progress even under contention.
func (s *GORMStore) ScanOverstays(ctx context.Context, now time.Time) (*ScanResult, error) {
	segments, err := findAll[models.Segment](ctx, s.db)
	if err != nil {
		return nil, err
	}

	batchSize := s.config.ScanBatchSize
	if batchSize <= 0 {
		batchSize = DefaultScanBatchSize
	}

	result := &ScanResult{}
	for _, segment := range segments {
		maxTravel := segment.MaxTravelTime()
		if maxTravel <= 0 {
			continue
		}
		cutoff := now.Add(-maxTravel)

		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			alerted := s.db.Model(&models.OverstayAlert{}).Select("entry_passage_id")

			var overdue []*models.Passage
			err := s.db.WithContext(ctx).
				Where("segment_id = ? AND matched_passage_id IS NULL AND recorded_at < ?", segment.ID, cutoff).
				Where("id NOT IN (?)", alerted).
				Order("recorded_at ASC").
				Limit(batchSize).
				Find(&overdue).Error
			if err != nil {
				return nil, err
			}
			if len(overdue) == 0 {
				break
			}

			result.Scanned += len(overdue)
			for _, passage := range overdue {
				alert := &models.OverstayAlert{
					ID:             uuid.New().String(),
					EntryPassageID: passage.ID,
					SegmentID:      passage.SegmentID,
					PlateNumber:    passage.PlateNumber,
					VehicleType:    passage.VehicleType,
					EntryTime:      passage.RecordedAt,
					ExpectedExitBy: passage.RecordedAt.Add(maxTravel),
				}
				if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
					if isUniqueConstraintError(err) {
						continue // another scanner got there first
					}
					return nil, err
				}
				result.Created++
				result.Alerts = append(result.Alerts, alert)
			}

			if len(overdue) < batchSize {
				break
			}
		}
	}

	return result, nil
}

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// ============================================
// PAIR MATCHING
// ============================================

// matchPassage pairs a freshly inserted passage with the latest unmatched
// passage of the same plate on the same segment seen at the other checkpost.
// Runs inside the intake transaction; tx must already hold the new row.
//
// On PostgreSQL the candidate row is claimed with FOR UPDATE SKIP LOCKED so
// two racing intakes cannot both pair against it; the loser simply sees no
// candidate and stays unmatched until a later passage arrives. SQLite has a
// single writer, so no row locking is needed there.
func (s *GORMStore) matchPassage(tx *gorm.DB, passage *models.Passage, result *InsertResult) error {
	q := tx.
		Where("plate_number = ? AND segment_id = ? AND checkpost_id <> ? AND matched_passage_id IS NULL AND id <> ?",
			passage.PlateNumber, passage.SegmentID, passage.CheckpostID, passage.ID).
		Order("recorded_at DESC").Order("id DESC").
		Limit(1)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var candidate models.Passage
	if err := q.First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // first sighting on this segment, nothing to pair
		}
		return err
	}

	// Chronological order decides entry and exit. Identical timestamps
	// fall back to ID order so both sides of a race agree on direction.
	entry, exit := &candidate, passage
	if passage.RecordedAt.Before(candidate.RecordedAt) ||
		(passage.RecordedAt.Equal(candidate.RecordedAt) && passage.ID < candidate.ID) {
		entry, exit = passage, &candidate
	}

	if err := markMatched(tx, entry.ID, exit.ID, true); err != nil {
		return err
	}
	if err := markMatched(tx, exit.ID, entry.ID, false); err != nil {
		return err
	}

	entryTrue, exitFalse := true, false
	entry.MatchedPassageID, entry.IsEntry = &exit.ID, &entryTrue
	exit.MatchedPassageID, exit.IsEntry = &entry.ID, &exitFalse
	result.Matched = true

	var segment models.Segment
	if err := tx.Where("id = ?", passage.SegmentID).First(&segment).Error; err != nil {
		return convertNotFoundError(err, models.ErrSegmentNotFound)
	}

	violation, err := judgePair(tx, &segment, entry, exit)
	if err != nil {
		return err
	}
	result.Violation = violation

	// A pair closing means the vehicle left the segment; any open overstay
	// alert on the entry passage is now stale.
	res := tx.Model(&models.OverstayAlert{}).
		Where("entry_passage_id = ? AND resolved = ?", entry.ID, false).
		Updates(map[string]any{
			"resolved":               true,
			"resolved_at":            time.Now().UTC(),
			"resolved_by_passage_id": exit.ID,
		})
	if res.Error != nil {
		return res.Error
	}
	result.ResolvedAlerts = int(res.RowsAffected)

	return nil
}

// markMatched stamps one side of a pair. Only these two columns ever change
// after intake; the rest of the row stays append-only.
func markMatched(tx *gorm.DB, id, matchedWith string, isEntry bool) error {
	res := tx.Model(&models.Passage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"matched_passage_id": matchedWith,
			"is_entry":           isEntry,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("passage %s disappeared during matching", id)
	}
	return nil
}

// judgePair compares the pair's travel time against the segment's speed
// envelope and writes a violation when the vehicle was too fast or too slow.
// Travel time inside the envelope produces no violation.
func judgePair(tx *gorm.DB, segment *models.Segment, entry, exit *models.Passage) (*models.Violation, error) {
	travelMinutes := exit.RecordedAt.Sub(entry.RecordedAt).Minutes()
	minMinutes := segment.MinTravelTimeMinutes()
	maxMinutes := segment.MaxTravelTimeMinutes()

	var kind models.ViolationKind
	var thresholdMinutes, speedLimit float64
	switch {
	case travelMinutes < minMinutes:
		kind = models.ViolationSpeeding
		thresholdMinutes = minMinutes
		speedLimit = segment.MaxSpeedKmh
	case travelMinutes > maxMinutes:
		kind = models.ViolationOverstay
		thresholdMinutes = maxMinutes
		speedLimit = segment.MinSpeedKmh
	default:
		return nil, nil
	}

	// Equal timestamps make average speed undefined; record zero rather
	// than dividing by it.
	var speed float64
	if travelMinutes > 0 {
		speed = segment.DistanceKm / (travelMinutes / 60)
	}

	violation := &models.Violation{
		ID:                 uuid.New().String(),
		EntryPassageID:     entry.ID,
		ExitPassageID:      exit.ID,
		SegmentID:          segment.ID,
		Kind:               string(kind),
		PlateNumber:        entry.PlateNumber,
		VehicleType:        entry.VehicleType,
		EntryTime:          entry.RecordedAt,
		ExitTime:           exit.RecordedAt,
		TravelTimeMinutes:  travelMinutes,
		ThresholdMinutes:   thresholdMinutes,
		CalculatedSpeedKmh: speed,
		SpeedLimitKmh:      speedLimit,
		DistanceKm:         segment.DistanceKm,
	}
	if err := tx.Create(violation).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.ErrDuplicateViolation
		}
		return nil, err
	}
	return violation, nil
}

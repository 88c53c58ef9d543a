package models

import "time"

// ViolationKind classifies a detected rule breach.
type ViolationKind string

const (
	// ViolationSpeeding means the pair traversed the segment faster than
	// the minimum legal travel time allows.
	ViolationSpeeding ViolationKind = "speeding"
	// ViolationOverstay means the pair took longer than the maximum
	// expected travel time.
	ViolationOverstay ViolationKind = "overstay"
)

// IsValid checks if the value is a known ViolationKind.
func (k ViolationKind) IsValid() bool {
	return k == ViolationSpeeding || k == ViolationOverstay
}

// Violation is an immutable record of a rule breach detected from a matched
// passage pair.
//
// ThresholdMinutes, SpeedLimitKmh and DistanceKm are snapshots of the segment
// at detection time; they never change even if the segment is later edited.
// EntryPassageID is unique: at most one violation exists per entry passage,
// which doubles as the backstop against double-matching races.
type Violation struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	EntryPassageID     string    `gorm:"uniqueIndex;not null;size:36" json:"entry_passage_id"`
	ExitPassageID      string    `gorm:"not null;size:36" json:"exit_passage_id"`
	SegmentID          string    `gorm:"not null;size:36;index" json:"segment_id"`
	Kind               string    `gorm:"not null;size:20" json:"kind"`
	PlateNumber        string    `gorm:"not null;size:32;index" json:"plate_number"`
	VehicleType        string    `gorm:"not null;size:20" json:"vehicle_type"`
	EntryTime          time.Time `gorm:"not null" json:"entry_time"`
	ExitTime           time.Time `gorm:"not null" json:"exit_time"`
	TravelTimeMinutes  float64   `gorm:"not null" json:"travel_time_minutes"`
	ThresholdMinutes   float64   `gorm:"not null" json:"threshold_minutes"`
	CalculatedSpeedKmh float64   `json:"calculated_speed_kmh"`
	SpeedLimitKmh      float64   `gorm:"not null" json:"speed_limit_kmh"`
	DistanceKm         float64   `gorm:"not null" json:"distance_km"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Violation.
func (Violation) TableName() string {
	return "violations"
}

// OverstayAlert is a proactive notification that an unmatched entry passage
// has exceeded its segment's maximum travel time.
//
// EntryPassageID is unique, so repeated scanner runs create at most one alert
// per entry. An alert resolves when the matching exit passage arrives or when
// an admin resolves it by hand.
type OverstayAlert struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	EntryPassageID      string     `gorm:"uniqueIndex;not null;size:36" json:"entry_passage_id"`
	SegmentID           string     `gorm:"not null;size:36;index:idx_alerts_segment_plate,priority:1" json:"segment_id"`
	PlateNumber         string     `gorm:"not null;size:32;index:idx_alerts_segment_plate,priority:2" json:"plate_number"`
	VehicleType         string     `gorm:"not null;size:20" json:"vehicle_type"`
	EntryTime           time.Time  `gorm:"not null" json:"entry_time"`
	ExpectedExitBy      time.Time  `gorm:"not null" json:"expected_exit_by"`
	Resolved            bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedByPassageID *string    `gorm:"size:36" json:"resolved_by_passage_id,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for OverstayAlert.
func (OverstayAlert) TableName() string {
	return "overstay_alerts"
}

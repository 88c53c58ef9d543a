package models

import (
	"fmt"
	"time"
)

// Segment is a stretch of road between exactly two checkposts.
//
// Travel-time thresholds are derived from distance and the speed limits and
// are snapshot into Violations at detection time, so later segment edits
// never rewrite history.
type Segment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	DistanceKm  float64   `gorm:"not null" json:"distance_km"`
	MaxSpeedKmh float64   `gorm:"not null" json:"max_speed_kmh"`
	MinSpeedKmh float64   `gorm:"not null" json:"min_speed_kmh"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Checkposts []Checkpost `gorm:"foreignKey:SegmentID" json:"checkposts,omitempty"`
}

// TableName returns the table name for Segment.
func (Segment) TableName() string {
	return "segments"
}

// MinTravelTimeMinutes is the fastest legal traversal of the segment.
// Anything quicker is speeding.
func (s *Segment) MinTravelTimeMinutes() float64 {
	return s.DistanceKm / s.MaxSpeedKmh * 60
}

// MaxTravelTimeMinutes is the slowest expected traversal of the segment.
// Anything slower is an overstay.
func (s *Segment) MaxTravelTimeMinutes() float64 {
	return s.DistanceKm / s.MinSpeedKmh * 60
}

// MaxTravelTime returns MaxTravelTimeMinutes as a duration, for deadline
// arithmetic in the overstay scanner.
func (s *Segment) MaxTravelTime() time.Duration {
	return time.Duration(s.MaxTravelTimeMinutes() * float64(time.Minute))
}

// Validate checks if the segment has usable parameters.
func (s *Segment) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.DistanceKm <= 0 {
		return fmt.Errorf("distance_km must be positive")
	}
	if s.MaxSpeedKmh <= 0 {
		return fmt.Errorf("max_speed_kmh must be positive")
	}
	if s.MinSpeedKmh <= 0 {
		return fmt.Errorf("min_speed_kmh must be positive")
	}
	if s.MinSpeedKmh >= s.MaxSpeedKmh {
		return fmt.Errorf("min_speed_kmh must be below max_speed_kmh")
	}
	return nil
}

// Checkpost is a staffed station at one end of a segment.
type Checkpost struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null;size:32" json:"code"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	SegmentID string    `gorm:"not null;size:36;index" json:"segment_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// PositionIndex is 0 or 1; a segment has exactly one checkpost at each
	// position.
	PositionIndex int `gorm:"not null" json:"position_index"`
}

// TableName returns the table name for Checkpost.
func (Checkpost) TableName() string {
	return "checkposts"
}

// Validate checks if the checkpost has valid configuration.
func (c *Checkpost) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("code is required")
	}
	if c.SegmentID == "" {
		return fmt.Errorf("segment_id is required")
	}
	if c.PositionIndex != 0 && c.PositionIndex != 1 {
		return fmt.Errorf("position_index must be 0 or 1")
	}
	return nil
}

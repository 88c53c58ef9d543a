package models

import (
	"fmt"
	"time"
)

// VehicleType classifies the vehicle observed at a checkpost.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleJeep       VehicleType = "jeep"
	VehiclePickup     VehicleType = "pickup"
	VehicleVan        VehicleType = "van"
	VehicleMinibus    VehicleType = "minibus"
	VehicleBus        VehicleType = "bus"
	VehicleTruck      VehicleType = "truck"
	VehicleTanker     VehicleType = "tanker"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleOther      VehicleType = "other"
)

// AllVehicleTypes lists every valid vehicle type, in display order.
func AllVehicleTypes() []VehicleType {
	return []VehicleType{
		VehicleCar, VehicleJeep, VehiclePickup, VehicleVan, VehicleMinibus,
		VehicleBus, VehicleTruck, VehicleTanker, VehicleMotorcycle, VehicleOther,
	}
}

// IsValid checks if the value is a known VehicleType.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleCar, VehicleJeep, VehiclePickup, VehicleVan, VehicleMinibus,
		VehicleBus, VehicleTruck, VehicleTanker, VehicleMotorcycle, VehicleOther:
		return true
	}
	return false
}

// PassageSource identifies the intake channel a passage arrived through.
type PassageSource string

const (
	// SourceApp is a passage pushed by the field agent over HTTP.
	SourceApp PassageSource = "app"
	// SourceSMS is a passage reconstructed from an SMS fallback message.
	SourceSMS PassageSource = "sms"
)

// IsValid checks if the value is a known PassageSource.
func (s PassageSource) IsValid() bool {
	return s == SourceApp || s == SourceSMS
}

// Passage records a single sighting of a vehicle at a checkpost.
//
// The passage log is append-only: substantive fields are never edited after
// intake. Matching mutates only MatchedPassageID and IsEntry, always on both
// rows of a pair inside one transaction. ClientID is the idempotency key:
// it is generated once on first capture (or derived deterministically from
// the SMS body) and the store guarantees at most one passage per ClientID.
type Passage struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	ClientID       string `gorm:"uniqueIndex;not null;size:64" json:"client_id"`
	PlateNumber    string `gorm:"not null;size:32;index:idx_passages_match,priority:1" json:"plate_number"`
	PlateNumberRaw string `gorm:"size:128" json:"plate_number_raw,omitempty"`
	VehicleType    string `gorm:"not null;size:20" json:"vehicle_type"`
	CheckpostID    string `gorm:"not null;size:36;index:idx_passages_checkpost,priority:1" json:"checkpost_id"`
	SegmentID      string `gorm:"not null;size:36;index:idx_passages_match,priority:2;index:idx_passages_unmatched,priority:1,where:matched_passage_id IS NULL" json:"segment_id"`

	// RecordedAt is the camera-shutter instant in UTC, authoritative for
	// all speed math. ServerReceivedAt is the intake instant.
	RecordedAt       time.Time `gorm:"not null;index:idx_passages_match,priority:3,sort:desc;index:idx_passages_checkpost,priority:2,sort:desc;index:idx_passages_unmatched,priority:2,where:matched_passage_id IS NULL" json:"recorded_at"`
	ServerReceivedAt time.Time `gorm:"autoCreateTime" json:"server_received_at"`

	RangerID string `gorm:"not null;size:36" json:"ranger_id"`
	Source   string `gorm:"not null;default:app;size:10" json:"source"`

	// MatchedPassageID and IsEntry are set at match time and nowhere else.
	// The earlier passage of a pair gets IsEntry=true.
	MatchedPassageID *string `gorm:"size:36" json:"matched_passage_id,omitempty"`
	IsEntry          *bool   `json:"is_entry,omitempty"`

	// PhotoRef is an opaque reference managed by the photo pipeline.
	PhotoRef string `gorm:"size:255" json:"photo_ref,omitempty"`
}

// TableName returns the table name for Passage.
func (Passage) TableName() string {
	return "passages"
}

// IsMatched reports whether the passage has been paired.
func (p *Passage) IsMatched() bool {
	return p.MatchedPassageID != nil && *p.MatchedPassageID != ""
}

// Validate checks the fields a caller must supply before intake.
func (p *Passage) Validate() error {
	if p.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if p.PlateNumber == "" {
		return fmt.Errorf("plate_number is required")
	}
	if !VehicleType(p.VehicleType).IsValid() {
		return fmt.Errorf("invalid vehicle_type %q", p.VehicleType)
	}
	if p.CheckpostID == "" {
		return fmt.Errorf("checkpost_id is required")
	}
	if p.SegmentID == "" {
		return fmt.Errorf("segment_id is required")
	}
	if p.RecordedAt.IsZero() {
		return fmt.Errorf("recorded_at is required")
	}
	if p.RangerID == "" {
		return fmt.Errorf("ranger_id is required")
	}
	if p.Source != "" && !PassageSource(p.Source).IsValid() {
		return fmt.Errorf("invalid source %q", p.Source)
	}
	return nil
}

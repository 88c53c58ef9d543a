package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// Violation represents a speed or overstay violation derived from a
// matched passage pair.
type Violation struct {
	ID                 string    `json:"id"`
	EntryPassageID     string    `json:"entry_passage_id"`
	ExitPassageID      string    `json:"exit_passage_id"`
	SegmentID          string    `json:"segment_id"`
	Kind               string    `json:"kind"`
	PlateNumber        string    `json:"plate_number"`
	VehicleType        string    `json:"vehicle_type"`
	EntryTime          time.Time `json:"entry_time"`
	ExitTime           time.Time `json:"exit_time"`
	TravelTimeMinutes  float64   `json:"travel_time_minutes"`
	ThresholdMinutes   float64   `json:"threshold_minutes"`
	CalculatedSpeedKmh float64   `json:"calculated_speed_kmh"`
	SpeedLimitKmh      float64   `json:"speed_limit_kmh"`
	DistanceKm         float64   `json:"distance_km"`
	CreatedAt          time.Time `json:"created_at"`
}

// ViolationListOptions filters ListViolations. Zero values are omitted.
type ViolationListOptions struct {
	SegmentID string
	Plate     string
	Kind      string
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

func (o *ViolationListOptions) query() string {
	if o == nil {
		return ""
	}
	q := url.Values{}
	if o.SegmentID != "" {
		q.Set("segment_id", o.SegmentID)
	}
	if o.Plate != "" {
		q.Set("plate", o.Plate)
	}
	if o.Kind != "" {
		q.Set("kind", o.Kind)
	}
	if !o.Since.IsZero() {
		q.Set("since", o.Since.Format(time.RFC3339))
	}
	if !o.Until.IsZero() {
		q.Set("until", o.Until.Format(time.RFC3339))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListViolations returns violations matching the filter. Rangers see only
// their own segment regardless of the filter.
func (c *Client) ListViolations(opts *ViolationListOptions) ([]Violation, error) {
	return listResources[Violation](c, "/api/v1/violations"+opts.query())
}

// GetViolation returns a violation by ID.
func (c *Client) GetViolation(id string) (*Violation, error) {
	return getResource[Violation](c, resourcePath("/api/v1/violations/%s", id))
}

package apiclient

import (
	"fmt"
	"net/url"
	"time"
)

// Segment represents a monitored road segment between two checkposts.
// The travel time bounds are derived server-side.
type Segment struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	DistanceKm           float64     `json:"distance_km"`
	MaxSpeedKmh          float64     `json:"max_speed_kmh"`
	MinSpeedKmh          float64     `json:"min_speed_kmh"`
	MinTravelTimeMinutes float64     `json:"min_travel_time_minutes"`
	MaxTravelTimeMinutes float64     `json:"max_travel_time_minutes"`
	Checkposts           []Checkpost `json:"checkposts,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// CreateSegmentRequest is the request to create a segment.
type CreateSegmentRequest struct {
	Name        string  `json:"name"`
	DistanceKm  float64 `json:"distance_km"`
	MaxSpeedKmh float64 `json:"max_speed_kmh"`
	MinSpeedKmh float64 `json:"min_speed_kmh"`
}

// UpdateSegmentRequest is the request to update a segment. Nil fields are
// left unchanged.
type UpdateSegmentRequest struct {
	Name        *string  `json:"name,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	MaxSpeedKmh *float64 `json:"max_speed_kmh,omitempty"`
	MinSpeedKmh *float64 `json:"min_speed_kmh,omitempty"`
}

// ListSegments returns all segments with their checkposts.
func (c *Client) ListSegments() ([]Segment, error) {
	return listResources[Segment](c, "/api/v1/segments")
}

// GetSegment returns a segment by ID.
func (c *Client) GetSegment(id string) (*Segment, error) {
	return getResource[Segment](c, resourcePath("/api/v1/segments/%s", id))
}

// CreateSegment creates a new segment (admin only).
func (c *Client) CreateSegment(req *CreateSegmentRequest) (*Segment, error) {
	return createResource[Segment](c, "/api/v1/segments", req)
}

// UpdateSegment updates a segment's parameters (admin only).
func (c *Client) UpdateSegment(id string, req *UpdateSegmentRequest) (*Segment, error) {
	return updateResource[Segment](c, resourcePath("/api/v1/segments/%s", id), req)
}

// DeleteSegment deletes a segment (admin only).
func (c *Client) DeleteSegment(id string) error {
	return deleteResource(c, fmt.Sprintf("/api/v1/segments/%s", id))
}

// Checkpost represents one end of a segment.
type Checkpost struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name,omitempty"`
	SegmentID     string    `json:"segment_id"`
	PositionIndex int       `json:"position_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateCheckpostRequest is the request to create a checkpost. A segment
// holds exactly two checkposts, one per position.
type CreateCheckpostRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name,omitempty"`
	SegmentID     string `json:"segment_id"`
	PositionIndex int    `json:"position_index"`
}

// ListCheckposts returns all checkposts, optionally filtered by segment.
func (c *Client) ListCheckposts(segmentID string) ([]Checkpost, error) {
	path := "/api/v1/checkposts"
	if segmentID != "" {
		q := url.Values{}
		q.Set("segment_id", segmentID)
		path += "?" + q.Encode()
	}
	return listResources[Checkpost](c, path)
}

// GetCheckpost returns a checkpost by ID.
func (c *Client) GetCheckpost(id string) (*Checkpost, error) {
	return getResource[Checkpost](c, resourcePath("/api/v1/checkposts/%s", id))
}

// CreateCheckpost creates a checkpost on a segment (admin only).
func (c *Client) CreateCheckpost(req *CreateCheckpostRequest) (*Checkpost, error) {
	return createResource[Checkpost](c, "/api/v1/checkposts", req)
}

// DeleteCheckpost deletes a checkpost (admin only).
func (c *Client) DeleteCheckpost(id string) error {
	return deleteResource(c, fmt.Sprintf("/api/v1/checkposts/%s", id))
}

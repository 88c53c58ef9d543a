package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// OverstayAlert represents a vehicle flagged as inside a segment past its
// maximum travel time.
type OverstayAlert struct {
	ID                  string     `json:"id"`
	EntryPassageID      string     `json:"entry_passage_id"`
	SegmentID           string     `json:"segment_id"`
	PlateNumber         string     `json:"plate_number"`
	VehicleType         string     `json:"vehicle_type"`
	EntryTime           time.Time  `json:"entry_time"`
	ExpectedExitBy      time.Time  `json:"expected_exit_by"`
	Resolved            bool       `json:"resolved"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedByPassageID *string    `json:"resolved_by_passage_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// AlertListOptions filters ListAlerts. Zero values are omitted.
type AlertListOptions struct {
	SegmentID string
	Plate     string
	Resolved  *bool
	Limit     int
	Offset    int
}

func (o *AlertListOptions) query() string {
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
	if o.Resolved != nil {
		q.Set("resolved", strconv.FormatBool(*o.Resolved))
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

// ListAlerts returns overstay alerts matching the filter. Rangers see only
// their own segment regardless of the filter.
func (c *Client) ListAlerts(opts *AlertListOptions) ([]OverstayAlert, error) {
	return listResources[OverstayAlert](c, "/api/v1/alerts"+opts.query())
}

// GetAlert returns an overstay alert by ID.
func (c *Client) GetAlert(id string) (*OverstayAlert, error) {
	return getResource[OverstayAlert](c, resourcePath("/api/v1/alerts/%s", id))
}

// ResolveAlert manually resolves an overstay alert (admin only).
// Resolving an already-resolved alert is a no-op and returns the alert
// unchanged.
func (c *Client) ResolveAlert(id string) (*OverstayAlert, error) {
	return createResource[OverstayAlert](c, resourcePath("/api/v1/alerts/%s/resolve", id), nil)
}

package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// Passage represents a single vehicle sighting at a checkpost.
type Passage struct {
	ID               string    `json:"id"`
	ClientID         string    `json:"client_id"`
	PlateNumber      string    `json:"plate_number"`
	PlateNumberRaw   string    `json:"plate_number_raw,omitempty"`
	VehicleType      string    `json:"vehicle_type"`
	CheckpostID      string    `json:"checkpost_id"`
	SegmentID        string    `json:"segment_id"`
	RecordedAt       time.Time `json:"recorded_at"`
	ServerReceivedAt time.Time `json:"server_received_at"`
	RangerID         string    `json:"ranger_id"`
	Source           string    `json:"source"`
	MatchedPassageID *string   `json:"matched_passage_id,omitempty"`
	IsEntry          *bool     `json:"is_entry,omitempty"`
	PhotoRef         string    `json:"photo_ref,omitempty"`
}

// IsMatched reports whether the passage has been paired.
func (p *Passage) IsMatched() bool {
	return p.MatchedPassageID != nil && *p.MatchedPassageID != ""
}

// CreatePassageRequest is the request to record a passage.
// The ranger identity comes from the access token, never from the body.
type CreatePassageRequest struct {
	ClientID    string    `json:"client_id"`
	PlateNumber string    `json:"plate_number"`
	VehicleType string    `json:"vehicle_type"`
	CheckpostID string    `json:"checkpost_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
}

// IntakeResponse is the server's answer to a recorded passage. A replayed
// client_id comes back with Duplicate=true and the originally stored row.
type IntakeResponse struct {
	Passage        *Passage   `json:"passage"`
	Duplicate      bool       `json:"duplicate"`
	Matched        bool       `json:"matched"`
	Violation      *Violation `json:"violation,omitempty"`
	ResolvedAlerts int        `json:"resolved_alerts,omitempty"`
}

// PassageListOptions filters ListPassages. Zero values are omitted.
type PassageListOptions struct {
	SegmentID   string
	CheckpostID string
	Plate       string
	Source      string
	Matched     *bool
	Since       time.Time
	Until       time.Time
	Limit       int
	Offset      int
}

func (o *PassageListOptions) query() string {
	if o == nil {
		return ""
	}
	q := url.Values{}
	if o.SegmentID != "" {
		q.Set("segment_id", o.SegmentID)
	}
	if o.CheckpostID != "" {
		q.Set("checkpost_id", o.CheckpostID)
	}
	if o.Plate != "" {
		q.Set("plate", o.Plate)
	}
	if o.Source != "" {
		q.Set("source", o.Source)
	}
	if o.Matched != nil {
		q.Set("matched", strconv.FormatBool(*o.Matched))
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

// CreatePassage records a passage. Safe to retry: the server absorbs
// replayed client_ids and returns the original row.
func (c *Client) CreatePassage(req *CreatePassageRequest) (*IntakeResponse, error) {
	var resp IntakeResponse
	if err := c.post("/api/v1/passages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPassages returns passages matching the filter. Rangers see only their
// own segment regardless of the filter.
func (c *Client) ListPassages(opts *PassageListOptions) ([]Passage, error) {
	return listResources[Passage](c, "/api/v1/passages"+opts.query())
}

// GetPassage returns a passage by ID.
func (c *Client) GetPassage(id string) (*Passage, error) {
	return getResource[Passage](c, resourcePath("/api/v1/passages/%s", id))
}

// PullPassages returns unmatched passages from the opposite checkpost of
// the caller's segment, newest first, bounded by cutoff. Ranger only; the
// checkpost comes from the token.
func (c *Client) PullPassages(cutoff time.Time, limit int) ([]Passage, error) {
	q := url.Values{}
	q.Set("cutoff", cutoff.Format(time.RFC3339))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return listResources[Passage](c, "/api/v1/passages/pull?"+q.Encode())
}

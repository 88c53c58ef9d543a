// Package health provides shared types for decoding gatewatch health responses.
//
// gatewatch's status command, gatewatchctl, and rangerd all probe the same
// /health endpoint, so the response shape lives here rather than in any one
// binary.
package health

// Response represents the API health response structure. The liveness
// probe fills the service fields; the readiness probe fills StoreLatency.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service      string `json:"service"`
		StartedAt    string `json:"started_at"`
		Uptime       string `json:"uptime"`
		UptimeSec    int64  `json:"uptime_sec"`
		StoreLatency string `json:"store_latency"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

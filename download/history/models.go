package history

import (
	"encoding/json"
	"time"
)

// Run states.
const (
	StateRunning     = "running"
	StateCompleted   = "completed"
	StateAborted     = "aborted"
	StateInterrupted = "interrupted"
	StateError       = "error"
)

// Statistics are the final counts of a run.
type Statistics struct {
	Harvested  int `json:"harvested"`
	Total      int `json:"total"`
	Downloaded int `json:"downloaded"`
	Direct     int `json:"direct"`
	Search     int `json:"search"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// RunHistory records one orchestrated run.
type RunHistory struct {
	RunID       string     `json:"run_id"`
	Command     string     `json:"command"`
	PlaylistID  string     `json:"playlist_id,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	State       string     `json:"state"`
	Phase       string     `json:"phase"`
	Statistics  Statistics `json:"statistics"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or 0 while it is still running.
func (r *RunHistory) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// ActivityEntry is a single event in the activity log.
type ActivityEntry struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// ActivityHistory represents a collection of activity entries.
type ActivityHistory struct {
	Entries []ActivityEntry `json:"entries"`
}

func (r *RunHistory) toJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (a *ActivityHistory) toJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Package history keeps a per-run summary file and a bounded activity log
// under the history directory.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxActivityEntries = 1000

// Tracker manages history tracking for runs.
type Tracker struct {
	historyPath  string
	activityPath string
	retention    int
	now          func() time.Time

	mu         sync.Mutex
	currentRun *RunHistory
	activity   *ActivityHistory
}

// NewTracker creates a tracker rooted at historyPath. retention is the number
// of run files kept; 0 keeps all.
func NewTracker(historyPath string, retention int) (*Tracker, error) {
	if retention < 0 {
		return nil, fmt.Errorf("retention must not be negative, got %d", retention)
	}
	if err := os.MkdirAll(historyPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	t := &Tracker{
		historyPath:  historyPath,
		activityPath: filepath.Join(historyPath, "activity.json"),
		retention:    retention,
		now:          time.Now,
		activity:     &ActivityHistory{Entries: make([]ActivityEntry, 0)},
	}

	if err := t.loadActivityHistory(); err != nil {
		log.Printf("WARN: activity_history_load_failed path=%s error=%v", t.activityPath, err)
	}
	return t, nil
}

// StartRun begins a new run and returns its id.
func (t *Tracker) StartRun(command, playlistID string) string {
	runID := uuid.NewString()

	t.mu.Lock()
	t.currentRun = &RunHistory{
		RunID:      runID,
		Command:    command,
		PlaylistID: playlistID,
		StartedAt:  t.now(),
		State:      StateRunning,
		Phase:      "starting",
	}
	t.mu.Unlock()

	t.AddActivity("run_started", fmt.Sprintf("%s started (run_id: %s)", command, runID), map[string]any{
		"command": command,
	})
	return runID
}

// SetPhase records the phase the current run is in.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentRun != nil {
		t.currentRun.Phase = phase
	}
}

// SetPlaylistID records the playlist the current run works on.
func (t *Tracker) SetPlaylistID(playlistID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentRun != nil {
		t.currentRun.PlaylistID = playlistID
	}
}

// StopRun finishes the current run and writes its summary file.
func (t *Tracker) StopRun(state string, stats Statistics, errMsg string) error {
	t.mu.Lock()
	run := t.currentRun
	if run == nil {
		t.mu.Unlock()
		return nil
	}
	now := t.now()
	run.CompletedAt = &now
	run.State = state
	run.Statistics = stats
	run.Error = errMsg
	t.currentRun = nil
	t.mu.Unlock()

	if err := t.saveRunHistory(run); err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}

	t.AddActivity("run_"+state, fmt.Sprintf("%s %s (run_id: %s)", run.Command, state, run.RunID), map[string]any{
		"state":      state,
		"downloaded": stats.Downloaded,
		"failed":     stats.Failed,
	})

	if t.retention > 0 {
		if err := t.cleanupOldRuns(); err != nil {
			log.Printf("WARN: history_cleanup_failed error=%v", err)
		}
	}
	return nil
}

// GetCurrentRun returns a copy of the in-progress run, or nil.
func (t *Tracker) GetCurrentRun() *RunHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentRun == nil {
		return nil
	}
	runCopy := *t.currentRun
	return &runCopy
}

// GetRunHistory loads a specific run by id.
func (t *Tracker) GetRunHistory(runID string) (*RunHistory, error) {
	data, err := os.ReadFile(t.runPath(runID))
	if err != nil {
		return nil, err
	}

	var run RunHistory
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRuns returns all stored runs, newest first. Unreadable run files are skipped.
func (t *Tracker) ListRuns() ([]*RunHistory, error) {
	entries, err := os.ReadDir(t.historyPath)
	if err != nil {
		return nil, err
	}

	var runs []*RunHistory
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		runID := strings.TrimSuffix(strings.TrimPrefix(name, "run_"), ".json")
		run, err := t.GetRunHistory(runID)
		if err != nil {
			log.Printf("WARN: history_run_unreadable run_id=%s error=%v", runID, err)
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// GetActivityHistory returns up to limit of the most recent entries; 0 means all.
func (t *Tracker) GetActivityHistory(limit int) []ActivityEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.activity.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}
	out := make([]ActivityEntry, len(entries))
	copy(out, entries)
	return out
}

// AddActivity appends an entry to the activity log and persists it. Entries
// recorded during a run carry its id.
func (t *Tracker) AddActivity(activityType, message string, details map[string]any) {
	t.mu.Lock()
	entry := ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: t.now(),
		Type:      activityType,
		Message:   message,
		Details:   details,
	}
	if t.currentRun != nil {
		entry.RunID = t.currentRun.RunID
	}
	t.activity.Entries = append(t.activity.Entries, entry)
	if len(t.activity.Entries) > maxActivityEntries {
		t.activity.Entries = t.activity.Entries[len(t.activity.Entries)-maxActivityEntries:]
	}
	data, err := t.activity.toJSON()
	t.mu.Unlock()

	if err == nil {
		err = os.WriteFile(t.activityPath, data, 0644)
	}
	if err != nil {
		log.Printf("WARN: activity_history_save_failed error=%v", err)
	}
}

func (t *Tracker) runPath(runID string) string {
	return filepath.Join(t.historyPath, fmt.Sprintf("run_%s.json", runID))
}

func (t *Tracker) saveRunHistory(run *RunHistory) error {
	data, err := run.toJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(t.runPath(run.RunID), data, 0644)
}

func (t *Tracker) loadActivityHistory() error {
	data, err := os.ReadFile(t.activityPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var activity ActivityHistory
	if err := json.Unmarshal(data, &activity); err != nil {
		return err
	}
	if activity.Entries == nil {
		activity.Entries = make([]ActivityEntry, 0)
	}
	t.activity = &activity
	return nil
}

// cleanupOldRuns removes the oldest run files beyond the retention limit.
func (t *Tracker) cleanupOldRuns() error {
	runs, err := t.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) <= t.retention {
		return nil
	}

	for _, run := range runs[t.retention:] {
		if err := os.Remove(t.runPath(run.RunID)); err != nil {
			log.Printf("WARN: history_run_remove_failed run_id=%s error=%v", run.RunID, err)
		}
	}
	return nil
}

// Package checkpoint persists partial harvest progress so an aborted harvest
// can be resumed.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/sv4u/playlistdl/download/track"
)

// Checkpoint is the persisted harvest state.
type Checkpoint struct {
	Tracks       []track.Track `json:"tracks"`
	CurrentIndex int           `json:"current_index"`
	Timestamp    float64       `json:"timestamp"`
	TotalTracks  int           `json:"total_tracks"`
	PlaylistID   string        `json:"playlist_id,omitempty"`
}

// SavedAt returns the checkpoint timestamp as a time.
func (c *Checkpoint) SavedAt() time.Time {
	sec := int64(c.Timestamp)
	nsec := int64((c.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Store reads and writes a single checkpoint file. Writes and removals hold
// an exclusive advisory lock on a sibling ".lock" file so overlapping
// harvest processes cannot interleave.
type Store struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

// NewStore creates a store for the checkpoint file at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Save atomically overwrites the checkpoint with tracks and cursor.
func (s *Store) Save(playlistID string, tracks []track.Track, cursor int) error {
	if tracks == nil {
		tracks = []track.Track{}
	}
	if cursor > len(tracks) {
		return fmt.Errorf("checkpoint cursor %d exceeds %d tracks", cursor, len(tracks))
	}

	cp := Checkpoint{
		Tracks:       tracks,
		CurrentIndex: cursor,
		Timestamp:    float64(s.now().UnixNano()) / 1e9,
		TotalTracks:  len(tracks),
		PlaylistID:   playlistID,
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := s.withLock(func() error { return track.WriteFileAtomic(s.path, data) }); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the stored checkpoint. A missing or unreadable checkpoint
// yields an empty checkpoint and ok=false; it is never an error.
func (s *Store) Load() (cp Checkpoint, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: checkpoint_unreadable path=%s error=%v", s.path, err)
		}
		return Checkpoint{}, false
	}

	if err := json.Unmarshal(data, &cp); err != nil {
		log.Printf("WARN: checkpoint_corrupt path=%s error=%v", s.path, err)
		return Checkpoint{}, false
	}
	if cp.CurrentIndex < 0 || cp.CurrentIndex > len(cp.Tracks) {
		log.Printf("WARN: checkpoint_cursor_invalid path=%s current_index=%d tracks=%d", s.path, cp.CurrentIndex, len(cp.Tracks))
		return Checkpoint{}, false
	}
	return cp, true
}

// Exists reports whether a usable checkpoint is stored.
func (s *Store) Exists() bool {
	_, ok := s.Load()
	return ok
}

// Clear removes the checkpoint. Clearing an absent checkpoint is not an error.
func (s *Store) Clear() error {
	err := s.withLock(func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Printf("WARN: checkpoint_unlock_failed path=%s error=%v", s.path, err)
		}
	}()
	return fn()
}

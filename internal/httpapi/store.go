// Package httpapi serves the latest snapshot over a read-only HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hearings/internal/logger"
	"hearings/internal/metrics"
	"hearings/internal/models"
	"hearings/internal/snapshot"
	"hearings/pkg/metadata"
)

// payload is the served snapshot. updated_at is "" when no snapshot exists.
type payload struct {
	UpdatedAt string           `json:"updated_at"`
	Count     int              `json:"count"`
	Meetings  []models.Meeting `json:"meetings"`
}

// state is one loaded snapshot, pre-encoded.
type state struct {
	updatedAt time.Time
	meta      *metadata.Metadata
	wrapped   []byte
	legacy    []byte
	etag      string
	count     int
}

// Store holds the encoded snapshot the API serves.
type Store struct {
	log     *logger.Logger
	metrics *metrics.API
	current *state
	path    string
	mu      sync.RWMutex
}

// NewStore creates a store for the snapshot at path. Call Reload before serving.
func NewStore(path string, m *metrics.API, log *logger.Logger) *Store {
	s := &Store{path: path, metrics: m, log: log}
	s.current, _ = encodeState(nil, time.Time{})

	return s
}

// Reload reads the snapshot file. A missing file serves an empty snapshot;
// a file that does not decode keeps the previous state.
func (s *Store) Reload() error {
	st, err := s.load()
	if s.metrics != nil {
		count := 0
		if st != nil {
			count = st.count
		}

		s.metrics.ObserveReload(count, err)
	}

	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()

	return nil
}

func (s *Store) load() (*state, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return encodeState(nil, time.Time{})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, err
	}

	// An unchanged rewrite keeps the encoded state and its ETag.
	if cur := s.snapshot(); cur.updatedAt.Equal(snap.UpdatedAt) {
		if ok, _ := metadata.Verify(snap.Meetings, cur.meta); ok {
			return cur, nil
		}
	}

	return encodeState(snap.Meetings, snap.UpdatedAt)
}

func encodeState(meetings []models.Meeting, updatedAt time.Time) (*state, error) {
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	p := payload{Meetings: meetings, Count: len(meetings)}
	if !updatedAt.IsZero() {
		p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	}

	wrapped, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	legacy, err := json.Marshal(meetings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	meta, err := metadata.New(meetings, len(meetings), updatedAt)
	if err != nil {
		return nil, err
	}

	return &state{
		updatedAt: updatedAt,
		meta:      meta,
		wrapped:   wrapped,
		legacy:    legacy,
		etag:      metadata.ETag(metadata.CalculateHash(wrapped)),
		count:     len(meetings),
	}, nil
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Watch reloads whenever the snapshot file is created, written or renamed
// into place. It returns when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// The writer replaces the file by rename, so watch the directory.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)

	s.log.Info("watching snapshot", "path", s.path)

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(evt.Name) != target || !evt.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) {
				continue
			}

			if err := s.Reload(); err != nil {
				s.log.Warn("snapshot reload failed, serving previous", "path", s.path, "err", err)

				continue
			}

			s.log.Info("snapshot reloaded", "path", s.path, "count", s.snapshot().count)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.log.Warn("watch error", "err", err)
		case <-ctx.Done():
			return nil
		}
	}
}

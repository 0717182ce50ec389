// Package snapshot persists the merged meeting set and reads it back.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"hearings/internal/models"
	"hearings/pkg/metadata"
)

// Snapshot errors.
var (
	// ErrWrite wraps every failure to persist a snapshot.
	ErrWrite = errors.New("snapshot write failed")
	// ErrCorrupt means an existing snapshot could not be decoded.
	ErrCorrupt = errors.New("snapshot is corrupt")
	// ErrRead means an existing snapshot could not be read at all.
	ErrRead = errors.New("snapshot read failed")
)

const (
	backupSuffix  = ".bak"
	corruptSuffix = ".corrupt"
	fileMode      = 0o644
	dirMode       = 0o755
)

// Options controls how a snapshot is written.
type Options struct {
	PrettyPrint  bool
	CreateBackup bool
}

// Write serializes meetings as {updated_at, count, meetings} to path. The
// file is replaced by rename from a synced temp file in the same directory,
// so readers see either the old or the new snapshot.
func Write(path string, meetings []models.Meeting, now time.Time, opts Options) (*models.Snapshot, error) {
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	snap := &models.Snapshot{
		UpdatedAt: now.UTC(),
		Count:     len(meetings),
		Meetings:  meetings,
	}

	data, err := encode(snap, opts.PrettyPrint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory %s: %w", ErrWrite, dir, err)
	}

	if opts.CreateBackup {
		if err := copyIfExists(path, path+backupSuffix); err != nil {
			return nil, fmt.Errorf("%w: backup: %w", ErrWrite, err)
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return snap, nil
}

func encode(snap *models.Snapshot, pretty bool) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

func copyIfExists(src, dst string) error {
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, fileMode)
}

// Load reads a snapshot written by Write, or the legacy form that is only
// the meetings array. A missing file is an empty snapshot. A file that does
// not decode yields an empty snapshot and an ErrCorrupt error; it is copied
// aside to path+".corrupt" first so the next write cannot lose it.
func Load(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &models.Snapshot{Meetings: []models.Meeting{}}, nil
	}

	if err != nil {
		return &models.Snapshot{Meetings: []models.Meeting{}}, fmt.Errorf("%w: %w", ErrRead, err)
	}

	snap, err := Decode(data)
	if err != nil {
		if cerr := os.WriteFile(path+corruptSuffix, data, fileMode); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to keep corrupt copy: %w", cerr))
		}

		return &models.Snapshot{Meetings: []models.Meeting{}}, err
	}

	return snap, nil
}

// Decode parses either snapshot form.
func Decode(data []byte) (*models.Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	if trimmed[0] == '[' {
		var meetings []models.Meeting
		if err := json.Unmarshal(trimmed, &meetings); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}

		return &models.Snapshot{Count: len(meetings), Meetings: meetings}, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if snap.Meetings == nil {
		snap.Meetings = []models.Meeting{}
	}

	snap.Count = len(snap.Meetings)

	return &snap, nil
}

// Digest returns the content hash of a meeting set.
func Digest(meetings []models.Meeting) string {
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	hash, err := metadata.JSONHash(meetings)
	if err != nil {
		return ""
	}

	return hash
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/logger"
)

const (
	// SnapshotVersion is the on-disk format version
	SnapshotVersion = 1

	snapshotFile = "following_data.json"
	backupPrefix = "following_backup_"
)

// Snapshot is a locally cached copy of the account's following list
type Snapshot struct {
	Version   int                     `json:"version"`
	UpdatedAt time.Time               `json:"updated_at"`
	Total     int                     `json:"total"`
	Users     []bilibili.FollowRecord `json:"users"`
}

// NewSnapshot builds a snapshot from a freshly fetched following list
func NewSnapshot(users []bilibili.FollowRecord) *Snapshot {
	return &Snapshot{
		Version:   SnapshotVersion,
		UpdatedAt: time.Now().UTC(),
		Total:     len(users),
		Users:     users,
	}
}

// Find returns the record for mid, or nil if the snapshot has no such entry
func (s *Snapshot) Find(mid int64) *bilibili.FollowRecord {
	for i := range s.Users {
		if s.Users[i].MID == mid {
			return &s.Users[i]
		}
	}
	return nil
}

// Remove drops mid from the snapshot and reports whether it was present
func (s *Snapshot) Remove(mid int64) bool {
	for i := range s.Users {
		if s.Users[i].MID == mid {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			s.Total = len(s.Users)
			return true
		}
	}
	return false
}

// MIDs returns the account IDs of every snapshot entry, in snapshot order
func (s *Snapshot) MIDs() []int64 {
	mids := make([]int64, len(s.Users))
	for i, u := range s.Users {
		mids[i] = u.MID
	}
	return mids
}

// Store persists following snapshots under a data directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// snapshot behind.
type Store struct {
	dir    string
	logger logger.Logger
}

// New creates a snapshot store rooted at dir, creating the directory if
// needed
func New(dir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir, logger: log}, nil
}

// Path returns the snapshot file path
func (s *Store) Path() string {
	return filepath.Join(s.dir, snapshotFile)
}

// Exists reports whether a snapshot has been saved before
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads the current snapshot from disk
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no snapshot found at %s, run sync first", s.Path())
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// Save writes the snapshot atomically
func (s *Store) Save(snap *Snapshot) error {
	snap.Version = SnapshotVersion
	snap.Total = len(snap.Users)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tempFile := s.Path() + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary snapshot: %w", err)
	}
	if err := os.Rename(tempFile, s.Path()); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary snapshot: %w", err)
	}

	s.logger.DebugWithFields("snapshot saved", map[string]interface{}{
		"path":  s.Path(),
		"users": snap.Total,
	})
	return nil
}

// Backup copies the current snapshot to a timestamped backup file and
// returns its path. Backing up when no snapshot exists is not an error.
func (s *Store) Backup() (string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read snapshot for backup: %w", err)
	}

	name := fmt.Sprintf("%s%s.json", backupPrefix, time.Now().UTC().Format("20060102T150405.000"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	s.logger.DebugWithFields("snapshot backed up", map[string]interface{}{"path": path})
	return path, nil
}

// Backups returns the paths of existing backups, newest first
func (s *Store) Backups() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".json") {
			backups = append(backups, filepath.Join(s.dir, name))
		}
	}
	// Timestamps in the names sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// PruneBackups deletes all but the keep newest backups
func (s *Store) PruneBackups(keep int) error {
	if keep < 0 {
		keep = 0
	}
	backups, err := s.Backups()
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}

	for _, path := range backups[keep:] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", path, err)
		}
		s.logger.DebugWithFields("pruned old backup", map[string]interface{}{"path": path})
	}
	return nil
}

package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"roboteamup/internal/store"
)

// BackupService snapshots the whole row store to JSON files and
// restores from them.
type BackupService struct {
	store     *store.Store
	backupDir string
}

// NewBackupService creates a new backup service
func NewBackupService(s *store.Store, backupDir string) *BackupService {
	return &BackupService{store: s, backupDir: backupDir}
}

// Snapshot is the on-disk backup format: every table's records keyed by
// table name.
type Snapshot struct {
	CreatedAt time.Time                 `json:"createdAt"`
	Tables    map[string][]store.Record `json:"tables"`
}

// Export writes a timestamped snapshot of every table and returns the
// file path.
func (s *BackupService) Export() (string, error) {
	snap := Snapshot{
		CreatedAt: time.Now(),
		Tables:    make(map[string][]store.Record),
	}
	for _, schema := range store.Tables() {
		recs, err := s.store.ReadAll(schema.Name)
		if err != nil {
			return "", fmt.Errorf("failed to read table %s: %w", schema.Name, err)
		}
		snap.Tables[schema.Name] = recs
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(s.backupDir, fmt.Sprintf("backup-%s.json", snap.CreatedAt.Format("20060102-150405")))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.Printf("Backup written: %s (%d tables)", path, len(snap.Tables))
	return path, nil
}

// Import replaces the contents of every table present in the snapshot
// file. Tables absent from the snapshot are left alone.
func (s *BackupService) Import(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	for table, recs := range snap.Tables {
		if _, err := s.store.DeleteWhere(table, func(store.Record) bool { return true }); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		if _, err := s.store.AppendMany(table, recs); err != nil {
			return fmt.Errorf("failed to restore table %s: %w", table, err)
		}
	}
	log.Printf("Backup restored from %s (%d tables)", path, len(snap.Tables))
	return nil
}

// RunNightly exports a snapshot once a day until stop is closed
func (s *BackupService) RunNightly(stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := s.Export(); err != nil {
				log.Printf("Nightly backup failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

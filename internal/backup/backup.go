// Package backup keeps copies of manifests before they are overwritten.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	bferrors "github.com/adamancini/brewfile/internal/errors"
)

const ext = ".yaml"

// Backup is a saved copy of a manifest file.
type Backup struct {
	ID        string    `yaml:"id" json:"id"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	Note      string    `yaml:"note,omitempty" json:"note,omitempty"`
	Version   string    `yaml:"version" json:"version"`
	// Source is the manifest path the copy was taken from.
	Source  string `yaml:"source" json:"source"`
	Content string `yaml:"content" json:"content"`
}

// BackupInfo provides summary information about a backup for listing.
type BackupInfo struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Source    string    `json:"source" yaml:"source"`
	Size      int64     `json:"size" yaml:"size"`
}

// Manager handles backup operations.
type Manager struct {
	backupDir string
	version   string
}

// NewManager creates a backup manager under $XDG_CACHE_HOME/brewfile/backups.
func NewManager(version string) *Manager {
	return NewManagerWithDir(filepath.Join(xdg.CacheHome, "brewfile", "backups"), version)
}

// NewManagerWithDir creates a backup manager with a custom directory (for testing).
func NewManagerWithDir(backupDir, version string) *Manager {
	return &Manager{
		backupDir: backupDir,
		version:   version,
	}
}

// BackupDir returns the backup directory path.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// Create saves a copy of the manifest at path.
func (m *Manager) Create(path, note string) (*Backup, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bferrors.Newf(bferrors.ErrMissingFile, "%s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := time.Now()
	id := now.Format("2006-01-02-150405")
	for i := 1; m.exists(id); i++ {
		id = fmt.Sprintf("%s-%d", now.Format("2006-01-02-150405"), i)
	}

	b := &Backup{
		ID:        id,
		CreatedAt: now,
		Note:      note,
		Version:   m.version,
		Source:    path,
		Content:   string(content),
	}
	data, err := yaml.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}
	return b, nil
}

// List returns all backups sorted by creation time (newest first).
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		b, err := m.load(m.path(strings.TrimSuffix(entry.Name(), ext)))
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			ID:        b.ID,
			CreatedAt: b.CreatedAt,
			Note:      b.Note,
			Source:    b.Source,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get retrieves a backup by ID. Use "latest" to get the most recent backup.
func (m *Manager) Get(id string) (*Backup, error) {
	if id == "latest" {
		backups, err := m.List()
		if err != nil {
			return nil, err
		}
		if len(backups) == 0 {
			return nil, bferrors.New(bferrors.ErrMissingFile, "no backups found")
		}
		id = backups[0].ID
	}
	return m.load(m.path(id))
}

// Restore writes the content of backup id to dest, or to its source path
// when dest is empty.
func (m *Manager) Restore(id, dest string) (string, error) {
	b, err := m.Get(id)
	if err != nil {
		return "", err
	}
	if dest == "" {
		dest = b.Source
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, []byte(b.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", dest, err)
	}
	return dest, nil
}

// Delete removes a backup by ID.
func (m *Manager) Delete(id string) error {
	if !m.exists(id) {
		return bferrors.Newf(bferrors.ErrMissingFile, "backup not found: %s", id)
	}
	if err := os.Remove(m.path(id)); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// MoveAside renames the manifest at input to dest, the configured backup
// path. A missing input is not an error.
func MoveAside(input, dest string) error {
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	if err := os.Rename(input, dest); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", input, dest, err)
	}
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.backupDir, id+ext)
}

func (m *Manager) exists(id string) bool {
	_, err := os.Stat(m.path(id))
	return err == nil
}

func (m *Manager) load(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bferrors.Newf(bferrors.ErrMissingFile, "backup not found: %s", strings.TrimSuffix(filepath.Base(path), ext))
		}
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var b Backup
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse backup file: %w", err)
	}
	return &b, nil
}

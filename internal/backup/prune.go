package backup

import (
	"fmt"

	bferrors "github.com/adamancini/brewfile/internal/errors"
)

// DefaultKeepCount is the number of manifest copies kept by default.
const DefaultKeepCount = 20

// PruneResult contains information about what was pruned.
type PruneResult struct {
	Deleted []BackupInfo `json:"deleted" yaml:"deleted"`
	Kept    int          `json:"kept" yaml:"kept"`
}

// Prune removes old backups, keeping only the most recent keep backups.
func (m *Manager) Prune(keep int) (*PruneResult, error) {
	if keep < 0 {
		return nil, bferrors.New(bferrors.ErrInvalidInput, "keep count must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Kept: len(backups)}
	if len(backups) <= keep {
		return result, nil
	}

	result.Kept = keep
	for _, b := range backups[keep:] {
		if err := m.Delete(b.ID); err != nil {
			return nil, fmt.Errorf("failed to delete backup %s: %w", b.ID, err)
		}
		result.Deleted = append(result.Deleted, b)
	}
	return result, nil
}

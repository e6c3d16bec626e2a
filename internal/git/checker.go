package git

import (
	"fmt"
	"strconv"
	"strings"
)

// Level represents the severity of a git status.
type Level string

const (
	LevelOK      Level = "ok"      // Clean and in sync
	LevelInfo    Level = "info"    // Ahead or behind remote
	LevelWarning Level = "warning" // Uncommitted changes
	LevelError   Level = "error"   // Git operation failed
)

// Status represents the git status of the manifest clone.
type Status struct {
	Dir            string `json:"dir" yaml:"dir"`
	HasUncommitted bool   `json:"has_uncommitted" yaml:"has_uncommitted"`
	Ahead          int    `json:"ahead" yaml:"ahead"`
	Behind         int    `json:"behind" yaml:"behind"`
	Remote         string `json:"remote,omitempty" yaml:"remote,omitempty"`
	Level          Level  `json:"level" yaml:"level"`
	Message        string `json:"message" yaml:"message"`
}

// Status inspects the clone without fetching.
func (r *Repository) Status() Status {
	status := Status{Dir: r.Dir}

	out, err := r.git("status", "--porcelain")
	if err != nil {
		status.Level = LevelError
		status.Message = fmt.Sprintf("failed to check working tree: %v", err)
		return status
	}
	if strings.TrimSpace(string(out)) != "" {
		status.HasUncommitted = true
		status.Level = LevelWarning
		status.Message = "uncommitted changes detected (consider: " + r.Program + " push)"
		return status
	}

	out, err = r.git("rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		status.Level = LevelOK
		status.Message = "clean (no remote tracking branch)"
		return status
	}
	status.Remote = strings.TrimSpace(string(out))

	ahead, behind, err := r.aheadBehind(status.Remote)
	if err != nil {
		status.Level = LevelOK
		status.Message = "clean"
		return status
	}
	status.Ahead = ahead
	status.Behind = behind

	switch {
	case behind > 0 && ahead > 0:
		status.Level = LevelInfo
		status.Message = fmt.Sprintf("%d commits ahead, %d commits behind remote (consider: %s pull && %s push)", ahead, behind, r.Program, r.Program)
	case behind > 0:
		status.Level = LevelInfo
		status.Message = fmt.Sprintf("%d commits behind remote (consider: %s pull)", behind, r.Program)
	case ahead > 0:
		status.Level = LevelInfo
		status.Message = fmt.Sprintf("%d commits ahead of remote (consider: %s push)", ahead, r.Program)
	default:
		status.Level = LevelOK
		status.Message = "clean and in sync"
	}
	return status
}

func (r *Repository) aheadBehind(remote string) (ahead, behind int, err error) {
	out, err := r.git("rev-list", "--left-right", "--count", "HEAD..."+remote)
	if err != nil {
		return 0, 0, fmt.Errorf("git rev-list failed: %w", err)
	}

	parts := strings.Fields(strings.TrimSpace(string(out)))
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected output format: %s", out)
	}
	if ahead, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid ahead count: %w", err)
	}
	if behind, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid behind count: %w", err)
	}
	return ahead, behind, nil
}

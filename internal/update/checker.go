// Package update looks up the latest published brew-file release.
//
// brew-file is installed and upgraded by Homebrew itself, so this package
// only reports whether a newer release exists.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOwner and DefaultRepo name the GitHub repository releases come from.
	DefaultOwner = "adamancini"
	DefaultRepo  = "brewfile"

	// UpgradeCommand is the command suggested when a newer release exists.
	UpgradeCommand = "brew upgrade brew-file"
)

// Release is the subset of a GitHub release brew-file reports.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// Info compares the running version with the latest release.
type Info struct {
	Available      bool   `json:"available" yaml:"available" toml:"available"`
	CurrentVersion string `json:"current_version" yaml:"current_version" toml:"current_version"`
	LatestVersion  string `json:"latest_version" yaml:"latest_version" toml:"latest_version"`
	ReleaseURL     string `json:"release_url" yaml:"release_url" toml:"release_url"`
}

func (i Info) String() string {
	if !i.Available {
		return fmt.Sprintf("brew-file %s is the latest release.", i.CurrentVersion)
	}
	return fmt.Sprintf("brew-file %s is available (installed: %s).\n%s\nUpgrade with: %s",
		i.LatestVersion, i.CurrentVersion, i.ReleaseURL, UpgradeCommand)
}

// Checker queries the GitHub releases API.
type Checker struct {
	client  *http.Client
	baseURL string
	owner   string
	repo    string
	token   string
}

// NewChecker creates a checker for owner/repo.
func NewChecker(owner, repo string) *Checker {
	return &Checker{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.github.com",
		owner:   owner,
		repo:    repo,
	}
}

// WithToken sets an optional GitHub token, which raises the API rate limit.
func (c *Checker) WithToken(token string) *Checker {
	c.token = token
	return c
}

// WithBaseURL points the checker at another API endpoint.
func (c *Checker) WithBaseURL(url string) *Checker {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// Latest fetches the latest published release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &release, nil
}

// Check compares current with the latest release.
func (c *Checker) Check(ctx context.Context, current string) (*Info, error) {
	release, err := c.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}

	currentVer, err := ParseVersion(current)
	if err != nil {
		return nil, fmt.Errorf("invalid current version: %w", err)
	}
	latestVer, err := ParseVersion(release.TagName)
	if err != nil {
		return nil, fmt.Errorf("invalid latest version: %w", err)
	}

	return &Info{
		Available:      latestVer.IsGreaterThan(currentVer),
		CurrentVersion: NormalizeVersion(current),
		LatestVersion:  NormalizeVersion(release.TagName),
		ReleaseURL:     release.HTMLURL,
	}, nil
}

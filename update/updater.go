// Package update implements tb's self-update from GitHub releases.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Release describes an available update and where to download it.
type Release struct {
	Version string
	Asset   string
	URL     string
}

// githubRelease is the subset of the GitHub releases API response we use.
type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Updater checks for and applies self-updates from GitHub releases.
type Updater struct {
	CurrentVersion string
	RepoOwner      string
	RepoName       string

	apiBase    string
	httpClient *http.Client
}

// New returns an Updater configured for the zcong1993/taskbook repository.
func New(currentVersion string) *Updater {
	return &Updater{
		CurrentVersion: currentVersion,
		RepoOwner:      "zcong1993",
		RepoName:       "taskbook",
		apiBase:        "https://api.github.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Check queries the GitHub releases API for the latest release. It returns
// nil, nil when the running build is already current; dev builds never
// update.
func (u *Updater) Check(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", u.apiBase, u.RepoOwner, u.RepoName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "taskbook/"+u.CurrentVersion)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned %d", resp.StatusCode)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	current := strings.TrimPrefix(u.CurrentVersion, "v")
	if latest == current || u.CurrentVersion == "dev" {
		return nil, nil // already up to date (or dev build)
	}

	asset := platformAsset(rel.Assets, runtime.GOOS, runtime.GOARCH)
	if asset == nil {
		return nil, fmt.Errorf("no release asset for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	return &Release{
		Version: rel.TagName,
		Asset:   asset.Name,
		URL:     asset.BrowserDownloadURL,
	}, nil
}

// platformAsset picks the release asset matching the given OS and
// architecture, tolerating the common arch naming aliases.
func platformAsset(assets []githubAsset, goos, goarch string) *githubAsset {
	arches := []string{goarch}
	switch goarch {
	case "amd64":
		arches = append(arches, "x86_64")
	case "arm64":
		arches = append(arches, "aarch64")
	}

	for i, a := range assets {
		name := strings.ToLower(a.Name)
		if !strings.Contains(name, goos) {
			continue
		}
		for _, arch := range arches {
			if strings.Contains(name, arch) {
				return &assets[i]
			}
		}
	}
	return nil
}

// Apply downloads the release binary and replaces the running executable.
// The download lands in the executable's own directory so the final rename
// never crosses filesystems.
func (u *Updater) Apply(ctx context.Context, release *Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(exe), ".tb-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()    //nolint:errcheck
		os.Remove(tmpPath) //nolint:errcheck
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, release.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "taskbook/"+u.CurrentVersion)
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download release: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	// Rename is the atomicity boundary; the running binary stays intact
	// until the new one is fully in place.
	if err := os.Rename(tmpPath, exe); err != nil {
		return fmt.Errorf("replace binary: %w", err)
	}
	return nil
}

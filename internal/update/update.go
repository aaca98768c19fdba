// Package update checks for and installs newer calc releases.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository is the GitHub slug releases are published under.
const Repository = "pengelbrecht/calc"

// DevVersion is the version string of unreleased builds.
const DevVersion = "dev"

// ErrDevBuild is returned when comparing against an unreleased build.
var ErrDevBuild = errors.New("development build has no comparable version")

// InstallMethod describes how the running binary was installed.
type InstallMethod int

const (
	InstallDirect InstallMethod = iota
	InstallHomebrew
	InstallGo
)

// Release is the subset of release metadata callers need.
type Release struct {
	Version   string
	AssetURL  string
	AssetName string
}

// DetectInstallMethod inspects the executable path.
func DetectInstallMethod() InstallMethod {
	exe, err := os.Executable()
	if err != nil {
		return InstallDirect
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return installMethodFor(exe)
}

func installMethodFor(path string) InstallMethod {
	p := filepath.ToSlash(path)
	switch {
	case strings.Contains(p, "/Cellar/") || strings.Contains(p, "/homebrew/") || strings.Contains(p, "/linuxbrew/"):
		return InstallHomebrew
	case strings.Contains(p, "/go/bin/"):
		return InstallGo
	}
	return InstallDirect
}

// CheckForUpdate reports the latest release and whether it is newer than current.
func CheckForUpdate(ctx context.Context, current string) (*Release, bool, error) {
	if current == DevVersion || current == "" {
		return nil, false, ErrDevBuild
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return nil, false, fmt.Errorf("detect latest release: %w", err)
	}
	if !found {
		return nil, false, fmt.Errorf("no release found for %s/%s", Repository, osArch())
	}

	rel := &Release{
		Version:   latest.Version(),
		AssetURL:  latest.AssetURL,
		AssetName: latest.AssetName,
	}
	return rel, !latest.LessOrEqual(strings.TrimPrefix(current, "v")), nil
}

// Install replaces the running executable with rel.
func Install(ctx context.Context, rel *Release) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, rel.AssetURL, rel.AssetName, exe); err != nil {
		return fmt.Errorf("install %s: %w", rel.Version, err)
	}
	return nil
}

func osArch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Package dotdir resolves the .streampipe/ directory that holds persistent
// configuration. A project-local ./.streampipe/ takes precedence over the
// user-wide ~/.streampipe/; commands may override both with an explicit
// directory.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = ".streampipe"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .streampipe/ directory to use.
// Order of precedence:
//  1. Provided override (created if missing)
//  2. Local ./.streampipe/ dir, if it exists
//  3. Home ~/.streampipe/ dir, if it exists
//
// When no directory is found and no override is given, Target returns an
// empty string; callers fall back to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating config directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if dir, ok := m.localDir(); ok {
		return filepath.Abs(dir)
	}
	if dir, ok := m.homeDir(); ok {
		return filepath.Abs(dir)
	}

	return "", nil
}

func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return existingDir(filepath.Join(cwd, dirName))
}

func (m *Manager) homeDir() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return existingDir(filepath.Join(home, dirName))
}

func existingDir(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}

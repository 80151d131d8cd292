package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths centralizes every file system location the indexer touches. All
// relative configuration paths resolve against the executable directory so
// the tool behaves the same regardless of the working directory it is
// launched from.
type Paths struct {
	ExecutableDir string
	DataDir       string
	BatchesDir    string
	IndexFile     string
	LogsDir       string
}

// NewPaths resolves the configured locations.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	execDir, err := getExecutableDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine executable directory: %w", err)
	}
	return &Paths{
		ExecutableDir: execDir,
		DataDir:       resolve(execDir, cfg.DataDir),
		BatchesDir:    resolve(execDir, cfg.BatchesDir),
		IndexFile:     resolve(execDir, cfg.IndexFile),
		LogsDir:       resolve(execDir, cfg.LogsDir),
	}, nil
}

// GetLogPath returns the path for a named log file inside the logs directory.
func (p *Paths) GetLogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}

// EnsureDirectories creates every directory the indexer writes into.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.BatchesDir, p.LogsDir, filepath.Dir(p.IndexFile)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// getExecutableDir returns the directory holding the running binary.
func getExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		resolved = exe
	}
	return filepath.Dir(resolved), nil
}

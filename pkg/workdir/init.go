package workdir

import (
	"errors"
	"fmt"
	"os"
)

const gitignoreContent = "local/\n"

// EnsureStructure creates the model API, export and local/ directories and
// the .gitignore file if they are missing. It is idempotent.
func EnsureStructure(d Dir, cfg Config) error {
	for _, dir := range []string{d.ModelAPIDir(cfg), d.ExportDir(cfg), d.LocalDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("workdir: create %s: %w", dir, err)
		}
	}

	if err := ensureGitignore(d); err != nil {
		return fmt.Errorf("workdir: gitignore: %w", err)
	}

	return nil
}

// Bootstrap creates the root, writes cfg as the workspace config unless one
// already exists, and ensures the rest of the layout. It reports whether a
// config file was written.
func Bootstrap(d Dir, cfg Config) (bool, error) {
	if err := os.MkdirAll(d.Root(), 0o750); err != nil {
		return false, fmt.Errorf("workdir: create root: %w", err)
	}

	wrote := false
	if _, err := os.Stat(d.ConfigPath()); errors.Is(err, os.ErrNotExist) {
		if err := SaveConfig(d.ConfigPath(), cfg); err != nil {
			return false, err
		}
		wrote = true
	} else if err != nil {
		return false, fmt.Errorf("workdir: stat config: %w", err)
	}

	if err := EnsureStructure(d, cfg); err != nil {
		return wrote, err
	}

	return wrote, nil
}

// ensureGitignore creates the .gitignore file if it does not exist.
func ensureGitignore(d Dir) error {
	path := d.GitignorePath()

	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}

	return os.WriteFile(path, []byte(gitignoreContent), 0o600)
}

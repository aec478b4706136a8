// Package workdir encapsulates all path knowledge for the .aivctl/ workspace
// directory. It provides a Dir value object with accessors for the config
// file, the model API records, spreadsheet exports and local runtime state.
package workdir

import (
	"os"
	"path/filepath"
	"sort"
)

// DefaultName is the directory created by `aivctl init`.
const DefaultName = ".aivctl"

// Dir is a value object that resolves paths within a .aivctl/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory layout.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .aivctl/ directory.
func (d Dir) Root() string { return d.root }

// Exists reports whether the root directory exists.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)
	return err == nil && info.IsDir()
}

// ConfigPath returns the path to the workspace config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// ModelAPIDir returns the directory holding model API records. A relative
// override from the config is resolved against the root.
func (d Dir) ModelAPIDir(cfg Config) string { return d.resolve(cfg.ModelAPIDir, "modelapis") }

// ExportDir returns the directory checklist exports are written to.
func (d Dir) ExportDir(cfg Config) string { return d.resolve(cfg.ExportDir, "exports") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// CatalogCachePath returns the path of the cached plugin list inside local/.
func (d Dir) CatalogCachePath() string { return filepath.Join(d.root, "local", "catalog.json") }

// GitignorePath returns the path to the .gitignore file inside .aivctl/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

func (d Dir) resolve(override, def string) string {
	switch {
	case override == "":
		return filepath.Join(d.root, def)
	case filepath.IsAbs(override):
		return override
	default:
		return filepath.Join(d.root, override)
	}
}

// ModelAPIFiles returns sorted paths of all *.yaml and *.yml records in the
// model API directory (non-recursive). Returns nil if there are none.
func (d Dir) ModelAPIFiles(cfg Config) []string {
	dir := d.ModelAPIDir(cfg)

	var matches []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		matches = append(matches, m...)
	}

	if len(matches) == 0 {
		return nil
	}

	sort.Strings(matches)

	return matches
}

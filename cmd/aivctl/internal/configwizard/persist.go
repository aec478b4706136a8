package configwizard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aiverify/aivctl/pkg/modelapi"
	"github.com/pmezard/go-difflib/difflib"
)

// SaveRecord writes cfg to path and returns the bytes written, which become
// the new baseline for diffs.
func SaveRecord(path string, cfg modelapi.Config) ([]byte, error) {
	if err := modelapi.Save(path, cfg); err != nil {
		return nil, fmt.Errorf("configwizard: %w", err)
	}

	data, err := modelapi.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("configwizard: %w", err)
	}
	return data, nil
}

// readOriginal returns the file at path, or nil when it does not exist yet.
func readOriginal(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the record being edited
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configwizard: read %s: %w", path, err)
	}
	return data, nil
}

// diffRecord renders a unified diff from the on-disk bytes to the edited
// ones. An empty result means nothing changed.
func diffRecord(path string, before, after []byte) (string, error) {
	from := path
	if before == nil {
		from = "/dev/null"
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: from,
		ToFile:   path,
		Context:  3,
	}

	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("configwizard: diff: %w", err)
	}
	return out, nil
}

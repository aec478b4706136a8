package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/99designs/keyring"
	"github.com/aiverify/aivctl/pkg/portal"
	"github.com/aiverify/aivctl/pkg/workdir"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// openCredentials opens the OS keyring. Tests swap it for a file backend.
var openCredentials = func() (*workdir.Credentials, error) {
	return workdir.OpenCredentials(keyring.Config{})
}

// loadDotEnv loads environment variables from path. A missing file is not
// an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// workspace returns the workspace directory selected by --workdir.
func workspace() workdir.Dir {
	return workdir.New(workdirPath)
}

// portalAPIKey returns the configured API key, falling back to the key
// stored by "aivctl login". The keyring is only opened when neither the
// config files nor the environment carry a key.
func portalAPIKey() string {
	if settings.APIKey != "" {
		return settings.APIKey
	}

	creds, err := openCredentials()
	if err != nil {
		logger.Debug("keyring unavailable", zap.Error(err))
		return ""
	}

	key, err := creds.APIKey(settings.PortalURL)
	if err != nil {
		if !errors.Is(err, workdir.ErrNoCredentials) {
			logger.Warn("failed to read stored API key", zap.Error(err))
		}
		return ""
	}
	return key
}

// newPortalClient builds a portal client from the resolved settings.
func newPortalClient() *portal.Client {
	c := portal.New(settings.PortalURL, portal.Auth{Key: portalAPIKey()}, nil)
	c.Timeout = settings.Timeout
	c.Logger = logger
	return c
}

// parseAssignments turns repeated key=value flags into a map.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", p)
		}
		values[k] = v
	}
	return values, nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify makes a file name from a record name.
func slugify(name string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "modelapi"
	}
	return s
}

// recordPath resolves a record argument. Bare names live in the workspace's
// model API directory and get a .yaml extension.
func recordPath(arg string) string {
	if strings.ContainsRune(arg, filepath.Separator) || strings.ContainsRune(arg, '/') {
		return arg
	}
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if filepath.Ext(arg) == "" {
		arg += ".yaml"
	}
	return filepath.Join(workspace().ModelAPIDir(settings), arg)
}

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// cell truncates s and pads it to exactly width terminal cells.
func cell(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

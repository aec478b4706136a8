package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/aiverify/aivctl/pkg/workdir"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupCLI points the globals at a temp workspace and a file-backed keyring.
func setupCLI(t *testing.T, portalURL string) string {
	t.Helper()

	root := t.TempDir()
	keyDir := t.TempDir()

	prevLogger, prevSettings, prevWorkdir := logger, settings, workdirPath
	prevCreds := openCredentials
	t.Cleanup(func() {
		logger, settings, workdirPath = prevLogger, prevSettings, prevWorkdir
		openCredentials = prevCreds
	})

	logger = zap.NewNop()
	workdirPath = filepath.Join(root, workdir.DefaultName)
	settings = workdir.Defaults()
	if portalURL != "" {
		settings.PortalURL = portalURL
	}
	openCredentials = func() (*workdir.Credentials, error) {
		return workdir.OpenCredentials(keyring.Config{
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          keyDir,
			FilePasswordFunc: keyring.FixedStringPrompt("test"),
		})
	}
	return root
}

// newTestCmd returns a command whose output is captured.
func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(t.Context())
	return cmd, &buf
}

// writeEnvelope answers like the portal's REST routes.
func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{"status": status, "data": data}))
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, loadDotEnv(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AIVCTL_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AIVCTL_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("AIVCTL_TEST_DOTENV"))
}

func TestResolveSettings_WorkspaceConfig(t *testing.T) {
	setupCLI(t, "")
	t.Setenv(workdir.EnvPortalURL, "")
	t.Setenv(workdir.EnvAPIKey, "")

	require.NoError(t, workdir.SaveConfig(workspace().ConfigPath(), workdir.Config{PortalURL: "https://portal.example.com"}))

	prev := configFile
	t.Cleanup(func() { configFile = prev })
	configFile = ""

	cfg, err := resolveSettings()
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com", cfg.PortalURL)
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"a=1", " b =x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, values)

	_, err = parseAssignments([]string{"novalue"})
	require.Error(t, err)
	_, err = parseAssignments([]string{"=1"})
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "iris-classifier-v2", slugify("Iris Classifier (v2)"))
	assert.Equal(t, "modelapi", slugify("!!!"))
}

func TestRecordPath(t *testing.T) {
	setupCLI(t, "")
	assert.Equal(t, filepath.Join(workspace().ModelAPIDir(settings), "iris.yaml"), recordPath("iris"))
	assert.Equal(t, filepath.Join(workspace().ModelAPIDir(settings), "iris.yml"), recordPath("iris.yml"))
	assert.Equal(t, "./iris.yaml", recordPath("./iris.yaml"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel…", truncate("hello world", 4))
	assert.Equal(t, "", truncate("hello", 0))
	// Wide runes count as two cells.
	assert.Equal(t, "日本…", truncate("日本語テキスト", 5))
	assert.Equal(t, "ab   ", cell("ab", 5))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "second", firstLine("\n  \nsecond\nthird"))
	assert.Equal(t, "", firstLine(""))
}

func TestInitCmd(t *testing.T) {
	setupCLI(t, "")
	initPortalURL = "https://portal.example.com"
	t.Cleanup(func() { initPortalURL = "" })

	cmd, out := newTestCmd(t)
	require.NoError(t, runInit(cmd, nil))
	assert.Contains(t, out.String(), "Initialized workspace")

	cfg, err := workdir.LoadConfig(workspace().ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com", cfg.PortalURL)
	assert.Empty(t, cfg.APIKey)
	assert.DirExists(t, workspace().ModelAPIDir(settings))

	// Running again keeps the config.
	out.Reset()
	require.NoError(t, runInit(cmd, nil))
	assert.Contains(t, out.String(), "already initialized")
}

func TestInitCmd_InvalidPortal(t *testing.T) {
	setupCLI(t, "")
	initPortalURL = "not a url"
	t.Cleanup(func() { initPortalURL = "" })

	cmd, _ := newTestCmd(t)
	require.Error(t, runInit(cmd, nil))
	assert.NoDirExists(t, workspace().Root())
}

func TestLoginLogout(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		writeEnvelope(t, w, http.StatusOK, []any{})
	}))
	defer srv.Close()

	setupCLI(t, srv.URL)
	loginKey, loginVerify = "secret-key", true
	t.Cleanup(func() { loginKey, loginVerify = "", false })

	cmd, out := newTestCmd(t)
	require.NoError(t, runLogin(cmd, nil))
	assert.Contains(t, out.String(), "Stored API key")
	assert.Equal(t, "Bearer secret-key", <-auth)

	// The stored key is picked up when the settings carry none.
	settings.APIKey = ""
	assert.Equal(t, "secret-key", portalAPIKey())

	require.NoError(t, runLogout(cmd, nil))
	assert.Empty(t, portalAPIKey())
}

func TestLogin_Prompt(t *testing.T) {
	setupCLI(t, "")
	prev := promptAPIKey
	t.Cleanup(func() { promptAPIKey = prev })
	promptAPIKey = func(string) (string, error) { return "prompted", nil }

	cmd, _ := newTestCmd(t)
	require.NoError(t, runLogin(cmd, nil))
	assert.Equal(t, "prompted", portalAPIKey())
}

func TestPortalAPIKey_SettingsWin(t *testing.T) {
	setupCLI(t, "")
	openCredentials = func() (*workdir.Credentials, error) {
		t.Fatal("keyring opened although the settings carry a key")
		return nil, nil
	}
	settings.APIKey = "from-config"
	assert.Equal(t, "from-config", portalAPIKey())
}

func TestRootCommandTree(t *testing.T) {
	want := map[string][]string{
		"modelapi":  {"new", "edit", "validate", "probe", "push", "presets"},
		"plugins":   {"list", "show", "upload", "delete", "deps", "browse"},
		"checklist": {"export"},
	}
	for parent, children := range want {
		for _, child := range children {
			c, _, err := rootCmd.Find([]string{parent, child})
			require.NoError(t, err, "%s %s", parent, child)
			assert.Equal(t, child, c.Name())
		}
	}
	for _, name := range []string{"init", "login", "logout", "mcp"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}

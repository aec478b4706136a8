package workdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_PathAccessors(t *testing.T) {
	d := New("/project/.aivctl")

	assert.Equal(t, "/project/.aivctl", d.Root())
	assert.Equal(t, "/project/.aivctl/config.yaml", d.ConfigPath())
	assert.Equal(t, "/project/.aivctl/modelapis", d.ModelAPIDir(Config{}))
	assert.Equal(t, "/project/.aivctl/exports", d.ExportDir(Config{}))
	assert.Equal(t, "/project/.aivctl/local", d.LocalDir())
	assert.Equal(t, "/project/.aivctl/local/catalog.json", d.CatalogCachePath())
	assert.Equal(t, "/project/.aivctl/.gitignore", d.GitignorePath())
}

func TestDir_Overrides(t *testing.T) {
	d := New("/project/.aivctl")
	cfg := Config{ModelAPIDir: "records", ExportDir: "/tmp/out"}

	assert.Equal(t, "/project/.aivctl/records", d.ModelAPIDir(cfg))
	assert.Equal(t, "/tmp/out", d.ExportDir(cfg))
}

func TestDir_Exists(t *testing.T) {
	tmp := t.TempDir()

	assert.False(t, New(filepath.Join(tmp, "missing")).Exists())
	assert.True(t, New(tmp).Exists())
}

func TestDir_ModelAPIFiles(t *testing.T) {
	d := New(t.TempDir())
	dir := d.ModelAPIDir(Config{})
	require.NoError(t, os.MkdirAll(dir, 0o750))

	assert.Nil(t, d.ModelAPIFiles(Config{}))

	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
	}, d.ModelAPIFiles(Config{}))
}

func TestBootstrap(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), DefaultName))
	cfg := Defaults()

	wrote, err := Bootstrap(d, cfg)
	require.NoError(t, err)
	assert.True(t, wrote)

	for _, dir := range []string{d.ModelAPIDir(cfg), d.ExportDir(cfg), d.LocalDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "local/\n", string(data))

	loaded, err := LoadConfig(d.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Second run keeps the existing config.
	wrote, err = Bootstrap(d, Config{PortalURL: "http://other:1"})
	require.NoError(t, err)
	assert.False(t, wrote)

	loaded, err = LoadConfig(d.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, DefaultPortalURL, loaded.PortalURL)
}

func TestEnsureStructure_PreservesGitignore(t *testing.T) {
	d := New(t.TempDir())
	require.NoError(t, os.WriteFile(d.GitignorePath(), []byte("custom\n"), 0o600))

	require.NoError(t, EnsureStructure(d, Config{}))

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}

func TestResolve_Layers(t *testing.T) {
	tmp := t.TempDir()
	user := filepath.Join(tmp, "user.yaml")
	workspace := filepath.Join(tmp, "workspace.yaml")

	require.NoError(t, os.WriteFile(user, []byte("portal_url: https://portal.example.com\ntimeout: 5s\napi_key: user-key\n"), 0o600))
	require.NoError(t, os.WriteFile(workspace, []byte("api_key: ${TEST_AIV_KEY}\nexport_dir: out\n"), 0o600))
	t.Setenv("TEST_AIV_KEY", "ws-key")
	t.Setenv(EnvPortalURL, "")
	t.Setenv(EnvAPIKey, "")

	cfg, err := Resolve(user, filepath.Join(tmp, "missing.yaml"), workspace)
	require.NoError(t, err)

	assert.Equal(t, Config{
		PortalURL: "https://portal.example.com",
		APIKey:    "ws-key",
		Timeout:   5 * time.Second,
		ExportDir: "out",
	}, cfg)
}

func TestResolve_EnvWins(t *testing.T) {
	t.Setenv(EnvPortalURL, "https://env.example.com")
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.PortalURL)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestResolve_Invalid(t *testing.T) {
	t.Setenv(EnvPortalURL, "localhost:4000")

	_, err := Resolve()
	require.ErrorContains(t, err, "must be an absolute http(s) URL")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [1"), 0o600))
	t.Setenv(EnvPortalURL, "")

	_, err = Resolve(path)
	require.ErrorContains(t, err, "workdir: parse config")
}

func TestUserConfigPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(UserConfigPath(), filepath.Join("aivctl", "config.yaml")))
}

func openTestCredentials(t *testing.T) *Credentials {
	t.Helper()

	creds, err := OpenCredentials(keyring.Config{
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test"),
	})
	require.NoError(t, err)
	return creds
}

func TestCredentials(t *testing.T) {
	creds := openTestCredentials(t)
	const portal = "https://portal.example.com"

	_, err := creds.APIKey(portal)
	require.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, creds.SetAPIKey(portal, "s3cret"))

	key, err := creds.APIKey(portal)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", key)

	require.NoError(t, creds.DeleteAPIKey(portal))
	_, err = creds.APIKey(portal)
	require.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, creds.DeleteAPIKey(portal))
}

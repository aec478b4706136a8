package modelapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Name = "iris"
	cfg.ModelAPI.URL = "https://models.example.com/predict"
	cfg.ModelAPI.RequestBody.Properties = []Property{
		{Field: "sepal_length", Type: TypeNumber},
		{Field: "species", Type: TypeString},
	}
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, MethodPost, cfg.ModelAPI.Method)
	assert.Equal(t, AuthNone, cfg.ModelAPI.AuthType)
	assert.Equal(t, 200, cfg.ModelAPI.Response.StatusCode)
	assert.Equal(t, -1, cfg.ModelAPI.RequestConfig.RateLimit)
	assert.Equal(t, 3, cfg.ModelAPI.RequestConfig.ConnectionRetries)
	assert.Equal(t, BatchNone, cfg.ModelAPI.RequestConfig.BatchStrategy)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "iris.yaml")
	cfg := validConfig()

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("AIV_TEST_TOKEN", "s3cret")

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	content := `name: bearer
model_type: regression
model_api:
  method: GET
  url: https://models.example.com/score
  auth_type: Bearer Token
  auth_type_config:
    token: ${AIV_TEST_TOKEN}
  parameters:
    param_type: query
    params:
      - name: age
        type: integer
  response:
    status_code: 200
    media_type: application/json
    schema:
      type: number
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.ModelAPI.AuthTypeConfig.Token)
	assert.Equal(t, []Param{{Name: "age", Type: TypeInteger}}, cfg.ModelAPI.Parameters.Params)

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "${AIV_TEST_TOKEN}", raw.ModelAPI.AuthTypeConfig.Token)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "modelapi: load:")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unterminated"), 0o600))

	_, err = Load(path)
	require.ErrorContains(t, err, "modelapi: parse:")
}

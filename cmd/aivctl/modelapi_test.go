package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func irisRecord(url string) modelapi.Config {
	cfg := modelapi.Default()
	cfg.Name = "iris"
	cfg.ModelAPI.URL = url
	cfg.ModelAPI.RequestBody.Properties = []modelapi.Property{
		{Field: "sepal_length", Type: modelapi.TypeNumber},
	}
	return cfg
}

func writeRecord(t *testing.T, cfg modelapi.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iris.yaml")
	require.NoError(t, modelapi.Save(path, cfg))
	return path
}

// resetNewFlags restores the "modelapi new" flags after a test.
func resetNewFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		newName, newDescription, newPreset = "", "", ""
		newModelType = modelapi.ModelClassification
		newForce, newEdit = false, false
	})
}

func TestLookupPreset(t *testing.T) {
	p, err := lookupPreset("3")
	require.NoError(t, err)
	assert.Equal(t, []guide.HelpItem{guide.Post, guide.AuthToken, guide.Response}, p.Items)

	p, err = lookupPreset("GET request with path parameters, bearer token")
	require.NoError(t, err)
	assert.Contains(t, p.Items, guide.Path)

	_, err = lookupPreset("0")
	require.Error(t, err)
	_, err = lookupPreset("10")
	require.Error(t, err)
	_, err = lookupPreset("PUT request")
	require.Error(t, err)
}

func TestModelAPINew_Flags(t *testing.T) {
	setupCLI(t, "")
	resetNewFlags(t)
	newName, newDescription, newPreset = "Iris Classifier", "demo model", "3"

	cmd, out := newTestCmd(t)
	require.NoError(t, runModelAPINew(cmd, nil))

	path := filepath.Join(workspace().ModelAPIDir(settings), "iris-classifier.yaml")
	assert.Contains(t, out.String(), "Created "+path)

	cfg, err := modelapi.LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "Iris Classifier", cfg.Name)
	assert.Equal(t, "demo model", cfg.Description)
	assert.Equal(t, modelapi.MethodPost, cfg.ModelAPI.Method)
	assert.Equal(t, modelapi.AuthBearer, cfg.ModelAPI.AuthType)

	// A second run refuses to overwrite without --force.
	require.ErrorContains(t, runModelAPINew(cmd, nil), "already exists")
	newForce = true
	require.NoError(t, runModelAPINew(cmd, nil))
}

func TestModelAPINew_ExplicitPath(t *testing.T) {
	setupCLI(t, "")
	resetNewFlags(t)
	newName = "iris"

	path := filepath.Join(t.TempDir(), "custom", "model.yaml")
	cmd, _ := newTestCmd(t)
	require.NoError(t, runModelAPINew(cmd, []string{path}))
	assert.FileExists(t, path)
}

func TestModelAPINew_Questionnaire(t *testing.T) {
	setupCLI(t, "")
	resetNewFlags(t)

	prev := askNewRecord
	t.Cleanup(func() { askNewRecord = prev })
	askNewRecord = func(a *newRecordAnswers) error {
		a.Name = "Housing"
		a.ModelType = modelapi.ModelRegression
		a.Preset = "GET request with query parameters, no authentication"
		return nil
	}

	cmd, _ := newTestCmd(t)
	require.NoError(t, runModelAPINew(cmd, nil))

	cfg, err := modelapi.LoadRaw(filepath.Join(workspace().ModelAPIDir(settings), "housing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, modelapi.ModelRegression, cfg.ModelType)
	assert.Equal(t, modelapi.MethodGet, cfg.ModelAPI.Method)
	assert.Equal(t, modelapi.ParamQuery, cfg.ModelAPI.Parameters.ParamType)
	assert.Equal(t, modelapi.MediaNone, cfg.ModelAPI.RequestBody.MediaType)
}

func TestModelAPINew_UnknownPreset(t *testing.T) {
	setupCLI(t, "")
	resetNewFlags(t)
	newName, newPreset = "iris", "nope"

	cmd, _ := newTestCmd(t)
	require.ErrorContains(t, runModelAPINew(cmd, nil), "unknown preset")
}

func TestModelAPIValidate(t *testing.T) {
	setupCLI(t, "")

	cmd, out := newTestCmd(t)
	valid := writeRecord(t, irisRecord("https://models.example.com/predict"))
	require.NoError(t, runModelAPIValidate(cmd, []string{valid}))
	assert.Contains(t, out.String(), "is valid")

	out.Reset()
	bad := irisRecord("")
	bad.Name = ""
	invalid := writeRecord(t, bad)
	require.ErrorIs(t, runModelAPIValidate(cmd, []string{invalid}), errInvalidRecord)
	assert.Contains(t, out.String(), "2 problem(s)")
	assert.Contains(t, out.String(), "Name: name is required")
	assert.Contains(t, out.String(), "model URL is required")
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRecord(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	setupCLI(t, "")
	prev := watchDebounce
	t.Cleanup(func() { watchDebounce = prev })
	watchDebounce = 20 * time.Millisecond

	cfg := irisRecord("https://models.example.com/predict")
	path := writeRecord(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watchRecord(ctx, path, out) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Watching") }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "is valid")

	cfg.ModelAPI.URL = "ftp://models.example.com"
	require.NoError(t, modelapi.Save(path, cfg))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "must be an absolute http(s) URL")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchRecord did not stop")
	}
}

func TestModelAPIProbe(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "1")
	}))
	defer model.Close()

	setupCLI(t, "")
	probeSet = []string{"sepal_length=5.1"}
	t.Cleanup(func() { probeSet = nil })

	path := writeRecord(t, irisRecord(model.URL+"/predict"))
	cmd, out := newTestCmd(t)
	require.NoError(t, runModelAPIProbe(cmd, []string{path}))
	assert.Contains(t, out.String(), "status:       200")
	assert.Contains(t, out.String(), "response matches the record")
	assert.Equal(t, map[string]any{"sepal_length": 5.1}, <-bodies)
}

func TestModelAPIProbe_Mismatch(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "setosa")
	}))
	defer model.Close()

	setupCLI(t, "")
	path := writeRecord(t, irisRecord(model.URL))
	cmd, out := newTestCmd(t)
	require.ErrorContains(t, runModelAPIProbe(cmd, []string{path}), "probe of iris failed")
	assert.Contains(t, out.String(), `content type "text/plain"`)
}

func TestModelAPIProbe_BadAssignment(t *testing.T) {
	setupCLI(t, "")
	probeSet = []string{"oops"}
	t.Cleanup(func() { probeSet = nil })

	cmd, _ := newTestCmd(t)
	require.Error(t, runModelAPIProbe(cmd, []string{"unused.yaml"}))
}

// fakeGraphQL answers createModelAPI and updateModelAPI mutations.
func fakeGraphQL(t *testing.T, ops chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		model, _ := req.Variables["model"].(map[string]any)
		api, _ := model["modelAPI"].(map[string]any)
		auth, _ := api["authTypeConfig"].(map[string]any)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(req.Query, "createModelAPI"):
			ops <- "create:" + auth["token"].(string)
			_, _ = io.WriteString(w, `{"data":{"createModelAPI":{"id":"64f0c0ffee"}}}`)
		case strings.Contains(req.Query, "updateModelAPI"):
			ops <- "update:" + req.Variables["id"].(string)
			_, _ = io.WriteString(w, `{"data":{"updateModelAPI":{"id":"64f0c0ffee"}}}`)
		default:
			_, _ = io.WriteString(w, `{"errors":[{"message":"unknown operation"}]}`)
		}
	}))
}

func TestModelAPIPush(t *testing.T) {
	ops := make(chan string, 2)
	srv := fakeGraphQL(t, ops)
	defer srv.Close()

	setupCLI(t, srv.URL)
	t.Setenv("IRIS_TOKEN", "s3cret")

	cfg := irisRecord("https://models.example.com/predict")
	cfg.ModelAPI.AuthType = modelapi.AuthBearer
	cfg.ModelAPI.AuthTypeConfig.Token = "${IRIS_TOKEN}"
	path := writeRecord(t, cfg)

	cmd, out := newTestCmd(t)
	require.NoError(t, runModelAPIPush(cmd, []string{path}))
	assert.Equal(t, "create:s3cret", <-ops)
	assert.Contains(t, out.String(), "Created model API iris (64f0c0ffee)")

	// The id is written back; the token reference is kept.
	raw, err := modelapi.LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee", raw.ID)
	assert.Equal(t, "${IRIS_TOKEN}", raw.ModelAPI.AuthTypeConfig.Token)

	out.Reset()
	require.NoError(t, runModelAPIPush(cmd, []string{path}))
	assert.Equal(t, "update:64f0c0ffee", <-ops)
	assert.Contains(t, out.String(), "Updated model API iris")
}

func TestModelAPIPush_Invalid(t *testing.T) {
	setupCLI(t, "http://127.0.0.1:1")
	path := writeRecord(t, irisRecord("not a url"))

	cmd, _ := newTestCmd(t)
	require.ErrorContains(t, runModelAPIPush(cmd, []string{path}), "model URL")
}

func TestModelAPIPresets(t *testing.T) {
	setupCLI(t, "")
	presetsSteps = true
	t.Cleanup(func() { presetsSteps = false })

	cmd, out := newTestCmd(t)
	require.NoError(t, runModelAPIPresets(cmd, nil))

	for i, p := range guide.Presets() {
		assert.Contains(t, out.String(), p.Label, "preset %d", i+1)
	}
	assert.Contains(t, out.String(), "post auth_token response")
	assert.Contains(t, out.String(), "Model URL")
	assert.Contains(t, out.String(), "Bearer Token")
}

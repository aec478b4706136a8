package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aiverify/aivctl/pkg/catalog"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, input json.RawMessage) (string, error) {
	return string(input), nil
}

func errorHandler(_ context.Context, _ json.RawMessage) (string, error) {
	return "", errors.New("tool failed")
}

func newTestTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "Test tool: " + name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler:     echoHandler,
	}
}

// setupTestClient creates an MCPServer, connects an SDK client via in-memory
// transports, and returns the client session. The server runs in a background
// goroutine tied to t.Cleanup.
func setupTestClient(t *testing.T, tools ...Tool) *mcp.ClientSession {
	t.Helper()

	s := New("test-server", "1.0.0", nil)
	s.Register(tools...)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text, result.IsError
}

func TestListTools(t *testing.T) {
	tools := append(GuideTools(guide.NewInterpreter()), ValidateTool(), newTestTool("echo"))
	session := setupTestClient(t, tools...)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	assert.ElementsMatch(t, []string{"guide_presets", "guide_plan", "modelapi_validate", "echo"}, names)
}

func TestToolCallSuccess(t *testing.T) {
	session := setupTestClient(t, newTestTool("echo"))

	text, isErr := callText(t, session, "echo", map[string]any{"msg": "hello"})
	assert.False(t, isErr)
	assert.JSONEq(t, `{"msg":"hello"}`, text)
}

func TestToolCallError(t *testing.T) {
	session := setupTestClient(t, Tool{
		Name:        "fail",
		Description: "Always fails",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler:     errorHandler,
	})

	text, isErr := callText(t, session, "fail", nil)
	assert.True(t, isErr)
	assert.Equal(t, "tool failed", text)
}

func TestGuidePresets(t *testing.T) {
	session := setupTestClient(t, GuideTools(guide.NewInterpreter())...)

	text, isErr := callText(t, session, "guide_presets", nil)
	require.False(t, isErr)

	var presets []guide.Preset
	require.NoError(t, json.Unmarshal([]byte(text), &presets))
	assert.Equal(t, guide.Presets(), presets)
}

func TestGuidePlan(t *testing.T) {
	session := setupTestClient(t, GuideTools(guide.NewInterpreter())...)

	text, isErr := callText(t, session, "guide_plan", map[string]any{"items": []string{"GET", "QUERY", "AUTH_TOKEN"}})
	require.False(t, isErr, text)

	var plan planView
	require.NoError(t, json.Unmarshal([]byte(text), &plan))

	steps := make([]string, len(plan.Steps))
	for i, s := range plan.Steps {
		steps[i] = s.Name
	}
	assert.Equal(t, []string{guide.StepModelURL, guide.StepURLParams, guide.StepBearerToken}, steps)

	disabled := make([]guide.Field, len(plan.Disabled))
	for i, f := range plan.Disabled {
		disabled[i] = f.Field
		assert.NotEmpty(t, f.Label)
	}
	assert.ElementsMatch(t, []guide.Field{guide.FieldMethod, guide.FieldAuthType, guide.FieldParamType}, disabled)

	bearer := plan.Steps[2]
	require.Len(t, bearer.Fields, 1)
	assert.Equal(t, guide.FieldAuthToken, bearer.Fields[0].Field)
	assert.Equal(t, "Token", bearer.Fields[0].Label)
}

func TestGuidePlan_ByPreset(t *testing.T) {
	interp := guide.NewInterpreter()
	session := setupTestClient(t, GuideTools(interp)...)

	p := guide.Presets()[0]
	text, isErr := callText(t, session, "guide_plan", map[string]any{"preset": p.Label})
	require.False(t, isErr, text)

	expected, err := encodeResult(describePlan(interp.Plan(p.Items)))
	require.NoError(t, err)
	assert.JSONEq(t, expected, text)
}

func TestGuidePlan_Errors(t *testing.T) {
	session := setupTestClient(t, GuideTools(guide.NewInterpreter())...)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"unknown preset", map[string]any{"preset": "PUT request"}, `unknown preset "PUT request"`},
		{"unknown item", map[string]any{"items": []string{"PUT"}}, `guide: unknown help item "PUT"`},
		{"both", map[string]any{"preset": "x", "items": []string{"GET"}}, "pass either preset or items, not both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callText(t, session, "guide_plan", tt.args)
			assert.True(t, isErr)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestGuidePlan_EmptySelection(t *testing.T) {
	session := setupTestClient(t, GuideTools(guide.NewInterpreter())...)

	text, isErr := callText(t, session, "guide_plan", nil)
	require.False(t, isErr)
	assert.JSONEq(t, `{"disabled":[],"steps":[]}`, text)
}

func TestValidateTool(t *testing.T) {
	session := setupTestClient(t, ValidateTool())

	text, isErr := callText(t, session, "modelapi_validate", map[string]any{"yaml": `
name: iris
model_type: classification
model_api:
  method: GET
  url: https://models.example.com/predict
  auth_type: Bearer Token
  parameters:
    param_type: query
    params:
      - name: x
        type: number
  response:
    status_code: 200
    media_type: application/json
    schema:
      type: integer
  request_config:
    rate_limit: -1
    batch_limit: -1
    connection_retries: 3
    max_connections: -1
    connection_timeout: -1
    batch_strategy: none
`})
	require.False(t, isErr, text)

	var problems []struct {
		Field   guide.Field `json:"field"`
		Message string      `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &problems))
	require.Len(t, problems, 1)
	assert.Equal(t, guide.FieldAuthToken, problems[0].Field)

	text, isErr = callText(t, session, "modelapi_validate", map[string]any{"yaml": "name: [oops"})
	assert.True(t, isErr)
	assert.Contains(t, text, "parse yaml")
}

func TestCatalogTool(t *testing.T) {
	items := []catalog.Item{
		{Kind: catalog.KindPlugin, GID: "p1", Name: "Fairness Toolkit", Plugin: "Fairness Toolkit"},
		{Kind: catalog.KindAlgorithm, GID: "p1", CID: "a1", Name: "Fairness Metrics", Plugin: "Fairness Toolkit", Tags: []string{"fairness"}},
		{Kind: catalog.KindWidget, GID: "p1", CID: "w1", Name: "Bar Chart", Plugin: "Fairness Toolkit"},
	}
	source := func(context.Context) ([]catalog.Item, error) { return items, nil }
	session := setupTestClient(t, CatalogTool(source))

	text, isErr := callText(t, session, "catalog_search", map[string]any{"kinds": []string{"algorithm", "widget"}, "sort": "name", "limit": 1})
	require.False(t, isErr, text)

	var got []catalog.Item
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Bar Chart", got[0].Name)

	text, isErr = callText(t, session, "catalog_search", map[string]any{"kinds": []string{"model"}})
	assert.True(t, isErr)
	assert.Equal(t, `catalog: unknown kind "model"`, text)
}

func TestCatalogTool_SourceError(t *testing.T) {
	source := func(context.Context) ([]catalog.Item, error) { return nil, errors.New("portal down") }
	session := setupTestClient(t, CatalogTool(source))

	text, isErr := callText(t, session, "catalog_search", map[string]any{"text": "x"})
	assert.True(t, isErr)
	assert.Equal(t, "load catalog: portal down", text)
}

package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsCatalog(t *testing.T) {
	ps := Presets()
	require.Len(t, ps, 9)

	seen := make(map[string]bool)
	for _, p := range ps {
		assert.False(t, seen[p.Label], "duplicate label %q", p.Label)
		seen[p.Label] = true
		assert.Contains(t, p.Items, Response, p.Label)
	}
}

func TestPresetsReturnsCopy(t *testing.T) {
	ps := Presets()
	ps[0].Items[0] = Get

	assert.Equal(t, Post, Presets()[0].Items[0])
}

func TestFindPresetExact(t *testing.T) {
	p, ok := FindPreset([]HelpItem{Get, Path, AuthToken, Response})
	require.True(t, ok)
	assert.Equal(t, "GET request with path parameters, bearer token", p.Label)
}

func TestFindPresetReordered(t *testing.T) {
	p, ok := FindPreset([]HelpItem{Response, NoAuth, Post})
	require.True(t, ok)
	assert.Equal(t, []HelpItem{Post, NoAuth, Response}, p.Items)
}

func TestFindPresetMissing(t *testing.T) {
	_, ok := FindPreset([]HelpItem{Post, Get})
	assert.False(t, ok)

	_, ok = FindPreset(nil)
	assert.False(t, ok)
}

func TestPresetByLabel(t *testing.T) {
	p, ok := PresetByLabel("POST request, bearer token")
	require.True(t, ok)
	assert.Equal(t, []HelpItem{Post, AuthToken, Response}, p.Items)

	_, ok = PresetByLabel("nope")
	assert.False(t, ok)
}

func TestParseHelpItems(t *testing.T) {
	items, err := ParseHelpItems([]string{"post", " basic_auth ", "RESPONSE"})
	require.NoError(t, err)
	assert.Equal(t, []HelpItem{Post, BasicAuth, Response}, items)

	_, err = ParseHelpItems([]string{"PUT"})
	assert.EqualError(t, err, `guide: unknown help item "PUT"`)
}

func TestFieldMetadata(t *testing.T) {
	assert.Equal(t, TabURLParameters, FieldParamType.Tab())
	assert.Equal(t, TabNone, FieldMethod.Tab())
	assert.Equal(t, "Model URL", FieldURL.Label())
	assert.Equal(t, "bogus.path", Field("bogus.path").Label())
	assert.False(t, Field("bogus.path").Known())
	assert.Len(t, AllFields(), len(fieldTable))
	assert.Equal(t, "Request Body", TabRequestBody.Label())
}

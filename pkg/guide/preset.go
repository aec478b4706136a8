package guide

import "slices"

// Preset is a named bundle of help items describing one common HTTP
// integration shape. Presets are compared by value.
type Preset struct {
	Label string     `json:"label"`
	Items []HelpItem `json:"items"`
}

// Equal reports whether p carries exactly items, in order.
func (p Preset) Equal(items []HelpItem) bool {
	return slices.Equal(p.Items, items)
}

var presets = []Preset{
	{Label: "POST request, no authentication", Items: []HelpItem{Post, NoAuth, Response}},
	{Label: "POST request, basic authentication", Items: []HelpItem{Post, BasicAuth, Response}},
	{Label: "POST request, bearer token", Items: []HelpItem{Post, AuthToken, Response}},
	{Label: "GET request with query parameters, no authentication", Items: []HelpItem{Get, Query, NoAuth, Response}},
	{Label: "GET request with query parameters, basic authentication", Items: []HelpItem{Get, Query, BasicAuth, Response}},
	{Label: "GET request with query parameters, bearer token", Items: []HelpItem{Get, Query, AuthToken, Response}},
	{Label: "GET request with path parameters, no authentication", Items: []HelpItem{Get, Path, NoAuth, Response}},
	{Label: "GET request with path parameters, basic authentication", Items: []HelpItem{Get, Path, BasicAuth, Response}},
	{Label: "GET request with path parameters, bearer token", Items: []HelpItem{Get, Path, AuthToken, Response}},
}

// Presets returns the preset catalog in display order. The returned slice is
// a copy.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = Preset{Label: p.Label, Items: slices.Clone(p.Items)}
	}
	return out
}

// FindPreset looks a preset up by its items. An exact ordered match wins; a
// selection holding the same items in another order still resolves.
func FindPreset(items []HelpItem) (Preset, bool) {
	for _, p := range presets {
		if p.Equal(items) {
			return Preset{Label: p.Label, Items: slices.Clone(p.Items)}, true
		}
	}

	want := newItemSet(items)
	for _, p := range presets {
		if len(p.Items) != len(items) {
			continue
		}
		got := newItemSet(p.Items)
		if len(got) != len(want) {
			continue
		}
		match := true
		for h := range want {
			if !got.has(h) {
				match = false
				break
			}
		}
		if match {
			return Preset{Label: p.Label, Items: slices.Clone(p.Items)}, true
		}
	}

	return Preset{}, false
}

// PresetByLabel returns the preset with the given label.
func PresetByLabel(label string) (Preset, bool) {
	for _, p := range presets {
		if p.Label == label {
			return Preset{Label: p.Label, Items: slices.Clone(p.Items)}, true
		}
	}
	return Preset{}, false
}

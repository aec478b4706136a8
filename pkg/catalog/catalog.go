// Package catalog flattens the portal's plugins into one searchable list of
// items and answers text, kind and tag queries over it.
package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aiverify/aivctl/pkg/portal"
)

// Kind is the type of a catalog item.
type Kind string

// Item kinds.
const (
	KindPlugin     Kind = "plugin"
	KindAlgorithm  Kind = "algorithm"
	KindWidget     Kind = "widget"
	KindInputBlock Kind = "inputBlock"
	KindTemplate   Kind = "template"
)

// Kinds returns every item kind.
func Kinds() []Kind {
	return []Kind{KindPlugin, KindAlgorithm, KindWidget, KindInputBlock, KindTemplate}
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("catalog: unknown kind %q", s)
}

// Item is one plugin or plugin component.
type Item struct {
	Kind        Kind     `json:"kind"`
	GID         string   `json:"gid"`
	CID         string   `json:"cid,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Plugin      string   `json:"plugin"`
	Version     string   `json:"version,omitempty"`
}

// ID returns gid for plugins and gid:cid for components.
func (it Item) ID() string {
	if it.CID == "" {
		return it.GID
	}
	return it.GID + ":" + it.CID
}

// Flatten lists every plugin followed by its components.
func Flatten(plugins []portal.Plugin) []Item {
	var items []Item
	for _, p := range plugins {
		items = append(items, Item{
			Kind:        KindPlugin,
			GID:         p.GID,
			Name:        p.Name,
			Description: p.Description,
			Plugin:      p.Name,
			Version:     p.Version,
		})

		groups := []struct {
			kind  Kind
			comps []portal.Component
		}{
			{KindAlgorithm, p.Algorithms},
			{KindWidget, p.Widgets},
			{KindInputBlock, p.InputBlocks},
			{KindTemplate, p.Templates},
		}
		for _, g := range groups {
			for _, c := range g.comps {
				items = append(items, Item{
					Kind:        g.kind,
					GID:         p.GID,
					CID:         c.CID,
					Name:        cmp.Or(c.Name, c.CID),
					Description: c.Description,
					Tags:        slices.Clone(c.Tags),
					Plugin:      p.Name,
					Version:     cmp.Or(c.Version, p.Version),
				})
			}
		}
	}
	return items
}

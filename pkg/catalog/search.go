package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// SortKey orders search results.
type SortKey string

// Sort keys.
const (
	SortRelevance SortKey = "relevance"
	SortName      SortKey = "name"
	SortPlugin    SortKey = "plugin"
	SortKind      SortKey = "kind"
)

// ParseSortKey resolves a sort key name. The empty string means relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortName, SortPlugin, SortKind:
		return k, nil
	}
	return "", fmt.Errorf("catalog: unknown sort key %q", s)
}

// Query selects and orders catalog items. Zero fields do not filter.
type Query struct {
	Text  string
	Kinds []Kind
	Tags  []string // An item must carry every tag (case-insensitive).
	Sort  SortKey
	Desc  bool
}

// Match is one search hit.
type Match struct {
	Item        Item
	Score       int   // Fuzzy score; 0 when the query has no text.
	NameMatches []int // Byte offsets in Item.Name matched by the text.
}

// Search filters items by kind and tag, fuzzy-matches the text against name,
// tags and description, and sorts the hits. Relevance order falls back to
// name order when there is no text.
func Search(items []Item, q Query) []Match {
	candidates := make([]Item, 0, len(items))
	for _, it := range items {
		if len(q.Kinds) > 0 && !slices.Contains(q.Kinds, it.Kind) {
			continue
		}
		if !hasTags(it, q.Tags) {
			continue
		}
		candidates = append(candidates, it)
	}

	var matches []Match
	text := strings.TrimSpace(q.Text)
	if text == "" {
		matches = make([]Match, len(candidates))
		for i, it := range candidates {
			matches[i] = Match{Item: it}
		}
	} else {
		matches = fuzzyMatch(text, candidates)
	}

	sortMatches(matches, q.Sort, q.Desc)
	return matches
}

func hasTags(it Item, tags []string) bool {
	for _, want := range tags {
		if !slices.ContainsFunc(it.Tags, func(t string) bool { return strings.EqualFold(t, want) }) {
			return false
		}
	}
	return true
}

// fieldSource feeds fuzzy.FindFrom one item field at a time.
type fieldSource struct {
	items []Item
	get   func(Item) string
}

func (s fieldSource) String(i int) string { return s.get(s.items[i]) }
func (s fieldSource) Len() int            { return len(s.items) }

// Field weights: a name hit outranks a tag hit, which outranks a description
// hit of the same fuzzy score.
const (
	nameBonus = 200
	tagBonus  = 100
)

func fuzzyMatch(text string, items []Item) []Match {
	best := make(map[int]*Match)

	record := func(idx, score int, nameIdx []int) {
		m, ok := best[idx]
		if !ok {
			best[idx] = &Match{Item: items[idx], Score: score, NameMatches: nameIdx}
			return
		}
		if score > m.Score {
			m.Score = score
		}
		if nameIdx != nil {
			m.NameMatches = nameIdx
		}
	}

	for _, fm := range fuzzy.FindFrom(text, fieldSource{items, func(it Item) string { return it.Name }}) {
		record(fm.Index, fm.Score+nameBonus, fm.MatchedIndexes)
	}
	for _, fm := range fuzzy.FindFrom(text, fieldSource{items, func(it Item) string { return strings.Join(it.Tags, " ") }}) {
		record(fm.Index, fm.Score+tagBonus, nil)
	}
	for _, fm := range fuzzy.FindFrom(text, fieldSource{items, func(it Item) string { return it.Description }}) {
		record(fm.Index, fm.Score, nil)
	}

	out := make([]Match, 0, len(best))
	for i := range items {
		if m, ok := best[i]; ok {
			out = append(out, *m)
		}
	}
	return out
}

func sortMatches(ms []Match, key SortKey, desc bool) {
	byName := func(a, b Match) int {
		if c := strings.Compare(strings.ToLower(a.Item.Name), strings.ToLower(b.Item.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Item.ID(), b.Item.ID())
	}

	var primary func(a, b Match) int
	switch key {
	case SortName:
	case SortPlugin:
		primary = func(a, b Match) int { return strings.Compare(strings.ToLower(a.Item.Plugin), strings.ToLower(b.Item.Plugin)) }
	case SortKind:
		primary = func(a, b Match) int { return kindRank(a.Item.Kind) - kindRank(b.Item.Kind) }
	default:
		primary = func(a, b Match) int { return b.Score - a.Score }
	}

	slices.SortStableFunc(ms, func(a, b Match) int {
		c := 0
		if primary != nil {
			c = primary(a, b)
		}
		if c == 0 {
			c = byName(a, b)
		}
		if desc {
			return -c
		}
		return c
	})
}

func kindRank(k Kind) int {
	return slices.Index(Kinds(), k)
}

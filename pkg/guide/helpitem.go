package guide

import (
	"fmt"
	"strings"
)

// HelpItem is one facet of an HTTP integration pattern: the request method,
// where parameters are placed, the authentication mode or response handling.
type HelpItem string

// Known help items.
const (
	Post      HelpItem = "POST"
	Get       HelpItem = "GET"
	Query     HelpItem = "QUERY"
	Path      HelpItem = "PATH"
	BasicAuth HelpItem = "BASIC_AUTH"
	AuthToken HelpItem = "AUTH_TOKEN"
	NoAuth    HelpItem = "NO_AUTH"
	Headers   HelpItem = "HEADERS"
	Response  HelpItem = "RESPONSE"
)

var knownHelpItems = []HelpItem{Post, Get, Query, Path, BasicAuth, AuthToken, NoAuth, Headers, Response}

// HelpItems returns every known help item in declaration order.
func HelpItems() []HelpItem {
	out := make([]HelpItem, len(knownHelpItems))
	copy(out, knownHelpItems)
	return out
}

// ParseHelpItem converts a tag such as "basic_auth" or "BASIC_AUTH" into a
// HelpItem.
func ParseHelpItem(s string) (HelpItem, error) {
	tag := HelpItem(strings.ToUpper(strings.TrimSpace(s)))
	for _, h := range knownHelpItems {
		if h == tag {
			return h, nil
		}
	}
	return "", fmt.Errorf("guide: unknown help item %q", s)
}

// ParseHelpItems parses a list of tags, failing on the first unknown one.
func ParseHelpItems(tags []string) ([]HelpItem, error) {
	items := make([]HelpItem, 0, len(tags))
	for _, t := range tags {
		h, err := ParseHelpItem(t)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, nil
}

// itemSet is a membership view over a preset's items.
type itemSet map[HelpItem]struct{}

func newItemSet(items []HelpItem) itemSet {
	s := make(itemSet, len(items))
	for _, h := range items {
		s[h] = struct{}{}
	}
	return s
}

func (s itemSet) has(h HelpItem) bool {
	_, ok := s[h]
	return ok
}

func (s itemSet) any(hs ...HelpItem) bool {
	for _, h := range hs {
		if s.has(h) {
			return true
		}
	}
	return false
}

// Package checklist models the process checklists of an AI Verify report and
// exports the user's answers as a spreadsheet.
package checklist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Completion values an answer may hold.
const (
	Yes = "Yes"
	No  = "No"
	NA  = "N.A."
)

// Answer is the user's response to one process.
type Answer struct {
	Completed   string `json:"completed"`
	Elaboration string `json:"elaboration,omitempty"`
}

// Status returns the normalized completion value, or "" when unanswered.
func (a Answer) Status() string {
	switch strings.ToLower(strings.TrimSpace(a.Completed)) {
	case "yes", "y", "true":
		return Yes
	case "no", "n", "false":
		return No
	case "n.a.", "na", "n/a", "not applicable":
		return NA
	}
	return ""
}

// Bundle holds answers keyed by checklist config key, then process id.
type Bundle struct {
	Answers map[string]map[string]Answer `json:"answers"`
}

// Answer looks up one answer.
func (b Bundle) Answer(configKey, processID string) (Answer, bool) {
	a, ok := b.Answers[configKey][processID]
	return a, ok
}

// Config is one principle's checklist definition.
type Config struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section groups checklists under a heading.
type Section struct {
	Title      string `json:"title"`
	Checklists []List `json:"checklists"`
}

// List is one checklist of processes.
type List struct {
	Title     string    `json:"title"`
	Processes []Process `json:"processes"`
}

// Process is one item the organisation attests to.
type Process struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Evidence string `json:"evidence,omitempty"`
}

// Processes returns every process in document order.
func (c Config) Processes() []Process {
	var out []Process
	for _, s := range c.Sections {
		for _, l := range s.Checklists {
			out = append(out, l.Processes...)
		}
	}
	return out
}

// Summary counts the answers of one config.
type Summary struct {
	Key        string
	Title      string
	Total      int
	Yes        int
	No         int
	NA         int
	Unanswered int
}

// Summarize counts answers per config, in config order.
func Summarize(bundle Bundle, configs []Config) []Summary {
	out := make([]Summary, 0, len(configs))
	for _, c := range configs {
		s := Summary{Key: c.Key, Title: c.Title}
		for _, p := range c.Processes() {
			s.Total++
			a, _ := bundle.Answer(c.Key, p.ID)
			switch a.Status() {
			case Yes:
				s.Yes++
			case No:
				s.No++
			case NA:
				s.NA++
			default:
				s.Unanswered++
			}
		}
		out = append(out, s)
	}
	return out
}

// LoadBundle reads answers from a JSON file.
func LoadBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided
	if err != nil {
		return Bundle{}, fmt.Errorf("checklist: load answers: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("checklist: parse answers %s: %w", path, err)
	}
	return b, nil
}

// LoadConfigs reads checklist definitions, one JSON file each.
func LoadConfigs(paths ...string) ([]Config, error) {
	configs := make([]Config, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided
		if err != nil {
			return nil, fmt.Errorf("checklist: load config: %w", err)
		}

		var c Config
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("checklist: parse config %s: %w", path, err)
		}
		if c.Key == "" {
			return nil, fmt.Errorf("checklist: config %s has no key", path)
		}
		configs = append(configs, c)
	}
	return configs, nil
}

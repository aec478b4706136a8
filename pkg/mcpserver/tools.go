package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aiverify/aivctl/pkg/catalog"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	"gopkg.in/yaml.v3"
)

// CatalogSource loads the catalog items catalog_search runs over.
type CatalogSource func(ctx context.Context) ([]catalog.Item, error)

// GuideTools returns guide_presets and guide_plan backed by interp.
func GuideTools(interp *guide.Interpreter) []Tool {
	return []Tool{
		{
			Name:        "guide_presets",
			Description: "List the model API presets. Each preset is a label and the help items (POST, GET, QUERY, PATH, BASIC_AUTH, AUTH_TOKEN, NO_AUTH, HEADERS, RESPONSE) it selects.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
				return encodeResult(guide.Presets())
			},
		},
		{
			Name:        "guide_plan",
			Description: "Compute which model API form fields a preset locks and the ordered guide steps the user has to fill in. Pass either a preset label or a list of help items.",
			InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "preset": {"type": "string", "description": "Preset label as returned by guide_presets"},
    "items": {"type": "array", "items": {"type": "string"}, "description": "Help items, e.g. [\"GET\",\"QUERY\",\"AUTH_TOKEN\"]"}
  }
}`),
			Handler: func(_ context.Context, input json.RawMessage) (string, error) {
				var in struct {
					Preset string   `json:"preset"`
					Items  []string `json:"items"`
				}
				if err := decodeInput(input, &in); err != nil {
					return "", err
				}

				var items []guide.HelpItem
				switch {
				case in.Preset != "" && len(in.Items) > 0:
					return "", errors.New("pass either preset or items, not both")
				case in.Preset != "":
					p, ok := guide.PresetByLabel(in.Preset)
					if !ok {
						return "", fmt.Errorf("unknown preset %q", in.Preset)
					}
					items = p.Items
				default:
					var err error
					if items, err = guide.ParseHelpItems(in.Items); err != nil {
						return "", err
					}
				}

				return encodeResult(describePlan(interp.Plan(items)))
			},
		},
	}
}

type planField struct {
	Field guide.Field `json:"field"`
	Label string      `json:"label"`
	Tab   guide.Tab   `json:"tab,omitempty"`
}

type planStep struct {
	Name   string      `json:"name"`
	Fields []planField `json:"fields"`
}

type planView struct {
	Disabled []planField `json:"disabled"`
	Steps    []planStep  `json:"steps"`
}

// describePlan adds field labels so the result reads without the field table.
func describePlan(p guide.Plan) planView {
	v := planView{Disabled: make([]planField, 0, len(p.Disabled)), Steps: make([]planStep, 0, len(p.Steps))}
	for _, f := range p.Disabled {
		v.Disabled = append(v.Disabled, planField{Field: f, Label: f.Label(), Tab: f.Tab()})
	}
	for _, s := range p.Steps {
		step := planStep{Name: s.Name, Fields: make([]planField, 0, len(s.Fields))}
		for _, ref := range s.Fields {
			step.Fields = append(step.Fields, planField{Field: ref.Field, Label: ref.Field.Label(), Tab: ref.Tab})
		}
		v.Steps = append(v.Steps, step)
	}
	return v
}

// ValidateTool returns modelapi_validate, which checks a model API record
// given as YAML.
func ValidateTool() Tool {
	return Tool{
		Name:        "modelapi_validate",
		Description: "Validate a model API configuration given as YAML. Returns the list of problems, each tied to a form field; an empty list means the record is valid.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "yaml": {"type": "string", "description": "Model API record in YAML"}
  },
  "required": ["yaml"]
}`),
		Handler: func(_ context.Context, input json.RawMessage) (string, error) {
			var in struct {
				YAML string `json:"yaml"`
			}
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}

			var cfg modelapi.Config
			if err := yaml.Unmarshal([]byte(in.YAML), &cfg); err != nil {
				return "", fmt.Errorf("parse yaml: %w", err)
			}

			problems := []modelapi.Problem{}
			var verr *modelapi.ValidationError
			if err := cfg.Validate(); errors.As(err, &verr) {
				problems = verr.Problems
			}

			type problem struct {
				Field   guide.Field `json:"field"`
				Label   string      `json:"label"`
				Message string      `json:"message"`
			}
			out := make([]problem, len(problems))
			for i, p := range problems {
				out[i] = problem{Field: p.Field, Label: p.Field.Label(), Message: p.Message}
			}
			return encodeResult(out)
		},
	}
}

// defaultSearchLimit caps catalog_search results when no limit is given.
const defaultSearchLimit = 20

// CatalogTool returns catalog_search over the items source loads.
func CatalogTool(source CatalogSource) Tool {
	return Tool{
		Name:        "catalog_search",
		Description: "Search installed AI Verify plugins and their algorithms, widgets, input blocks and templates by fuzzy text, kind and tags.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "text": {"type": "string"},
    "kinds": {"type": "array", "items": {"type": "string", "enum": ["plugin", "algorithm", "widget", "inputBlock", "template"]}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "sort": {"type": "string", "enum": ["relevance", "name", "plugin", "kind"]},
    "limit": {"type": "integer", "minimum": 1}
  }
}`),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Text  string   `json:"text"`
				Kinds []string `json:"kinds"`
				Tags  []string `json:"tags"`
				Sort  string   `json:"sort"`
				Limit int      `json:"limit"`
			}
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}

			q := catalog.Query{Text: in.Text, Tags: in.Tags}
			for _, k := range in.Kinds {
				kind, err := catalog.ParseKind(k)
				if err != nil {
					return "", err
				}
				q.Kinds = append(q.Kinds, kind)
			}
			sortKey, err := catalog.ParseSortKey(in.Sort)
			if err != nil {
				return "", err
			}
			q.Sort = sortKey

			items, err := source(ctx)
			if err != nil {
				return "", fmt.Errorf("load catalog: %w", err)
			}

			limit := in.Limit
			if limit <= 0 {
				limit = defaultSearchLimit
			}
			matches := catalog.Search(items, q)
			if len(matches) > limit {
				matches = matches[:limit]
			}

			out := make([]catalog.Item, len(matches))
			for i, m := range matches {
				out[i] = m.Item
			}
			return encodeResult(out)
		},
	}
}

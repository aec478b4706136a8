package modelapi

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aiverify/aivctl/pkg/guide"
)

// Problem is one validation failure tied to a form field.
type Problem struct {
	Field   guide.Field
	Message string
}

// ValidationError lists every problem found in a record.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return "modelapi: invalid config: " + strings.Join(msgs, "; ")
}

// For returns the problems reported against f.
func (e *ValidationError) For(f guide.Field) []Problem {
	var out []Problem
	for _, p := range e.Problems {
		if p.Field == f {
			out = append(out, p)
		}
	}
	return out
}

type problems []Problem

func (ps *problems) add(f guide.Field, format string, args ...any) {
	*ps = append(*ps, Problem{Field: f, Message: fmt.Sprintf(format, args...)})
}

// Validate checks that the record describes a callable model API. It returns
// nil or a *ValidationError.
func (c Config) Validate() error {
	var ps problems
	m := c.ModelAPI

	if strings.TrimSpace(c.Name) == "" {
		ps.add(guide.FieldName, "name is required")
	}
	if !slices.Contains(ModelTypes, c.ModelType) {
		ps.add(guide.FieldModelType, "model type must be one of %s", strings.Join(ModelTypes, ", "))
	}

	if !slices.Contains(Methods, m.Method) {
		ps.add(guide.FieldMethod, "method must be one of %s", strings.Join(Methods, ", "))
	}

	u, err := url.Parse(m.URL)
	switch {
	case strings.TrimSpace(m.URL) == "":
		ps.add(guide.FieldURL, "model URL is required")
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		ps.add(guide.FieldURL, "model URL must be an absolute http(s) URL")
	}

	switch m.AuthType {
	case AuthNone:
	case AuthBasic:
		if m.AuthTypeConfig.Username == "" {
			ps.add(guide.FieldAuthUsername, "username is required for basic auth")
		}
		if m.AuthTypeConfig.Password == "" {
			ps.add(guide.FieldAuthPassword, "password is required for basic auth")
		}
	case AuthBearer:
		if m.AuthTypeConfig.Token == "" {
			ps.add(guide.FieldAuthToken, "token is required for bearer auth")
		}
	default:
		ps.add(guide.FieldAuthType, "auth type must be one of %s", strings.Join(AuthTypes, ", "))
	}

	c.validateParams(&ps)

	names := make(map[string]struct{}, len(m.RequestHeaders))
	for _, h := range m.RequestHeaders {
		if h.Name == "" {
			ps.add(guide.FieldHeaderName, "header name is required")
			continue
		}
		key := strings.ToLower(h.Name)
		if _, dup := names[key]; dup {
			ps.add(guide.FieldHeaderName, "duplicate header %q", h.Name)
		}
		names[key] = struct{}{}
	}

	if m.Response.StatusCode < 100 || m.Response.StatusCode > 599 {
		ps.add(guide.FieldResponseStatusCode, "success status must be a valid HTTP status code")
	}
	if !slices.Contains(ResponseMedia, m.Response.MediaType) {
		ps.add(guide.FieldResponseMediaType, "response media type must be one of %s", strings.Join(ResponseMedia, ", "))
	}
	if !slices.Contains(SchemaTypes, m.Response.Schema.Type) {
		ps.add(guide.FieldResponseSchemaType, "response schema type must be one of %s", strings.Join(SchemaTypes, ", "))
	}

	rc := m.RequestConfig
	limits := []struct {
		f guide.Field
		v int
	}{
		{guide.FieldRateLimit, rc.RateLimit},
		{guide.FieldBatchLimit, rc.BatchLimit},
		{guide.FieldMaxConnections, rc.MaxConnections},
		{guide.FieldConnectionTimeout, rc.ConnectionTimeout},
	}
	for _, l := range limits {
		if l.v == 0 || l.v < -1 {
			ps.add(l.f, "%s must be positive or -1 for no limit", strings.ToLower(l.f.Label()))
		}
	}
	if rc.ConnectionRetries < 0 {
		ps.add(guide.FieldConnectionRetries, "retries must not be negative")
	}
	if rc.BatchStrategy != "" && !slices.Contains(BatchStrategies, rc.BatchStrategy) {
		ps.add(guide.FieldBatchStrategy, "batch strategy must be one of %s", strings.Join(BatchStrategies, ", "))
	}

	if len(ps) == 0 {
		return nil
	}
	return &ValidationError{Problems: ps}
}

func (c Config) validateParams(ps *problems) {
	m := c.ModelAPI

	if m.Method == MethodPost {
		if !slices.Contains(RequestMedia, m.RequestBody.MediaType) || m.RequestBody.MediaType == MediaNone {
			ps.add(guide.FieldRequestMediaType, "POST requests need a request body media type")
		}
		if len(m.RequestBody.Properties) == 0 {
			ps.add(guide.FieldRequestParamName, "at least one request body parameter is required")
		}
		seen := make(map[string]struct{})
		for _, p := range m.RequestBody.Properties {
			if p.Field == "" {
				ps.add(guide.FieldRequestParamName, "request body parameter name is required")
				continue
			}
			if _, dup := seen[p.Field]; dup {
				ps.add(guide.FieldRequestParamName, "duplicate request body parameter %q", p.Field)
			}
			seen[p.Field] = struct{}{}
			if !slices.Contains(DataTypes, p.Type) {
				ps.add(guide.FieldRequestParamType, "parameter %q has invalid type %q", p.Field, p.Type)
			}
		}
	}

	if m.Method == MethodGet && len(m.Parameters.Params) == 0 {
		ps.add(guide.FieldURLParamName, "at least one URL parameter is required")
	}
	if len(m.Parameters.Params) > 0 && !slices.Contains(ParamTypes, m.Parameters.ParamType) {
		ps.add(guide.FieldParamType, "parameter placement must be one of %s", strings.Join(ParamTypes, ", "))
	}

	seen := make(map[string]struct{})
	for _, p := range m.Parameters.Params {
		if p.Name == "" {
			ps.add(guide.FieldURLParamName, "URL parameter name is required")
			continue
		}
		if _, dup := seen[p.Name]; dup {
			ps.add(guide.FieldURLParamName, "duplicate URL parameter %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if !slices.Contains(DataTypes, p.Type) {
			ps.add(guide.FieldURLParamType, "parameter %q has invalid type %q", p.Name, p.Type)
		}
		if m.Parameters.ParamType == ParamPath && !strings.Contains(m.URL, "{"+p.Name+"}") {
			ps.add(guide.FieldURLParamName, "path parameter %q must appear as {%s} in the model URL", p.Name, p.Name)
		}
	}
}

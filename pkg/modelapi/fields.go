package modelapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aiverify/aivctl/pkg/guide"
)

// ErrUnknownField is returned by Get and Set for paths the record does not
// have.
type ErrUnknownField struct {
	Field guide.Field
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("modelapi: unknown field %q", string(e.Field))
}

// listSep joins the entries of list-valued fields in their text form.
const listSep = ","

// Get returns the text form of a field. List fields (parameter names, types,
// headers) are rendered comma-separated.
func (c *Config) Get(f guide.Field) (string, error) {
	m := &c.ModelAPI
	switch f {
	case guide.FieldName:
		return c.Name, nil
	case guide.FieldDescription:
		return c.Description, nil
	case guide.FieldModelType:
		return c.ModelType, nil
	case guide.FieldMethod:
		return m.Method, nil
	case guide.FieldURL:
		return m.URL, nil
	case guide.FieldAuthType:
		return m.AuthType, nil
	case guide.FieldAuthUsername:
		return m.AuthTypeConfig.Username, nil
	case guide.FieldAuthPassword:
		return m.AuthTypeConfig.Password, nil
	case guide.FieldAuthToken:
		return m.AuthTypeConfig.Token, nil
	case guide.FieldRequestMediaType:
		return m.RequestBody.MediaType, nil
	case guide.FieldRequestParamName:
		return joinEach(m.RequestBody.Properties, func(p Property) string { return p.Field }), nil
	case guide.FieldRequestParamType:
		return joinEach(m.RequestBody.Properties, func(p Property) string { return p.Type }), nil
	case guide.FieldParamType:
		return m.Parameters.ParamType, nil
	case guide.FieldURLParamName:
		return joinEach(m.Parameters.Params, func(p Param) string { return p.Name }), nil
	case guide.FieldURLParamType:
		return joinEach(m.Parameters.Params, func(p Param) string { return p.Type }), nil
	case guide.FieldHeaderName:
		return joinEach(m.RequestHeaders, func(h Header) string { return h.Name }), nil
	case guide.FieldHeaderValue:
		return joinEach(m.RequestHeaders, func(h Header) string { return h.Value }), nil
	case guide.FieldResponseStatusCode:
		return strconv.Itoa(m.Response.StatusCode), nil
	case guide.FieldResponseMediaType:
		return m.Response.MediaType, nil
	case guide.FieldResponseSchemaType:
		return m.Response.Schema.Type, nil
	case guide.FieldRateLimit:
		return strconv.Itoa(m.RequestConfig.RateLimit), nil
	case guide.FieldBatchLimit:
		return strconv.Itoa(m.RequestConfig.BatchLimit), nil
	case guide.FieldConnectionRetries:
		return strconv.Itoa(m.RequestConfig.ConnectionRetries), nil
	case guide.FieldMaxConnections:
		return strconv.Itoa(m.RequestConfig.MaxConnections), nil
	case guide.FieldConnectionTimeout:
		return strconv.Itoa(m.RequestConfig.ConnectionTimeout), nil
	case guide.FieldBatchStrategy:
		return m.RequestConfig.BatchStrategy, nil
	}
	return "", &ErrUnknownField{Field: f}
}

// Set assigns the text form of a field. Integer fields must parse; list
// fields are split on commas and realigned so names and types keep their
// positions.
func (c *Config) Set(f guide.Field, v string) error {
	m := &c.ModelAPI
	switch f {
	case guide.FieldName:
		c.Name = v
	case guide.FieldDescription:
		c.Description = v
	case guide.FieldModelType:
		c.ModelType = v
	case guide.FieldMethod:
		m.Method = strings.ToUpper(strings.TrimSpace(v))
	case guide.FieldURL:
		m.URL = strings.TrimSpace(v)
	case guide.FieldAuthType:
		m.AuthType = v
	case guide.FieldAuthUsername:
		m.AuthTypeConfig.Username = v
	case guide.FieldAuthPassword:
		m.AuthTypeConfig.Password = v
	case guide.FieldAuthToken:
		m.AuthTypeConfig.Token = v
	case guide.FieldRequestMediaType:
		m.RequestBody.MediaType = v
	case guide.FieldRequestParamName:
		vals := splitList(v)
		m.RequestBody.Properties = resize(m.RequestBody.Properties, len(vals))
		for i, s := range vals {
			m.RequestBody.Properties[i].Field = s
		}
	case guide.FieldRequestParamType:
		vals := splitList(v)
		for i := range m.RequestBody.Properties {
			m.RequestBody.Properties[i].Type = at(vals, i)
		}
	case guide.FieldParamType:
		m.Parameters.ParamType = v
	case guide.FieldURLParamName:
		vals := splitList(v)
		m.Parameters.Params = resize(m.Parameters.Params, len(vals))
		for i, s := range vals {
			m.Parameters.Params[i].Name = s
		}
	case guide.FieldURLParamType:
		vals := splitList(v)
		for i := range m.Parameters.Params {
			m.Parameters.Params[i].Type = at(vals, i)
		}
	case guide.FieldHeaderName:
		vals := splitList(v)
		m.RequestHeaders = resize(m.RequestHeaders, len(vals))
		for i, s := range vals {
			m.RequestHeaders[i].Name = s
		}
	case guide.FieldHeaderValue:
		vals := splitList(v)
		for i := range m.RequestHeaders {
			m.RequestHeaders[i].Value = at(vals, i)
		}
	case guide.FieldResponseStatusCode:
		return setInt(f, v, &m.Response.StatusCode)
	case guide.FieldResponseMediaType:
		m.Response.MediaType = v
	case guide.FieldResponseSchemaType:
		m.Response.Schema.Type = v
	case guide.FieldRateLimit:
		return setInt(f, v, &m.RequestConfig.RateLimit)
	case guide.FieldBatchLimit:
		return setInt(f, v, &m.RequestConfig.BatchLimit)
	case guide.FieldConnectionRetries:
		return setInt(f, v, &m.RequestConfig.ConnectionRetries)
	case guide.FieldMaxConnections:
		return setInt(f, v, &m.RequestConfig.MaxConnections)
	case guide.FieldConnectionTimeout:
		return setInt(f, v, &m.RequestConfig.ConnectionTimeout)
	case guide.FieldBatchStrategy:
		m.RequestConfig.BatchStrategy = v
	default:
		return &ErrUnknownField{Field: f}
	}
	return nil
}

// ApplyPreset fixes the values a preset dictates: the method, the auth type
// and the URL parameter placement.
func (c *Config) ApplyPreset(items []guide.HelpItem) {
	has := func(h guide.HelpItem) bool {
		for _, it := range items {
			if it == h {
				return true
			}
		}
		return false
	}

	m := &c.ModelAPI
	switch {
	case has(guide.Post):
		m.Method = MethodPost
		if m.RequestBody.MediaType == "" || m.RequestBody.MediaType == MediaNone {
			m.RequestBody.MediaType = MediaJSON
		}
	case has(guide.Get):
		m.Method = MethodGet
		m.RequestBody.MediaType = MediaNone
	}

	switch {
	case has(guide.BasicAuth):
		m.AuthType = AuthBasic
		m.AuthTypeConfig.Token = ""
	case has(guide.AuthToken):
		m.AuthType = AuthBearer
		m.AuthTypeConfig.Username = ""
		m.AuthTypeConfig.Password = ""
	case has(guide.NoAuth):
		m.AuthType = AuthNone
		m.AuthTypeConfig = AuthTypeConfig{}
	}

	switch {
	case has(guide.Path):
		m.Parameters.ParamType = ParamPath
	case has(guide.Query):
		m.Parameters.ParamType = ParamQuery
	}

	if has(guide.Response) && m.Response.MediaType == "" {
		m.Response.MediaType = MediaJSON
	}
}

func setInt(f guide.Field, v string, dst *int) error {
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("modelapi: %s must be an integer", f.Label())
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for s := range strings.SplitSeq(v, listSep) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinEach[T any](xs []T, fn func(T) string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fn(x)
	}
	return strings.Join(parts, listSep)
}

func resize[T any](xs []T, n int) []T {
	if n <= len(xs) {
		return xs[:n]
	}
	return append(xs, make([]T, n-len(xs))...)
}

func at(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

package modelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxProbeBody caps how much of a probe response is read.
const maxProbeBody = 1 << 20

// BuildRequest builds the HTTP request the record describes, filling
// parameters from values keyed by parameter name. Missing values are sent
// empty.
func BuildRequest(ctx context.Context, cfg Config, values map[string]string) (*http.Request, error) {
	m := cfg.ModelAPI

	rawURL := m.URL
	if m.Parameters.ParamType == ParamPath {
		for _, p := range m.Parameters.Params {
			rawURL = strings.ReplaceAll(rawURL, "{"+p.Name+"}", url.PathEscape(values[p.Name]))
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("modelapi: parse url: %w", err)
	}

	if m.Parameters.ParamType == ParamQuery && len(m.Parameters.Params) > 0 {
		q := u.Query()
		for _, p := range m.Parameters.Params {
			q.Set(p.Name, values[p.Name])
		}
		u.RawQuery = q.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	if m.Method == MethodPost {
		body, contentType, err = encodeBody(m.RequestBody, values)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, m.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("modelapi: build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if m.Response.MediaType != "" {
		req.Header.Set("Accept", m.Response.MediaType)
	}
	for _, h := range m.RequestHeaders {
		req.Header.Set(h.Name, h.Value)
	}

	switch m.AuthType {
	case AuthBasic:
		req.SetBasicAuth(m.AuthTypeConfig.Username, m.AuthTypeConfig.Password)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+m.AuthTypeConfig.Token)
	}

	return req, nil
}

func encodeBody(rb RequestBody, values map[string]string) (io.Reader, string, error) {
	switch rb.MediaType {
	case MediaNone, "":
		return nil, "", nil

	case MediaJSON:
		obj := make(map[string]any, len(rb.Properties))
		for _, p := range rb.Properties {
			v, err := typedValue(p.Type, values[p.Field])
			if err != nil {
				return nil, "", fmt.Errorf("modelapi: parameter %q: %w", p.Field, err)
			}
			obj[p.Field] = v
		}
		var payload any = obj
		if rb.IsArray {
			payload = []any{obj}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("modelapi: marshal body: %w", err)
		}
		return bytes.NewReader(data), MediaJSON, nil

	case MediaForm:
		form := url.Values{}
		for _, p := range rb.Properties {
			form.Set(p.Field, values[p.Field])
		}
		return strings.NewReader(form.Encode()), MediaForm, nil

	case MediaMultipart:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, p := range rb.Properties {
			if err := w.WriteField(p.Field, values[p.Field]); err != nil {
				return nil, "", fmt.Errorf("modelapi: write multipart field: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("modelapi: close multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil

	case MediaText:
		lines := make([]string, 0, len(rb.Properties))
		for _, p := range rb.Properties {
			lines = append(lines, values[p.Field])
		}
		return strings.NewReader(strings.Join(lines, "\n")), MediaText, nil
	}

	return nil, "", fmt.Errorf("modelapi: unsupported request media type %q", rb.MediaType)
}

// typedValue converts the text form of a parameter into its JSON value.
func typedValue(typ, raw string) (any, error) {
	switch typ {
	case TypeInteger:
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseInt(raw, 10, 64)
	case TypeNumber:
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseFloat(raw, 64)
	case TypeBoolean:
		if raw == "" {
			return false, nil
		}
		return strconv.ParseBool(raw)
	case TypeArray, TypeObject:
		if raw == "" {
			if typ == TypeArray {
				return []any{}, nil
			}
			return map[string]any{}, nil
		}
		if !json.Valid([]byte(raw)) {
			return nil, errors.New("value is not valid JSON")
		}
		return json.RawMessage(raw), nil
	default:
		return raw, nil
	}
}

// ProbeResult is the outcome of calling the model once.
type ProbeResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Latency     time.Duration
	Problems    []string
}

// OK reports whether the response matched the record's expectations.
func (r *ProbeResult) OK() bool { return len(r.Problems) == 0 }

// Probe sends one request built from cfg and values and checks the response
// against the record's status code, media type and schema type. Transport
// failures are returned as errors; mismatches are reported in Problems.
func Probe(ctx context.Context, client *http.Client, cfg Config, values map[string]string) (*ProbeResult, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := BuildRequest(ctx, cfg, values)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.Do(req) //nolint:gosec // URL comes from the user's own model API record.
	if err != nil {
		return nil, fmt.Errorf("modelapi: probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, fmt.Errorf("modelapi: probe: read body: %w", err)
	}

	res := &ProbeResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Latency:     time.Since(start),
	}

	want := cfg.ModelAPI.Response
	if want.StatusCode != 0 && resp.StatusCode != want.StatusCode {
		res.Problems = append(res.Problems, fmt.Sprintf("status %d, expected %d", resp.StatusCode, want.StatusCode))
	}

	mediaType, _, _ := mime.ParseMediaType(res.ContentType)
	if want.MediaType != "" && mediaType != want.MediaType {
		res.Problems = append(res.Problems, fmt.Sprintf("content type %q, expected %q", mediaType, want.MediaType))
	}

	if mediaType == MediaJSON && want.Schema.Type != "" {
		if got, ok := jsonKind(body); !ok {
			res.Problems = append(res.Problems, "response body is not valid JSON")
		} else if !schemaMatches(want.Schema.Type, got) {
			res.Problems = append(res.Problems, fmt.Sprintf("response is %s, expected %s", got, want.Schema.Type))
		}
	}

	return res, nil
}

// jsonKind returns the JSON type name of a document.
func jsonKind(data []byte) (string, bool) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return TypeInteger, true
		}
		return TypeNumber, true
	case string:
		return TypeString, true
	case bool:
		return TypeBoolean, true
	case []any:
		return TypeArray, true
	case map[string]any:
		return TypeObject, true
	}
	return "null", true
}

func schemaMatches(want, got string) bool {
	if want == got {
		return true
	}
	// Integers are valid numbers.
	return want == TypeNumber && got == TypeInteger
}

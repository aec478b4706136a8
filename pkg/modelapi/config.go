package modelapi

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HTTP methods a model API may use.
const (
	MethodPost = "POST"
	MethodGet  = "GET"
)

// Authentication modes.
const (
	AuthNone   = "No Auth"
	AuthBasic  = "Basic Auth"
	AuthBearer = "Bearer Token"
)

// URL parameter placements.
const (
	ParamQuery = "query"
	ParamPath  = "path"
)

// Media types for request and response bodies.
const (
	MediaNone      = "none"
	MediaForm      = "application/x-www-form-urlencoded"
	MediaMultipart = "multipart/form-data"
	MediaJSON      = "application/json"
	MediaText      = "text/plain"
)

// Model types.
const (
	ModelClassification = "classification"
	ModelRegression     = "regression"
)

// Data types of parameters and response payloads.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Batch strategies.
const (
	BatchNone   = "none"
	BatchMulti  = "multipart"
	BatchFanout = "fanout"
)

// Option lists used by selection widgets and validation.
var (
	Methods         = []string{MethodPost, MethodGet}
	AuthTypes       = []string{AuthNone, AuthBasic, AuthBearer}
	ParamTypes      = []string{ParamQuery, ParamPath}
	RequestMedia    = []string{MediaNone, MediaForm, MediaMultipart, MediaJSON, MediaText}
	ResponseMedia   = []string{MediaJSON, MediaText}
	ModelTypes      = []string{ModelClassification, ModelRegression}
	DataTypes       = []string{TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject}
	SchemaTypes     = []string{TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject}
	BatchStrategies = []string{BatchNone, BatchMulti, BatchFanout}
)

// Config is one model API configuration record.
type Config struct {
	ID          string   `yaml:"id,omitempty" json:"id,omitempty"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	ModelType   string   `yaml:"model_type" json:"modelType"`
	ModelAPI    ModelAPI `yaml:"model_api" json:"modelAPI"`
}

// ModelAPI describes how to call the model over HTTP.
type ModelAPI struct {
	Method         string         `yaml:"method" json:"method"`
	URL            string         `yaml:"url" json:"url"`
	AuthType       string         `yaml:"auth_type" json:"authType"`
	AuthTypeConfig AuthTypeConfig `yaml:"auth_type_config,omitempty" json:"authTypeConfig"`
	RequestBody    RequestBody    `yaml:"request_body,omitempty" json:"requestBody"`
	Parameters     Parameters     `yaml:"parameters,omitempty" json:"parameters"`
	RequestHeaders []Header       `yaml:"request_headers,omitempty" json:"requestHeaders"`
	Response       Response       `yaml:"response" json:"response"`
	RequestConfig  RequestConfig  `yaml:"request_config" json:"requestConfig"`
}

// AuthTypeConfig carries the credentials for the selected auth type.
type AuthTypeConfig struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	Token    string `yaml:"token,omitempty" json:"token,omitempty"`       //nolint:gosec // configuration field, not a hardcoded secret
}

// RequestBody describes the parameters sent in the request payload.
type RequestBody struct {
	MediaType  string     `yaml:"media_type,omitempty" json:"mediaType"`
	IsArray    bool       `yaml:"is_array,omitempty" json:"isArray"`
	MaxItems   int        `yaml:"max_items,omitempty" json:"maxItems,omitempty"`
	Properties []Property `yaml:"properties,omitempty" json:"properties"`
}

// Property is one request payload parameter.
type Property struct {
	Field string `yaml:"field" json:"field"`
	Type  string `yaml:"type" json:"type"`
}

// Parameters describes parameters carried in the URL.
type Parameters struct {
	ParamType string  `yaml:"param_type,omitempty" json:"paramType,omitempty"`
	Params    []Param `yaml:"params,omitempty" json:"params"`
}

// Param is one URL parameter.
type Param struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Header is one extra request header.
type Header struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Response describes a successful model response.
type Response struct {
	StatusCode int    `yaml:"status_code" json:"statusCode"`
	MediaType  string `yaml:"media_type" json:"mediaType"`
	Schema     Schema `yaml:"schema" json:"schema"`
}

// Schema is the shape of the response payload.
type Schema struct {
	Type string `yaml:"type" json:"type"`
}

// RequestConfig holds connection settings used when running tests against
// the model.
type RequestConfig struct {
	RateLimit         int    `yaml:"rate_limit" json:"rateLimit"`                 // Requests per second (-1 = no limit).
	BatchLimit        int    `yaml:"batch_limit" json:"batchLimit"`               // Rows per batch (-1 = no limit).
	ConnectionRetries int    `yaml:"connection_retries" json:"connectionRetries"` // Retries on connection failure.
	MaxConnections    int    `yaml:"max_connections" json:"maxConnections"`       // Concurrent connections (-1 = no limit).
	ConnectionTimeout int    `yaml:"connection_timeout" json:"connectionTimeout"` // Seconds (-1 = no timeout).
	BatchStrategy     string `yaml:"batch_strategy" json:"batchStrategy"`
}

// Default returns an empty record with the connection defaults the portal
// uses for new configurations.
func Default() Config {
	return Config{
		ModelType: ModelClassification,
		ModelAPI: ModelAPI{
			Method:   MethodPost,
			AuthType: AuthNone,
			RequestBody: RequestBody{
				MediaType: MediaJSON,
			},
			Parameters: Parameters{
				ParamType: ParamQuery,
			},
			Response: Response{
				StatusCode: 200,
				MediaType:  MediaJSON,
				Schema:     Schema{Type: TypeInteger},
			},
			RequestConfig: RequestConfig{
				RateLimit:         -1,
				BatchLimit:        -1,
				ConnectionRetries: 3,
				MaxConnections:    -1,
				ConnectionTimeout: -1,
				BatchStrategy:     BatchNone,
			},
		},
	}
}

// Load reads a YAML record. Environment variables referenced as ${VAR} or
// $VAR are expanded before parsing so credentials can stay out of the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("modelapi: load: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("modelapi: parse: %w", err)
	}

	return cfg, nil
}

// LoadRaw reads a YAML record without expanding environment variables. Use it
// when the record is going to be edited and written back.
func LoadRaw(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("modelapi: load: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("modelapi: parse: %w", err)
	}

	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("modelapi: marshal: %w", err)
	}
	return data, nil
}

// Save writes cfg to path as YAML, creating parent directories. The file may
// hold credentials so it is written owner-only.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("modelapi: create parent dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("modelapi: write: %w", err)
	}

	return nil
}

package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aiverify/aivctl/pkg/modelapi"
)

const (
	createModelAPIMutation = `mutation CreateModelAPI($model: ModelAPIInput!) {
  createModelAPI(model: $model) { id }
}`
	updateModelAPIMutation = `mutation UpdateModelAPI($id: ObjectID!, $model: ModelAPIInput!) {
  updateModelAPI(id: $id, model: $model) { id }
}`
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql posts one operation to /graphql and decodes data into dest. The
// first reported error is surfaced as an *APIError.
func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, dest any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("portal: marshal payload: %w", err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, "/graphql", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("portal: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	if len(out.Errors) > 0 {
		msg := out.Errors[0].Message
		if msg == "" {
			msg = "graphql error"
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(out.Data, dest); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response data: " + err.Error()}
	}

	return nil
}

// modelInput strips the fields the portal assigns itself.
func modelInput(cfg modelapi.Config) modelapi.Config {
	cfg.ID = ""
	return cfg
}

// CreateModelAPI registers a new model API record and returns its id.
func (c *Client) CreateModelAPI(ctx context.Context, cfg modelapi.Config) (string, error) {
	var data struct {
		CreateModelAPI struct {
			ID string `json:"id"`
		} `json:"createModelAPI"`
	}
	vars := map[string]any{"model": modelInput(cfg)}
	if err := c.graphql(ctx, createModelAPIMutation, vars, &data); err != nil {
		return "", err
	}
	return data.CreateModelAPI.ID, nil
}

// UpdateModelAPI replaces the record with the given id.
func (c *Client) UpdateModelAPI(ctx context.Context, id string, cfg modelapi.Config) error {
	var data struct {
		UpdateModelAPI struct {
			ID string `json:"id"`
		} `json:"updateModelAPI"`
	}
	vars := map[string]any{"id": id, "model": modelInput(cfg)}
	return c.graphql(ctx, updateModelAPIMutation, vars, &data)
}

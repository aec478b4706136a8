package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// fetchLimit bounds concurrent requests in GetPlugins.
const fetchLimit = 4

// Component is an algorithm, widget, input block or template shipped by a
// plugin.
type Component struct {
	CID         string   `json:"cid"`
	GID         string   `json:"gid"`
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ModelTypes  []string `json:"modelType,omitempty"`
}

// Plugin is an installed plugin and its components.
type Plugin struct {
	GID         string      `json:"gid"`
	Version     string      `json:"version"`
	Name        string      `json:"name"`
	Author      string      `json:"author,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Algorithms  []Component `json:"algorithms,omitempty"`
	Widgets     []Component `json:"widgets,omitempty"`
	InputBlocks []Component `json:"inputBlocks,omitempty"`
	Templates   []Component `json:"templates,omitempty"`
}

// DependencyStatus reports whether one requirement is satisfied on the
// portal's test engine.
type DependencyStatus struct {
	Requirement string `json:"requirement"`
	Present     bool   `json:"present"`
}

// ListPlugins returns every installed plugin.
func (c *Client) ListPlugins(ctx context.Context) ([]Plugin, error) {
	var plugins []Plugin
	if err := c.call(ctx, http.MethodGet, "/api/plugins", nil, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// GetPlugin returns one plugin by its global id.
func (c *Client) GetPlugin(ctx context.Context, gid string) (Plugin, error) {
	var p Plugin
	if err := c.call(ctx, http.MethodGet, "/api/plugins/"+url.PathEscape(gid), nil, &p); err != nil {
		return Plugin{}, err
	}
	return p, nil
}

// GetPlugins fetches several plugins in parallel and returns them in the
// order of gids. The first failure cancels the remaining requests.
func (c *Client) GetPlugins(ctx context.Context, gids []string) ([]Plugin, error) {
	out := make([]Plugin, len(gids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, gid := range gids {
		g.Go(func() error {
			p, err := c.GetPlugin(ctx, gid)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// UploadPlugin sends a plugin zip archive and returns the installed plugin.
func (c *Client) UploadPlugin(ctx context.Context, filename string, archive io.Reader) (Plugin, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("myFile", filename)
	if err != nil {
		return Plugin{}, fmt.Errorf("portal: create form file: %w", err)
	}
	if _, err := io.Copy(part, archive); err != nil {
		return Plugin{}, fmt.Errorf("portal: read archive: %w", err)
	}
	if err := w.Close(); err != nil {
		return Plugin{}, fmt.Errorf("portal: close multipart body: %w", err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, "/api/plugins/upload", &buf)
	if err != nil {
		return Plugin{}, fmt.Errorf("portal: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var p Plugin
	if err := c.send(req, &p); err != nil {
		return Plugin{}, err
	}
	return p, nil
}

// DeletePlugin uninstalls a plugin.
func (c *Client) DeletePlugin(ctx context.Context, gid string) error {
	return c.call(ctx, http.MethodDelete, "/api/plugins/"+url.PathEscape(gid), nil, nil)
}

// CheckDependencies asks the portal which of the given requirement
// specifiers (e.g. "numpy>=1.24") are installed.
func (c *Client) CheckDependencies(ctx context.Context, requirements []string) ([]DependencyStatus, error) {
	payload := struct {
		Requirements []string `json:"requirements"`
	}{Requirements: requirements}

	var statuses []DependencyStatus
	if err := c.call(ctx, http.MethodPost, "/api/plugins/dependencies", payload, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aiverify/aivctl/pkg/catalog"
	"go.uber.org/zap"
)

// fetchCatalog lists the portal's plugins as catalog items and refreshes the
// local cache. When the portal is unreachable the cached list is used.
func fetchCatalog(ctx context.Context, offline bool) ([]catalog.Item, error) {
	cachePath := workspace().CatalogCachePath()
	if offline {
		return readCatalogCache(cachePath)
	}

	plugins, err := newPortalClient().ListPlugins(ctx)
	if err != nil {
		items, cacheErr := readCatalogCache(cachePath)
		if cacheErr != nil {
			return nil, err
		}
		logger.Warn("portal unavailable, using cached catalog", zap.Error(err), zap.String("cache", cachePath))
		return items, nil
	}

	items := catalog.Flatten(plugins)
	if err := writeCatalogCache(cachePath, items); err != nil {
		logger.Debug("failed to write catalog cache", zap.Error(err))
	}
	return items, nil
}

func readCatalogCache(path string) ([]catalog.Item, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the workspace
	if err != nil {
		return nil, fmt.Errorf("read catalog cache: %w", err)
	}
	var items []catalog.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog cache: %w", err)
	}
	return items, nil
}

func writeCatalogCache(path string, items []catalog.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// catalogSource adapts fetchCatalog for the MCP catalog tool.
func catalogSource(ctx context.Context) ([]catalog.Item, error) {
	return fetchCatalog(ctx, false)
}

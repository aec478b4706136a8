package workdir

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/99designs/keyring"
)

const keyringService = "aivctl"

// ErrNoCredentials is returned when no API key is stored for a portal.
var ErrNoCredentials = errors.New("workdir: no stored API key")

// Credentials stores portal API keys in the system keyring, keyed by portal
// URL.
type Credentials struct {
	ring keyring.Keyring
}

// OpenCredentials opens the keyring. The service name defaults to "aivctl";
// callers may restrict backends through cfg.
func OpenCredentials(cfg keyring.Config) (*Credentials, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = keyringService
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("workdir: open keyring: %w", err)
	}

	return &Credentials{ring: ring}, nil
}

// SetAPIKey stores the key for portalURL.
func (c *Credentials) SetAPIKey(portalURL, key string) error {
	err := c.ring.Set(keyring.Item{
		Key:         portalURL,
		Data:        []byte(key),
		Label:       "AI Verify portal API key",
		Description: portalURL,
	})
	if err != nil {
		return fmt.Errorf("workdir: store API key: %w", err)
	}
	return nil
}

// APIKey returns the key stored for portalURL, or ErrNoCredentials.
func (c *Credentials) APIKey(portalURL string) (string, error) {
	item, err := c.ring.Get(portalURL)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("workdir: read API key: %w", err)
	}
	return string(item.Data), nil
}

// DeleteAPIKey removes the key stored for portalURL. Removing a missing key
// is not an error.
func (c *Credentials) DeleteAPIKey(portalURL string) error {
	err := c.ring.Remove(portalURL)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("workdir: remove API key: %w", err)
	}
	return nil
}

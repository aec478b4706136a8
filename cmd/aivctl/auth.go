package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loginKey    string
	loginVerify bool
)

// promptAPIKey asks for the key interactively. Tests replace it.
var promptAPIKey = func(portalURL string) (string, error) {
	var key string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("API key for " + portalURL).
			EchoMode(huh.EchoModePassword).
			Value(&key).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("API key is required")
				}
				return nil
			}),
	)).Run()
	return strings.TrimSpace(key), err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the portal API key in the OS keyring",
	Long: `Stores an API key for the resolved portal URL in the OS keyring. The stored
key is used whenever neither the config files nor AIVCTL_API_KEY provide one.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored portal API key",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginKey, "key", "", "API key (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginVerify, "verify", false, "List plugins with the key before storing it")
}

func runLogin(cmd *cobra.Command, args []string) error {
	key := loginKey
	if key == "" {
		var err error
		if key, err = promptAPIKey(settings.PortalURL); err != nil {
			return err
		}
	}

	if loginVerify {
		settings.APIKey = key
		if _, err := newPortalClient().ListPlugins(cmd.Context()); err != nil {
			return fmt.Errorf("verify API key: %w", err)
		}
	}

	creds, err := openCredentials()
	if err != nil {
		return err
	}
	if err := creds.SetAPIKey(settings.PortalURL, key); err != nil {
		return err
	}

	logger.Debug("stored API key", zap.String("portal", settings.PortalURL))
	fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s\n", settings.PortalURL)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	creds, err := openCredentials()
	if err != nil {
		return err
	}
	if err := creds.DeleteAPIKey(settings.PortalURL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed API key for %s\n", settings.PortalURL)
	return nil
}

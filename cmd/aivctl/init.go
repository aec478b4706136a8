package main

import (
	"fmt"

	"github.com/aiverify/aivctl/pkg/workdir"
	"github.com/spf13/cobra"
)

var initPortalURL string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace directory and default config",
	Long: `Creates the workspace directory (default .aivctl) with a config.yaml, the
model API and export directories and a local/ cache directory ignored by git.
Running init again only fills in what is missing.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPortalURL, "portal", "", "Portal URL written to the new config (default: resolved setting)")
}

func runInit(cmd *cobra.Command, args []string) error {
	d := workspace()

	cfg := workdir.Config{PortalURL: settings.PortalURL}
	if initPortalURL != "" {
		cfg.PortalURL = initPortalURL
	}
	if err := workdir.Merge(workdir.Defaults(), cfg).Validate(); err != nil {
		return err
	}

	wrote, err := workdir.Bootstrap(d, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wrote {
		fmt.Fprintf(out, "Initialized workspace in %s\n", d.Root())
		fmt.Fprintf(out, "  portal: %s\n", cfg.PortalURL)
	} else {
		fmt.Fprintf(out, "Workspace %s already initialized; missing directories were created\n", d.Root())
	}
	return nil
}

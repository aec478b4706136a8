package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aiverify/aivctl/pkg/workdir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose     bool
	workdirPath string
	configFile  string
	envFile     string

	// Resolved in PersistentPreRunE.
	logger   = zap.NewNop()
	settings = workdir.Defaults()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aivctl",
	Short: "AI Verify model API and plugin tooling",
	Long: `aivctl prepares model API configurations for AI Verify and manages the
plugins installed on an AI Verify portal.

Model API records are YAML files. "aivctl modelapi edit" opens a guided editor
where a preset (for example "GET request with query parameters, bearer token")
locks the fields it dictates and lists the steps left to fill in.

Settings are layered: built-in defaults, $XDG_CONFIG_HOME/aivctl/config.yaml,
<workdir>/config.yaml, --config, then AIVCTL_PORTAL_URL / AIVCTL_API_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := loadDotEnv(envFile); err != nil {
			return err
		}

		settings, err = resolveSettings()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workdirPath, "workdir", "w", workdir.DefaultName, "Workspace directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Extra config file applied after the workspace config")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file (ignored if missing)")

	rootCmd.Version = version

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(modelapiCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(mcpCmd)
}

// resolveSettings layers the user, workspace and --config files over the
// defaults.
func resolveSettings() (workdir.Config, error) {
	d := workdir.New(workdirPath)
	return workdir.Resolve(workdir.UserConfigPath(), d.ConfigPath(), configFile)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

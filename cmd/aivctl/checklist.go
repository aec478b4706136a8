package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aiverify/aivctl/pkg/checklist"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checklistData    string
	checklistConfigs []string
	checklistOutput  string
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Work with process checklists",
}

var checklistExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export checklist answers to an Excel workbook",
	Long: `Writes one sheet per checklist config plus a summary sheet. Answers come
from --data, a JSON bundle keyed by config key and process id. Without -o the
workbook is written to the workspace export directory.`,
	Args: cobra.NoArgs,
	RunE: runChecklistExport,
}

func init() {
	checklistExportCmd.Flags().StringVar(&checklistData, "data", "", "Answers bundle (JSON)")
	checklistExportCmd.Flags().StringArrayVar(&checklistConfigs, "config", nil, "Checklist config (JSON, repeatable)")
	checklistExportCmd.Flags().StringVarP(&checklistOutput, "output", "o", "", "Output .xlsx path")
	_ = checklistExportCmd.MarkFlagRequired("data")
	_ = checklistExportCmd.MarkFlagRequired("config")

	checklistCmd.AddCommand(checklistExportCmd)
}

func runChecklistExport(cmd *cobra.Command, args []string) error {
	if checklistData == "" || len(checklistConfigs) == 0 {
		return fmt.Errorf("--data and at least one --config are required")
	}

	bundle, err := checklist.LoadBundle(checklistData)
	if err != nil {
		return err
	}
	configs, err := checklist.LoadConfigs(checklistConfigs...)
	if err != nil {
		return err
	}

	path := checklistOutput
	if path == "" {
		name := fmt.Sprintf("checklists-%s.xlsx", time.Now().Format("20060102-150405"))
		path = filepath.Join(workspace().ExportDir(settings), name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // output path chosen by the user
	if err != nil {
		return err
	}
	if err := checklist.Export(f, bundle, configs); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("checklists exported", zap.String("path", path), zap.Int("configs", len(configs)))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exported %s to %s\n", pluralize(len(configs), "checklist"), path)
	for _, s := range checklist.Summarize(bundle, configs) {
		fmt.Fprintf(out, "  %s: %d/%d answered (yes %d, no %d, n/a %d)\n",
			strings.TrimSpace(s.Title), s.Total-s.Unanswered, s.Total, s.Yes, s.No, s.NA)
	}
	return nil
}

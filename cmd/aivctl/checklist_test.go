package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aiverify/aivctl/pkg/checklist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func setupChecklistFiles(t *testing.T) (data string, configs []string) {
	t.Helper()
	dir := t.TempDir()

	cfg := checklist.Config{
		Key:   "transparency",
		Title: "Transparency",
		Sections: []checklist.Section{{
			Title: "Disclosure",
			Checklists: []checklist.List{{
				Title: "Informing users",
				Processes: []checklist.Process{
					{ID: "1.1.1", Text: "Users are told they interact with AI", Evidence: "Screenshots"},
					{ID: "1.1.2", Text: "The purpose of the system is published"},
				},
			}},
		}},
	}
	bundle := checklist.Bundle{Answers: map[string]map[string]checklist.Answer{
		"transparency": {"1.1.1": {Completed: "Yes", Elaboration: "Banner on the landing page"}},
	}}

	return writeJSON(t, dir, "answers.json", bundle), []string{writeJSON(t, dir, "transparency.json", cfg)}
}

func resetChecklistFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		checklistData, checklistConfigs, checklistOutput = "", nil, ""
	})
}

func TestChecklistExport(t *testing.T) {
	setupCLI(t, "")
	resetChecklistFlags(t)
	checklistData, checklistConfigs = setupChecklistFiles(t)
	checklistOutput = filepath.Join(t.TempDir(), "out", "report.xlsx")

	cmd, out := newTestCmd(t)
	require.NoError(t, runChecklistExport(cmd, nil))
	assert.Contains(t, out.String(), "Exported 1 checklist to "+checklistOutput)
	assert.Contains(t, out.String(), "Transparency: 1/2 answered (yes 1, no 0, n/a 0)")

	f, err := excelize.OpenFile(checklistOutput)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), checklist.SummarySheet)
}

func TestChecklistExport_DefaultsToExportDir(t *testing.T) {
	setupCLI(t, "")
	resetChecklistFlags(t)
	checklistData, checklistConfigs = setupChecklistFiles(t)

	cmd, _ := newTestCmd(t)
	require.NoError(t, runChecklistExport(cmd, nil))

	matches, err := filepath.Glob(filepath.Join(workspace().ExportDir(settings), "checklists-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestChecklistExport_MissingInputs(t *testing.T) {
	setupCLI(t, "")
	resetChecklistFlags(t)

	cmd, _ := newTestCmd(t)
	require.Error(t, runChecklistExport(cmd, nil))

	checklistData = filepath.Join(t.TempDir(), "missing.json")
	checklistConfigs = []string{"also-missing.json"}
	require.Error(t, runChecklistExport(cmd, nil))
}

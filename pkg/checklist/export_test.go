package checklist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleConfigs() []Config {
	return []Config{
		{
			Key:   "transparency",
			Title: "Transparency",
			Sections: []Section{{
				Title: "Disclosure",
				Checklists: []List{{
					Title: "Communicating with stakeholders",
					Processes: []Process{
						{ID: "1.1.1", Text: "Disclose use of AI", Evidence: "Documented notice"},
						{ID: "1.1.2", Text: "Explain intended use"},
					},
				}},
			}},
		},
		{
			Key:   "fairness",
			Title: "Fairness",
			Sections: []Section{{
				Title: "Data",
				Checklists: []List{{
					Processes: []Process{{ID: "7.1.1", Text: "Check for bias"}},
				}},
			}},
		},
	}
}

func sampleBundle() Bundle {
	return Bundle{Answers: map[string]map[string]Answer{
		"transparency": {
			"1.1.1": {Completed: "yes", Elaboration: "See privacy notice"},
			"1.1.2": {Completed: "N/A"},
		},
	}}
}

func TestAnswerStatus(t *testing.T) {
	tests := map[string]string{
		"Yes": Yes, " y ": Yes, "TRUE": Yes,
		"no": No, "false": No,
		"N.A.": NA, "n/a": NA, "not applicable": NA,
		"": "", "maybe": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Answer{Completed: in}.Status(), in)
	}
}

func TestSummarize(t *testing.T) {
	sums := Summarize(sampleBundle(), sampleConfigs())

	assert.Equal(t, []Summary{
		{Key: "transparency", Title: "Transparency", Total: 2, Yes: 1, NA: 1},
		{Key: "fairness", Title: "Fairness", Total: 1, Unanswered: 1},
	}, sums)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleBundle(), sampleConfigs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SummarySheet, "Transparency", "Fairness"}, f.GetSheetList())

	rows, err := f.GetRows("Transparency")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Transparency"}, rows[0])
	assert.Equal(t, processHeader, rows[1])
	assert.Equal(t, []string{"Disclosure"}, rows[2])
	assert.Equal(t, []string{"Communicating with stakeholders"}, rows[3])
	assert.Equal(t, []string{"1.1.1", "Disclose use of AI", "Documented notice", "Yes", "See privacy notice"}, rows[4])
	assert.Equal(t, []string{"1.1.2", "Explain intended use", "", "N.A."}, rows[5])

	// Untitled checklists get no title row.
	rows, err = f.GetRows("Fairness")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"7.1.1", "Check for bias"}, rows[3])

	rows, err = f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Transparency", "2", "1", "0", "1", "0"}, rows[2])
	assert.Equal(t, []string{"Fairness", "1", "0", "0", "0", "1"}, rows[3])

	merged, err := f.GetMergeCells("Transparency")
	require.NoError(t, err)
	assert.Len(t, merged, 3)
}

func TestExportNothing(t *testing.T) {
	var buf bytes.Buffer
	require.EqualError(t, Export(&buf, Bundle{}, nil), "checklist: nothing to export")
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"summary": true}

	assert.Equal(t, "summary (2)", sheetName("summary", "k", used))
	assert.Equal(t, "Accountability- roles-duties", sheetName("Accountability: roles/duties", "k", used))
	assert.Equal(t, "key", sheetName("  ", "key", used))

	long := "Robustness and Resilience of the Deployed System"
	first := sheetName(long, "k", used)
	second := sheetName(long, "k", used)
	assert.Equal(t, "Robustness and Resilience of th", first)
	assert.Len(t, first, maxSheetName)
	assert.Equal(t, "Robustness and Resilience o (2)", second)
	assert.Len(t, second, maxSheetName)
}

func TestLoadBundleAndConfigs(t *testing.T) {
	dir := t.TempDir()

	answers := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{"answers":{"fairness":{"7.1.1":{"completed":"No","elaboration":"pending"}}}}`), 0o600))

	cfgPath := filepath.Join(dir, "fairness.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"key":"fairness","title":"Fairness","sections":[{"title":"Data","checklists":[{"processes":[{"id":"7.1.1","text":"Check for bias"}]}]}]}`), 0o600))

	b, err := LoadBundle(answers)
	require.NoError(t, err)
	a, ok := b.Answer("fairness", "7.1.1")
	require.True(t, ok)
	assert.Equal(t, No, a.Status())

	configs, err := LoadConfigs(cfgPath)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Len(t, configs[0].Processes(), 1)

	noKey := filepath.Join(dir, "nokey.json")
	require.NoError(t, os.WriteFile(noKey, []byte(`{"title":"x"}`), 0o600))
	_, err = LoadConfigs(noKey)
	require.ErrorContains(t, err, "has no key")

	_, err = LoadBundle(filepath.Join(dir, "missing.json"))
	require.ErrorContains(t, err, "checklist: load answers")
}

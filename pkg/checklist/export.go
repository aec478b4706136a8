package checklist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SummarySheet is the name of the first sheet of an export.
const SummarySheet = "Summary"

// Column headers of a checklist sheet.
var processHeader = []string{"Process ID", "Process", "Process Checks / Evidence", "Completed", "Elaboration"}

var columnWidths = []float64{12, 60, 60, 12, 50}

type styles struct {
	title, header, section, list, body int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)
	mk := func(dst *int, st *excelize.Style) {
		if err != nil {
			return
		}
		*dst, err = f.NewStyle(st)
	}

	mk(&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	mk(&s.header, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	mk(&s.section, &excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	mk(&s.list, &excelize.Style{Font: &excelize.Font{Bold: true, Italic: true}})
	mk(&s.body, &excelize.Style{Alignment: &excelize.Alignment{Vertical: "top", WrapText: true}})

	return s, err
}

// Export writes a workbook with a summary sheet followed by one sheet per
// config. Each config sheet lists its sections, checklists and processes with
// the answer found in bundle.
func Export(w io.Writer, bundle Bundle, configs []Config) (err error) {
	if len(configs) == 0 {
		return errors.New("checklist: nothing to export")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("checklist: close workbook: %w", cerr)
		}
	}()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("checklist: create styles: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("checklist: rename sheet: %w", err)
	}
	if err := writeSummary(f, st, Summarize(bundle, configs)); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for _, c := range configs {
		name := sheetName(c.Title, c.Key, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("checklist: add sheet %q: %w", name, err)
		}
		if err := writeConfig(f, st, name, bundle, c); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("checklist: write workbook: %w", err)
	}
	return nil
}

// sheetWriter fills one sheet row by row and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (sw *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, sw.row)
	if err != nil && sw.err == nil {
		sw.err = err
	}
	return name
}

// values writes one row starting at column A and applies style to it.
func (sw *sheetWriter) values(style int, vals ...any) {
	sw.row++
	if sw.err != nil {
		return
	}
	for i, v := range vals {
		if err := sw.f.SetCellValue(sw.sheet, sw.cell(i+1), v); err != nil {
			sw.err = err
			return
		}
	}
	if style != 0 && len(vals) > 0 {
		sw.err = sw.f.SetCellStyle(sw.sheet, sw.cell(1), sw.cell(len(vals)), style)
	}
}

// banner writes one value merged across width columns.
func (sw *sheetWriter) banner(style, width int, v string) {
	sw.values(style, v)
	if sw.err != nil {
		return
	}
	if err := sw.f.MergeCell(sw.sheet, sw.cell(1), sw.cell(width)); err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, sw.cell(1), sw.cell(width), style)
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, wd := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, wd); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, st styles, sums []Summary) error {
	sw := &sheetWriter{f: f, sheet: SummarySheet}

	sw.banner(st.title, 6, "Process Checklist Summary")
	sw.values(st.header, "Principle", "Total", Yes, No, NA, "Unanswered")
	for _, s := range sums {
		sw.values(st.body, s.Title, s.Total, s.Yes, s.No, s.NA, s.Unanswered)
	}

	if sw.err != nil {
		return fmt.Errorf("checklist: write summary: %w", sw.err)
	}
	if err := setWidths(f, SummarySheet, []float64{40, 10, 10, 10, 10, 12}); err != nil {
		return fmt.Errorf("checklist: write summary: %w", err)
	}
	return nil
}

func writeConfig(f *excelize.File, st styles, sheet string, bundle Bundle, c Config) error {
	sw := &sheetWriter{f: f, sheet: sheet}
	width := len(processHeader)

	sw.banner(st.title, width, c.Title)
	header := make([]any, width)
	for i, h := range processHeader {
		header[i] = h
	}
	sw.values(st.header, header...)

	for _, s := range c.Sections {
		sw.banner(st.section, width, s.Title)
		for _, l := range s.Checklists {
			if l.Title != "" {
				sw.banner(st.list, width, l.Title)
			}
			for _, p := range l.Processes {
				a, _ := bundle.Answer(c.Key, p.ID)
				sw.values(st.body, p.ID, p.Text, p.Evidence, a.Status(), a.Elaboration)
			}
		}
	}

	if sw.err != nil {
		return fmt.Errorf("checklist: write sheet %q: %w", sheet, sw.err)
	}
	if err := setWidths(f, sheet, columnWidths); err != nil {
		return fmt.Errorf("checklist: write sheet %q: %w", sheet, err)
	}
	return nil
}

// maxSheetName is the longest sheet name spreadsheet applications accept.
const maxSheetName = 31

// sheetName derives a unique, valid sheet name from a title.
func sheetName(title, key string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	base = strings.Trim(base, "'")
	if base == "" {
		base = key
	}
	if base == "" {
		base = "Checklist"
	}

	name := truncate(base, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

package main

import (
	"fmt"
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/catalog"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	bbtable "github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

var pluginsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse plugins and components interactively",
	Long: `Opens a full-screen table of the catalog. "/" edits the filter text, Tab
cycles the kind filter and Enter prints the highlighted item's id.`,
	Args: cobra.NoArgs,
	RunE: runPluginsBrowse,
}

// Table column keys.
const (
	keyKind   = "kind"
	keyID     = "id"
	keyName   = "name"
	keyPlugin = "plugin"
	keyDesc   = "description"
	keyItem   = "item"
)

const browsePageSize = 20

type browseModel struct {
	items     []catalog.Item
	kinds     []catalog.Kind
	kindIdx   int // 0 means every kind
	filter    textinput.Model
	filtering bool
	table     bbtable.Model
	shown     int
	chosen    *catalog.Item
}

func newBrowseModel(items []catalog.Item) browseModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = ""
	ti.Width = 40

	cols := []bbtable.Column{
		bbtable.NewColumn(keyKind, "Kind", colKind),
		bbtable.NewColumn(keyID, "ID", colID),
		bbtable.NewColumn(keyName, "Name", colName),
		bbtable.NewColumn(keyPlugin, "Plugin", 20),
		bbtable.NewColumn(keyDesc, "Description", colDesc),
	}

	m := browseModel{
		items:  items,
		kinds:  catalog.Kinds(),
		filter: ti,
		table: bbtable.New(cols).
			WithBaseStyle(lipgloss.NewStyle().Foreground(styles.ColorFg)).
			HeaderStyle(lipgloss.NewStyle().Foreground(styles.ColorAccent).Bold(true)).
			HighlightStyle(lipgloss.NewStyle().Foreground(styles.ColorSuccess).Bold(true)).
			Focused(true).
			BorderRounded().
			WithPageSize(browsePageSize),
	}
	m.refresh()
	return m
}

// kind returns the active kind filter, or "" for every kind.
func (m browseModel) kind() catalog.Kind {
	if m.kindIdx == 0 {
		return ""
	}
	return m.kinds[m.kindIdx-1]
}

// refresh re-runs the search and replaces the table rows.
func (m *browseModel) refresh() {
	q := catalog.Query{Text: m.filter.Value()}
	if k := m.kind(); k != "" {
		q.Kinds = []catalog.Kind{k}
	}

	matches := catalog.Search(m.items, q)
	rows := make([]bbtable.Row, len(matches))
	for i, match := range matches {
		it := match.Item
		rows[i] = bbtable.NewRow(bbtable.RowData{
			keyKind:   string(it.Kind),
			keyID:     truncate(it.ID(), colID),
			keyName:   truncate(it.Name, colName),
			keyPlugin: truncate(it.Plugin, 20),
			keyDesc:   truncate(firstLine(it.Description), colDesc),
			keyItem:   it,
		})
	}
	m.shown = len(rows)
	m.table = m.table.
		WithRows(rows).
		WithStaticFooter(fmt.Sprintf("%d of %d", len(rows), len(m.items)))
}

// highlighted returns the item under the cursor.
func (m browseModel) highlighted() (catalog.Item, bool) {
	if m.shown == 0 {
		return catalog.Item{}, false
	}
	it, ok := m.table.HighlightedRow().Data[keyItem].(catalog.Item)
	return it, ok
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table = m.table.WithMaxTotalWidth(msg.Width).WithPageSize(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		case "tab":
			m.kindIdx = (m.kindIdx + 1) % (len(m.kinds) + 1)
			m.refresh()
			return m, nil
		case "enter":
			if it, ok := m.highlighted(); ok {
				m.chosen = &it
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.refresh()
	}
	return m, cmd
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Plugin catalog"))
	b.WriteString("\n\n")

	label := styles.LabelStyle
	if m.filtering {
		label = styles.FocusedLabel
	}
	kind := "all"
	if k := m.kind(); k != "" {
		kind = string(k)
	}
	b.WriteString(label.Render("Filter: "))
	b.WriteString(m.filter.View())
	b.WriteString("  ")
	b.WriteString(styles.LabelStyle.Render("Kind: "))
	b.WriteString(styles.SelStyle.Render(kind))
	b.WriteString("\n")

	if m.shown == 0 {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("No matching items."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.filtering {
		b.WriteString(styles.HintStyle.Render("Enter/Esc: done filtering"))
	} else {
		b.WriteString(styles.HintStyle.Render("↑/↓: move  /: filter  Tab: kind  Enter: print id  q: quit"))
	}
	return b.String()
}

func runPluginsBrowse(cmd *cobra.Command, args []string) error {
	items, err := fetchCatalog(cmd.Context(), listOffline)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(newBrowseModel(items), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(browseModel); ok && m.chosen != nil {
		fmt.Fprintln(cmd.OutOrStdout(), m.chosen.ID())
	}
	return nil
}

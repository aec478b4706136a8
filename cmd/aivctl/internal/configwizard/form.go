package configwizard

import (
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	tea "github.com/charmbracelet/bubbletea"
)

// formModel lays the model API fields out as a block of top-level fields
// followed by a tab bar. It reads the guidance store for disabled and
// highlighted fields, keeps focus off disabled fields and writes every edit
// back to the record.
type formModel struct {
	cfg    *modelapi.Config
	store  *guide.Store
	fields []FormField
	focus  int
	errs   map[guide.Field]string
	err    string

	tab     guide.Tab
	allTabs bool
	// lastTab is the last highlighted tab seen on the store, so only
	// changes activate a tab.
	lastTab guide.Tab
	pending tea.Cmd

	unsubscribe func()
}

func newFormModel(cfg *modelapi.Config, store *guide.Store) *formModel {
	m := &formModel{
		cfg:     cfg,
		store:   store,
		focus:   -1,
		errs:    make(map[guide.Field]string),
		tab:     guide.Tabs()[0],
		lastTab: store.HighlightedTab(),
	}
	for _, f := range guide.AllFields() {
		m.fields = append(m.fields, newWidget(f))
	}
	m.load()
	m.unsubscribe = store.Subscribe(m.onStoreChange)
	return m
}

// Init focuses the first editable field.
func (m *formModel) Init() tea.Cmd {
	return m.ensureFocus()
}

// close detaches the form from the store.
func (m *formModel) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// load copies the record into the widgets.
func (m *formModel) load() {
	for _, w := range m.fields {
		v, err := m.cfg.Get(w.Field())
		if err != nil {
			continue
		}
		w.SetValue(v)
	}
	clear(m.errs)
	m.refreshStatic()
}

// refreshStatic recomputes the form's own disabled flags from the record.
func (m *formModel) refreshStatic() {
	for _, w := range m.fields {
		w.SetDisabled(staticDisabled(m.cfg, w.Field()))
	}
}

// staticDisabled reports whether the form itself locks f given the record,
// regardless of any guidance.
func staticDisabled(cfg *modelapi.Config, f guide.Field) bool {
	api := cfg.ModelAPI
	switch f {
	case guide.FieldAuthUsername, guide.FieldAuthPassword:
		return api.AuthType != modelapi.AuthBasic
	case guide.FieldAuthToken:
		return api.AuthType != modelapi.AuthBearer
	case guide.FieldRequestMediaType, guide.FieldRequestParamName, guide.FieldRequestParamType:
		return api.Method != modelapi.MethodPost
	}
	return false
}

// disabled is the effective disabled state: locked by guidance or by the
// form.
func (m *formModel) disabled(w FormField) bool {
	return m.store.IsDisabled(w.Field()) || w.Disabled()
}

func (m *formModel) visible(w FormField) bool {
	t := w.Field().Tab()
	return t == guide.TabNone || m.allTabs || t == m.tab
}

func (m *formModel) focusable(i int) bool {
	w := m.fields[i]
	return m.visible(w) && !m.disabled(w)
}

// focused returns the focused widget, if any.
func (m *formModel) focused() FormField {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return nil
	}
	return m.fields[m.focus]
}

func (m *formModel) setFocus(i int) tea.Cmd {
	if w := m.focused(); w != nil {
		w.Blur()
	}
	m.focus = i
	if w := m.focused(); w != nil {
		return w.Focus()
	}
	return nil
}

// ensureFocus moves focus off a field that became disabled or hidden, to the
// next focusable field, wrapping to the first.
func (m *formModel) ensureFocus() tea.Cmd {
	if m.focus >= 0 && m.focus < len(m.fields) && m.focusable(m.focus) {
		return nil
	}
	start := max(m.focus, 0)
	for n := range len(m.fields) {
		i := (start + n) % len(m.fields)
		if m.focusable(i) {
			return m.setFocus(i)
		}
	}
	return m.setFocus(-1)
}

func (m *formModel) nextField() tea.Cmd {
	for i := m.focus + 1; i < len(m.fields); i++ {
		if m.focusable(i) {
			return m.setFocus(i)
		}
	}
	return nil
}

func (m *formModel) prevField() tea.Cmd {
	for i := m.focus - 1; i >= 0; i-- {
		if m.focusable(i) {
			return m.setFocus(i)
		}
	}
	return nil
}

// onStoreChange activates the highlighted tab when it changes and moves focus
// off fields the guidance just locked. Manual tab switches never write back.
func (m *formModel) onStoreChange(snap guide.Snapshot) {
	if snap.Tab != m.lastTab {
		m.lastTab = snap.Tab
		if snap.Tab != guide.TabNone {
			m.tab = snap.Tab
		}
	}
	m.pending = tea.Batch(m.pending, m.ensureFocus())
}

// takePending returns commands produced by store callbacks.
func (m *formModel) takePending() tea.Cmd {
	cmd := m.pending
	m.pending = nil
	return cmd
}

func (m *formModel) switchTab(delta int) tea.Cmd {
	tabs := guide.Tabs()
	i := 0
	for j, t := range tabs {
		if t == m.tab {
			i = j
		}
	}
	m.tab = tabs[(i+delta+len(tabs))%len(tabs)]
	return m.ensureFocus()
}

func (m *formModel) toggleAllTabs() tea.Cmd {
	m.allTabs = !m.allTabs
	return m.ensureFocus()
}

// commit writes the focused widget's value to the record.
func (m *formModel) commit(w FormField) {
	f := w.Field()
	if err := m.cfg.Set(f, w.Value()); err != nil {
		m.errs[f] = err.Error()
		return
	}
	delete(m.errs, f)
	if f == guide.FieldMethod || f == guide.FieldAuthType {
		m.refreshStatic()
	}
}

// validate checks every editable field and reports whether the form can be
// reviewed.
func (m *formModel) validate() bool {
	for _, w := range m.fields {
		if m.disabled(w) {
			continue
		}
		if err := w.Validate(); err != nil {
			m.err = err.Error()
			return false
		}
	}
	if len(m.errs) > 0 {
		for _, w := range m.fields {
			if msg, ok := m.errs[w.Field()]; ok {
				m.err = msg
				return false
			}
		}
	}
	m.err = ""
	return true
}

func (m *formModel) Update(msg tea.Msg) tea.Cmd {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab":
			return m.nextField()
		case "shift+tab":
			return m.prevField()
		case "ctrl+right":
			return m.switchTab(1)
		case "ctrl+left":
			return m.switchTab(-1)
		case "enter":
			if _, ok := m.focused().(*TextAreaField); !ok {
				return m.nextField()
			}
		case "up":
			if _, ok := m.focused().(*TextAreaField); !ok {
				return m.prevField()
			}
		case "down":
			if _, ok := m.focused().(*TextAreaField); !ok {
				return m.nextField()
			}
		}
	}

	w := m.focused()
	if w == nil || m.disabled(w) {
		return nil
	}
	updated, cmd := w.Update(msg)
	m.fields[m.focus] = updated
	if _, ok := msg.(tea.KeyMsg); ok {
		m.commit(updated)
	}
	return cmd
}

func (m *formModel) View(title string) string {
	var b strings.Builder
	snap := m.store.Snapshot()

	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	for i, w := range m.fields {
		if w.Field().Tab() == guide.TabNone {
			m.writeRow(&b, i, w, snap)
		}
	}

	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	for _, t := range guide.Tabs() {
		if !m.allTabs && t != m.tab {
			continue
		}
		if m.allTabs {
			b.WriteString(styles.TabDone.Render(t.Label()))
			b.WriteString("\n")
		}
		for i, w := range m.fields {
			if w.Field().Tab() == t {
				m.writeRow(&b, i, w, snap)
			}
		}
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *formModel) writeRow(b *strings.Builder, i int, w FormField, snap guide.Snapshot) {
	f := w.Field()
	disabled := m.disabled(w)

	ls := styles.LabelStyle
	switch {
	case disabled:
		ls = styles.DisabledLabel
	case i == m.focus:
		ls = styles.FocusedLabel
	}

	marker := "  "
	if snap.IsHighlighted(f) {
		marker = styles.HighlightMarker.Render("▸ ")
		if !disabled {
			ls = styles.HighlightedLabel
		}
	}

	b.WriteString(marker)
	b.WriteString(ls.Render(w.Label()))
	b.WriteString("  ")
	if disabled {
		b.WriteString(styles.DisabledValue.Render(displayValue(w)))
	} else {
		b.WriteString(w.View())
	}
	b.WriteString("\n")

	if msg, ok := m.errs[f]; ok {
		b.WriteString(strings.Repeat(" ", 26))
		b.WriteString(styles.ErrorStyle.Render(msg))
		b.WriteString("\n")
	}
}

// displayValue is the read-only rendering of a disabled widget.
func displayValue(w FormField) string {
	v := w.Value()
	switch w.Field() {
	case guide.FieldAuthPassword, guide.FieldAuthToken:
		if v != "" {
			return "********"
		}
	}
	if v == "" {
		return "-"
	}
	return strings.ReplaceAll(v, "\n", " ")
}

func (m *formModel) tabBar() string {
	parts := make([]string, 0, len(guide.Tabs()))
	for _, t := range guide.Tabs() {
		switch {
		case m.allTabs:
			parts = append(parts, styles.TabInactive.Render(t.Label()))
		case t == m.tab:
			parts = append(parts, styles.TabActive.Render(t.Label()))
		default:
			parts = append(parts, styles.TabInactive.Render(t.Label()))
		}
	}
	return strings.Join(parts, "  │  ")
}

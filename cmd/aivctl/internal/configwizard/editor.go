package configwizard

import (
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// sideBySideWidth is the terminal width from which the guidance panel is
// drawn next to the form instead of below it.
const sideBySideWidth = 120

// editorScreen is the form plus the optional guidance panel.
type editorScreen struct {
	cfg       *modelapi.Config
	coord     *guide.Coordinator
	form      *formModel
	panel     *guidePanel
	showPanel bool
	title     string
	width     int
	logger    *zap.Logger
}

func newEditorScreen(cfg *modelapi.Config, coord *guide.Coordinator, title string, logger *zap.Logger) *editorScreen {
	s := &editorScreen{
		cfg:    cfg,
		coord:  coord,
		form:   newFormModel(cfg, coord.Store()),
		title:  title,
		logger: logger,
	}
	s.panel = newGuidePanel(coord, s.applyPreset)
	return s
}

func (s *editorScreen) init() tea.Cmd {
	return s.form.Init()
}

// applyPreset writes the values a preset dictates into the record and
// reloads the form from it.
func (s *editorScreen) applyPreset(items []guide.HelpItem) {
	if len(items) > 0 {
		s.cfg.ApplyPreset(items)
	}
	s.form.load()
	s.logger.Debug("preset applied", zap.Any("items", items), zap.Bool("active", s.coord.Active()))
}

func (s *editorScreen) openPanel() {
	s.showPanel = true
	s.panel.focus()
}

// closePanel ends the guidance session.
func (s *editorScreen) closePanel() {
	s.panel.blur()
	s.showPanel = false
	s.coord.Close()
	s.form.allTabs = false
}

func (s *editorScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.form.Update(msg)
	}

	switch kmsg.String() {
	case "ctrl+g":
		switch {
		case !s.showPanel:
			s.openPanel()
		case !s.panel.focused:
			s.panel.focus()
		default:
			s.closePanel()
		}
		return s, s.form.takePending()
	case "ctrl+t":
		if s.coord.Active() {
			return s, s.form.toggleAllTabs()
		}
		return s, nil
	case "ctrl+s":
		if !s.form.validate() {
			return s, nil
		}
		return s, func() tea.Msg { return openReviewMsg{} }
	}

	if s.showPanel && s.panel.focused {
		s.panel.Update(kmsg)
		return s, s.form.takePending()
	}

	if kmsg.String() == "esc" {
		return nil, nil
	}
	return s, tea.Batch(s.form.Update(msg), s.form.takePending())
}

func (s *editorScreen) View() string {
	form := s.form.View(s.title)

	var hints []string
	hints = append(hints, "↑/↓/Tab: navigate", "Ctrl+←/→: tabs", "Ctrl+G: guidance", "Ctrl+S: review", "Esc: quit")
	if s.coord.Active() {
		hints = append(hints, "Ctrl+T: toggle all tabs")
	}
	footer := styles.HintStyle.Render(strings.Join(hints, "  "))

	if !s.showPanel {
		return form + "\n" + footer
	}

	panel := s.panel.View()
	if s.width == 0 || s.width >= sideBySideWidth {
		return lipgloss.JoinHorizontal(lipgloss.Top, form, "  ", panel) + "\n" + footer
	}
	return form + "\n" + panel + "\n" + footer
}

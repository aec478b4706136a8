package configwizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/modelapi"
	tea "github.com/charmbracelet/bubbletea"
)

// -----------------------------------------------------------------------
// Review Screen
// -----------------------------------------------------------------------

// reviewActions defines the action buttons on the review screen.
var reviewActions = []string{"Save", "Save & Quit", "Back"}

type reviewScreen struct {
	cfg        *modelapi.Config
	path       string
	original   []byte
	scroll     int
	lines      []string
	validErrs  []string
	maxVisible int
	cursor     int
	status     string
}

func newReviewScreen(cfg *modelapi.Config, path string, original []byte) *reviewScreen {
	s := &reviewScreen{
		cfg:        cfg,
		path:       path,
		original:   original,
		maxVisible: 20,
	}
	s.refresh()
	return s
}

func (s *reviewScreen) refresh() {
	s.scroll = 0
	s.validErrs = nil

	data, err := modelapi.Marshal(*s.cfg)
	if err != nil {
		s.lines = []string{"Error marshaling record: " + err.Error()}
		return
	}

	diff, err := diffRecord(s.path, s.original, data)
	switch {
	case err != nil:
		s.lines = []string{"Error: " + err.Error()}
	case diff == "":
		s.lines = []string{"No changes."}
	default:
		s.lines = strings.Split(strings.TrimRight(diff, "\n"), "\n")
	}

	var verr *modelapi.ValidationError
	if err := s.cfg.Validate(); errors.As(err, &verr) {
		for _, p := range verr.Problems {
			s.validErrs = append(s.validErrs, fmt.Sprintf("%s: %s", p.Field.Label(), p.Message))
		}
	} else if err != nil {
		s.validErrs = []string{err.Error()}
	}
}

func (s *reviewScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case configSavedMsg:
		s.original = msg.data
		s.refresh()
		s.status = "Saved " + s.path
		return s, nil
	case configSaveErrMsg:
		s.status = "Error: " + msg.err.Error()
		return s, nil
	case tea.KeyMsg:
		s.status = ""
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *reviewScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
	case "down", "j":
		maxScroll := max(len(s.lines)-s.maxVisible, 0)
		if s.scroll < maxScroll {
			s.scroll++
		}
	case "left", "h":
		if s.cursor > 0 {
			s.cursor--
		}
	case "right", "l":
		if s.cursor < len(reviewActions)-1 {
			s.cursor++
		}
	case "enter":
		return s.executeAction()
	case "ctrl+s":
		if len(s.validErrs) > 0 {
			return s, nil
		}
		return s, s.save(false)
	case "esc":
		return nil, nil
	}
	return s, nil
}

func (s *reviewScreen) executeAction() (screen, tea.Cmd) {
	switch reviewActions[s.cursor] {
	case "Save":
		if len(s.validErrs) > 0 {
			return s, nil
		}
		return s, s.save(false)
	case "Save & Quit":
		if len(s.validErrs) > 0 {
			return s, nil
		}
		return s, s.save(true)
	case "Back":
		return nil, nil
	}
	return s, nil
}

func (s *reviewScreen) save(quit bool) tea.Cmd {
	cfg := *s.cfg
	path := s.path
	return func() tea.Msg {
		data, err := SaveRecord(path, cfg)
		if err != nil {
			return configSaveErrMsg{err: err}
		}
		return configSavedMsg{data: data, quit: quit}
	}
}

func renderDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return styles.DimStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		return styles.DiffDel.Render(line)
	case strings.HasPrefix(line, "@@"):
		return styles.DiffHunk.Render(line)
	default:
		return styles.DimStyle.Render(line)
	}
}

func (s *reviewScreen) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Review & Save"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(s.path))
	b.WriteString("\n\n")

	// Show validation errors.
	if len(s.validErrs) > 0 {
		for _, e := range s.validErrs {
			b.WriteString(styles.ErrorStyle.Render("Validation: " + e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Diff with scrolling.
	end := min(s.scroll+s.maxVisible, len(s.lines))
	for _, line := range s.lines[s.scroll:end] {
		b.WriteString(renderDiffLine(line))
		b.WriteString("\n")
	}

	if len(s.lines) > s.maxVisible {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(
			fmt.Sprintf("↑/↓: scroll  showing lines %d-%d of %d", s.scroll+1, end, len(s.lines)),
		))
		b.WriteString("\n")
	}

	// Status message.
	if s.status != "" {
		b.WriteString("\n")
		if strings.HasPrefix(s.status, "Error:") {
			b.WriteString(styles.ErrorStyle.Render(s.status))
		} else {
			b.WriteString(styles.SuccessStyle.Render(s.status))
		}
		b.WriteString("\n")
	}

	// Action buttons.
	b.WriteString("\n")
	if len(s.validErrs) > 0 {
		b.WriteString(styles.ErrorStyle.Render("Fix validation errors before saving"))
	} else {
		for i, action := range reviewActions {
			if i > 0 {
				b.WriteString("  ")
			}
			label := fmt.Sprintf("[ %s ]", action)
			if i == s.cursor {
				b.WriteString(styles.SelStyle.Render(label))
			} else {
				b.WriteString(styles.OptStyle.Render(label))
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle.Render("←/→: select action  Enter: confirm  Ctrl+S: save  Esc: back"))

	return b.String()
}

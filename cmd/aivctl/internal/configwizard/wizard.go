// Package configwizard is the full-screen model API editor: a form bound to
// the guidance store with a preset picker and guide steps, and a review
// screen that diffs the record against the file on disk before saving.
package configwizard

import (
	"cmp"
	"fmt"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// screen is the interface for screens pushed over the editor.
type screen interface {
	Update(tea.Msg) (screen, tea.Cmd)
	View() string
}

// Option configures a WizardModel.
type Option func(*WizardModel)

// WithLogger sets the logger for wizard and guidance events.
func WithLogger(l *zap.Logger) Option {
	return func(m *WizardModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPreset starts the session with a preset already selected and the
// guidance panel open.
func WithPreset(items []guide.HelpItem) Option {
	return func(m *WizardModel) { m.preset = items }
}

// WizardModel is the root bubbletea model for the model API editor.
type WizardModel struct {
	cfg      *modelapi.Config
	path     string
	original []byte
	coord    *guide.Coordinator
	editor   *editorScreen
	stack    []screen
	logger   *zap.Logger
	preset   []guide.HelpItem
	width    int
	height   int
	saved    bool
}

// NewWizardModel creates an editor for cfg, which lives at path. The file on
// disk, if any, is the baseline the review screen diffs against.
func NewWizardModel(cfg modelapi.Config, path string, opts ...Option) (WizardModel, error) {
	original, err := readOriginal(path)
	if err != nil {
		return WizardModel{}, err
	}

	m := WizardModel{
		cfg:      &cfg,
		path:     path,
		original: original,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(&m)
	}

	m.coord = guide.NewCoordinator(nil, guide.WithLogger(m.logger))
	title := fmt.Sprintf("Model API: %s", cmp.Or(cfg.Name, path))
	m.editor = newEditorScreen(m.cfg, m.coord, title, m.logger)
	if len(m.preset) > 0 {
		m.editor.openPanel()
		m.coord.SelectPreset(m.preset)
		m.editor.applyPreset(m.preset)
	}
	return m, nil
}

// Config returns the record as edited so far.
func (m WizardModel) Config() modelapi.Config { return *m.cfg }

// Saved reports whether the record was written during the session.
func (m WizardModel) Saved() bool { return m.saved }

// Close ends the guidance session and detaches the form from the store.
func (m WizardModel) Close() {
	m.coord.Close()
	m.editor.form.close()
}

func (m WizardModel) Init() tea.Cmd {
	return m.editor.init()
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.width = msg.Width

	case tea.KeyMsg:
		// Global quit.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case openReviewMsg:
		m.stack = append(m.stack, newReviewScreen(m.cfg, m.path, m.original))
		return m, nil

	case configSavedMsg:
		m.saved = true
		m.original = msg.data
		m.logger.Info("model api saved", zap.String("path", m.path))
		if msg.quit {
			return m, tea.Quit
		}

	case configSaveErrMsg:
		m.logger.Warn("model api save failed", zap.String("path", m.path), zap.Error(msg.err))
	}

	// If we have screens on the stack, delegate.
	if len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		updated, cmd := top.Update(msg)
		if updated == nil {
			// Screen wants to pop itself.
			m.stack = m.stack[:len(m.stack)-1]
			return m, nil
		}
		m.stack[len(m.stack)-1] = updated
		return m, cmd
	}

	updated, cmd := m.editor.Update(msg)
	if updated == nil {
		return m, tea.Quit
	}
	return m, cmd
}

func (m WizardModel) View() string {
	if len(m.stack) > 0 {
		return m.stack[len(m.stack)-1].View()
	}
	view := m.editor.View()
	if m.saved {
		view += "\n" + styles.SuccessStyle.Render("Saved "+m.path)
	}
	return view
}

// Run opens the editor and blocks until the user quits. It returns the
// record as last edited and whether it was saved.
func Run(cfg modelapi.Config, path string, opts ...Option) (modelapi.Config, bool, error) {
	m, err := NewWizardModel(cfg, path, opts...)
	if err != nil {
		return cfg, false, err
	}
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return cfg, false, fmt.Errorf("configwizard: %w", err)
	}
	fm := final.(WizardModel)
	return fm.Config(), fm.Saved(), nil
}

// openReviewMsg asks the wizard to push the review screen.
type openReviewMsg struct{}

// configSavedMsg signals a successful save.
type configSavedMsg struct {
	data []byte
	quit bool
}

// configSaveErrMsg signals a save error.
type configSaveErrMsg struct {
	err error
}

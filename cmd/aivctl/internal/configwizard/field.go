package configwizard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	"github.com/aiverify/aivctl/pkg/modelapi"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FormField is the interface every form widget implements. Each widget is
// bound to one model API field. Widgets are not tea.Model, they are managed
// by formModel.
type FormField interface {
	Field() guide.Field
	Label() string
	Value() string
	SetValue(string)
	// Disabled reports the widget's own disabled state, independent of the
	// guidance store.
	Disabled() bool
	SetDisabled(bool)
	Focus() tea.Cmd
	Blur()
	Validate() error
	Update(tea.Msg) (FormField, tea.Cmd)
	View() string
}

// bound carries what every widget shares.
type bound struct {
	field    guide.Field
	disabled bool
}

func (b *bound) Field() guide.Field { return b.field }
func (b *bound) Label() string      { return b.field.Label() }
func (b *bound) Disabled() bool     { return b.disabled }
func (b *bound) SetDisabled(v bool) { b.disabled = v }
func (b *bound) requiredErr() error { return fmt.Errorf("%s is required", b.Label()) }
func (b *bound) invalidErr(s string) error {
	return fmt.Errorf("%s must be %s", b.Label(), s)
}

// defaultInputWidth is the text content width for single-line inputs.
const defaultInputWidth = 50

// -----------------------------------------------------------------------
// TextField
// -----------------------------------------------------------------------

// TextField wraps a textinput for single-line string input.
type TextField struct {
	bound
	input    textinput.Model
	required bool
}

// NewTextField creates a single-line text field for f.
func NewTextField(f guide.Field, placeholder string, required bool) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = defaultInputWidth
	return &TextField{bound: bound{field: f}, input: ti, required: required}
}

// NewSecretField creates a text field that masks its input.
func NewSecretField(f guide.Field, placeholder string) *TextField {
	tf := NewTextField(f, placeholder, false)
	tf.input.EchoMode = textinput.EchoPassword
	return tf
}

func (f *TextField) Value() string     { return f.input.Value() }
func (f *TextField) SetValue(v string) { f.input.SetValue(v) }
func (f *TextField) Focus() tea.Cmd    { return f.input.Focus() }
func (f *TextField) Blur()             { f.input.Blur() }

func (f *TextField) Validate() error {
	if f.required && strings.TrimSpace(f.input.Value()) == "" {
		return f.requiredErr()
	}
	return nil
}

func (f *TextField) Update(msg tea.Msg) (FormField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *TextField) View() string {
	return f.input.View()
}

// -----------------------------------------------------------------------
// IntField
// -----------------------------------------------------------------------

// IntField wraps a textinput that accepts only integer values.
type IntField struct {
	bound
	input textinput.Model
}

// NewIntField creates an integer input field for f.
func NewIntField(f guide.Field, placeholder string) *IntField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 20
	ti.Width = defaultInputWidth
	return &IntField{bound: bound{field: f}, input: ti}
}

func (f *IntField) Value() string     { return f.input.Value() }
func (f *IntField) SetValue(v string) { f.input.SetValue(v) }
func (f *IntField) Focus() tea.Cmd    { return f.input.Focus() }
func (f *IntField) Blur()             { f.input.Blur() }

func (f *IntField) Validate() error {
	v := strings.TrimSpace(f.input.Value())
	if v == "" {
		return f.requiredErr()
	}
	if _, err := strconv.Atoi(v); err != nil {
		return f.invalidErr("an integer")
	}
	return nil
}

func (f *IntField) Update(msg tea.Msg) (FormField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *IntField) View() string {
	return f.input.View()
}

// -----------------------------------------------------------------------
// SelectField
// -----------------------------------------------------------------------

// SelectField lets the user pick one option from a list.
type SelectField struct {
	bound
	options []string
	cursor  int
	focused bool
}

// NewSelectField creates a single-select field for f.
func NewSelectField(f guide.Field, options []string) *SelectField {
	return &SelectField{bound: bound{field: f}, options: slices.Clone(options)}
}

func (f *SelectField) Value() string {
	if f.cursor >= 0 && f.cursor < len(f.options) {
		return f.options[f.cursor]
	}
	return ""
}

// SetValue moves the cursor to v. Values outside the option list are kept
// as an extra option so loading a record never loses data.
func (f *SelectField) SetValue(v string) {
	for i, opt := range f.options {
		if opt == v {
			f.cursor = i
			return
		}
	}
	if v != "" {
		f.options = append(f.options, v)
		f.cursor = len(f.options) - 1
	}
}

func (f *SelectField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *SelectField) Blur()           { f.focused = false }
func (f *SelectField) Validate() error { return nil }

func (f *SelectField) Update(msg tea.Msg) (FormField, tea.Cmd) {
	if !f.focused {
		return f, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "left", "h":
			if f.cursor > 0 {
				f.cursor--
			}
		case "right", "l", " ":
			if f.cursor < len(f.options)-1 {
				f.cursor++
			} else if msg.String() == " " {
				f.cursor = 0
			}
		}
	}
	return f, nil
}

func (f *SelectField) View() string {
	var b strings.Builder
	for i, opt := range f.options {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == f.cursor {
			if f.focused {
				b.WriteString(styles.SelStyle.Render(opt))
			} else {
				b.WriteString(lipgloss.NewStyle().Bold(true).Render(opt))
			}
		} else {
			b.WriteString(styles.OptStyle.Render(opt))
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------
// TextAreaField
// -----------------------------------------------------------------------

// TextAreaField wraps a textarea for multi-line text input.
type TextAreaField struct {
	bound
	input textarea.Model
}

// NewTextAreaField creates a multi-line text area field for f.
func NewTextAreaField(f guide.Field, placeholder string) *TextAreaField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.SetHeight(3)
	ta.SetWidth(defaultInputWidth)
	ta.CharLimit = 4096
	return &TextAreaField{bound: bound{field: f}, input: ta}
}

func (f *TextAreaField) Value() string     { return f.input.Value() }
func (f *TextAreaField) SetValue(v string) { f.input.SetValue(v) }
func (f *TextAreaField) Focus() tea.Cmd    { return f.input.Focus() }
func (f *TextAreaField) Blur()             { f.input.Blur() }
func (f *TextAreaField) Validate() error   { return nil }

func (f *TextAreaField) Update(msg tea.Msg) (FormField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *TextAreaField) View() string {
	return f.input.View()
}

// newWidget builds the widget for f.
func newWidget(f guide.Field) FormField {
	switch f {
	case guide.FieldName:
		return NewTextField(f, "my-model-api", true)
	case guide.FieldDescription:
		return NewTextAreaField(f, "What the model predicts")
	case guide.FieldModelType:
		return NewSelectField(f, modelapi.ModelTypes)
	case guide.FieldMethod:
		return NewSelectField(f, modelapi.Methods)
	case guide.FieldURL:
		return NewTextField(f, "https://host/predict/{id}", true)
	case guide.FieldAuthType:
		return NewSelectField(f, modelapi.AuthTypes)
	case guide.FieldAuthPassword, guide.FieldAuthToken:
		return NewSecretField(f, "${ENV_VAR} or value")
	case guide.FieldRequestMediaType:
		return NewSelectField(f, modelapi.RequestMedia)
	case guide.FieldParamType:
		return NewSelectField(f, modelapi.ParamTypes)
	case guide.FieldRequestParamName, guide.FieldURLParamName, guide.FieldHeaderName:
		return NewTextField(f, "comma separated names", false)
	case guide.FieldRequestParamType, guide.FieldURLParamType:
		return NewTextField(f, "comma separated: "+strings.Join(modelapi.DataTypes, ", "), false)
	case guide.FieldHeaderValue:
		return NewTextField(f, "comma separated values", false)
	case guide.FieldResponseMediaType:
		return NewSelectField(f, modelapi.ResponseMedia)
	case guide.FieldResponseSchemaType:
		return NewSelectField(f, modelapi.SchemaTypes)
	case guide.FieldBatchStrategy:
		return NewSelectField(f, modelapi.BatchStrategies)
	case guide.FieldResponseStatusCode:
		return NewIntField(f, "200")
	case guide.FieldRateLimit, guide.FieldBatchLimit, guide.FieldMaxConnections, guide.FieldConnectionTimeout:
		return NewIntField(f, "-1 for unlimited")
	case guide.FieldConnectionRetries:
		return NewIntField(f, "3")
	default:
		return NewTextField(f, "", false)
	}
}

package configwizard

import (
	"fmt"
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/guide"
	tea "github.com/charmbracelet/bubbletea"
)

// guidePanel is the preset picker plus the list of guide steps. Moving the
// cursor onto a step hovers it; moving off it, or leaving the panel, ends the
// hover.
type guidePanel struct {
	coord    *guide.Coordinator
	presets  []guide.Preset
	onSelect func(items []guide.HelpItem)

	cursor  int
	focused bool
	hovered string
}

func newGuidePanel(coord *guide.Coordinator, onSelect func([]guide.HelpItem)) *guidePanel {
	return &guidePanel{
		coord:    coord,
		presets:  guide.Presets(),
		onSelect: onSelect,
	}
}

// presetRows counts the "no preset" row plus one row per preset.
func (p *guidePanel) presetRows() int { return len(p.presets) + 1 }

func (p *guidePanel) steps() []guide.GuideStep { return p.coord.State().Steps }

func (p *guidePanel) rowCount() int { return p.presetRows() + len(p.steps()) }

// stepAt returns the step under row, if the row is a step row.
func (p *guidePanel) stepAt(row int) (guide.GuideStep, bool) {
	i := row - p.presetRows()
	steps := p.steps()
	if i < 0 || i >= len(steps) {
		return guide.GuideStep{}, false
	}
	return steps[i], true
}

func (p *guidePanel) focus() {
	p.focused = true
	p.syncHover()
}

// blur leaves the panel, which ends any hover.
func (p *guidePanel) blur() {
	p.focused = false
	p.leave()
}

func (p *guidePanel) leave() {
	if p.hovered != "" {
		p.coord.LeaveStep()
		p.hovered = ""
	}
}

// syncHover turns the cursor position into hover events.
func (p *guidePanel) syncHover() {
	step, ok := p.stepAt(p.cursor)
	if !ok || !p.focused {
		p.leave()
		return
	}
	if step.Name != p.hovered {
		p.coord.HoverStep(step.Name)
		p.hovered = step.Name
	}
}

func (p *guidePanel) move(delta int) {
	p.cursor = min(max(p.cursor+delta, 0), p.rowCount()-1)
	p.syncHover()
}

// choose selects the preset under the cursor. Row 0 clears the selection.
func (p *guidePanel) choose() {
	if p.cursor >= p.presetRows() {
		return
	}
	var items []guide.HelpItem
	if p.cursor > 0 {
		items = p.presets[p.cursor-1].Items
	}
	p.leave()
	p.coord.SelectPreset(items)
	if p.onSelect != nil {
		p.onSelect(items)
	}
	p.cursor = min(p.cursor, p.rowCount()-1)
}

// Update handles keys while the panel is focused. It reports false when the
// panel wants to hand focus back to the form.
func (p *guidePanel) Update(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "k":
		p.move(-1)
	case "down", "j":
		p.move(1)
	case "enter", " ":
		p.choose()
	case "esc", "tab":
		p.blur()
		return false
	}
	return true
}

func (p *guidePanel) selected(i int) bool {
	sel := p.coord.Selection()
	if i == 0 {
		return len(sel) == 0
	}
	return p.presets[i-1].Equal(sel)
}

func (p *guidePanel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Guidance"))
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("Presets"))
	b.WriteString("\n")

	for i := range p.presetRows() {
		label := "No preset"
		if i > 0 {
			label = p.presets[i-1].Label
		}
		radio := "( )"
		if p.selected(i) {
			radio = "(•)"
		}
		line := fmt.Sprintf("%s %s", radio, label)
		if p.focused && i == p.cursor {
			b.WriteString(styles.SelStyle.Render("> " + line))
		} else {
			b.WriteString(styles.OptStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	steps := p.steps()
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Steps"))
	b.WriteString("\n")
	if len(steps) == 0 {
		b.WriteString(styles.DimStyle.Render("  Pick a preset to see what to fill in."))
		b.WriteString("\n")
	}
	for i, s := range steps {
		row := p.presetRows() + i
		name := fmt.Sprintf("%d. %s", i+1, s.Name)
		cursor := "  "
		if p.focused && row == p.cursor {
			cursor = "> "
		}
		if s.Name == p.hovered {
			b.WriteString(cursor + styles.StepHoverStyle.Render(name))
		} else {
			b.WriteString(cursor + styles.StepStyle.Render(name))
		}
		b.WriteString("\n")

		labels := make([]string, len(s.Fields))
		for j, ref := range s.Fields {
			labels[j] = ref.Field.Label()
		}
		b.WriteString(styles.DimStyle.Render("     " + styles.TreeCorner + strings.Join(labels, ", ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle.Render("↑/↓: move  Enter: pick preset  Esc: back to form  Ctrl+G: close"))

	border := styles.PanelBorderBlurred
	if p.focused {
		border = styles.PanelBorder
	}
	return border.Render(b.String())
}

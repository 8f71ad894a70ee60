package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ghtrend/internal/config"
)

// langPicker is the settings surface: it toggles which languages get a
// dashboard section. It edits the config in place; the App persists and
// rebuilds sections when the picker closes.
type langPicker struct {
	cfg    *config.Config
	cursor int
}

func newLangPicker(cfg *config.Config) langPicker {
	return langPicker{cfg: cfg}
}

func (p *langPicker) names() []string {
	out := make([]string, 0, len(p.cfg.Languages)+len(p.cfg.CustomLanguages))
	for _, l := range p.cfg.Languages {
		out = append(out, l.Name)
	}
	for _, name := range p.cfg.CustomLanguages {
		out = append(out, name)
	}
	return out
}

func (p *langPicker) enabled(name string) bool {
	for _, l := range p.cfg.Languages {
		if l.Name == name {
			return l.Enabled
		}
	}
	// Custom languages are always on while listed.
	return true
}

func (p *langPicker) left() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *langPicker) right() {
	if p.cursor < len(p.names())-1 {
		p.cursor++
	}
}

func (p *langPicker) toggleCurrent() {
	names := p.names()
	if p.cursor >= len(names) {
		return
	}
	name := names[p.cursor]
	p.cfg.SetEnabled(name, !p.enabled(name))
}

func (p *langPicker) render(width int) string {
	sep := sectionCountStyle.Render(" · ")
	var parts []string
	for i, name := range p.names() {
		style := tabInactiveStyle
		if p.enabled(name) {
			style = tabActiveStyle
		}
		label := name
		if i == p.cursor {
			label = pickerCursorStyle.Render("[") + name + pickerCursorStyle.Render("]")
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	label := helpDimStyle.Render(" languages: ")
	return label + row + strings.Repeat(" ", max(0, width-lipgloss.Width(label+row)))
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"ghtrend/internal/trending"
)

// sectionState is the per-section lifecycle: every section moves through
// Loading -> Loaded | Error independently, so one failed language never
// blocks the rest of the dashboard.
type sectionState int

const (
	stateLoading sectionState = iota
	stateLoaded
	stateError
)

type section struct {
	language  string // "" is the overall feed
	state     sectionState
	repos     []trending.Repository
	err       error
	collapsed bool
}

func (s *section) title() string {
	if s.language == "" {
		return "All languages"
	}
	return s.language
}

// rows is how many cursor positions the section occupies: one per repo when
// expanded and loaded, otherwise a single row for the header line.
func (s *section) rows() int {
	if s.state == stateLoaded && !s.collapsed && len(s.repos) > 0 {
		return len(s.repos)
	}
	return 1
}

func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 1000 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderRepo(r trending.Repository, rank int, selected bool, width int) string {
	marker := "  "
	nameStyle := repoNameStyle
	if selected {
		marker = "> "
		nameStyle = repoSelectedStyle
	}

	stars := repoStarsStyle.Render("★ " + formatCount(r.Stars))
	gained := ""
	if r.PeriodStars > 0 {
		gained = sectionCountStyle.Render(fmt.Sprintf(" +%s %s", formatCount(r.PeriodStars), r.PeriodLabel))
	}
	lang := ""
	if r.Language != "" {
		lang = " " + repoLangStyle.Render(r.Language)
	}

	name := truncateStr(r.FullName, width-6)
	title := fmt.Sprintf("  %s%2d. %s  %s%s%s", marker, rank, nameStyle.Render(name), stars, gained, lang)

	if r.Description == "" {
		return title
	}
	desc := "        " + repoDescStyle.Render(truncateStr(r.Description, width-10))
	return title + "\n" + desc
}

// renderSection returns the section block plus the line offset of the
// focused row inside it, so the dashboard can keep the cursor in view.
func renderSection(s section, focused bool, repoCursor int, width int, spinnerView string) (string, int) {
	arrow := "▾"
	if s.collapsed {
		arrow = "▸"
	}

	titleStyle := sectionTitleStyle
	if focused {
		titleStyle = sectionTitleFocusedStyle
	}
	header := " " + arrow + " " + titleStyle.Render(s.title())

	switch s.state {
	case stateLoading:
		return header + " " + spinnerView + sectionCountStyle.Render(" fetching..."), 0
	case stateError:
		block := header + "\n" + "    " + sectionErrStyle.Render("✗ "+s.err.Error()) +
			sectionCountStyle.Render("  (r to retry)")
		return block, 0
	}

	if len(s.repos) == 0 {
		return header + sectionCountStyle.Render("  nothing trending"), 0
	}

	header += sectionCountStyle.Render(fmt.Sprintf("  %d repos", len(s.repos)))
	if s.collapsed {
		return header, 0
	}

	var b strings.Builder
	b.WriteString(header)
	focusLine := 0
	line := 1
	for i, r := range s.repos {
		selected := focused && i == repoCursor
		if selected {
			focusLine = line
		}
		block := renderRepo(r, i+1, selected, width)
		b.WriteString("\n")
		b.WriteString(block)
		line += strings.Count(block, "\n") + 1
	}
	return b.String(), focusLine
}

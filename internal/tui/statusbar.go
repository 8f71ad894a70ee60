package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(repoCount, loading, failed, width int, notice, hints string) string {
	left := fmt.Sprintf(" %d repos", repoCount)
	if loading > 0 {
		left += fmt.Sprintf(" · %d loading", loading)
	}
	if failed > 0 {
		left += " · " + sectionErrStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	if notice != "" {
		left += " · " + lipgloss.NewStyle().Foreground(colorGreen).Render(notice)
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ghtrend/internal/browser"
	"ghtrend/internal/config"
	"ghtrend/internal/loader"
	"ghtrend/internal/trending"
	"ghtrend/internal/update"
)

type mode int

const (
	modeDashboard mode = iota
	modePicker
	modeHelp
)

// sectionTimeout bounds one section load; generous next to the per-request
// timeout because a cold load may walk both cache tiers and retry.
const sectionTimeout = 15 * time.Second

type App struct {
	cfg     *config.Config
	cfgPath string
	ld      *loader.Loader
	version string

	sections   []section
	period     trending.Period
	cursor     int // focused section
	repoCursor int // highlighted repo inside the focused section

	mode    mode
	picker  langPicker
	spinner spinner.Model

	width  int
	height int

	currentDate  string
	updateNotice string
	statusMsg    string
	forceFresh   bool
	preload      bool
}

// RunOpts holds all parameters for launching the dashboard.
type RunOpts struct {
	Cfg          *config.Config
	CfgPath      string
	Loader       *loader.Loader
	Period       trending.Period
	Version      string
	ForceRefresh bool
	Preload      bool
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	a := &App{
		cfg:         opts.Cfg,
		cfgPath:     opts.CfgPath,
		ld:          opts.Loader,
		version:     opts.Version,
		period:      opts.Period,
		picker:      newLangPicker(opts.Cfg),
		spinner:     sp,
		currentDate: time.Now().Format("Jan 2"),
		forceFresh:  opts.ForceRefresh,
		preload:     opts.Preload,
	}
	a.sections = buildSections(opts.Cfg, nil)
	return a
}

// buildSections lays out the dashboard: the overall feed first, then one
// section per enabled language. Loaded data for surviving languages is
// carried over from prev so a picker edit doesn't refetch everything.
func buildSections(cfg *config.Config, prev []section) []section {
	keep := make(map[string]section, len(prev))
	for _, s := range prev {
		keep[s.language] = s
	}

	names := append([]string{""}, cfg.EnabledLanguages()...)
	sections := make([]section, 0, len(names))
	for _, name := range names {
		if s, ok := keep[name]; ok {
			sections = append(sections, s)
			continue
		}
		sections = append(sections, section{language: name, state: stateLoading})
	}
	return sections
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.checkUpdateCmd()}
	for i := range a.sections {
		cmds = append(cmds, a.loadSectionCmd(i, a.forceFresh))
	}
	if a.preload {
		cmds = append(cmds, a.preloadCmd())
	}
	a.forceFresh = false
	return tea.Batch(cmds...)
}

// loadSectionCmd captures the section's identity into the closure; the
// result message is matched back by (language, period), not index, so
// picker edits between dispatch and completion can't misfile it.
func (a *App) loadSectionCmd(i int, force bool) tea.Cmd {
	lang := a.sections[i].language
	period := a.period
	ld := a.ld
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sectionTimeout)
		defer cancel()

		var (
			repos []trending.Repository
			err   error
		)
		if force {
			repos, err = ld.Refresh(ctx, lang, period)
		} else {
			repos, err = ld.Load(ctx, lang, period)
		}
		if err != nil {
			return sectionErrMsg{language: lang, period: period, err: err}
		}
		return sectionLoadedMsg{language: lang, period: period, repos: repos}
	}
}

func (a *App) preloadCmd() tea.Cmd {
	ld := a.ld
	langs := a.cfg.EnabledLanguages()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return preloadDoneMsg{errs: ld.Preload(ctx, append([]string{""}, langs...))}
	}
}

func (a *App) checkUpdateCmd() tea.Cmd {
	version := a.version
	return func() tea.Msg {
		res := update.Check(context.Background(), version)
		if res == nil {
			return nil
		}
		return updateNoticeMsg{latest: res.LatestVersion}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return sectionErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) sectionFor(language string) *section {
	for i := range a.sections {
		if a.sections[i].language == language {
			return &a.sections[i]
		}
	}
	return nil
}

func (a *App) anyLoading() bool {
	for _, s := range a.sections {
		if s.state == stateLoading {
			return true
		}
	}
	return false
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.statusMsg = ""
		return a.handleKey(msg)

	case sectionLoadedMsg:
		// Stale results from a period the user already left are dropped.
		if msg.period != a.period {
			return a, nil
		}
		if s := a.sectionFor(msg.language); s != nil {
			s.state = stateLoaded
			s.repos = msg.repos
			s.err = nil
			a.clampCursor()
		}
		return a, nil

	case sectionErrMsg:
		if msg.language == "" && msg.period == "" {
			// Not tied to a section (browser launch); show it and move on.
			if msg.err != nil {
				a.statusMsg = msg.err.Error()
			}
			return a, nil
		}
		if msg.period != a.period {
			return a, nil
		}
		if s := a.sectionFor(msg.language); s != nil {
			s.state = stateError
			s.err = msg.err
			a.clampCursor()
		}
		return a, nil

	case preloadDoneMsg:
		if n := len(msg.errs); n > 0 {
			a.statusMsg = fmt.Sprintf("preload: %d window(s) failed", n)
		}
		return a, nil

	case updateNoticeMsg:
		a.updateNotice = "v" + msg.latest + " available"
		return a, nil

	case spinner.TickMsg:
		if a.anyLoading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modePicker:
		return a.handlePickerKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeDashboard
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "n", "J":
		if a.cursor < len(a.sections)-1 {
			a.cursor++
			a.repoCursor = 0
		}
		return a, nil
	case "p", "K":
		if a.cursor > 0 {
			a.cursor--
			a.repoCursor = 0
		}
		return a, nil
	case "enter", " ":
		if s := a.focused(); s != nil && s.state == stateLoaded {
			s.collapsed = !s.collapsed
			a.repoCursor = 0
		}
		return a, nil
	case "o":
		if s := a.focused(); s != nil && s.state == stateLoaded && !s.collapsed && a.repoCursor < len(s.repos) {
			return a, openBrowserCmd(s.repos[a.repoCursor].URL)
		}
		return a, nil
	case "r":
		return a, a.reloadSection(a.cursor, true)
	case "R":
		var cmds []tea.Cmd
		for i := range a.sections {
			cmds = append(cmds, a.reloadSection(i, true))
		}
		return a, tea.Batch(cmds...)
	case "1":
		return a, a.switchPeriod(trending.PeriodDaily)
	case "2":
		return a, a.switchPeriod(trending.PeriodWeekly)
	case "3":
		return a, a.switchPeriod(trending.PeriodMonthly)
	case "l":
		a.mode = modePicker
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "l", "q":
		a.mode = modeDashboard
		return a, a.applyPicker()
	case "left", "h":
		a.picker.left()
		return a, nil
	case "right", "tab":
		a.picker.right()
		return a, nil
	case " ", "enter":
		a.picker.toggleCurrent()
		return a, nil
	}
	return a, nil
}

// applyPicker rebuilds the section list from the edited config, persists
// the selection, and kicks off loads for any newly enabled language.
func (a *App) applyPicker() tea.Cmd {
	a.sections = buildSections(a.cfg, a.sections)
	a.clampCursor()

	cmds := []tea.Cmd{a.spinner.Tick}
	for i := range a.sections {
		if a.sections[i].state == stateLoading && len(a.sections[i].repos) == 0 {
			cmds = append(cmds, a.loadSectionCmd(i, false))
		}
	}

	if err := config.Save(a.cfg, a.cfgPath); err != nil {
		a.statusMsg = "saving config: " + err.Error()
	}
	return tea.Batch(cmds...)
}

func (a *App) switchPeriod(p trending.Period) tea.Cmd {
	if p == a.period {
		return nil
	}
	a.period = p
	a.repoCursor = 0

	cmds := []tea.Cmd{a.spinner.Tick}
	for i := range a.sections {
		a.sections[i].state = stateLoading
		a.sections[i].err = nil
		cmds = append(cmds, a.loadSectionCmd(i, false))
	}
	return tea.Batch(cmds...)
}

func (a *App) reloadSection(i int, force bool) tea.Cmd {
	if i < 0 || i >= len(a.sections) {
		return nil
	}
	a.sections[i].state = stateLoading
	a.sections[i].err = nil
	if i == a.cursor {
		a.repoCursor = 0
	}
	return tea.Batch(a.spinner.Tick, a.loadSectionCmd(i, force))
}

func (a *App) focused() *section {
	if a.cursor < 0 || a.cursor >= len(a.sections) {
		return nil
	}
	return &a.sections[a.cursor]
}

// moveCursor walks the repo cursor through the focused section and across
// section boundaries in either direction.
func (a *App) moveCursor(delta int) {
	s := a.focused()
	if s == nil {
		return
	}
	next := a.repoCursor + delta
	if next >= 0 && next < s.rows() {
		a.repoCursor = next
		return
	}
	if delta > 0 && a.cursor < len(a.sections)-1 {
		a.cursor++
		a.repoCursor = 0
	} else if delta < 0 && a.cursor > 0 {
		a.cursor--
		a.repoCursor = a.sections[a.cursor].rows() - 1
	}
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.sections) {
		a.cursor = len(a.sections) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if s := a.focused(); s != nil && a.repoCursor >= s.rows() {
		a.repoCursor = s.rows() - 1
	}
	if a.repoCursor < 0 {
		a.repoCursor = 0
	}
}

func (a *App) repoTotal() int {
	total := 0
	for _, s := range a.sections {
		if s.state == stateLoaded {
			total += len(s.repos)
		}
	}
	return total
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  ghtrend")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	header := a.renderHeader()
	tabs := a.renderPeriodTabs()

	secondRow := tabs
	if a.mode == modePicker {
		secondRow = a.picker.render(a.width)
	}

	content, focusLine := a.renderSections()
	contentHeight := a.height - 3 // header, tabs, status bar
	if contentHeight < 3 {
		contentHeight = 3
	}
	content = windowLines(content, focusLine, contentHeight)

	var loading, failed int
	for _, s := range a.sections {
		switch s.state {
		case stateLoading:
			loading++
		case stateError:
			failed++
		}
	}
	hints := "j/k move  n/p section  enter fold  o open  r reload  1/2/3 period  l langs  ? help  q quit"
	if a.mode == modePicker {
		hints = "←/→ move  space toggle  esc done"
	}
	notice := a.updateNotice
	if a.statusMsg != "" {
		notice = a.statusMsg
	}
	status := renderStatusBar(a.repoTotal(), loading, failed, a.width, notice, hints)

	return lipgloss.JoinVertical(lipgloss.Left, header, secondRow, content, status)
}

func (a *App) renderHeader() string {
	left := headerStyle.Render("ghtrend")
	right := headerDateStyle.Render(a.currentDate + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) renderPeriodTabs() string {
	labels := map[trending.Period]string{
		trending.PeriodDaily:   "1 today",
		trending.PeriodWeekly:  "2 this week",
		trending.PeriodMonthly: "3 this month",
	}
	var parts []string
	for _, p := range trending.Periods() {
		style := tabInactiveStyle
		if p == a.period {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(labels[p]))
	}
	return " " + strings.Join(parts, " ")
}

// renderSections stacks every section block and reports which output line
// holds the cursor, for scrolling.
func (a *App) renderSections() (string, int) {
	var b strings.Builder
	focusLine := 0
	line := 0
	for i := range a.sections {
		focused := i == a.cursor && a.mode == modeDashboard
		block, offset := renderSection(a.sections[i], focused, a.repoCursor, a.width, a.spinner.View())
		if focused {
			focusLine = line + offset
		}
		if i > 0 {
			b.WriteString("\n\n")
			line++
		}
		b.WriteString(block)
		line += strings.Count(block, "\n") + 1
	}
	return b.String(), focusLine
}

// windowLines slices content to height lines, keeping the focus line in view.
func windowLines(content string, focus, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= height {
		for len(lines) < height {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	start := 0
	if focus >= height-2 {
		start = focus - height + 3
	}
	if start > len(lines)-height {
		start = len(lines) - height
	}
	return strings.Join(lines[start:start+height], "\n")
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("ghtrend")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through repositories\n" +
		"  n/p, J/K      Jump between sections\n\n" +
		dim.Render("Actions") + "\n" +
		"  o             Open repository in browser\n" +
		"  enter, space  Collapse or expand a section\n" +
		"  r             Reload the focused section\n" +
		"  R             Reload every section\n" +
		"  1/2/3         Switch today / this week / this month\n" +
		"  l             Edit language sections\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the dashboard.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/lingo/internal/render"
)

func (m *model) View() string {
	switch m.stage {
	case stageCompose:
		return m.viewCompose()
	case stageResults:
		return m.viewResults()
	default:
		return ""
	}
}

func (m *model) viewCompose() string {
	parts := []string{m.heroView()}
	parts = append(parts, sectionHeaderStyle.Render("Source Text"))
	parts = append(parts, composeBoxStyle.Render(m.painter.paint(m.editor.surf, m.editor.surf.Point(), true)))
	parts = append(parts, helperStyle.Render("Ctrl+T: translate • Tab: results • Esc: quit"))
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) viewResults() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView()}
	if h, ok := m.active.(render.Headerer); ok && m.tr != nil {
		parts = append(parts, statusBarStyle.Render(h.Header(m.tr)))
	}
	body := m.viewport.View()
	if render.PinnedActive() && m.renderMode != renderPinned {
		if s, ok := render.Panel(render.PinnedName); ok {
			side := pinnedBoxStyle.Render(m.painter.paint(s, 0, false))
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, side)
		}
	}
	parts = append(parts, body)
	if m.partial != "" {
		width := uint(max(m.viewport.Width, minViewportWidth))
		parts = append(parts, helperStyle.Render(truncate.String("… "+m.partial, width)))
	}
	if m.runActive() {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.progressLine())))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" && !m.runActive() {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	switch {
	case m.panelEdit:
		parts = append(parts, helperStyle.Render("Editing results; Esc locks the panel again."))
	case m.helpVisible:
		parts = append(parts, m.keyLegendView(), m.helpView())
	default:
		parts = append(parts, helperStyle.Render("j/k: move • enter: expand • tab: compose • ?: all keys"))
	}
	return joinNonEmpty(parts)
}

// refreshViewport repaints the display surface into the viewport, with a
// gutter marking the cursor line.
func (m *model) refreshViewport() {
	m.viewportDirty = false
	surf := m.displaySurface()
	var painted string
	if m.panelEdit && m.panelEditor != nil {
		painted = m.painter.paint(surf, surf.Point(), true)
	} else {
		painted = m.painter.paint(surf, 0, false)
	}
	lines := strings.Split(painted, "\n")
	m.lineCount = len(lines)
	if m.cursorLine >= m.lineCount {
		m.cursorLine = m.lineCount - 1
	}
	if m.cursorLine < 0 {
		m.cursorLine = 0
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteRune('\n')
		}
		if i == m.cursorLine && !m.panelEdit {
			b.WriteString(cursorGutterStyle.Render("▌ "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(line)
	}
	m.viewport.SetContent(b.String())
}

func (m *model) heroView() string {
	stats := []string{
		fmt.Sprintf("Languages %s", m.target),
		fmt.Sprintf("Engines %s", strings.Join(m.engineNames(), ", ")),
		fmt.Sprintf("Render %s", m.renderMode),
	}
	if m.config.Cache != nil {
		stats = append(stats, "Cache on")
	}
	meter := statusBarStyle.Render(strings.Join(stats, "  •  "))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		taglineStyle.Render(heroTagline),
		meter,
	)
}

func (m *model) engineNames() []string {
	names := make([]string, 0, len(m.config.Engines))
	for _, e := range m.config.Engines {
		names = append(names, e.Name())
	}
	return names
}

func (m *model) progressLine() string {
	done := 0
	for _, t := range m.tr.Tasks {
		if t.State.Terminal() {
			done++
		}
	}
	return fmt.Sprintf("translating to %s (%d/%d engines)", m.tr.Target.Active(), done, len(m.tr.Tasks))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func (m *model) keyLegendView() string {
	var binds []render.Keybind
	if kb, ok := m.active.(render.Keybinder); ok {
		binds = kb.Keybinds()
	}
	if len(binds) == 0 {
		binds = (&render.PanelRender{}).Keybinds()
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(binds); i += columns {
		end := i + columns
		if end > len(binds) {
			end = len(binds)
		}
		var cells []string
		for _, bind := range binds[i:end] {
			key := keyStyle.Render(bind.Key)
			desc := keyDescStyle.Render(" " + bind.Help)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("How It Works"),
		helperStyle.Render("• write or paste text on the compose screen, then Ctrl+T runs every configured engine at once."),
		helperStyle.Render("• m cycles where results land: panel, popup, pinned, replace, append, decorate, clipboard, or a desktop notification."),
		helperStyle.Render("• t retranslates into the next target language; R repeats the run after d forgets the cached results."),
		helperStyle.Render("• long source paragraphs fold behind " + foldMarkStyle.Render("…") + "; enter on the line expands them."),
		helperStyle.Render("• e unlocks the results panel for manual fixes, w appends the run to history, y copies everything."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

const heroTagline = "every engine, one terminal"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor  = lipgloss.Color("#4cc9f0")
	heroInkColor     = lipgloss.Color("#081420")
	heroTextColor    = lipgloss.Color("#e0fbfc")
	heroSubtextColor = lipgloss.Color("#90e0ef")

	taglineStyle    = lipgloss.NewStyle().Foreground(heroSubtextColor).Italic(true)
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	composeBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	pinnedBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroSubtextColor).Padding(0, 1).MarginLeft(2)

	sourceTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pendingTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	resultTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	foldMarkStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelTextStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	dimmedTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
	decorationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Italic(true)
	cursorStyle       = lipgloss.NewStyle().Reverse(true)
	cursorGutterStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)

	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroInkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#021019"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"██╗       ██╗  ███╗   ██╗   ██████╗    ██████╗ ",
		"██║       ██║  ████╗  ██║  ██╔════╝   ██╔═══██╗",
		"██║       ██║  ██╔██╗ ██║  ██║  ███╗  ██║   ██║",
		"██║       ██║  ██║╚██╗██║  ██║   ██║  ██║   ██║",
		"███████╗  ██║  ██║ ╚████║  ╚██████╔╝  ╚██████╔╝",
		"╚══════╝  ╚═╝  ╚═╝  ╚═══╝   ╚═════╝    ╚═════╝ ",
	}
)

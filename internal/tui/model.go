package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/csheth/lingo/internal/render"
	"github.com/csheth/lingo/internal/source"
	"github.com/csheth/lingo/internal/speech"
	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

// Config wires runtime collaborators into the TUI program.
type Config struct {
	Engines     []translate.Engine
	Cache       translate.ResultCache
	Speaker     speech.Speaker
	Notifier    render.Notifier
	Clipboard   render.Clipboard
	HistoryPath string
	InitialText string
	Source      string
	Targets     []string
	RenderMode  string
	SplitMode   source.SplitMode
	Logger      zerolog.Logger
}

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	updateBuffer              = 64
	sourceFoldLimit           = 160
	partialPreviewLimit       = 48
)

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	src := surface.New("*compose*")
	if config.InitialText != "" {
		src.Reset(config.InitialText)
		src.SetPoint(src.Len())
	}

	mode, _ := parseRenderMode(config.RenderMode)
	return &model{
		config:        config,
		stage:         stageCompose,
		editor:        newEditor(src),
		spinner:       spin,
		viewport:      vp,
		painter:       newPainter(),
		jobs:          newJobBus(config.Logger),
		target:        translate.Target{Source: config.Source, Targets: config.Targets},
		renderMode:    mode,
		panel:         render.NewPanel("", render.Options{TruncateAt: sourceFoldLimit}),
		updates:       make(chan translate.Update, updateBuffer),
		viewportDirty: true,
		infoMessage:   "Type the text to translate, then press ctrl+t.",
	}
}

type model struct {
	config Config
	stage  stage

	editor      *editor
	panelEditor *editor
	spinner     spinner.Model
	viewport    viewport.Model
	painter     *painter
	jobs        *jobBus

	target     translate.Target
	renderMode renderMode
	active     render.Render
	panel      *render.PanelRender
	popup      *render.PopupRender

	tr         *translate.Translator
	updates    chan translate.Update
	subscribed bool
	partial    string

	panelEdit     bool
	cursorLine    int
	lineCount     int
	viewportDirty bool
	infoMessage   string
	errorMessage  string
	helpVisible   bool
	width         int
	height        int
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.runActive() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, m.quitCmd()
		case tea.KeyEsc:
			switch {
			case m.panelEdit:
				m.lockPanel()
				return m, nil
			case m.stage == stageResults:
				m.stage = stageCompose
				m.infoMessage = "Composing. Press tab to return to results."
				return m, nil
			default:
				return m, m.quitCmd()
			}
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageResults {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		newWidth := msg.Width - viewportHorizontalPadding
		if newWidth < minViewportWidth {
			newWidth = minViewportWidth
		}
		m.viewport.Width = newWidth
		height := msg.Height - 12
		if height < 5 {
			height = 5
		}
		m.viewport.Height = height
		m.width, m.height = msg.Width, msg.Height
		m.markViewportDirty()
		return m, nil
	case runUpdateMsg:
		return m.handleRunUpdate(msg)
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case popupExpiredMsg:
		if m.tr != nil && msg.seq == m.tr.Seq() && m.renderMode == renderPopup {
			render.ClosePanel(render.PopupName)
			m.infoMessage = "Popup dismissed."
			m.markViewportDirty()
		}
		return m, nil
	case copyDoneMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		} else {
			m.errorMessage = ""
			m.infoMessage = fmt.Sprintf("Copied %d characters.", msg.chars)
		}
		return m, nil
	case saveDoneMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		} else {
			m.errorMessage = ""
			m.infoMessage = fmt.Sprintf("Saved to %s.", msg.path)
		}
		return m, nil
	case speakDoneMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		}
		return m, nil
	case openDoneMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		} else {
			m.errorMessage = ""
			m.infoMessage = "Opened in browser."
		}
		return m, nil
	case cacheClearedMsg:
		m.infoMessage = fmt.Sprintf("Forgot %d cached results. Press R to re-translate.", msg.removed)
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageCompose:
		return m.handleComposeKey(key)
	case stageResults:
		return m.handleResultsKey(key)
	}
	return m, nil
}

func (m *model) handleComposeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlT:
		return m.startRun()
	case tea.KeyTab:
		if m.tr != nil {
			m.stage = stageResults
			m.markViewportDirty()
			return m, nil
		}
		m.infoMessage = "No results yet. Press ctrl+t to translate."
		return m, nil
	}
	handled, err := m.editor.handleKey(key)
	if err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	if handled {
		m.errorMessage = ""
	}
	return m, nil
}

func (m *model) handleResultsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panelEdit {
		return m.handlePanelEditKey(key)
	}
	switch key.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "g":
		m.setCursorLine(0)
	case "G":
		m.setCursorLine(m.lineCount - 1)
	case "enter":
		if fe, ok := m.active.(foldExpander); ok && fe.ExpandFold(m.cursorLine) {
			m.infoMessage = "Folded source expanded."
			m.markViewportDirty()
		}
	case "tab":
		m.stage = stageCompose
	case "t":
		return m.cycleTarget()
	case "m":
		m.renderMode = m.renderMode.next()
		m.infoMessage = fmt.Sprintf("Render mode %s; applies to the next run.", m.renderMode)
	case "y":
		return m.withFinishedRun(func() tea.Cmd { return m.copyCmd() })
	case "d":
		if m.config.Cache == nil {
			m.infoMessage = "Cache is disabled."
			return m, nil
		}
		if m.tr == nil {
			m.infoMessage = "Nothing cached for this session yet."
			return m, nil
		}
		return m, m.clearCacheCmd()
	case "R":
		return m.refreshRun()
	case "o":
		if m.tr == nil {
			m.infoMessage = "Translate something first."
			return m, nil
		}
		return m, m.openCmd()
	case "s":
		if m.config.Speaker == nil {
			m.infoMessage = "No speech command found on this machine."
			return m, nil
		}
		return m, m.speakCmd(m.speakText())
	case "w":
		if m.config.HistoryPath == "" {
			m.infoMessage = "History is disabled; pass a history path to enable it."
			return m, nil
		}
		return m.withFinishedRun(func() tea.Cmd { return m.saveCmd() })
	case "e":
		m.togglePanelEdit()
	case "?":
		m.helpVisible = !m.helpVisible
	case "q":
		return m, m.quitCmd()
	}
	return m, nil
}

func (m *model) handlePanelEditKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panelEditor == nil {
		m.panelEdit = false
		return m, nil
	}
	if _, err := m.panelEditor.handleKey(key); err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.markViewportDirty()
	return m, nil
}

// withFinishedRun gates commands that read results on the run being over.
func (m *model) withFinishedRun(build func() tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case m.tr == nil:
		m.infoMessage = "Translate something first."
		return m, nil
	case m.tr.State != translate.StateDone:
		m.infoMessage = "Still translating; try again in a moment."
		return m, nil
	}
	return m, build()
}

func (m *model) runActive() bool {
	return m.tr != nil && !m.tr.State.Terminal()
}

// startRun builds a fresh translator from the compose surface and launches
// it. The segment regions recorded here are what in-place renders write
// back to.
func (m *model) startRun() (tea.Model, tea.Cmd) {
	if m.panelEdit {
		m.lockPanel()
	}
	text := m.editor.surf.Text()
	spans := source.SplitSpans(text, m.config.SplitMode)
	if len(spans) == 0 {
		m.errorMessage = "Nothing to translate."
		return m, nil
	}
	runes := []rune(text)
	segments := make([]string, 0, len(spans))
	regions := make([]surface.Region, 0, len(spans))
	for _, sp := range spans {
		segments = append(segments, string(runes[sp.Start:sp.End]))
		regions = append(regions, m.editor.surf.Region(sp.Start, sp.End))
	}
	tr := translate.New(segments, m.target)
	tr.Bounds = &translate.Bounds{Surface: m.editor.surf, Regions: regions}
	m.tr = tr
	return m.launch()
}

// launch (re)starts the current translator: reset tasks, init the render,
// dispatch one job per task.
func (m *model) launch() (tea.Model, tea.Cmd) {
	if err := m.tr.Start(m.config.Engines); err != nil {
		m.errorMessage = err.Error()
		return m, nil
	}
	m.active = m.buildRender()
	if err := m.active.Init(m.tr); err != nil {
		m.reportRenderError(err)
		m.config.Logger.Warn().Err(err).Msg("render init failed")
		return m, nil
	}
	m.stage = stageResults
	m.cursorLine = 0
	m.partial = ""
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Translating %s…", m.tr.Target)
	m.viewport.SetYOffset(0)
	m.markViewportDirty()

	cmds := []tea.Cmd{m.spinner.Tick}
	if sub := m.subscribeCmd(); sub != nil {
		cmds = append(cmds, sub)
	}
	for _, job := range m.tr.Dispatch(m.config.Cache) {
		cmds = append(cmds, m.translateJobCmd(job))
	}
	m.config.Logger.Info().
		Str("target", m.tr.Target.String()).
		Int("segments", len(m.tr.Segments)).
		Int("tasks", len(m.tr.Tasks)).
		Str("render", m.renderMode.String()).
		Msg("run started")
	return m, tea.Batch(cmds...)
}

func (m *model) buildRender() render.Render {
	opts := render.Options{TruncateAt: sourceFoldLimit}
	switch m.renderMode {
	case renderPopup:
		m.popup = render.NewPopup(opts)
		return m.popup
	case renderPinned:
		return render.Pinned(opts)
	case renderReplace:
		return &render.ReplaceRender{Mode: render.ModeReplace, Opts: opts}
	case renderAppend:
		return &render.ReplaceRender{Mode: render.ModeAppend, Opts: opts, RestyleSource: true}
	case renderDecorate:
		opts.Format = render.Format{Template: " → %s"}
		return &render.DecorationRender{Mode: surface.DecorationAfter, Opts: opts}
	case renderClipboard:
		clip := m.config.Clipboard
		if clip == nil {
			clip = render.SystemClipboard{}
		}
		return &render.ClipboardRender{Clipboard: clip, Opts: opts}
	case renderNotify:
		return &render.NotifyRender{Notifier: m.config.Notifier, Opts: opts}
	default:
		m.panel.Opts = opts
		return m.panel
	}
}

func (m *model) cycleTarget() (tea.Model, tea.Cmd) {
	if len(m.target.Targets) < 2 {
		m.infoMessage = "Only one target language configured."
		return m, nil
	}
	m.target = m.target.Next()
	if m.tr == nil {
		m.infoMessage = fmt.Sprintf("Target now %s.", m.target)
		return m, nil
	}
	m.tr.Keep = true
	m.tr.Target = m.target
	return m.launch()
}

func (m *model) refreshRun() (tea.Model, tea.Cmd) {
	if m.tr == nil {
		return m.startRun()
	}
	m.tr.Keep = true
	return m.launch()
}

func (m *model) handleRunUpdate(msg runUpdateMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.update.Partial {
		// The channel receiver just fired; arm the next one.
		cmds = append(cmds, waitForUpdate(m.updates))
	}
	if m.tr == nil || !m.tr.Apply(msg.update) {
		return m, tea.Batch(cmds...)
	}
	if msg.update.Partial {
		m.partial = partialPreview(msg.update.Results)
	}
	if err := m.active.Output(m.tr); err != nil {
		m.reportRenderError(err)
	}
	m.markViewportDirty()
	if m.tr.State.Terminal() && !msg.update.Partial {
		m.partial = ""
		m.finishRun(&cmds)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) finishRun(cmds *[]tea.Cmd) {
	elapsed := time.Since(m.tr.StartedAt).Round(time.Millisecond)
	switch {
	case m.tr.Failed():
		m.infoMessage = fmt.Sprintf("Finished with errors in %s.", elapsed)
	case m.renderMode == renderClipboard:
		m.infoMessage = fmt.Sprintf("Copied to clipboard in %s.", elapsed)
	case m.renderMode == renderNotify:
		m.infoMessage = fmt.Sprintf("Notification sent after %s.", elapsed)
	default:
		m.infoMessage = fmt.Sprintf("Translated in %s.", elapsed)
	}
	m.config.Logger.Info().
		Dur("elapsed", elapsed).
		Bool("failed", m.tr.Failed()).
		Msg("run finished")
	if m.renderMode == renderPopup && m.popup != nil {
		*cmds = append(*cmds, popupTimerCmd(m.tr.Seq(), m.popup.DismissDelay()))
	}
}

func (m *model) reportRenderError(err error) {
	var taskErr *render.TaskError
	var preErr *render.PreconditionError
	switch {
	case errors.Is(err, render.ErrVanished):
		m.errorMessage = "Output target is gone; results kept in memory."
	case errors.As(err, &taskErr):
		m.errorMessage = taskErr.Error()
	case errors.As(err, &preErr):
		m.errorMessage = preErr.Error()
	default:
		m.errorMessage = err.Error()
	}
	m.config.Logger.Warn().Err(err).Msg("render failed")
}

// foldExpander is the slice of the panel renders the results pane talks to
// for enter-to-expand.
type foldExpander interface {
	ExpandFold(line int) bool
}

func (m *model) togglePanelEdit() {
	if m.renderMode.inPlace() {
		m.infoMessage = "No panel in this mode; the compose pane is already editable."
		return
	}
	if m.panelEdit {
		m.lockPanel()
		return
	}
	surf := m.displaySurface()
	if surf == m.editor.surf {
		m.infoMessage = "No panel to edit yet."
		return
	}
	surf.SetReadOnly(false)
	surf.SetPoint(positionOfLine(surf, m.cursorLine))
	m.panelEditor = newEditor(surf)
	m.panelEdit = true
	m.infoMessage = "Panel unlocked for manual fixes. Esc locks it again."
	m.markViewportDirty()
}

func (m *model) lockPanel() {
	if m.panelEditor != nil {
		m.panelEditor.surf.SetReadOnly(true)
	}
	m.panelEditor = nil
	m.panelEdit = false
	m.infoMessage = "Panel locked."
	m.markViewportDirty()
}

// displaySurface picks what the results pane shows: the active panel for
// panel-family renders, the compose surface for in-place ones.
func (m *model) displaySurface() *surface.Surface {
	if m.renderMode.inPlace() {
		return m.editor.surf
	}
	switch m.renderMode {
	case renderPopup:
		if s, ok := render.Panel(render.PopupName); ok {
			return s
		}
	case renderPinned:
		if s, ok := render.Panel(render.PinnedName); ok {
			return s
		}
	default:
		if s := m.panel.Surface(); s != nil {
			return s
		}
	}
	return m.editor.surf
}

func (m *model) speakText() string {
	if m.tr != nil && m.tr.State == translate.StateDone && !m.tr.Failed() {
		return render.CombinedText(m.tr)
	}
	return m.editor.surf.Text()
}

func (m *model) quitCmd() tea.Cmd {
	if m.config.Speaker != nil {
		// Stop an in-flight read before the program goes down; failure
		// must not block the quit.
		m.config.Speaker.Interrupt()
	}
	return tea.Quit
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) moveCursor(delta int) {
	if m.lineCount == 0 {
		return
	}
	target := m.cursorLine + delta
	if target < 0 {
		target = 0
	}
	if target >= m.lineCount {
		target = m.lineCount - 1
	}
	if target == m.cursorLine {
		return
	}
	m.cursorLine = target
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.ensureCursorVisible()
}

func (m *model) setCursorLine(line int) {
	if m.lineCount == 0 {
		return
	}
	if line < 0 {
		line = 0
	}
	if line >= m.lineCount {
		line = m.lineCount - 1
	}
	if line == m.cursorLine {
		return
	}
	m.cursorLine = line
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.ensureCursorVisible()
}

func (m *model) ensureCursorVisible() {
	if m.lineCount == 0 {
		return
	}
	line := m.cursorLine
	if line < 0 {
		line = 0
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
		return
	}
	lowerBound := m.viewport.YOffset + m.viewport.Height - 1
	if line > lowerBound {
		target := line - m.viewport.Height + 1
		if target < 0 {
			target = 0
		}
		m.viewport.SetYOffset(target)
	}
}

// positionOfLine returns the rune position at the start of a display line.
func positionOfLine(surf *surface.Surface, line int) int {
	pos := 0
	for i := 0; i < line && pos < surf.Len(); i++ {
		pos = surf.LineEnd(pos) + 1
	}
	if pos > surf.Len() {
		pos = surf.Len()
	}
	return pos
}

func partialPreview(results []string) string {
	last := ""
	for _, r := range results {
		if r != "" {
			last = r
		}
	}
	runes := []rune(last)
	if len(runes) > partialPreviewLimit {
		runes = runes[len(runes)-partialPreviewLimit:]
	}
	return string(runes)
}

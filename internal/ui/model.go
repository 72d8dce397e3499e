package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"zipexplorer/internal/config"
	"zipexplorer/internal/metrics"
	"zipexplorer/internal/recent"
	"zipexplorer/internal/services"
	"zipexplorer/internal/session"
	"zipexplorer/internal/state"
	"zipexplorer/internal/tree"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modePath
	modePassword
	modeSearch
	modeExt
)

type Model struct {
	state         *state.State
	host          services.Host
	recent        *recent.Cache
	logger        *zap.Logger
	base          config.Config
	keys          KeyMap
	session       session.State
	parseCancel   context.CancelFunc
	parseGen      uint64
	initial       string
	mode          inputMode
	pathInput     textinput.Model
	passwordInput textinput.Model
	filterInput   textinput.Model
	suggestions   []string
	help          viewport.Model
	showHelp      bool
	status        string
	width         int
	height        int
	viewTop       int
}

type ConfigProvider interface {
	ConfigSnapshot() config.Config
}

func NewModel(appState *state.State, host services.Host, cache *recent.Cache, base config.Config, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	pathInput := textinput.New()
	pathInput.Prompt = "Archive: "
	pathInput.Placeholder = "path/to/archive.zip"

	passwordInput := textinput.New()
	passwordInput.Prompt = "Password: "
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	filterInput := textinput.New()

	return Model{
		state:         appState,
		host:          host,
		recent:        cache,
		logger:        logger.Named("ui"),
		base:          base,
		keys:          DefaultKeyMap().WithOverrides(appState.KeyBindings),
		pathInput:     pathInput,
		passwordInput: passwordInput,
		filterInput:   filterInput,
		help:          viewport.New(80, 20),
		status:        "Ready - press o to open an archive",
		width:         100,
		height:        30,
	}
}

func (model Model) WithStatus(message string) Model {
	if message != "" {
		model.status = message
	}
	return model
}

// WithInitialArchive opens path as soon as the program starts.
func (model Model) WithInitialArchive(path string) Model {
	model.initial = path
	return model
}

func (model Model) Session() session.State {
	return model.session
}

func (model Model) ConfigSnapshot() config.Config {
	snapshot := model.base
	snapshot.Theme = model.state.Prefs.Theme
	snapshot.Decimals = model.state.Prefs.Decimals
	snapshot.KeyBindings = model.state.KeyBindings
	snapshot.LastDirectory = model.state.LastDir
	return snapshot
}

func (model Model) Init() tea.Cmd {
	cmds := []tea.Cmd{model.listenCmd()}
	if model.initial != "" {
		path := model.initial
		cmds = append(cmds, func() tea.Msg { return openPathMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.help.Width = maxInt(typed.Width-4, 10)
		model.help.Height = maxInt(typed.Height-4, 3)
		model.ensureCursorVisible()
		return model, nil
	case openPathMsg:
		return model.dispatch(session.Select{Path: typed.path})
	case hostEventMsg:
		var event session.Event = session.SelectionCancelled{}
		if typed.event.Kind == services.FileSelected {
			event = session.Select{Path: typed.event.Path}
		}
		next, cmd := model.dispatch(event)
		return next, tea.Batch(cmd, model.listenCmd())
	case selectionErrMsg:
		model.logger.Warn("file selection failed", zap.Error(typed.err))
		return model.dispatch(session.SelectionFailed{Err: typed.err})
	case parseResultMsg:
		metrics.RecordParse(session.ParseOutcome(typed.result, typed.err), typed.duration)
		if typed.generation == model.parseGen {
			model.parseCancel = nil
		}
		return model.dispatch(session.ParseCompleted{
			Generation: typed.generation,
			Result:     typed.result,
			Err:        typed.err,
		})
	default:
		return model.updateInputs(msg)
	}
}

func (model Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch model.mode {
	case modePath:
		model.pathInput, cmd = model.pathInput.Update(msg)
	case modePassword:
		model.passwordInput, cmd = model.passwordInput.Update(msg)
	case modeSearch, modeExt:
		model.filterInput, cmd = model.filterInput.Update(msg)
	}
	return model, cmd
}

// dispatch applies event to the session and turns the resulting effects
// into state changes and commands.
func (model Model) dispatch(event session.Event) (tea.Model, tea.Cmd) {
	var effects []session.Effect
	previous := model.session
	model.session, effects = session.Transition(model.session, event)
	model.logger.Debug("session transition",
		zap.String("from", previous.Phase.String()),
		zap.String("to", model.session.Phase.String()),
		zap.Int("effects", len(effects)),
	)

	var cmds []tea.Cmd
	for _, effect := range effects {
		cmds = append(cmds, model.apply(effect))
	}
	if model.session.Notice != "" {
		model.status = model.session.Notice
	}
	if _, cancelled := event.(session.Cancel); cancelled && model.session.Phase == session.Idle && previous.Phase != session.Idle {
		model.mode = modeBrowse
		model.passwordInput.Blur()
		model.state.Clear()
		model.status = "Cancelled"
	}
	return model, tea.Batch(cmds...)
}

func (model *Model) apply(effect session.Effect) tea.Cmd {
	switch eff := effect.(type) {
	case session.StartParse:
		// only PromptPassword opens the password field
		if model.mode == modePassword {
			model.mode = modeBrowse
			model.passwordInput.Blur()
		}
		return model.startParse(eff)
	case session.AbortParse:
		if model.parseCancel != nil && model.parseGen == eff.Generation {
			model.parseCancel()
			model.parseCancel = nil
		}
		return nil
	case session.ShowArchive:
		built := tree.Build(eff.Files)
		model.state.SetArchive(eff.Path, built, eff.Metadata)
		model.mode = modeBrowse
		model.passwordInput.Blur()
		model.viewTop = 0
		model.status = fmt.Sprintf("Opened %s (%d files)", recent.DisplayName(eff.Path), eff.Metadata.NumberOfFiles)
		if len(built.Conflicts) > 0 {
			model.status = fmt.Sprintf("Warning: %d entries shadowed by directories", len(built.Conflicts))
			model.logger.Warn("path conflicts", zap.String("archive", eff.Path), zap.Strings("paths", built.Conflicts))
		}
		return nil
	case session.RecordRecent:
		if model.recent != nil {
			model.state.SetRecent(model.recent.Record(eff.Path))
		}
		if dir := filepath.Dir(eff.Path); filepath.IsAbs(dir) {
			model.state.LastDir = dir
		}
		return nil
	case session.PromptPassword:
		model.mode = modePassword
		model.passwordInput.Reset()
		model.status = fmt.Sprintf("%s is password protected", recent.DisplayName(model.session.CurrentPath))
		return model.passwordInput.Focus()
	case session.ShowFailure:
		model.mode = modeBrowse
		model.passwordInput.Blur()
		model.state.Clear()
		model.status = "Error: " + eff.Message
		return nil
	}
	return nil
}

func (model *Model) startParse(start session.StartParse) tea.Cmd {
	if model.parseCancel != nil {
		model.parseCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	model.parseCancel = cancel
	model.parseGen = start.Generation
	model.status = fmt.Sprintf("Opening %s...", recent.DisplayName(start.Request.Path))
	if start.Request.HasPassword() {
		metrics.RecordPasswordAttempt()
	}
	host := model.host
	return func() tea.Msg {
		began := time.Now()
		result, err := host.ParseArchive(ctx, start.Request)
		return parseResultMsg{
			generation: start.Generation,
			result:     result,
			err:        err,
			duration:   time.Since(began),
		}
	}
}

func (model Model) listenCmd() tea.Cmd {
	if model.host == nil {
		return nil
	}
	events := model.host.Events()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return hostEventMsg{event: event}
	}
}

func (model Model) selectFileCmd() tea.Cmd {
	host := model.host
	return func() tea.Msg {
		if err := host.SelectFile(context.Background()); err != nil {
			return selectionErrMsg{err: err}
		}
		return nil
	}
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		model = model.abortParse()
		return model, tea.Quit
	}
	switch model.mode {
	case modePassword:
		return model.handlePasswordInput(msg)
	case modePath:
		return model.handlePathInput(msg)
	case modeSearch, modeExt:
		return model.handleFilterInput(msg)
	}
	if model.showHelp {
		if key.Matches(msg, model.keys.Help) || key.Matches(msg, model.keys.Cancel) {
			model.showHelp = false
			return model, nil
		}
		var cmd tea.Cmd
		model.help, cmd = model.help.Update(msg)
		return model, cmd
	}

	switch {
	case key.Matches(msg, model.keys.Quit):
		model = model.abortParse()
		return model, tea.Quit
	case key.Matches(msg, model.keys.Help):
		model.showHelp = true
		model.help.SetContent(helpContent(model, stylesFor(model)))
		model.help.GotoTop()
		return model, nil
	case key.Matches(msg, model.keys.Cancel):
		if model.session.Busy() {
			return model.dispatch(session.Cancel{})
		}
		return model, nil
	case key.Matches(msg, model.keys.Up):
		model.state.MoveCursor(-1)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Down):
		model.state.MoveCursor(1)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Toggle):
		line, ok := model.state.CurrentLine()
		if !ok || !line.Dir || model.state.Filtering() {
			return model, nil
		}
		model.state.ToggleExpanded(line.Path)
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Collapse):
		if !model.state.Filtering() {
			model.state.CollapseCurrent()
			model.ensureCursorVisible()
		}
		return model, nil
	case key.Matches(msg, model.keys.ExpandAll):
		model.state.ExpandAll()
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.CollapseAll):
		model.state.CollapseAll()
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Open):
		model.status = "Waiting for file dialog..."
		return model, model.selectFileCmd()
	case key.Matches(msg, model.keys.Path):
		model.mode = modePath
		model.suggestions = nil
		model.pathInput.SetValue(model.pathSeed())
		model.pathInput.CursorEnd()
		return model, model.pathInput.Focus()
	case key.Matches(msg, model.keys.Recent):
		index, err := strconv.Atoi(msg.String())
		if err != nil || index < 1 || index > len(model.state.Recent) {
			model.status = "No recent archive in that slot"
			return model, nil
		}
		return model.dispatch(session.Select{Path: model.state.Recent[index-1].Path})
	case key.Matches(msg, model.keys.Search):
		return model.beginFilter(modeSearch, "Search: ", model.state.SearchQuery)
	case key.Matches(msg, model.keys.ExtFilter):
		return model.beginFilter(modeExt, "Extension: ", model.state.FilterExt)
	case key.Matches(msg, model.keys.ClearFilter):
		model.state.ClearFilters()
		model.state.Cursor = 0
		model.ensureCursorVisible()
		model.status = "Filters cleared"
		return model, nil
	case key.Matches(msg, model.keys.Theme):
		if model.state.Prefs.Theme == config.ThemeLight {
			model.state.Prefs.Theme = config.ThemeDark
		} else {
			model.state.Prefs.Theme = config.ThemeLight
		}
		return model, nil
	case key.Matches(msg, model.keys.MoreDecimals):
		model.state.Prefs.Decimals = config.ClampDecimals(model.state.Prefs.Decimals + 1)
		return model, nil
	case key.Matches(msg, model.keys.FewerDecimals):
		model.state.Prefs.Decimals = config.ClampDecimals(model.state.Prefs.Decimals - 1)
		return model, nil
	}
	return model, nil
}

func (model Model) handlePasswordInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return model.dispatch(session.Cancel{})
	case tea.KeyEnter:
		password := model.passwordInput.Value()
		model.passwordInput.Reset()
		return model.dispatch(session.SubmitPassword{Password: password})
	}
	var cmd tea.Cmd
	model.passwordInput, cmd = model.passwordInput.Update(msg)
	return model, cmd
}

func (model Model) handlePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		model.mode = modeBrowse
		model.pathInput.Blur()
		model.suggestions = nil
		model.status = "Path entry cancelled"
		return model, nil
	case tea.KeyTab:
		completed, suggestions := completePath(model.pathInput.Value())
		model.pathInput.SetValue(completed)
		model.pathInput.CursorEnd()
		model.suggestions = suggestions
		return model, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(model.pathInput.Value())
		model.mode = modeBrowse
		model.pathInput.Blur()
		model.suggestions = nil
		return model.dispatch(session.Select{Path: path})
	}
	var cmd tea.Cmd
	model.pathInput, cmd = model.pathInput.Update(msg)
	return model, cmd
}

func (model Model) beginFilter(mode inputMode, prompt, value string) (tea.Model, tea.Cmd) {
	model.mode = mode
	model.filterInput.Prompt = prompt
	model.filterInput.SetValue(value)
	model.filterInput.CursorEnd()
	return model, model.filterInput.Focus()
}

func (model Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		model.mode = modeBrowse
		model.filterInput.Blur()
		model.status = "Filter cancelled"
		return model, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(model.filterInput.Value())
		switch model.mode {
		case modeSearch:
			model.state.SearchQuery = value
		case modeExt:
			model.state.FilterExt = value
		}
		model.mode = modeBrowse
		model.filterInput.Blur()
		model.state.Cursor = 0
		model.ensureCursorVisible()
		model.status = "Filter applied"
		return model, nil
	}
	var cmd tea.Cmd
	model.filterInput, cmd = model.filterInput.Update(msg)
	return model, cmd
}

func (model Model) abortParse() Model {
	if model.parseCancel != nil {
		model.parseCancel()
		model.parseCancel = nil
	}
	return model
}

func (model Model) pathSeed() string {
	if model.state.LastDir == "" {
		return ""
	}
	return model.state.LastDir + string(filepath.Separator)
}

func (model *Model) ensureCursorVisible() {
	visible := model.state.VisibleLines()
	if len(visible) == 0 {
		model.state.Cursor = 0
		model.viewTop = 0
		return
	}
	if model.state.Cursor >= len(visible) {
		model.state.Cursor = len(visible) - 1
	}
	if model.state.Cursor < 0 {
		model.state.Cursor = 0
	}
	listHeight := model.listHeight()
	if listHeight <= 0 {
		return
	}
	if model.state.Cursor < model.viewTop {
		model.viewTop = model.state.Cursor
	}
	if model.state.Cursor >= model.viewTop+listHeight {
		model.viewTop = model.state.Cursor - listHeight + 1
	}
	maxTop := len(visible) - listHeight
	if maxTop < 0 {
		maxTop = 0
	}
	if model.viewTop > maxTop {
		model.viewTop = maxTop
	}
}

func (model *Model) listHeight() int {
	return model.height - 7
}

func completePath(input string) (string, []string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed, nil
	}
	dir := filepath.Dir(trimmed)
	base := filepath.Base(trimmed)
	if strings.HasSuffix(trimmed, string(filepath.Separator)) {
		dir = trimmed
		base = ""
	}
	if dir == "." {
		dir = ""
	}
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(readDir)
	if err != nil {
		return input, nil
	}
	matches := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if entry.IsDir() || strings.EqualFold(filepath.Ext(name), ".zip") {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return input, nil
	}
	completed := commonPrefix(matches)
	if dir != "" {
		completed = filepath.Join(dir, completed)
	}
	if len(matches) == 1 && entriesHasDir(entries, matches[0]) {
		completed += string(filepath.Separator)
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		if dir != "" {
			paths = append(paths, filepath.Join(dir, match))
		} else {
			paths = append(paths, match)
		}
	}
	return completed, paths
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, value := range values[1:] {
		for !strings.HasPrefix(value, prefix) && prefix != "" {
			prefix = prefix[:len(prefix)-1]
		}
		if prefix == "" {
			return ""
		}
	}
	return prefix
}

func entriesHasDir(entries []os.DirEntry, name string) bool {
	for _, entry := range entries {
		if entry.Name() == name {
			return entry.IsDir()
		}
	}
	return false
}

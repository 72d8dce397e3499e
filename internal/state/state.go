package state

import (
	"path"
	"strings"

	"zipexplorer/internal/config"
	"zipexplorer/internal/domain"
	"zipexplorer/internal/tree"
)

type Preferences struct {
	Theme    string
	Decimals int
}

// State is what the browser shows for the open archive. Lines is always the
// complete outline; collapse and filters only affect VisibleLines.
type State struct {
	Archive     string
	Metadata    domain.ArchiveMetadata
	Lines       []tree.Line
	Conflicts   []string
	Cursor      int
	Expanded    map[string]bool
	Prefs       Preferences
	Recent      []domain.RecentArchive
	KeyBindings map[string]string
	LastDir     string
	SearchQuery string
	FilterExt   string
}

func NewState(cfg config.Config) *State {
	return &State{
		Expanded: make(map[string]bool),
		Prefs: Preferences{
			Theme:    cfg.Theme,
			Decimals: cfg.Decimals,
		},
		KeyBindings: ensureBindings(cfg.KeyBindings),
		LastDir:     cfg.LastDirectory,
	}
}

func ensureBindings(bindings map[string]string) map[string]string {
	if bindings == nil {
		return map[string]string{}
	}
	return bindings
}

// SetArchive replaces the displayed archive. Every directory starts
// collapsed.
func (appState *State) SetArchive(archive string, built *tree.Tree, metadata domain.ArchiveMetadata) {
	appState.Archive = archive
	appState.Metadata = metadata
	appState.Lines = nil
	appState.Conflicts = nil
	if built != nil {
		appState.Lines = tree.Render(built.Root)
		appState.Conflicts = append([]string(nil), built.Conflicts...)
	}
	appState.Cursor = 0
	appState.Expanded = make(map[string]bool)
	appState.ClearFilters()
}

func (appState *State) Clear() {
	appState.SetArchive("", nil, domain.ArchiveMetadata{})
}

func (appState *State) HasArchive() bool {
	return appState.Archive != ""
}

func (appState *State) SetRecent(entries []domain.RecentArchive) {
	appState.Recent = append([]domain.RecentArchive(nil), entries...)
}

func (appState *State) Filtering() bool {
	return appState.SearchQuery != "" || appState.FilterExt != ""
}

func (appState *State) ClearFilters() {
	appState.SearchQuery = ""
	appState.FilterExt = ""
}

func (appState *State) VisibleLines() []tree.Line {
	if appState.Filtering() {
		return appState.filteredLines()
	}
	visible := make([]tree.Line, 0, len(appState.Lines))
	hiddenBelow := -1
	for _, line := range appState.Lines {
		if hiddenBelow >= 0 {
			if line.Depth > hiddenBelow {
				continue
			}
			hiddenBelow = -1
		}
		visible = append(visible, line)
		if line.Dir && !appState.Expanded[line.Path] {
			hiddenBelow = line.Depth
		}
	}
	return visible
}

// filteredLines keeps matching files and the directories leading to them,
// regardless of collapse state.
func (appState *State) filteredLines() []tree.Line {
	keep := make(map[string]bool)
	for _, line := range appState.Lines {
		if !appState.lineMatches(line) {
			continue
		}
		keep[line.Path] = true
		for parent := path.Dir(line.Path); parent != "." && parent != "/"; parent = path.Dir(parent) {
			keep[parent] = true
		}
	}
	visible := make([]tree.Line, 0, len(keep))
	for _, line := range appState.Lines {
		if keep[line.Path] {
			visible = append(visible, line)
		}
	}
	return visible
}

func (appState *State) lineMatches(line tree.Line) bool {
	if appState.SearchQuery != "" {
		query := strings.ToLower(appState.SearchQuery)
		if !strings.Contains(strings.ToLower(line.Name), query) {
			return false
		}
	}
	if appState.FilterExt != "" {
		if line.Dir {
			return false
		}
		filter := strings.ToLower(strings.TrimPrefix(appState.FilterExt, "."))
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(line.Name), "."))
		if ext != filter {
			return false
		}
	}
	return true
}

func (appState *State) CurrentLine() (tree.Line, bool) {
	visible := appState.VisibleLines()
	if len(visible) == 0 || appState.Cursor < 0 || appState.Cursor >= len(visible) {
		return tree.Line{}, false
	}
	return visible[appState.Cursor], true
}

func (appState *State) MoveCursor(delta int) {
	visible := appState.VisibleLines()
	appState.Cursor += delta
	if appState.Cursor >= len(visible) {
		appState.Cursor = len(visible) - 1
	}
	if appState.Cursor < 0 {
		appState.Cursor = 0
	}
}

func (appState *State) ToggleExpanded(dir string) bool {
	if dir == "" {
		return false
	}
	appState.Expanded[dir] = !appState.Expanded[dir]
	if !appState.Expanded[dir] {
		delete(appState.Expanded, dir)
	}
	return appState.Expanded[dir]
}

func (appState *State) IsExpanded(dir string) bool {
	return appState.Expanded[dir]
}

func (appState *State) ExpandAll() {
	for _, line := range appState.Lines {
		if line.Dir {
			appState.Expanded[line.Path] = true
		}
	}
}

func (appState *State) CollapseAll() {
	appState.Expanded = make(map[string]bool)
	appState.Cursor = 0
}

// CollapseCurrent collapses the directory under the cursor, or moves the
// cursor to the parent directory and collapses that.
func (appState *State) CollapseCurrent() bool {
	line, ok := appState.CurrentLine()
	if !ok {
		return false
	}
	if line.Dir && appState.Expanded[line.Path] {
		delete(appState.Expanded, line.Path)
		return true
	}
	parent := path.Dir(line.Path)
	if parent == "." {
		return false
	}
	delete(appState.Expanded, parent)
	appState.focus(parent)
	return true
}

func (appState *State) focus(target string) {
	for index, line := range appState.VisibleLines() {
		if line.Path == target {
			appState.Cursor = index
			return
		}
	}
}

// Counts returns the number of directories and files in the outline.
func (appState *State) Counts() (int, int) {
	var dirs, files int
	for _, line := range appState.Lines {
		if line.Dir {
			dirs++
		} else {
			files++
		}
	}
	return dirs, files
}

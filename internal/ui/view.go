package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"zipexplorer/internal/config"
	"zipexplorer/internal/session"
	"zipexplorer/internal/tree"
	"zipexplorer/internal/units"
)

type uiStyles struct {
	headerStyle lipgloss.Style
	mutedStyle  lipgloss.Style
	statusStyle lipgloss.Style
	warnStyle   lipgloss.Style
	cursorStyle lipgloss.Style
	dirStyle    lipgloss.Style
	panelBorder lipgloss.Style
}

func stylesFor(model Model) uiStyles {
	if strings.ToLower(model.state.Prefs.Theme) == config.ThemeLight {
		return uiStyles{
			headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
			mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
			statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
			warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
			cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("90")).Bold(true),
			dirStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
			panelBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		}
	}
	return uiStyles{
		headerStyle: lipgloss.NewStyle().Bold(true),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		dirStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		panelBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (model Model) View() string {
	styles := stylesFor(model)
	if model.showHelp {
		width := maxInt(model.width-2, 10)
		return styles.panelBorder.Width(width).Render(model.help.View())
	}

	body := renderBody(model, styles)
	footer := renderFooter(model, styles)
	return strings.Join([]string{body, footer}, "\n")
}

func renderBody(model Model, styles uiStyles) string {
	visible := model.state.VisibleLines()
	bodyHeight := model.listHeight()
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	leftWidth, rightWidth, showRight := splitPanels(model.width)
	left := renderTreePanel(model, styles, visible, bodyHeight, leftWidth)
	if !showRight {
		return left
	}
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("│")
	right := renderDetailPanel(model, styles, rightWidth, bodyHeight)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
}

func renderFooter(model Model, styles uiStyles) string {
	statusLine := trimStatus(model.status, model.width)
	statusStyle := styles.mutedStyle
	lower := strings.ToLower(model.status)
	if strings.Contains(lower, "error") || strings.Contains(lower, "warning") {
		statusStyle = styles.warnStyle
	}
	statusLine = statusStyle.Render(statusLine)

	var inputLine string
	switch model.mode {
	case modePath:
		inputLine = model.pathInput.View()
	case modePassword:
		inputLine = model.passwordInput.View()
	case modeSearch, modeExt:
		inputLine = model.filterInput.View()
	}

	keys := "↑/↓ move  enter expand  ← collapse  o open  p path  1-5 recent  / search  e ext  x clear  t theme  ? help  q quit"
	switch model.mode {
	case modePath:
		keys = "type path  tab complete  enter open  esc cancel"
	case modePassword:
		keys = "enter submit  esc cancel"
	case modeSearch, modeExt:
		keys = "enter apply  esc cancel"
	}
	if model.session.Busy() && model.mode == modeBrowse {
		keys = "opening...  esc cancel  q quit"
	}
	left := fmt.Sprintf("Theme: %s  Decimals: %d%s", model.state.Prefs.Theme, model.state.Prefs.Decimals, filterSummary(model))
	footerLine := padLine(left, keys, model.width)
	lines := []string{statusLine}
	if inputLine != "" {
		lines = append(lines, inputLine)
	}
	lines = append(lines, styles.mutedStyle.Render(footerLine))
	return strings.Join(lines, "\n")
}

func renderTreePanel(model Model, styles uiStyles, visible []tree.Line, height, width int) string {
	if width < 20 {
		width = 20
	}
	contentWidth := maxInt(width-2, 10)
	title := "No archive"
	if model.state.HasArchive() {
		title = model.state.Metadata.Name
		if title == "" {
			title = model.state.Archive
		}
	}
	headerLine := padLine(styles.headerStyle.Render("ZIP Explorer")+"  "+title, styles.statusStyle.Render(phaseLabel(model.session.Phase)), contentWidth)
	listHeight := height - 1
	if listHeight < 1 {
		listHeight = 1
	}
	if len(visible) == 0 {
		message := "Press o to pick an archive or p to type a path"
		switch {
		case model.session.Busy():
			message = "Opening..."
		case model.state.Filtering():
			message = "No entries match the filter"
		case model.state.HasArchive():
			message = "Archive is empty"
		}
		lines := []string{headerLine, message}
		for i := 0; i < maxInt(listHeight-1, 0); i++ {
			lines = append(lines, "")
		}
		return styles.panelBorder.Width(contentWidth).Render(strings.Join(lines, "\n"))
	}
	start := clamp(model.viewTop, 0, maxInt(len(visible)-1, 0))
	end := start + listHeight
	if end > len(visible) {
		end = len(visible)
	}

	lines := make([]string, 0, height)
	lines = append(lines, headerLine)
	for index := start; index < end; index++ {
		item := visible[index]
		icon := lineIcon(model, item)
		name := item.Name
		if item.Dir {
			name = styles.dirStyle.Render(item.Name + "/")
		}
		label := strings.Repeat("  ", item.Depth) + icon + " " + name
		if index == model.state.Cursor {
			label = styles.cursorStyle.Render("› ") + label
		} else {
			label = "  " + label
		}
		lines = append(lines, label)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return styles.panelBorder.Width(contentWidth).Render(strings.Join(lines, "\n"))
}

func renderDetailPanel(model Model, styles uiStyles, width, height int) string {
	switch model.mode {
	case modePassword:
		return renderPasswordPanel(model, styles, width, height)
	case modePath:
		if len(model.suggestions) > 0 {
			return renderSuggestionPanel(model, styles, width, height)
		}
	}
	contentWidth := maxInt(width-2, 10)
	decimals := model.state.Prefs.Decimals
	lines := []string{}
	if model.state.HasArchive() {
		meta := model.state.Metadata
		dirs, files := model.state.Counts()
		lines = append(lines,
			styles.headerStyle.Render("Archive"),
			meta.Name,
			model.state.Archive,
			"",
			styles.headerStyle.Render("Size"),
			fmt.Sprintf("Uncompressed: %s", units.FormatBytes(meta.Size, decimals)),
			fmt.Sprintf("Compressed  : %s", units.FormatBytes(meta.CompressedSize, decimals)),
			fmt.Sprintf("Ratio       : %.1f%%", meta.Ratio()*100),
			"",
			styles.headerStyle.Render("Entries"),
			fmt.Sprintf("Files  : %d", meta.NumberOfFiles),
			fmt.Sprintf("Folders: %d", dirs),
		)
		if files != meta.NumberOfFiles {
			lines = append(lines, fmt.Sprintf("Shown  : %d", files))
		}
		if len(model.state.Conflicts) > 0 {
			lines = append(lines, "", styles.warnStyle.Render("Shadowed entries"))
			lines = append(lines, limitLines(model.state.Conflicts, 5)...)
		}
		lines = append(lines, "")
	} else if model.session.Phase == session.Failed {
		lines = append(lines, styles.warnStyle.Render("Could not open archive"), model.session.Failure, "")
	}
	lines = append(lines, styles.headerStyle.Render("Recent"))
	if len(model.state.Recent) == 0 {
		lines = append(lines, styles.mutedStyle.Render("No recent archives"))
	}
	for index, entry := range model.state.Recent {
		lines = append(lines, fmt.Sprintf("%d %s", index+1, entry.Name))
	}
	if model.host != nil {
		lines = append(lines, "", styles.mutedStyle.Render(model.host.PlatformDescription()))
	}
	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Width(contentWidth).Height(height).Render(content)
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func renderPasswordPanel(model Model, styles uiStyles, width, height int) string {
	contentWidth := maxInt(width-2, 10)
	lines := []string{
		styles.headerStyle.Render("Password required"),
		model.session.CurrentPath,
		"",
		model.passwordInput.View(),
	}
	if model.session.PromptError != "" {
		lines = append(lines, "", styles.warnStyle.Render(model.session.PromptError))
	}
	if model.session.Validation != "" {
		lines = append(lines, "", styles.warnStyle.Render(model.session.Validation))
	}
	if model.session.Attempts > 0 {
		lines = append(lines, "", styles.mutedStyle.Render(fmt.Sprintf("Attempts: %d", model.session.Attempts)))
	}
	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Width(contentWidth).Height(height).Render(content)
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func renderSuggestionPanel(model Model, styles uiStyles, width, height int) string {
	contentWidth := maxInt(width-2, 10)
	lines := []string{styles.headerStyle.Render("Suggestions")}
	lines = append(lines, limitLines(model.suggestions, 8)...)
	content := strings.Join(lines, "\n")
	content = lipgloss.NewStyle().Width(contentWidth).Height(height).Render(content)
	return styles.panelBorder.Width(contentWidth).Render(content)
}

func helpContent(model Model, styles uiStyles) string {
	lines := []string{styles.headerStyle.Render("ZIP Explorer Help"), ""}
	lines = append(lines, styles.headerStyle.Render("Opening"))
	lines = append(lines, "o native file dialog", "p type a path (tab completes)", "1-5 reopen a recent archive")
	lines = append(lines, "", styles.headerStyle.Render("Passwords"))
	lines = append(lines, "encrypted archives ask for a password", "enter submits, esc cancels", "wrong passwords can be retried")
	lines = append(lines, "", styles.headerStyle.Render("Keys"))
	for _, binding := range model.keys.bindings() {
		keysLabel := strings.Join(binding.Keys(), ", ")
		lines = append(lines, fmt.Sprintf("%-18s %s", keysLabel, binding.Help().Desc))
	}
	lines = append(lines, "", "Press ? to close help")
	return strings.Join(lines, "\n")
}

func phaseLabel(phase session.Phase) string {
	switch phase {
	case session.AwaitingParse:
		return "OPENING"
	case session.AwaitingPassword:
		return "LOCKED"
	case session.Displaying:
		return "OPEN"
	case session.Failed:
		return "FAILED"
	default:
		return "IDLE"
	}
}

func lineIcon(model Model, line tree.Line) string {
	if !line.Dir {
		return "📄"
	}
	if model.state.IsExpanded(line.Path) || model.state.Filtering() {
		return "📂"
	}
	return "📁"
}

func limitLines(values []string, max int) []string {
	if len(values) <= max {
		return values
	}
	out := append([]string(nil), values[:max]...)
	return append(out, "...")
}

func padLine(left, right string, width int) string {
	if width <= 0 {
		return left
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", space) + right
}

func splitPanels(width int) (int, int, bool) {
	if width < 80 {
		return width, 0, false
	}
	left := int(float64(width) * 0.6)
	if left < 40 {
		left = 40
	}
	right := width - left - 1
	if right < 30 {
		return width, 0, false
	}
	return left, right, true
}

func trimStatus(message string, width int) string {
	if width <= 0 {
		return message
	}
	max := width - 4
	if max <= 0 || lipgloss.Width(message) <= max {
		return message
	}
	return ansi.Truncate(message, max+3, "...")
}

func filterSummary(model Model) string {
	parts := []string{}
	if model.state.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("Search:%s", model.state.SearchQuery))
	}
	if model.state.FilterExt != "" {
		parts = append(parts, fmt.Sprintf("Ext:%s", model.state.FilterExt))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  Filters[" + strings.Join(parts, ", ") + "]"
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Toggle        key.Binding
	Collapse      key.Binding
	Open          key.Binding
	Path          key.Binding
	Recent        key.Binding
	Search        key.Binding
	ExtFilter     key.Binding
	ClearFilter   key.Binding
	ExpandAll     key.Binding
	CollapseAll   key.Binding
	Theme         key.Binding
	MoreDecimals  key.Binding
	FewerDecimals key.Binding
	Cancel        key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("enter/→", "expand/collapse"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "collapse"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open dialog"),
		),
		Path: key.NewBinding(
			key.WithKeys("p", ":"),
			key.WithHelp("p", "type path"),
		),
		Recent: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "recent archive"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ExtFilter: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "ext"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "expand all"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "collapse all"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		MoreDecimals: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more decimals"),
		),
		FewerDecimals: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "fewer decimals"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// WithOverrides rebinds actions from a name to comma separated keys map,
// as stored in the config file.
func (keys KeyMap) WithOverrides(overrides map[string]string) KeyMap {
	for name, value := range overrides {
		binding := keys.lookup(name)
		if binding == nil {
			continue
		}
		fields := strings.Split(value, ",")
		rebound := make([]string, 0, len(fields))
		for _, field := range fields {
			if field = strings.TrimSpace(field); field != "" {
				rebound = append(rebound, field)
			}
		}
		if len(rebound) == 0 {
			continue
		}
		binding.SetKeys(rebound...)
		binding.SetHelp(strings.Join(rebound, "/"), binding.Help().Desc)
	}
	return keys
}

func (keys *KeyMap) lookup(name string) *key.Binding {
	switch strings.ToLower(name) {
	case "up":
		return &keys.Up
	case "down":
		return &keys.Down
	case "toggle":
		return &keys.Toggle
	case "collapse":
		return &keys.Collapse
	case "open":
		return &keys.Open
	case "path":
		return &keys.Path
	case "search":
		return &keys.Search
	case "ext":
		return &keys.ExtFilter
	case "clear":
		return &keys.ClearFilter
	case "expandall":
		return &keys.ExpandAll
	case "collapseall":
		return &keys.CollapseAll
	case "theme":
		return &keys.Theme
	case "help":
		return &keys.Help
	case "quit":
		return &keys.Quit
	default:
		return nil
	}
}

func (keys KeyMap) bindings() []key.Binding {
	return []key.Binding{
		keys.Up,
		keys.Down,
		keys.Toggle,
		keys.Collapse,
		keys.Open,
		keys.Path,
		keys.Recent,
		keys.Search,
		keys.ExtFilter,
		keys.ClearFilter,
		keys.ExpandAll,
		keys.CollapseAll,
		keys.Theme,
		keys.MoreDecimals,
		keys.FewerDecimals,
		keys.Cancel,
		keys.Help,
		keys.Quit,
	}
}

package tree

import (
	"fmt"
	"io"
	"strings"

	"zipexplorer/internal/domain"
)

type Line struct {
	Name  string
	Path  string
	Depth int
	Dir   bool
}

// Render walks root depth-first and returns one line per node, siblings in
// insertion order. The root itself is not emitted.
func Render(root *domain.Node) []Line {
	if root == nil {
		return nil
	}
	lines := make([]Line, 0, root.Len())
	appendLines(&lines, root, "", 0)
	return lines
}

func appendLines(lines *[]Line, node *domain.Node, prefix string, depth int) {
	for _, child := range node.Children {
		path := child.Name
		if prefix != "" {
			path = prefix + Delimiter + child.Name
		}
		*lines = append(*lines, Line{
			Name:  child.Name,
			Path:  path,
			Depth: depth,
			Dir:   child.IsDir(),
		})
		if child.IsDir() {
			appendLines(lines, child, path, depth+1)
		}
	}
}

// Outline writes lines as indented text, two spaces per level, with a
// trailing slash on directories.
func Outline(writer io.Writer, lines []Line) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, Label(line)); err != nil {
			return err
		}
	}
	return nil
}

func Label(line Line) string {
	name := line.Name
	if line.Dir {
		name += Delimiter
	}
	return strings.Repeat("  ", line.Depth) + name
}

// Package tree turns flat archive entry paths into a directory tree and
// renders that tree as an ordered outline.
package tree

import (
	"strings"

	"zipexplorer/internal/domain"
)

const Delimiter = "/"

type Tree struct {
	Root *domain.Node
	// Conflicts lists file paths that were absorbed because another entry
	// uses the same name as a directory.
	Conflicts []string
}

func (tree *Tree) Depth() int {
	return tree.Root.Depth()
}

func (tree *Tree) LeafCount() int {
	return tree.Root.LeafCount()
}

// Build creates the tree for paths. A name used both as a file and as a
// directory becomes a directory regardless of input order; siblings keep the
// order in which they were first seen.
func Build(paths []string) *Tree {
	tree := &Tree{Root: domain.NewRoot()}
	for _, path := range paths {
		tree.insert(path)
	}
	return tree
}

func (tree *Tree) insert(path string) {
	explicitDir := strings.HasSuffix(path, Delimiter)
	segments := splitSegments(path)
	if len(segments) == 0 {
		return
	}
	current := tree.Root
	for index, name := range segments {
		last := index == len(segments)-1
		if last && !explicitDir {
			if existing := current.Child(name); existing != nil {
				if existing.IsDir() {
					tree.Conflicts = append(tree.Conflicts, path)
				}
				return
			}
			current.Add(name, domain.NodeFile)
			return
		}
		child := current.Child(name)
		if child != nil && !child.IsDir() {
			child.Type = domain.NodeDir
			tree.Conflicts = append(tree.Conflicts, joinPath(segments[:index+1]))
		}
		current = current.Add(name, domain.NodeDir)
	}
}

func splitSegments(path string) []string {
	parts := strings.Split(path, Delimiter)
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func joinPath(segments []string) string {
	return strings.Join(segments, Delimiter)
}

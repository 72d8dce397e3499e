package domain

type NodeType int

const (
	NodeFile NodeType = iota
	NodeDir
)

// Node is one entry of an archive tree. Children keep first-seen order.
type Node struct {
	Name     string
	Type     NodeType
	Children []*Node
	index    map[string]*Node
}

func NewRoot() *Node {
	return &Node{Type: NodeDir}
}

func (node *Node) IsDir() bool {
	return node.Type == NodeDir
}

func (node *Node) Len() int {
	return len(node.Children)
}

func (node *Node) Child(name string) *Node {
	if node.index == nil {
		return nil
	}
	return node.index[name]
}

// Add appends a new child and returns it. An existing child with the same
// name is returned unchanged.
func (node *Node) Add(name string, kind NodeType) *Node {
	if existing := node.Child(name); existing != nil {
		return existing
	}
	if node.index == nil {
		node.index = make(map[string]*Node)
	}
	child := &Node{Name: name, Type: kind}
	node.index[name] = child
	node.Children = append(node.Children, child)
	return child
}

func (node *Node) Depth() int {
	deepest := 0
	for _, child := range node.Children {
		depth := 1
		if child.IsDir() {
			depth += child.Depth()
		}
		if depth > deepest {
			deepest = depth
		}
	}
	return deepest
}

func (node *Node) LeafCount() int {
	count := 0
	for _, child := range node.Children {
		if child.IsDir() {
			count += child.LeafCount()
			continue
		}
		count++
	}
	return count
}

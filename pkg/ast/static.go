package ast

// StaticNode is an in-memory Node. Build trees with NewStaticNode and the
// With* helpers; the zero value is a leaf with an empty kind.
type StaticNode struct {
	kind      string
	text      string
	anonymous bool
	span      Span
	children  []*StaticNode
	fields    map[string]*StaticNode
}

var _ Node = (*StaticNode)(nil)

// NewStaticNode creates a node of the given kind with ordered children.
func NewStaticNode(kind string, children ...*StaticNode) *StaticNode {
	return &StaticNode{kind: kind, children: children}
}

// WithField appends child and records it under the grammar field name.
func (n *StaticNode) WithField(name string, child *StaticNode) *StaticNode {
	if n.fields == nil {
		n.fields = make(map[string]*StaticNode)
	}
	n.fields[name] = child
	n.children = append(n.children, child)
	return n
}

// WithText sets the source text of the node.
func (n *StaticNode) WithText(text string) *StaticNode {
	n.text = text
	return n
}

// Token marks the node as an anonymous token such as "&&" or a keyword.
func (n *StaticNode) Token() *StaticNode {
	n.anonymous = true
	return n
}

// WithLines sets the start and end line of the node.
func (n *StaticNode) WithLines(start, end int) *StaticNode {
	n.span = Span{StartLine: start, StartColumn: 1, EndLine: end}
	return n
}

func (n *StaticNode) Kind() string { return n.kind }

func (n *StaticNode) Named() bool { return !n.anonymous }

func (n *StaticNode) ChildCount() int { return len(n.children) }

func (n *StaticNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *StaticNode) FieldChild(name string) Node {
	if c, ok := n.fields[name]; ok {
		return c
	}
	return nil
}

func (n *StaticNode) Span() Span { return n.span }

func (n *StaticNode) Text() string { return n.text }

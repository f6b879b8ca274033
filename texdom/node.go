package texdom

import "strconv"

type TreeNode struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node
}

// AppendChild adds a node child as a child of parent.
//
// It will panic if child already has a parent or siblings.
func (parent *Node) AppendChild(child *Node) {
	if child.Parent != nil || child.PrevSibling != nil || child.NextSibling != nil {
		panic("AppendChild called for an already attached child Node")
	}
	last := parent.LastChild
	if last != nil {
		last.NextSibling = child
	} else {
		parent.FirstChild = child
	}
	parent.LastChild = child

	child.Parent = parent
	child.PrevSibling = last
}

// Children returns the direct children of the node.
func (n *Node) Children() []*Node {
	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

type Node struct {
	TreeNode
	Type NodeType

	// Level of a section: 1 for \section, 2 for \subsection, 3 for \subsubsection
	Level int

	// Outline is the section number, like "2.1.". Empty for unnumbered sections.
	Outline string

	// Tag and Class of block containers
	Tag   string
	Class string

	// Title holds the LaTeX source of a section title, a run-in heading or an item label
	Title string

	// Text holds the LaTeX source of a paragraph, or the raw content of verbatim and math nodes
	Text string

	// Lang is the language of a verbatim block, if any
	Lang string

	// Rows are the cells of a table, in LaTeX source
	Rows [][]string
}

// A NodeType is the type of a Node.
type NodeType uint32

const (
	ErrorNode NodeType = iota
	DocumentNode
	SectionNode
	ParagraphNode
	ListNode
	ItemNode
	BlockNode
	VerbatimNode
	MathNode
	TableNode
)

// String returns a string representation of the NodeType.
func (n NodeType) String() string {
	switch n {
	case ErrorNode:
		return "Error Node"
	case DocumentNode:
		return "Document Node"
	case SectionNode:
		return "Section Node"
	case ParagraphNode:
		return "Paragraph Node"
	case ListNode:
		return "List Node"
	case ItemNode:
		return "Item Node"
	case BlockNode:
		return "Block Node"
	case VerbatimNode:
		return "Verbatim Node"
	case MathNode:
		return "Math Node"
	case TableNode:
		return "Table Node"
	}
	return "Invalid Node (" + strconv.Itoa(int(n)) + ")"
}

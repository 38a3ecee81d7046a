package tree

import (
	"strings"

	"github.com/dhamidi/sqlgram/grammar"
	"github.com/dhamidi/sqlgram/token"
)

type Error struct {
	Message  string
	Expected []string
}

// Node is a syntax tree node. Element is nil for the file root, for bare
// tokens and for error nodes.
type Node struct {
	Element  grammar.Element
	Token    *token.Token
	Span     token.Span
	Children []*Node
	Error    *Error
}

// Kind is the label of the node in printed trees.
func (n *Node) Kind() string {
	switch {
	case n.Error != nil:
		return "unknown"
	case n.Element == nil && n.Token != nil:
		return "token"
	case n.Element == nil:
		return "file"
	}
	switch e := n.Element.(type) {
	case *grammar.Token:
		if e.ID() != "" {
			return e.ID()
		}
		return strings.ToLower(e.Type.ID)
	case *grammar.Identifier:
		return "identifier:" + e.Object
	}
	if id := n.Element.ID(); id != "" {
		return id
	}
	return n.Element.Kind().String()
}

func (n *Node) IsError() bool {
	return n.Error != nil
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Text concatenates the literals of all tokens under n, separated by
// single spaces.
func (n *Node) Text() string {
	var parts []string
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			parts = append(parts, c.Token.Literal)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node, in depth first order, whose Kind is kind.
func (n *Node) Find(kind string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Kind() == kind {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) FirstChildOfKind(kind string) *Node {
	for _, child := range n.Children {
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// collapseLeaf folds the single token of a leaf element node into the node.
func (n *Node) collapseLeaf() {
	if _, ok := n.Element.(grammar.Leaf); !ok {
		return
	}
	if len(n.Children) == 1 && n.Children[0].Element == nil && n.Children[0].Token != nil {
		n.Token = n.Children[0].Token
		n.Children = nil
	}
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0, false)
	return sb.String()
}

func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.write(&sb, 0, true)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind())
	if showPositions {
		sb.WriteString(" [" + n.Span.String() + "]")
	}
	if n.Token != nil {
		sb.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		sb.WriteString(" ERROR: " + n.Error.Message)
		if len(n.Error.Expected) > 0 {
			sb.WriteString(" (expected " + strings.Join(n.Error.Expected, ", ") + ")")
		}
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		child.write(sb, indent+1, showPositions)
	}
}

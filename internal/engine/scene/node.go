package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is a scene graph node with a local transform relative to its parent.
type Node struct {
	Name     string
	local    mgl32.Mat4
	parent   *Node
	children []*Node
}

// NewNode creates a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, local: mgl32.Ident4()}
}

// NewSkeleton creates a node with one child per bone.
func NewSkeleton(name string, boneCount int) *Node {
	n := NewNode(name)
	for i := range boneCount {
		n.AddChild(NewNode(fmt.Sprintf("%s/bone%d", name, i)))
	}
	return n
}

// AddChild attaches c, detaching it from any previous parent.
func (n *Node) AddChild(c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveChild detaches c if it is a child of n.
func (n *Node) RemoveChild(c *Node) {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// SetLocalTransform replaces the transform relative to the parent.
func (n *Node) SetLocalTransform(m mgl32.Mat4) {
	n.local = m
}

// LocalTransform returns the transform relative to the parent.
func (n *Node) LocalTransform() mgl32.Mat4 {
	return n.local
}

// SetChildTransform sets the local transform of the i-th child.
func (n *Node) SetChildTransform(i int, m mgl32.Mat4) {
	n.children[i].local = m
}

// WorldTransform returns the transform from node space to world space.
func (n *Node) WorldTransform() mgl32.Mat4 {
	m := n.local
	for p := n.parent; p != nil; p = p.parent {
		m = p.local.Mul4(m)
	}
	return m
}

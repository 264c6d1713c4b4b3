// Package decision holds the interrogation script: a fixed binary tree whose
// single culprit node is the solution of the case.
package decision

import (
	"errors"
	"fmt"
)

// ErrInvalidTree is returned by Build for malformed tree content.
var ErrInvalidTree = errors.New("invalid decision tree")

// Answer is the player's reply at a node.
type Answer bool

const (
	Yes Answer = true
	No  Answer = false
)

func (a Answer) String() string {
	if a {
		return "YES"
	}
	return "NO"
}

// Content is what a node says.
type Content struct {
	Label     string `json:"label"`
	Evidence  string `json:"evidence"`
	IsCulprit bool   `json:"is_culprit,omitempty"`
}

// Node is a tree node. A node may be the child of more than one parent; it
// is still a single node.
type Node struct {
	Content Content
	Yes     *Node
	No      *Node
}

// Step is one recorded decision.
type Step struct {
	Content Content `json:"content"`
	Answer  Answer  `json:"answer"`
}

// Tree tracks a current position and the decisions taken so far. The nodes
// themselves never change after construction.
type Tree struct {
	root    *Node
	current *Node
	path    []Step
}

// New returns a tree positioned at root.
func New(root *Node) *Tree {
	return &Tree{root: root, current: root}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Current returns the content of the current node.
func (t *Tree) Current() Content {
	return t.current.Content
}

// AtLeaf reports whether the current node has no children.
func (t *Tree) AtLeaf() bool {
	return t.current.Yes == nil && t.current.No == nil
}

// Navigate records the current node and the answer, then follows the
// matching branch. When that branch is absent the position does not change.
// It returns the content of the (possibly unchanged) current node.
func (t *Tree) Navigate(a Answer) Content {
	t.path = append(t.path, Step{Content: t.current.Content, Answer: a})

	if a == Yes && t.current.Yes != nil {
		t.current = t.current.Yes
	} else if a == No && t.current.No != nil {
		t.current = t.current.No
	}
	return t.current.Content
}

// Path returns a copy of the decisions taken so far.
func (t *Tree) Path() []Step {
	return append([]Step(nil), t.path...)
}

// Reset moves the current position back to the root. The decision path is
// append-only and is kept.
func (t *Tree) Reset() {
	t.current = t.root
}

// Solution walks the tree yes-branch first and returns the first culprit
// node. It does not depend on the current position.
func (t *Tree) Solution() (Content, bool) {
	if t.root == nil {
		return Content{}, false
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Content.IsCulprit {
			return n.Content, true
		}
		// No is pushed first so Yes is popped first.
		if n.No != nil {
			stack = append(stack, n.No)
		}
		if n.Yes != nil {
			stack = append(stack, n.Yes)
		}
	}
	return Content{}, false
}

// NodeDef is the serialised form of a node. Children are referenced by ID.
type NodeDef struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Evidence string `yaml:"evidence" json:"evidence"`
	Culprit  bool   `yaml:"culprit,omitempty" json:"culprit,omitempty"`
	OnYes    string `yaml:"on_yes,omitempty" json:"on_yes,omitempty"`
	OnNo     string `yaml:"on_no,omitempty" json:"on_no,omitempty"`
}

// Build links defs into a tree rooted at rootID. It rejects duplicate or
// unknown IDs, cycles, and any tree that does not reach exactly one culprit.
func Build(rootID string, defs []NodeDef) (*Node, error) {
	byID := make(map[string]NodeDef, len(defs))
	for _, s := range defs {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: node with empty id", ErrInvalidTree)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrInvalidTree, s.ID)
		}
		byID[s.ID] = s
	}
	if _, ok := byID[rootID]; !ok {
		return nil, fmt.Errorf("%w: root %q not found", ErrInvalidTree, rootID)
	}

	b := &builder{defs: byID, built: make(map[string]*Node), active: make(map[string]bool)}
	root, err := b.link(rootID)
	if err != nil {
		return nil, err
	}

	culprits := 0
	for _, n := range b.built {
		if n.Content.IsCulprit {
			culprits++
		}
	}
	if culprits != 1 {
		return nil, fmt.Errorf("%w: want exactly one culprit node, found %d", ErrInvalidTree, culprits)
	}
	return root, nil
}

type builder struct {
	defs   map[string]NodeDef
	built  map[string]*Node
	active map[string]bool // nodes on the current link chain
}

func (b *builder) link(id string) (*Node, error) {
	if n, ok := b.built[id]; ok {
		return n, nil
	}
	if b.active[id] {
		return nil, fmt.Errorf("%w: cycle through %q", ErrInvalidTree, id)
	}
	s, ok := b.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node %q", ErrInvalidTree, id)
	}

	b.active[id] = true
	defer delete(b.active, id)

	n := &Node{Content: Content{Label: s.Label, Evidence: s.Evidence, IsCulprit: s.Culprit}}
	if s.OnYes != "" {
		child, err := b.link(s.OnYes)
		if err != nil {
			return nil, err
		}
		n.Yes = child
	}
	if s.OnNo != "" {
		child, err := b.link(s.OnNo)
		if err != nil {
			return nil, err
		}
		n.No = child
	}
	b.built[id] = n
	return n, nil
}

// Package graph holds the directed, weighted relationship graph between the
// people involved in an investigation.
//
// Neighbours are always visited in the order their edges were added, never by
// weight. A "bidirectional" edge is stored as two independent directed edges.
package graph

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/mystery-engine/pkg/textmatch"
)

// MaxSuspicion is the ceiling for SuspectData.SuspicionLevel.
const MaxSuspicion = 5

// ErrNotFound is returned when an edge references an unregistered node.
var ErrNotFound = errors.New("node not found")

// SuspectData is the payload carried by each node.
type SuspectData struct {
	Name           string   `json:"name" yaml:"name"`
	Role           string   `json:"role" yaml:"role"`
	SuspicionLevel int      `json:"suspicion_level" yaml:"suspicion_level"`
	Clues          []string `json:"clues,omitempty" yaml:"clues,omitempty"`
}

// Adjacent is an outgoing link from a node.
type Adjacent struct {
	Node   *Node
	Weight int
}

// Node is a person in the graph. Nodes are owned by their Graph.
type Node struct {
	ID   string
	Data SuspectData

	adjacent map[string]*Adjacent
	order    []string // neighbour IDs in insertion order
}

func newNode(id string, data SuspectData) *Node {
	return &Node{
		ID:       id,
		Data:     data,
		adjacent: make(map[string]*Adjacent),
	}
}

// addAdjacent links n to target. Re-linking an existing neighbour updates
// the weight and keeps its original position.
func (n *Node) addAdjacent(target *Node, weight int) {
	if adj, ok := n.adjacent[target.ID]; ok {
		adj.Weight = weight
		return
	}
	n.adjacent[target.ID] = &Adjacent{Node: target, Weight: weight}
	n.order = append(n.order, target.ID)
}

// Adjacents returns the outgoing links in insertion order.
func (n *Node) Adjacents() []Adjacent {
	out := make([]Adjacent, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, *n.adjacent[id])
	}
	return out
}

// IsAdjacent reports whether n has an outgoing edge to id.
func (n *Node) IsAdjacent(id string) bool {
	_, ok := n.adjacent[id]
	return ok
}

// Degree is the number of outgoing edges.
func (n *Node) Degree() int {
	return len(n.order)
}

// Edge is a directed, weighted link as it was requested.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Graph is a directed, weighted graph keyed by node ID. It is not safe for
// concurrent use.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode inserts a node if id is new. If id is already present the existing
// node is returned and its data is left untouched.
func (g *Graph) AddNode(id string, data SuspectData) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := newNode(id, data)
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge adds a directed edge from sourceID to targetID. When bidirectional
// is set the reverse edge is added too, with the same weight. Nothing is
// changed if either node is missing.
func (g *Graph) AddEdge(sourceID, targetID string, weight int, bidirectional bool) error {
	source, ok := g.nodes[sourceID]
	if !ok {
		return fmt.Errorf("add edge %s -> %s: source %q: %w", sourceID, targetID, sourceID, ErrNotFound)
	}
	target, ok := g.nodes[targetID]
	if !ok {
		return fmt.Errorf("add edge %s -> %s: target %q: %w", sourceID, targetID, targetID, ErrNotFound)
	}

	source.addAdjacent(target, weight)
	g.edges = append(g.edges, Edge{Source: sourceID, Target: targetID, Weight: weight})

	if bidirectional {
		target.addAdjacent(source, weight)
		g.edges = append(g.edges, Edge{Source: targetID, Target: sourceID, Weight: weight})
	}
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns every edge request in the order it was applied.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount is the number of directed edges stored on nodes.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += n.Degree()
	}
	return count
}

// TraverseDFS returns the nodes reachable from startID in depth-first order.
// It uses an explicit stack but yields the same order as the recursive form:
// neighbours are explored in insertion order.
func (g *Graph) TraverseDFS(startID string) []*Node {
	start, ok := g.nodes[startID]
	if !ok {
		return []*Node{}
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]*Node, 0, len(g.nodes))
	stack := []*Node{start}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		result = append(result, n)

		// Push in reverse so the first-added neighbour is popped first.
		for i := len(n.order) - 1; i >= 0; i-- {
			next := n.adjacent[n.order[i]].Node
			if !visited[next.ID] {
				stack = append(stack, next)
			}
		}
	}
	return result
}

// TraverseBFS returns the nodes reachable from startID in breadth-first order.
func (g *Graph) TraverseBFS(startID string) []*Node {
	start, ok := g.nodes[startID]
	if !ok {
		return []*Node{}
	}

	visited := map[string]bool{startID: true}
	result := make([]*Node, 0, len(g.nodes))
	frontier := []*Node{start}

	for len(frontier) > 0 {
		n := frontier[0]
		frontier = frontier[1:]
		result = append(result, n)

		for _, id := range n.order {
			if !visited[id] {
				visited[id] = true
				frontier = append(frontier, n.adjacent[id].Node)
			}
		}
	}
	return result
}

// Distances returns the hop count from startID to every reachable node.
func (g *Graph) Distances(startID string) map[string]int {
	dist := make(map[string]int)
	if _, ok := g.nodes[startID]; !ok {
		return dist
	}
	dist[startID] = 0
	frontier := []string{startID}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		n := g.nodes[id]
		for _, next := range n.order {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[id] + 1
				frontier = append(frontier, next)
			}
		}
	}
	return dist
}

// MostSuspicious returns the node with the most outgoing edges, skipping
// excludedID. Ties go to the node added first. It returns nil when no other
// node exists.
func (g *Graph) MostSuspicious(excludedID string) *Node {
	var best *Node
	for _, id := range g.order {
		if id == excludedID {
			continue
		}
		n := g.nodes[id]
		if best == nil || n.Degree() > best.Degree() {
			best = n
		}
	}
	return best
}

// ApplyClueSignal raises the suspicion level of watchedID by one, up to
// MaxSuspicion, when clueText mentions it. The match is a case-insensitive
// substring test. It reports whether the text matched.
func (g *Graph) ApplyClueSignal(clueText, watchedID string) bool {
	n, ok := g.nodes[watchedID]
	if !ok || watchedID == "" || !textmatch.ContainsFold(clueText, watchedID) {
		return false
	}
	n.Data.SuspicionLevel = min(MaxSuspicion, n.Data.SuspicionLevel+1)
	return true
}

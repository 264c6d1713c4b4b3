package investigation

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/mystery-engine/pkg/textmatch"
)

// Link is one outgoing relationship in a summary.
type Link struct {
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// NodeLinks lists a person's outgoing relationships.
type NodeLinks struct {
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

// RelationshipSummary is the relationship analysis shown to the player.
type RelationshipSummary struct {
	MostConnected string      `json:"most_connected,omitempty"`
	Connections   int         `json:"connections"`
	Nodes         []NodeLinks `json:"nodes"`
	Conclusion    string      `json:"conclusion"`
}

// SummarizeRelationships reports the most connected suspect and every
// person's outgoing edges. It does not modify the graph.
func (s *Session) SummarizeRelationships() RelationshipSummary {
	var sum RelationshipSummary
	if n := s.graph.MostSuspicious(s.scenario.Investigator); n != nil {
		sum.MostConnected = n.Data.Name
		sum.Connections = n.Degree()
	}

	for _, n := range s.graph.Nodes() {
		adj := n.Adjacents()
		if len(adj) == 0 {
			continue
		}
		nl := NodeLinks{Name: n.Data.Name, Links: make([]Link, 0, len(adj))}
		for _, a := range adj {
			nl.Links = append(nl.Links, Link{Target: a.Node.Data.Name, Weight: a.Weight})
		}
		sum.Nodes = append(sum.Nodes, nl)
	}

	hinted := s.scenario.Heuristic.Suspect
	if hinted != "" && sum.MostConnected == hinted {
		sum.Conclusion = fmt.Sprintf("%s has the most suspicious connections.", hinted)
	} else {
		sum.Conclusion = "Weigh all the evidence before accusing."
	}
	return sum
}

func (r RelationshipSummary) String() string {
	var b strings.Builder
	b.WriteString("RELATIONSHIP ANALYSIS\n\n")
	if r.MostConnected != "" {
		fmt.Fprintf(&b, "Most connected: %s\n", r.MostConnected)
	} else {
		b.WriteString("Most connected: N/A\n")
	}
	fmt.Fprintf(&b, "  Connections: %d\n\n", r.Connections)

	b.WriteString("Relationships:\n")
	for _, n := range r.Nodes {
		parts := make([]string, 0, len(n.Links))
		for _, l := range n.Links {
			parts = append(parts, fmt.Sprintf("%s (%d)", l.Target, l.Weight))
		}
		fmt.Fprintf(&b, "  %s → %s\n", n.Name, strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "\nConclusion: %s", r.Conclusion)
	return b.String()
}

// ClueSummary is the clue analysis shown to the player.
type ClueSummary struct {
	Clues        []ClueRecord `json:"clues"`
	PrimeSuspect string       `json:"prime_suspect,omitempty"`
}

// SummarizeClues lists the collected clues and, when together they contain
// every configured marker, names the suspect they point at. It reports false
// when nothing has been collected.
func (s *Session) SummarizeClues() (ClueSummary, bool) {
	if len(s.clues) == 0 {
		return ClueSummary{}, false
	}
	sum := ClueSummary{Clues: s.Clues()}

	texts := make([]string, len(s.clues))
	for i, c := range s.clues {
		texts[i] = c.Text
	}
	h := s.scenario.Heuristic
	if textmatch.ContainsAll(strings.Join(texts, " "), h.Markers) {
		sum.PrimeSuspect = h.Suspect
	}
	return sum, true
}

func (c ClueSummary) String() string {
	var b strings.Builder
	b.WriteString("CLUE ANALYSIS\n\n")
	fmt.Fprintf(&b, "Clues found: %d\n\n", len(c.Clues))
	for i, clue := range c.Clues {
		fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, clue.NPC, clue.Text)
	}

	b.WriteString("\nConclusion:\n")
	if c.PrimeSuspect != "" {
		fmt.Fprintf(&b, "PRIME SUSPECT: %s\nConsider accusing %s.", c.PrimeSuspect, c.PrimeSuspect)
	} else {
		b.WriteString("Not enough clear evidence.\nCollect more information before accusing.")
	}
	return b.String()
}

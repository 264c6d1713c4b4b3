package scenario

import (
	"github.com/jwebster45206/mystery-engine/pkg/decision"
)

// DefaultClueChance is used when a scenario leaves clue_chance unset.
const DefaultClueChance = 0.5

// Scenario is the static data for one mystery: who is involved, how they are
// related, the interrogation script, the rooms, and the answer. It is loaded
// once and never mutated.
type Scenario struct {
	Name           string          `yaml:"name" json:"name"`
	Story          string          `yaml:"story" json:"story"`
	Investigator   string          `yaml:"investigator" json:"investigator"`       // excluded from suspicion scoring
	Culprit        string          `yaml:"culprit" json:"culprit"`                 // the correct accusation
	WatchedSuspect string          `yaml:"watched_suspect" json:"watched_suspect"` // clue text mentioning this ID raises suspicion
	ClueChance     float64         `yaml:"clue_chance,omitempty" json:"clue_chance,omitempty"`
	Heuristic      ClueHeuristic   `yaml:"clue_heuristic" json:"clue_heuristic"`
	Suspects       []Suspect       `yaml:"suspects" json:"suspects"`
	Relationships  []Relationship  `yaml:"relationships" json:"relationships"`
	Interrogation  Interrogation   `yaml:"interrogation" json:"interrogation"`
	OpeningRoom    string          `yaml:"opening_room" json:"opening_room"`
	Rooms          map[string]Room `yaml:"rooms" json:"rooms"`
	SmallTalk      []string        `yaml:"small_talk,omitempty" json:"small_talk,omitempty"`
	DefaultAnswer  string          `yaml:"default_answer,omitempty" json:"default_answer,omitempty"`
	Verdicts       Verdicts        `yaml:"verdicts" json:"verdicts"`
}

// Suspect is a person in the relationship graph. The investigator is listed
// here too.
type Suspect struct {
	ID             string   `yaml:"id" json:"id"`
	Role           string   `yaml:"role" json:"role"`
	SuspicionLevel int      `yaml:"suspicion_level" json:"suspicion_level"`
	Notes          []string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Relationship is one edge request. Bidirectional adds the reverse edge with
// the same weight.
type Relationship struct {
	Source        string `yaml:"source" json:"source"`
	Target        string `yaml:"target" json:"target"`
	Weight        int    `yaml:"weight" json:"weight"`
	Bidirectional bool   `yaml:"bidirectional,omitempty" json:"bidirectional,omitempty"`
}

// Interrogation is the decision tree content.
type Interrogation struct {
	Root  string          `yaml:"root" json:"root"`
	Nodes []decision.NodeDef `yaml:"nodes" json:"nodes"`
}

// ClueHeuristic names a suspect once the collected clue texts, taken
// together, contain every marker.
type ClueHeuristic struct {
	Markers []string `yaml:"markers" json:"markers"`
	Suspect string   `yaml:"suspect" json:"suspect"`
}

// Verdicts holds the lines shown after an accusation.
type Verdicts struct {
	Confession string            `yaml:"confession" json:"confession"`
	Defences   map[string]string `yaml:"defences,omitempty" json:"defences,omitempty"` // suspect ID → defence when wrongly accused
}

// EffectiveClueChance returns ClueChance, or DefaultClueChance when unset.
func (s *Scenario) EffectiveClueChance() float64 {
	if s.ClueChance <= 0 {
		return DefaultClueChance
	}
	return s.ClueChance
}

// Suspect returns the suspect with the given ID.
func (s *Scenario) Suspect(id string) (Suspect, bool) {
	for _, sp := range s.Suspects {
		if sp.ID == id {
			return sp, true
		}
	}
	return Suspect{}, false
}

// Accusable returns every suspect ID except the investigator, in roster order.
func (s *Scenario) Accusable() []string {
	out := make([]string, 0, len(s.Suspects))
	for _, sp := range s.Suspects {
		if sp.ID != s.Investigator {
			out = append(out, sp.ID)
		}
	}
	return out
}

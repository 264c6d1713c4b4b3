package scenario

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the embedded scenario used when no path is configured.
const DefaultFile = "missing_cake.yaml"

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

//go:embed scenarios/*.yaml
var embedded embed.FS

// Default returns the embedded missing-cake scenario.
func Default() (*Scenario, error) {
	data, err := embedded.ReadFile("scenarios/" + DefaultFile)
	if err != nil {
		return nil, fmt.Errorf("scenario: read embedded %q: %w", DefaultFile, err)
	}
	return LoadFromReader(bytes.NewReader(data))
}

// Load reads and validates the YAML scenario at path. An empty path loads
// the embedded default.
func Load(path string) (*Scenario, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scenario: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader strictly decodes a YAML scenario from r and validates it.
// Unknown fields are rejected.
func LoadFromReader(r io.Reader) (*Scenario, error) {
	s := &Scenario{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("scenario: decode yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the scenario is internally consistent. All problems
// are reported together, each wrapping ErrInvalidScenario.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...)))
	}

	if s.Name == "" {
		add("name is required")
	}

	ids := make(map[string]bool, len(s.Suspects))
	for i, sp := range s.Suspects {
		switch {
		case sp.ID == "":
			add("suspects[%d] has no id", i)
		case ids[sp.ID]:
			add("duplicate suspect %q", sp.ID)
		}
		if sp.SuspicionLevel < 0 || sp.SuspicionLevel > 5 {
			add("suspect %q suspicion_level %d is outside 0-5", sp.ID, sp.SuspicionLevel)
		}
		ids[sp.ID] = true
	}

	for _, ref := range []struct{ field, id string }{
		{"investigator", s.Investigator},
		{"culprit", s.Culprit},
		{"watched_suspect", s.WatchedSuspect},
	} {
		if !ids[ref.id] {
			add("%s %q is not a suspect", ref.field, ref.id)
		}
	}
	if s.Culprit != "" && s.Culprit == s.Investigator {
		add("culprit cannot be the investigator")
	}
	if s.ClueChance < 0 || s.ClueChance > 1 {
		add("clue_chance %v is outside 0-1", s.ClueChance)
	}
	if len(s.Heuristic.Markers) > 0 && !ids[s.Heuristic.Suspect] {
		add("clue_heuristic suspect %q is not a suspect", s.Heuristic.Suspect)
	}

	for i, rel := range s.Relationships {
		if !ids[rel.Source] || !ids[rel.Target] {
			add("relationships[%d] %s -> %s references an unknown suspect", i, rel.Source, rel.Target)
		}
	}

	if root, err := decision.Build(s.Interrogation.Root, s.Interrogation.Nodes); err != nil {
		add("interrogation: %v", err)
	} else if sol, _ := decision.New(root).Solution(); sol.Label != s.Culprit {
		add("interrogation culprit %q does not match culprit %q", sol.Label, s.Culprit)
	}

	if _, ok := s.Rooms[s.OpeningRoom]; !ok {
		add("opening_room %q is not a room", s.OpeningRoom)
	}
	seenNPC := make(map[string]string)
	for _, key := range s.RoomKeys() {
		room := s.Rooms[key]
		if room.Name == "" {
			add("room %q has no name", key)
		}
		for dir, target := range room.Exits {
			if !IsDirection(dir) {
				add("room %q has invalid exit direction %q", key, dir)
			}
			if _, ok := s.Rooms[target]; !ok {
				add("room %q exit %s leads to unknown room %q", key, dir, target)
			}
		}
		for _, npc := range room.NPCs {
			if !ids[npc.Name] {
				add("room %q npc %q is not a suspect", key, npc.Name)
			}
			if prev, dup := seenNPC[npc.Name]; dup {
				add("npc %q appears in rooms %q and %q", npc.Name, prev, key)
			}
			seenNPC[npc.Name] = key
			if len(npc.Dialogues) == 0 {
				add("npc %q has no dialogues", npc.Name)
			}
		}
	}

	return errors.Join(errs...)
}

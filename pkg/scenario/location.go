package scenario

import (
	"slices"

	"github.com/jwebster45206/mystery-engine/pkg/textmatch"
)

// Exit directions.
const (
	DirectionUp    = "up"
	DirectionDown  = "down"
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Directions lists every valid exit direction in display order.
var Directions = []string{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// IsDirection reports whether d is a valid exit direction.
func IsDirection(d string) bool {
	return slices.Contains(Directions, d)
}

// Room is a place the investigator can stand in.
type Room struct {
	Name  string            `yaml:"name" json:"name"`                       // display name
	Exits map[string]string `yaml:"exits,omitempty" json:"exits,omitempty"` // direction → room key
	NPCs  []NPC             `yaml:"npcs,omitempty" json:"npcs,omitempty"`
}

// NPC is the script for a character met in a room.
type NPC struct {
	Name      string   `yaml:"name" json:"name"` // suspect ID
	Dialogues []string `yaml:"dialogues" json:"dialogues"`
	Clues     []string `yaml:"clues,omitempty" json:"clues,omitempty"`
	Answer    string   `yaml:"ask,omitempty" json:"ask,omitempty"` // reply when asked about the case
}

// Exit returns the room key reached by going in direction d.
func (r Room) Exit(d string) (string, bool) {
	key, ok := r.Exits[d]
	return key, ok && key != ""
}

// RoomKeys returns every room key in sorted order.
func (s *Scenario) RoomKeys() []string {
	keys := make([]string, 0, len(s.Rooms))
	for k := range s.Rooms {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FindRoom resolves a room key or display name. Display names match
// ignoring case and accents, so "angel's room" finds "ÁNGEL'S ROOM".
func (s *Scenario) FindRoom(ref string) (string, Room, bool) {
	if r, ok := s.Rooms[ref]; ok {
		return ref, r, true
	}
	want := textmatch.Simplify(ref)
	for _, k := range s.RoomKeys() {
		if textmatch.Simplify(s.Rooms[k].Name) == want || textmatch.Simplify(k) == want {
			return k, s.Rooms[k], true
		}
	}
	return "", Room{}, false
}

// NPCs returns every NPC script across all rooms, in sorted room order.
func (s *Scenario) NPCs() []NPC {
	var out []NPC
	for _, k := range s.RoomKeys() {
		out = append(out, s.Rooms[k].NPCs...)
	}
	return out
}

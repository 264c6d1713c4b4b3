package state

import (
	"github.com/google/uuid"
)

// GameState is what the presentation layer tracks between player actions:
// where the investigator is and what they are doing. It is owned by a
// single Director.
type GameState struct {
	ID            uuid.UUID `json:"id"`                   // same as the investigation session
	Room          string    `json:"room"`                 // current room key
	ActiveNPC     string    `json:"active_npc,omitempty"` // set while talking to someone
	InDialogue    bool      `json:"in_dialogue"`
	Transitioning bool      `json:"transitioning"` // a room transition is in flight
	Moves         int       `json:"moves"`
}

// NewGameState places the investigator in room.
func NewGameState(id uuid.UUID, room string) *GameState {
	return &GameState{
		ID:   id,
		Room: room,
	}
}

// CanMove reports whether the investigator is free to leave the room.
func (gs *GameState) CanMove() bool {
	return !gs.InDialogue && !gs.Transitioning
}

func (gs *GameState) enterDialogue(npc string) {
	gs.InDialogue = true
	gs.ActiveNPC = npc
}

func (gs *GameState) leaveDialogue() {
	gs.InDialogue = false
	gs.ActiveNPC = ""
}

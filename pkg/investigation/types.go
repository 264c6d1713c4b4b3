package investigation

import (
	"errors"
	"time"
)

// ErrAlreadyResolved is returned by Accuse and Solve once the case is closed.
var ErrAlreadyResolved = errors.New("investigation already resolved")

// ClueRecord is one piece of collected evidence. Records are never changed
// after they are added.
type ClueRecord struct {
	NPC       string    `json:"npc"`
	Text      string    `json:"text"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// DialogFrame marks where an interaction with an NPC started.
type DialogFrame struct {
	NPC           string `json:"npc"`
	DialogueIndex int    `json:"dialogue_index"`
}

// TransitionKind identifies a queued presentation event.
type TransitionKind string

const KindRoomTransition TransitionKind = "room_transition"

// TransitionEvent is a pending move to another room.
type TransitionEvent struct {
	Kind      TransitionKind `json:"kind"`
	Room      string         `json:"room"`
	Direction string         `json:"direction"`
}

// Outcome is the result of the one accusation a session allows.
type Outcome struct {
	Correct    bool      `json:"correct"`
	SuspectID  string    `json:"suspect_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Reply is what an NPC says when talked to. Clue is set when the line is a
// newly revealed clue.
type Reply struct {
	Speaker string      `json:"speaker"`
	Text    string      `json:"text"`
	Clue    *ClueRecord `json:"clue,omitempty"`
}

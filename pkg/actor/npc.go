package actor

import "github.com/jwebster45206/mystery-engine/pkg/scenario"

// NPC is the runtime state of a character the investigator can talk to.
// The script comes from the scenario; the dialogue position and clue flag
// live here for the length of one session.
type NPC struct {
	Name          string   `json:"name"`
	Dialogues     []string `json:"dialogues"`
	Clues         []string `json:"clues,omitempty"`
	Answer        string   `json:"answer,omitempty"`
	DialogueIndex int      `json:"dialogue_index"`
	ClueGiven     bool     `json:"clue_given"`
}

// NewNPC creates runtime state for a scripted NPC, starting at its first line.
func NewNPC(script scenario.NPC) *NPC {
	return &NPC{
		Name:      script.Name,
		Dialogues: append([]string(nil), script.Dialogues...),
		Clues:     append([]string(nil), script.Clues...),
		Answer:    script.Answer,
	}
}

// Line returns the dialogue line at the current index, or "" if the NPC has
// nothing to say.
func (n *NPC) Line() string {
	if len(n.Dialogues) == 0 {
		return ""
	}
	return n.Dialogues[n.DialogueIndex]
}

// Advance moves to the next dialogue line, wrapping to the first.
func (n *NPC) Advance() {
	if len(n.Dialogues) == 0 {
		return
	}
	n.DialogueIndex = (n.DialogueIndex + 1) % len(n.Dialogues)
}

// CanRevealClue reports whether this NPC may still hand over a clue: it has
// been talked past its opening line, has not given one yet, and has a pool.
func (n *NPC) CanRevealClue() bool {
	return !n.ClueGiven && n.DialogueIndex >= 1 && len(n.Clues) > 0
}

// Status is the short label shown next to the NPC in room listings.
func (n *NPC) Status() string {
	if n.ClueGiven {
		return "CLUE OBTAINED"
	}
	return "PRESENT"
}

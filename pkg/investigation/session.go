// Package investigation runs one game of the mystery: it owns the relationship
// graph, the interrogation tree, the conversation log, the dialogue and
// transition buffers, and the collected evidence, and it decides the outcome
// of the single accusation.
package investigation

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/pkg/actor"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/graph"
	"github.com/jwebster45206/mystery-engine/pkg/queue"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

// Session is a single investigation. Every container it holds belongs to
// this session alone. A Session is not safe for concurrent use.
type Session struct {
	id       uuid.UUID
	scenario *scenario.Scenario

	graph       *graph.Graph
	tree        *decision.Tree
	log         *chat.Log
	dialogs     *queue.Stack[DialogFrame]
	transitions *queue.Queue[TransitionEvent]

	npcs     map[string]*actor.NPC
	clues    []ClueRecord
	resolved bool
	outcome  *Outcome

	rng         Rand
	now         func() time.Time
	logger      *slog.Logger
	logCapacity int
}

// New starts a session for sc.
func New(sc *scenario.Scenario, opts ...Option) (*Session, error) {
	if sc == nil {
		return nil, errors.New("investigation: nil scenario")
	}

	s := &Session{
		id:          uuid.New(),
		scenario:    sc,
		dialogs:     queue.NewStack[DialogFrame](),
		transitions: queue.NewQueue[TransitionEvent](),
		npcs:        make(map[string]*actor.NPC),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = chat.NewLog(s.logCapacity)
	s.log.SetClock(s.now)

	s.graph = graph.New()
	for _, sp := range sc.Suspects {
		s.graph.AddNode(sp.ID, graph.SuspectData{
			Name:           sp.ID,
			Role:           sp.Role,
			SuspicionLevel: sp.SuspicionLevel,
			Clues:          append([]string(nil), sp.Notes...),
		})
	}
	for i, rel := range sc.Relationships {
		if err := s.graph.AddEdge(rel.Source, rel.Target, rel.Weight, rel.Bidirectional); err != nil {
			return nil, fmt.Errorf("investigation: relationship %d: %w", i, err)
		}
	}

	root, err := decision.Build(sc.Interrogation.Root, sc.Interrogation.Nodes)
	if err != nil {
		return nil, fmt.Errorf("investigation: %w", err)
	}
	s.tree = decision.New(root)

	for _, script := range sc.NPCs() {
		s.npcs[script.Name] = actor.NewNPC(script)
	}

	s.logger.Debug("investigation started",
		"session_id", s.id.String(),
		"scenario", sc.Name,
		"suspects", s.graph.Len(),
		"edges", s.graph.EdgeCount())
	return s, nil
}

// RecordClue stores a clue and lets the relationship graph react to it.
func (s *Session) RecordClue(npcID, text, room string) ClueRecord {
	rec := ClueRecord{NPC: npcID, Text: text, Room: room, Timestamp: s.now()}
	s.clues = append(s.clues, rec)

	raised := s.graph.ApplyClueSignal(text, s.scenario.WatchedSuspect)
	s.logger.Debug("clue recorded",
		"session_id", s.id.String(),
		"npc", npcID,
		"room", room,
		"suspicion_raised", raised)
	return rec
}

// RevealClueIfEligible is what happens each time npc is talked to. An NPC
// past its opening line that has not yet given a clue may, on a successful
// draw, hand over one clue picked at random from its pool. Otherwise the NPC
// says its current scripted line and moves on to the next one.
func (s *Session) RevealClueIfEligible(npc *actor.NPC, room string) Reply {
	if npc == nil {
		return Reply{}
	}
	if npc.CanRevealClue() && s.rng.Float64() < s.scenario.EffectiveClueChance() {
		text := npc.Clues[s.rng.IntN(len(npc.Clues))]
		npc.ClueGiven = true
		rec := s.RecordClue(npc.Name, text, room)
		return Reply{Speaker: npc.Name, Text: text, Clue: &rec}
	}

	line := npc.Line()
	npc.Advance()
	return Reply{Speaker: npc.Name, Text: line}
}

// Accuse names the culprit. Only the first accusation counts.
func (s *Session) Accuse(suspectID string) (Outcome, error) {
	if s.resolved {
		return Outcome{}, ErrAlreadyResolved
	}
	out := Outcome{
		Correct:    suspectID == s.scenario.Culprit,
		SuspectID:  suspectID,
		ResolvedAt: s.now(),
	}
	s.outcome = &out
	s.resolved = true

	s.logger.Info("accusation made",
		"session_id", s.id.String(),
		"suspect", suspectID,
		"correct", out.Correct)
	return out, nil
}

// Solve reveals the answer from the interrogation tree and closes the case
// without recording an accusation.
func (s *Session) Solve() (decision.Content, error) {
	if s.resolved {
		return decision.Content{}, ErrAlreadyResolved
	}
	sol, ok := s.tree.Solution()
	if !ok {
		return decision.Content{}, fmt.Errorf("investigation: %w: no culprit node", decision.ErrInvalidTree)
	}
	s.resolved = true

	s.logger.Info("solution revealed",
		"session_id", s.id.String(),
		"culprit", sol.Label)
	return sol, nil
}

// Navigate answers the current interrogation question.
func (s *Session) Navigate(a decision.Answer) decision.Content {
	return s.tree.Navigate(a)
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Scenario returns the static data the session was built from.
func (s *Session) Scenario() *scenario.Scenario { return s.scenario }

func (s *Session) Graph() *graph.Graph                        { return s.graph }
func (s *Session) Tree() *decision.Tree                       { return s.tree }
func (s *Session) Conversation() *chat.Log                    { return s.log }
func (s *Session) Dialogs() *queue.Stack[DialogFrame]         { return s.dialogs }
func (s *Session) Transitions() *queue.Queue[TransitionEvent] { return s.transitions }

// Clues returns a copy of the collected clues in the order they were found.
func (s *Session) Clues() []ClueRecord {
	return append([]ClueRecord(nil), s.clues...)
}

// Resolved reports whether the case is closed.
func (s *Session) Resolved() bool { return s.resolved }

// Outcome returns the accusation result, if an accusation was made.
func (s *Session) Outcome() (Outcome, bool) {
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// NPC returns the runtime state for the named NPC.
func (s *Session) NPC(name string) (*actor.NPC, bool) {
	n, ok := s.npcs[name]
	return n, ok
}

// Suspects returns the IDs that may be accused.
func (s *Session) Suspects() []string {
	return s.scenario.Accusable()
}

package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/pkg/actor"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
	"github.com/jwebster45206/mystery-engine/pkg/textmatch"
)

var (
	ErrNoExit         = errors.New("you can't go that way")
	ErrUnknownRoom    = errors.New("no such room")
	ErrUnknownSuspect = errors.New("no such suspect")
	ErrNoOneHere      = errors.New("nobody by that name is here")
	ErrInDialogue     = errors.New("finish the conversation first")
	ErrNotInDialogue  = errors.New("you are not talking to anyone")
)

// StartLine is logged when a conversation begins.
const StartLine = "Conversation started"

// Notifier is told about game milestones. Publishing failures are logged and
// never interrupt play.
type Notifier interface {
	PublishRoomChanged(ctx context.Context, gameID uuid.UUID, room string) error
	PublishClueCollected(ctx context.Context, gameID uuid.UUID, clue investigation.ClueRecord) error
	PublishAccusation(ctx context.Context, gameID uuid.UUID, outcome investigation.Outcome) error
	PublishSolution(ctx context.Context, gameID uuid.UUID, solution decision.Content) error
}

// Director turns player actions into session calls and renders the text the
// player sees. It is not safe for concurrent use.
type Director struct {
	session  *investigation.Session
	scenario *scenario.Scenario
	state    *GameState
	suspects *textmatch.Resolver

	rng      investigation.Rand
	notifier Notifier
	logger   *slog.Logger
}

// DirectorOption configures a Director.
type DirectorOption func(*Director)

// WithRand sets the source used to pick small-talk lines.
func WithRand(r investigation.Rand) DirectorOption {
	return func(d *Director) {
		if r != nil {
			d.rng = r
		}
	}
}

// WithNotifier sets where milestones are published.
func WithNotifier(n Notifier) DirectorOption {
	return func(d *Director) { d.notifier = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) DirectorOption {
	return func(d *Director) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDirector puts the investigator in the scenario's opening room.
func NewDirector(s *investigation.Session, opts ...DirectorOption) *Director {
	sc := s.Scenario()
	d := &Director{
		session:  s,
		scenario: sc,
		state:    NewGameState(s.ID(), sc.OpeningRoom),
		suspects: textmatch.NewResolver(s.Suspects(), 0),
		rng:      investigation.NewRand(rand.Uint64()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Director) Session() *investigation.Session { return d.session }
func (d *Director) State() *GameState              { return d.state }

// CurrentRoom returns the room the investigator is in.
func (d *Director) CurrentRoom() scenario.Room {
	return d.scenario.Rooms[d.state.Room]
}

// NPCsHere returns the runtime state of everyone in the current room.
func (d *Director) NPCsHere() []*actor.NPC {
	var out []*actor.NPC
	for _, script := range d.CurrentRoom().NPCs {
		if npc, ok := d.session.NPC(script.Name); ok {
			out = append(out, npc)
		}
	}
	return out
}

// Look describes the current room, its people and its exits.
func (d *Director) Look() string {
	room := d.CurrentRoom()
	var b strings.Builder
	fmt.Fprintf(&b, "You are in the %s.\n", textmatch.Title(room.Name))

	npcs := d.NPCsHere()
	if len(npcs) == 0 {
		b.WriteString("Nobody is here.\n")
	} else {
		b.WriteString("Here:\n")
		for _, n := range npcs {
			fmt.Fprintf(&b, "  %s [%s]\n", n.Name, n.Status())
		}
	}

	b.WriteString("Exits:")
	for _, dir := range scenario.Directions {
		target := "---"
		if key, ok := room.Exit(dir); ok {
			target = d.scenario.Rooms[key].Name
		}
		fmt.Fprintf(&b, " %s: %s", dir, target)
	}
	return b.String()
}

// Move walks through the exit in direction dir. The move is queued as a
// transition and the queue is drained one event at a time.
func (d *Director) Move(ctx context.Context, dir string) (string, error) {
	if d.state.InDialogue {
		return "", ErrInDialogue
	}
	dir = strings.ToLower(strings.TrimSpace(dir))
	target, ok := d.CurrentRoom().Exit(dir)
	if !scenario.IsDirection(dir) || !ok {
		return "", fmt.Errorf("%w: %s", ErrNoExit, dir)
	}

	d.session.Transitions().Enqueue(investigation.TransitionEvent{
		Kind:      investigation.KindRoomTransition,
		Room:      target,
		Direction: dir,
	})
	if err := d.drainTransitions(ctx); err != nil {
		return "", err
	}
	return d.Look(), nil
}

// drainTransitions processes queued transitions while none is in flight.
func (d *Director) drainTransitions(ctx context.Context) error {
	q := d.session.Transitions()
	for !d.state.Transitioning {
		ev, ok := q.Front()
		if !ok {
			return nil
		}
		if ev.Kind != investigation.KindRoomTransition {
			q.Dequeue()
			continue
		}
		q.Dequeue()
		if err := d.transition(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (d *Director) transition(ctx context.Context, ev investigation.TransitionEvent) error {
	d.state.Transitioning = true
	defer func() { d.state.Transitioning = false }()

	key, _, ok := d.scenario.FindRoom(ev.Room)
	if !ok {
		d.logger.Error("room transition aborted", "room", ev.Room, "direction", ev.Direction)
		return fmt.Errorf("%w: %s", ErrUnknownRoom, ev.Room)
	}
	d.enterRoom(ctx, key)
	return nil
}

// Travel goes straight to a room by key or name, without walking.
func (d *Director) Travel(ctx context.Context, ref string) (string, error) {
	if !d.state.CanMove() {
		return "", ErrInDialogue
	}
	key, _, ok := d.scenario.FindRoom(strings.TrimSpace(ref))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoom, ref)
	}
	d.enterRoom(ctx, key)
	return d.Look(), nil
}

func (d *Director) enterRoom(ctx context.Context, key string) {
	d.state.Room = key
	d.state.Moves++
	d.logger.Debug("entered room", "game_id", d.state.ID.String(), "room", key)
	d.notify("room_changed", func(n Notifier) error {
		return n.PublishRoomChanged(ctx, d.state.ID, key)
	})
}

// Talk starts a conversation with someone in the room. An empty name picks
// the only person present.
func (d *Director) Talk(ctx context.Context, name string) (string, error) {
	if d.state.InDialogue {
		return "", ErrInDialogue
	}
	npc, err := d.findNPC(name)
	if err != nil {
		return "", err
	}

	d.session.Dialogs().Push(investigation.DialogFrame{NPC: npc.Name, DialogueIndex: npc.DialogueIndex})
	d.state.enterDialogue(npc.Name)
	d.session.Conversation().Append(npc.Name, StartLine)

	return d.speak(ctx, npc), nil
}

func (d *Director) findNPC(name string) (*actor.NPC, error) {
	here := d.NPCsHere()
	if strings.TrimSpace(name) == "" {
		if len(here) == 1 {
			return here[0], nil
		}
		return nil, ErrNoOneHere
	}

	names := make([]string, len(here))
	for i, n := range here {
		names[i] = n.Name
	}
	match, ok := textmatch.NewResolver(names, 0).Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoOneHere, name)
	}
	npc, _ := d.session.NPC(match)
	return npc, nil
}

// speak gets the active NPC's next line, which may be a clue.
func (d *Director) speak(ctx context.Context, npc *actor.NPC) string {
	reply := d.session.RevealClueIfEligible(npc, d.CurrentRoom().Name)
	d.session.Conversation().Append(reply.Speaker, reply.Text)
	if reply.Clue != nil {
		clue := *reply.Clue
		d.notify("clue_collected", func(n Notifier) error {
			return n.PublishClueCollected(ctx, d.state.ID, clue)
		})
	}
	return fmt.Sprintf("%s: %s", reply.Speaker, reply.Text)
}

func (d *Director) activeNPC() (*actor.NPC, error) {
	if !d.state.InDialogue {
		return nil, ErrNotInDialogue
	}
	npc, ok := d.session.NPC(d.state.ActiveNPC)
	if !ok {
		return nil, ErrNotInDialogue
	}
	return npc, nil
}

// Continue asks the active NPC to keep talking.
func (d *Director) Continue(ctx context.Context) (string, error) {
	npc, err := d.activeNPC()
	if err != nil {
		return "", err
	}
	return d.speak(ctx, npc), nil
}

// Ask asks the active NPC about the case.
func (d *Director) Ask() (string, error) {
	npc, err := d.activeNPC()
	if err != nil {
		return "", err
	}
	answer := npc.Answer
	if answer == "" {
		answer = d.scenario.DefaultAnswer
	}
	d.session.Conversation().Append(npc.Name, answer)
	return fmt.Sprintf("%s: %s", npc.Name, answer), nil
}

// ChangeTopic makes small talk with the active NPC.
func (d *Director) ChangeTopic() (string, error) {
	npc, err := d.activeNPC()
	if err != nil {
		return "", err
	}
	topic := d.scenario.DefaultAnswer
	if n := len(d.scenario.SmallTalk); n > 0 {
		topic = d.scenario.SmallTalk[d.rng.IntN(n)]
	}
	d.session.Conversation().Append(npc.Name, topic)
	return fmt.Sprintf("%s: %s", npc.Name, topic), nil
}

// EndDialogue leaves the current conversation.
func (d *Director) EndDialogue() (investigation.DialogFrame, error) {
	if !d.state.InDialogue {
		return investigation.DialogFrame{}, ErrNotInDialogue
	}
	frame, _ := d.session.Dialogs().Pop()
	d.state.leaveDialogue()
	return frame, nil
}

// AnalyzeClues renders the clue analysis.
func (d *Director) AnalyzeClues() string {
	sum, ok := d.session.SummarizeClues()
	if !ok {
		return "You haven't collected any clues yet. Talk to more people."
	}
	return sum.String()
}

// AnalyzeRelationships renders the relationship analysis.
func (d *Director) AnalyzeRelationships() string {
	return d.session.SummarizeRelationships().String()
}

// Interrogate answers the current interrogation question and shows the next.
func (d *Director) Interrogate(a decision.Answer) string {
	c := d.session.Navigate(a)
	if d.session.Tree().AtLeaf() {
		return fmt.Sprintf("%s: %s (end of the line of questioning)", c.Label, c.Evidence)
	}
	return fmt.Sprintf("%s: %s", c.Label, c.Evidence)
}

// Accuse accuses a suspect. Loosely typed names are resolved first, so
// "angel" accuses ÁNGEL.
func (d *Director) Accuse(ctx context.Context, name string) (string, error) {
	if d.session.Resolved() {
		return "", fmt.Errorf("you already made an accusation, the case is closed: %w", investigation.ErrAlreadyResolved)
	}
	id, ok := d.suspects.Resolve(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSuspect, name)
	}

	out, err := d.session.Accuse(id)
	if err != nil {
		return "", err
	}
	d.notify("accusation", func(n Notifier) error {
		return n.PublishAccusation(ctx, d.state.ID, out)
	})
	return d.verdict(out), nil
}

func (d *Director) verdict(out investigation.Outcome) string {
	var b strings.Builder
	v := d.scenario.Verdicts
	if out.Correct {
		b.WriteString("CONGRATULATIONS!\n\n")
		fmt.Fprintf(&b, "You correctly accused %s.\n", out.SuspectID)
		if v.Confession != "" {
			fmt.Fprintf(&b, "\n%s confesses: %q\n", out.SuspectID, v.Confession)
		}
		b.WriteString("\nMYSTERY SOLVED")
		return b.String()
	}

	b.WriteString("WRONG ACCUSATION!\n\n")
	fmt.Fprintf(&b, "%s is not the culprit.\n", out.SuspectID)
	if line, ok := v.Defences[out.SuspectID]; ok {
		fmt.Fprintf(&b, "\n%s says: %q\n", out.SuspectID, line)
	}
	b.WriteString("\nYou needed more evidence.")
	return b.String()
}

// Reveal shows the solution and closes the case.
func (d *Director) Reveal(ctx context.Context) (string, error) {
	sol, err := d.session.Solve()
	if err != nil {
		return "", err
	}
	d.notify("solution", func(n Notifier) error {
		return n.PublishSolution(ctx, d.state.ID, sol)
	})
	return fmt.Sprintf("SOLUTION: %s is the culprit. %s", sol.Label, sol.Evidence), nil
}

// Search finds logged lines mentioning any keyword.
func (d *Director) Search(keywords ...string) []chat.Entry {
	return d.session.Conversation().FindByKeywords(keywords...)
}

func (d *Director) notify(event string, publish func(Notifier) error) {
	if d.notifier == nil {
		return
	}
	if err := publish(d.notifier); err != nil {
		d.logger.Warn("failed to publish game event", "event", event, "error", err)
	}
}

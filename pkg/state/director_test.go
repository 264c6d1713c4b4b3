package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return r.n % n }

type recordingNotifier struct {
	rooms     []string
	clues     []investigation.ClueRecord
	outcomes  []investigation.Outcome
	solutions []decision.Content
	err       error
}

func (n *recordingNotifier) PublishRoomChanged(_ context.Context, _ uuid.UUID, room string) error {
	n.rooms = append(n.rooms, room)
	return n.err
}

func (n *recordingNotifier) PublishClueCollected(_ context.Context, _ uuid.UUID, clue investigation.ClueRecord) error {
	n.clues = append(n.clues, clue)
	return n.err
}

func (n *recordingNotifier) PublishAccusation(_ context.Context, _ uuid.UUID, out investigation.Outcome) error {
	n.outcomes = append(n.outcomes, out)
	return n.err
}

func (n *recordingNotifier) PublishSolution(_ context.Context, _ uuid.UUID, sol decision.Content) error {
	n.solutions = append(n.solutions, sol)
	return n.err
}

func newTestDirector(t *testing.T) (*Director, *recordingNotifier) {
	t.Helper()
	sc, err := scenario.Default()
	require.NoError(t, err)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := fixedRand{f: 0.1, n: 0}
	s, err := investigation.New(sc,
		investigation.WithRand(r),
		investigation.WithClock(func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }),
		investigation.WithLogger(quiet))
	require.NoError(t, err)

	n := &recordingNotifier{}
	return NewDirector(s, WithRand(r), WithNotifier(n), WithLogger(quiet)), n
}

func TestNewDirector(t *testing.T) {
	d, _ := newTestDirector(t)

	assert.Equal(t, "living_room", d.State().Room)
	assert.Equal(t, d.Session().ID(), d.State().ID)
	assert.True(t, d.State().CanMove())

	look := d.Look()
	assert.Contains(t, look, "You are in the Living Room.")
	assert.Contains(t, look, "Nobody is here.")
	assert.Contains(t, look, "up: KITCHEN")
	assert.Contains(t, look, "left: ÁNGEL'S ROOM")
}

func TestDirector_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("walks through an exit", func(t *testing.T) {
		d, n := newTestDirector(t)

		look, err := d.Move(ctx, "up")
		require.NoError(t, err)
		assert.Equal(t, "kitchen", d.State().Room)
		assert.Equal(t, 1, d.State().Moves)
		assert.False(t, d.State().Transitioning)
		assert.True(t, d.Session().Transitions().IsEmpty())
		assert.Contains(t, look, "MAMÁ [PRESENT]")
		assert.Contains(t, look, "down: LIVING ROOM")
		assert.Equal(t, []string{"kitchen"}, n.rooms)
	})

	t.Run("no exit", func(t *testing.T) {
		d, _ := newTestDirector(t)
		_, err := d.Travel(ctx, "kitchen")
		require.NoError(t, err)

		_, err = d.Move(ctx, "up")
		assert.True(t, errors.Is(err, ErrNoExit))
		_, err = d.Move(ctx, "north")
		assert.True(t, errors.Is(err, ErrNoExit))
		assert.Equal(t, "kitchen", d.State().Room)
	})

	t.Run("unknown room aborts the transition", func(t *testing.T) {
		d, _ := newTestDirector(t)
		d.Session().Transitions().Enqueue(investigation.TransitionEvent{
			Kind: investigation.KindRoomTransition, Room: "attic", Direction: "up",
		})

		_, err := d.Move(ctx, "down")
		assert.True(t, errors.Is(err, ErrUnknownRoom))
		assert.Equal(t, "living_room", d.State().Room)
		assert.False(t, d.State().Transitioning)

		// The walk queued behind the bad event is still pending and goes next.
		assert.Equal(t, 1, d.Session().Transitions().Len())
		_, err = d.Move(ctx, "up")
		require.NoError(t, err)
		assert.Equal(t, "kitchen", d.State().Room)
		assert.True(t, d.Session().Transitions().IsEmpty())
	})

	t.Run("blocked while talking", func(t *testing.T) {
		d, _ := newTestDirector(t)
		_, err := d.Travel(ctx, "kitchen")
		require.NoError(t, err)
		_, err = d.Talk(ctx, "")
		require.NoError(t, err)

		_, err = d.Move(ctx, "down")
		assert.True(t, errors.Is(err, ErrInDialogue))
		_, err = d.Travel(ctx, "living_room")
		assert.True(t, errors.Is(err, ErrInDialogue))
	})
}

func TestDirector_Travel(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDirector(t)

	_, err := d.Travel(ctx, "angel's room")
	require.NoError(t, err)
	assert.Equal(t, "angel_room", d.State().Room)

	_, err = d.Travel(ctx, "attic")
	assert.True(t, errors.Is(err, ErrUnknownRoom))
	assert.Equal(t, []string{"angel_room"}, n.rooms)
}

func TestDirector_Conversation(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDirector(t)
	_, err := d.Travel(ctx, "kitchen")
	require.NoError(t, err)

	line, err := d.Talk(ctx, "mama")
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ: Hi sweetheart! Have you seen the cake I baked?", line)
	assert.True(t, d.State().InDialogue)
	assert.Equal(t, "MAMÁ", d.State().ActiveNPC)
	frame, ok := d.Session().Dialogs().Peek()
	require.True(t, ok)
	assert.Equal(t, investigation.DialogFrame{NPC: "MAMÁ", DialogueIndex: 0}, frame)

	_, err = d.Talk(ctx, "mama")
	assert.True(t, errors.Is(err, ErrInDialogue))

	line, err = d.Continue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ: CLUE: The cake recipe had extra chocolate", line)
	require.Len(t, n.clues, 1)
	assert.Equal(t, "KITCHEN", n.clues[0].Room)

	line, err = d.Continue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ: I left it in the kitchen... and it vanished!", line)

	line, err = d.Ask()
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ: The cake? I made it with so much love for today...", line)

	line, err = d.ChangeTopic()
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ: How's work going?", line)

	assert.Len(t, d.Search("cake"), 3)
	assert.Equal(t, 6, d.Session().Conversation().Len())

	frame, err = d.EndDialogue()
	require.NoError(t, err)
	assert.Equal(t, "MAMÁ", frame.NPC)
	assert.False(t, d.State().InDialogue)
	assert.Empty(t, d.State().ActiveNPC)
	assert.True(t, d.Session().Dialogs().IsEmpty())

	_, err = d.Continue(ctx)
	assert.True(t, errors.Is(err, ErrNotInDialogue))
	_, err = d.EndDialogue()
	assert.True(t, errors.Is(err, ErrNotInDialogue))

	assert.Contains(t, d.Look(), "MAMÁ [CLUE OBTAINED]")
	assert.Contains(t, d.AnalyzeClues(), "1. MAMÁ: CLUE: The cake recipe had extra chocolate")
}

func TestDirector_Talk_NobodyThere(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirector(t)

	_, err := d.Talk(ctx, "")
	assert.True(t, errors.Is(err, ErrNoOneHere))

	_, err = d.Travel(ctx, "kitchen")
	require.NoError(t, err)
	_, err = d.Talk(ctx, "leia")
	assert.True(t, errors.Is(err, ErrNoOneHere))
	assert.False(t, d.State().InDialogue)
}

func TestDirector_Accuse(t *testing.T) {
	ctx := context.Background()

	t.Run("correct", func(t *testing.T) {
		d, n := newTestDirector(t)
		text, err := d.Accuse(ctx, "angel")
		require.NoError(t, err)
		assert.Contains(t, text, "You correctly accused ÁNGEL.")
		assert.Contains(t, text, "starving after the gym")
		assert.Contains(t, text, "MYSTERY SOLVED")
		require.Len(t, n.outcomes, 1)
		assert.True(t, n.outcomes[0].Correct)

		_, err = d.Accuse(ctx, "mama")
		assert.True(t, errors.Is(err, investigation.ErrAlreadyResolved))
	})

	t.Run("wrong", func(t *testing.T) {
		d, _ := newTestDirector(t)
		text, err := d.Accuse(ctx, "Mama")
		require.NoError(t, err)
		assert.Contains(t, text, "MAMÁ is not the culprit.")
		assert.Contains(t, text, "I baked that cake!")

		out, ok := d.Session().Outcome()
		require.True(t, ok)
		assert.False(t, out.Correct)
	})

	t.Run("unknown suspect", func(t *testing.T) {
		d, _ := newTestDirector(t)
		_, err := d.Accuse(ctx, "butler")
		assert.True(t, errors.Is(err, ErrUnknownSuspect))
		assert.False(t, d.Session().Resolved())

		_, err = d.Accuse(ctx, "papa")
		assert.True(t, errors.Is(err, ErrUnknownSuspect))
	})

	t.Run("publish failure does not block play", func(t *testing.T) {
		d, n := newTestDirector(t)
		n.err = errors.New("redis down")
		_, err := d.Accuse(ctx, "leia")
		require.NoError(t, err)
		assert.True(t, d.Session().Resolved())
	})
}

func TestDirector_Reveal(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDirector(t)

	text, err := d.Reveal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SOLUTION: ÁNGEL is the culprit. Confession: he was hungry after training", text)
	assert.Len(t, n.solutions, 1)

	_, err = d.Reveal(ctx)
	assert.True(t, errors.Is(err, investigation.ErrAlreadyResolved))
}

func TestDirector_Interrogate(t *testing.T) {
	d, _ := newTestDirector(t)

	assert.Equal(t, "MAMÁ: The cook - opportunity and know-how", d.Interrogate(decision.Yes))
	assert.Equal(t, "MARIEL: Seen near the kitchen - suspicious", d.Interrogate(decision.Yes))
	assert.Equal(t, "ÁNGEL: Confession: he was hungry after training (end of the line of questioning)", d.Interrogate(decision.No))
	assert.Len(t, d.Session().Tree().Path(), 3)
}

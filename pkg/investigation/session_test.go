package investigation

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

// fixedRand always returns the same draw.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return r.n % n }

var (
	reveal   = fixedRand{f: 0.1, n: 1}
	noReveal = fixedRand{f: 0.9}
	fixedNow = time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
)

func newTestSession(t *testing.T, r Rand) *Session {
	t.Helper()
	sc, err := scenario.Default()
	require.NoError(t, err)
	s, err := New(sc,
		WithRand(r),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t, noReveal)

	assert.NotEmpty(t, s.ID().String())
	assert.Equal(t, 5, s.Graph().Len())
	assert.Equal(t, 13, s.Graph().EdgeCount())
	assert.Equal(t, 50, s.Conversation().Capacity())
	assert.True(t, s.Dialogs().IsEmpty())
	assert.True(t, s.Transitions().IsEmpty())
	assert.False(t, s.Resolved())
	assert.Equal(t, []string{"MAMÁ", "MARIEL", "ÁNGEL", "LEIA"}, s.Suspects())

	for _, name := range s.Suspects() {
		npc, ok := s.NPC(name)
		require.True(t, ok, name)
		assert.Zero(t, npc.DialogueIndex)
	}
	_, ok := s.NPC("PAPÁ")
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	sc, err := scenario.Default()
	require.NoError(t, err)
	sc.Relationships = append(sc.Relationships, scenario.Relationship{Source: "X", Target: "Y", Weight: 1})
	_, err = New(sc)
	assert.Error(t, err)
}

func TestWithLogCapacity(t *testing.T) {
	sc, err := scenario.Default()
	require.NoError(t, err)
	s, err := New(sc, WithLogCapacity(3))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Conversation().Capacity())
}

func TestRecordClue(t *testing.T) {
	s := newTestSession(t, noReveal)
	angel, _ := s.Graph().Node("ÁNGEL")
	before := angel.Data.SuspicionLevel

	rec := s.RecordClue("MARIEL", "CLUE: Ángel said he was really hungry", "MARIEL'S ROOM")
	assert.Equal(t, ClueRecord{NPC: "MARIEL", Text: "CLUE: Ángel said he was really hungry", Room: "MARIEL'S ROOM", Timestamp: fixedNow}, rec)
	assert.Equal(t, before+1, angel.Data.SuspicionLevel)

	s.RecordClue("LEIA", "CLUE: *Barks*", "LEIA'S ROOM")
	assert.Equal(t, before+1, angel.Data.SuspicionLevel)
	assert.Len(t, s.Clues(), 2)

	for range 10 {
		s.RecordClue("MAMÁ", "ÁNGEL again", "KITCHEN")
	}
	assert.Equal(t, 5, angel.Data.SuspicionLevel)
}

func TestRevealClueIfEligible(t *testing.T) {
	t.Run("opening line never reveals", func(t *testing.T) {
		s := newTestSession(t, reveal)
		mama, _ := s.NPC("MAMÁ")

		reply := s.RevealClueIfEligible(mama, "KITCHEN")
		assert.Nil(t, reply.Clue)
		assert.Equal(t, "MAMÁ", reply.Speaker)
		assert.Equal(t, mama.Dialogues[0], reply.Text)
		assert.Equal(t, 1, mama.DialogueIndex)
	})

	t.Run("failed draw says the next line", func(t *testing.T) {
		s := newTestSession(t, noReveal)
		mama, _ := s.NPC("MAMÁ")
		mama.DialogueIndex = 1

		reply := s.RevealClueIfEligible(mama, "KITCHEN")
		assert.Nil(t, reply.Clue)
		assert.Equal(t, mama.Dialogues[1], reply.Text)
		assert.Equal(t, 2, mama.DialogueIndex)
		assert.Empty(t, s.Clues())
	})

	t.Run("successful draw reveals one clue", func(t *testing.T) {
		s := newTestSession(t, reveal)
		mama, _ := s.NPC("MAMÁ")
		angel, _ := s.Graph().Node("ÁNGEL")
		mama.DialogueIndex = 1

		reply := s.RevealClueIfEligible(mama, "KITCHEN")
		require.NotNil(t, reply.Clue)
		assert.Equal(t, mama.Clues[1], reply.Text)
		assert.Equal(t, "KITCHEN", reply.Clue.Room)
		assert.True(t, mama.ClueGiven)
		assert.Equal(t, 1, mama.DialogueIndex)
		assert.Equal(t, 4, angel.Data.SuspicionLevel)
		assert.Len(t, s.Clues(), 1)

		for range 10 {
			reply = s.RevealClueIfEligible(mama, "KITCHEN")
			assert.Nil(t, reply.Clue)
		}
		assert.Len(t, s.Clues(), 1)
	})

	t.Run("nil npc", func(t *testing.T) {
		s := newTestSession(t, reveal)
		assert.Equal(t, Reply{}, s.RevealClueIfEligible(nil, "KITCHEN"))
	})

	t.Run("seeded source is repeatable", func(t *testing.T) {
		run := func() []string {
			s := newTestSession(t, NewRand(42))
			npc, _ := s.NPC("ÁNGEL")
			var lines []string
			for range 8 {
				lines = append(lines, s.RevealClueIfEligible(npc, "ÁNGEL'S ROOM").Text)
			}
			return lines
		}
		if diff := cmp.Diff(run(), run()); diff != "" {
			t.Errorf("seeded runs differ (-first +second):\n%s", diff)
		}
	})
}

func TestAccuse(t *testing.T) {
	t.Run("correct", func(t *testing.T) {
		s := newTestSession(t, noReveal)
		out, err := s.Accuse("ÁNGEL")
		require.NoError(t, err)
		assert.Equal(t, Outcome{Correct: true, SuspectID: "ÁNGEL", ResolvedAt: fixedNow}, out)
		assert.True(t, s.Resolved())
	})

	t.Run("write once", func(t *testing.T) {
		s := newTestSession(t, noReveal)
		first, err := s.Accuse("LEIA")
		require.NoError(t, err)
		assert.False(t, first.Correct)

		_, err = s.Accuse("ÁNGEL")
		assert.True(t, errors.Is(err, ErrAlreadyResolved))

		stored, ok := s.Outcome()
		require.True(t, ok)
		assert.Equal(t, first, stored)

		_, err = s.Solve()
		assert.True(t, errors.Is(err, ErrAlreadyResolved))
	})
}

func TestSolve(t *testing.T) {
	s := newTestSession(t, noReveal)
	s.Navigate(decision.No)
	s.Navigate(decision.No)

	sol, err := s.Solve()
	require.NoError(t, err)
	assert.Equal(t, "ÁNGEL", sol.Label)
	assert.True(t, sol.IsCulprit)
	assert.True(t, s.Resolved())

	_, ok := s.Outcome()
	assert.False(t, ok)

	_, err = s.Accuse("ÁNGEL")
	assert.True(t, errors.Is(err, ErrAlreadyResolved))
	_, err = s.Solve()
	assert.True(t, errors.Is(err, ErrAlreadyResolved))
}

func TestSummarizeRelationships(t *testing.T) {
	s := newTestSession(t, noReveal)
	sum := s.SummarizeRelationships()

	assert.Equal(t, "MAMÁ", sum.MostConnected)
	assert.Equal(t, 2, sum.Connections)
	assert.Equal(t, "Weigh all the evidence before accusing.", sum.Conclusion)

	want := []NodeLinks{
		{Name: "PAPÁ", Links: []Link{{"MAMÁ", 1}, {"MARIEL", 1}, {"ÁNGEL", 1}, {"LEIA", 1}}},
		{Name: "MAMÁ", Links: []Link{{"ÁNGEL", 3}, {"PAPÁ", 1}}},
		{Name: "MARIEL", Links: []Link{{"LEIA", 2}, {"PAPÁ", 1}}},
		{Name: "ÁNGEL", Links: []Link{{"MAMÁ", 3}, {"PAPÁ", 1}}},
		{Name: "LEIA", Links: []Link{{"PAPÁ", 1}, {"ÁNGEL", 3}}},
	}
	if diff := cmp.Diff(want, sum.Nodes); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	text := sum.String()
	assert.Contains(t, text, "Most connected: MAMÁ")
	assert.Contains(t, text, "MARIEL → LEIA (2), PAPÁ (1)")

	// A summary is a read: asking twice changes nothing.
	assert.Equal(t, sum, s.SummarizeRelationships())
}

func TestSummarizeRelationships_HintedSuspect(t *testing.T) {
	s := newTestSession(t, noReveal)
	require.NoError(t, s.Graph().AddEdge("ÁNGEL", "MARIEL", 1, false))

	sum := s.SummarizeRelationships()
	assert.Equal(t, "ÁNGEL", sum.MostConnected)
	assert.Equal(t, "ÁNGEL has the most suspicious connections.", sum.Conclusion)
}

func TestSummarizeClues(t *testing.T) {
	s := newTestSession(t, noReveal)

	_, ok := s.SummarizeClues()
	assert.False(t, ok)

	s.RecordClue("MAMÁ", "CLUE: The cake recipe had extra chocolate", "KITCHEN")
	sum, ok := s.SummarizeClues()
	require.True(t, ok)
	assert.Empty(t, sum.PrimeSuspect)
	assert.Contains(t, sum.String(), "Not enough clear evidence.")

	s.RecordClue("MARIEL", "CLUE: Ángel said he was really HUNGRY after the gym", "MARIEL'S ROOM")
	sum, ok = s.SummarizeClues()
	require.True(t, ok)
	assert.Equal(t, "ÁNGEL", sum.PrimeSuspect)
	assert.Len(t, sum.Clues, 2)
	assert.Contains(t, sum.String(), "2. MARIEL: CLUE: Ángel said")
	assert.Contains(t, sum.String(), "PRIME SUSPECT: ÁNGEL")
}

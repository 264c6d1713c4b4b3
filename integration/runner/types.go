package runner

import (
	"time"

	"github.com/google/uuid"
)

// ResetGameStateInput starts a fresh session in the middle of a suite.
const ResetGameStateInput = "RESET_GAMESTATE"

// RevealMode controls the clue draw during a walkthrough.
type RevealMode string

const (
	RevealSeeded RevealMode = ""       // seeded PCG draws
	RevealAlways RevealMode = "always" // every eligible NPC gives its first clue
	RevealNever  RevealMode = "never"  // NPCs only recite their dialogue
)

// TestSuite is a scripted walkthrough of one case. It either lists Steps or
// sequences other case files through Cases.
type TestSuite struct {
	Name     string     `yaml:"name"`
	Scenario string     `yaml:"scenario,omitempty"` // path to a scenario file; empty uses the embedded default
	Seed     uint64     `yaml:"seed,omitempty"`
	Reveal   RevealMode `yaml:"reveal,omitempty"`
	Steps    []TestStep `yaml:"steps,omitempty"`
	Cases    []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this suite only sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one line of player input and what should follow from it.
// Use input: "RESET_GAMESTATE" to start over from the opening room.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Input        string       `yaml:"input"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	// Game state
	Room       *string `yaml:"room,omitempty"` // room key
	InDialogue *bool   `yaml:"in_dialogue,omitempty"`
	ActiveNPC  *string `yaml:"active_npc,omitempty"`
	Moves      *int    `yaml:"moves,omitempty"`
	Clues      *int    `yaml:"clues,omitempty"` // clues collected so far
	Resolved   *bool   `yaml:"resolved,omitempty"`
	Correct    *bool   `yaml:"correct,omitempty"` // requires an accusation
	Quit       *bool   `yaml:"quit,omitempty"`

	// Response analysis
	ResponseContains    []string `yaml:"response_contains,omitempty"`
	ResponseNotContains []string `yaml:"response_not_contains,omitempty"`
	ResponseRegex       string   `yaml:"response_regex,omitempty"`

	// Error is a substring the step's error must contain. When empty the
	// step must succeed.
	Error string `yaml:"error,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // reset steps do not count toward pass/fail
}

// TestJob is one runnable suite and the file it came from.
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	GameID   uuid.UUID
	Duration time.Duration
	Error    error
}

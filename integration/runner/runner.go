package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted walkthroughs against an in-process director
type Runner struct {
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	ScenarioOverride  string // If set, overrides the scenario for all test cases
	GameLogger        *slog.Logger
}

// NewRunner creates a new test runner
func NewRunner() *Runner {
	return &Runner{
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
		GameLogger:        slog.New(slog.DiscardHandler),
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// a sequence may reference another sequence
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	scenarioPath := suite.Scenario
	if r.ScenarioOverride != "" {
		scenarioPath = r.ScenarioOverride
	}
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to load scenario: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	dir, err := r.newDirector(sc, suite)
	if err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.GameID = dir.Session().ID()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		if step.Input == ResetGameStateInput {
			stepStart := time.Now()
			dir, err = r.newDirector(sc, suite)
			reset := TestResult{StepName: step.Name, IsReset: true, Success: err == nil, Error: err, Duration: time.Since(stepStart)}
			result.Results = append(result.Results, reset)
			if err != nil {
				result.Error = fmt.Errorf("step %d (%s) failed to reset: %w", i, step.Name, err)
				break
			}
			continue
		}

		stepResult := r.runStep(ctx, dir, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// newDirector starts a fresh session for suite. Both the session and the
// director draw from the same source.
func (r *Runner) newDirector(sc *scenario.Scenario, suite TestSuite) (*state.Director, error) {
	var rng investigation.Rand
	switch suite.Reveal {
	case RevealAlways:
		rng = fixedDraw{f: 0}
	case RevealNever:
		rng = fixedDraw{f: 1}
	case RevealSeeded:
		rng = investigation.NewRand(suite.Seed)
	default:
		return nil, fmt.Errorf("unknown reveal mode %q", suite.Reveal)
	}

	logger := r.GameLogger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s, err := investigation.New(sc,
		investigation.WithRand(rng),
		investigation.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return state.NewDirector(s, state.WithRand(rng), state.WithLogger(logger)), nil
}

// runStep sends one line of input and checks the outcome.
func (r *Runner) runStep(ctx context.Context, dir *state.Director, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	res, err := dir.Handle(ctx, step.Input)
	result.Duration = time.Since(start)

	exp := step.Expectations
	switch {
	case err != nil && exp.Error == "":
		result.Error = fmt.Errorf("input %q failed: %w", step.Input, err)
		return result
	case err == nil && exp.Error != "":
		result.Error = fmt.Errorf("expected input %q to fail with '%s', but it succeeded", step.Input, exp.Error)
		return result
	case err != nil:
		result.ResponseText = err.Error()
		if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(exp.Error)) {
			result.Error = fmt.Errorf("expected error containing '%s', got '%v'", exp.Error, err)
			return result
		}
	default:
		result.ResponseText = res.Message
	}

	quit := res != nil && res.Quit
	if err := r.checkExpectations(exp, dir, result.ResponseText, quit); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	return result
}

func (r *Runner) checkExpectations(exp Expectations, dir *state.Director, responseText string, quit bool) error {
	gs := dir.State()
	session := dir.Session()

	if exp.Room != nil && gs.Room != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, gs.Room)
	}

	if exp.InDialogue != nil && gs.InDialogue != *exp.InDialogue {
		return fmt.Errorf("expected in_dialogue to be %t, got %t", *exp.InDialogue, gs.InDialogue)
	}

	if exp.ActiveNPC != nil && gs.ActiveNPC != *exp.ActiveNPC {
		return fmt.Errorf("expected active_npc %q, got %q", *exp.ActiveNPC, gs.ActiveNPC)
	}

	if exp.Moves != nil && gs.Moves != *exp.Moves {
		return fmt.Errorf("expected moves to be %d, got %d", *exp.Moves, gs.Moves)
	}

	if exp.Clues != nil {
		if got := len(session.Clues()); got != *exp.Clues {
			return fmt.Errorf("expected %d clues, got %d", *exp.Clues, got)
		}
	}

	if exp.Resolved != nil && session.Resolved() != *exp.Resolved {
		return fmt.Errorf("expected resolved to be %t, got %t", *exp.Resolved, session.Resolved())
	}

	if exp.Correct != nil {
		out, ok := session.Outcome()
		if !ok {
			return fmt.Errorf("expected an accusation outcome, but none was made")
		}
		if out.Correct != *exp.Correct {
			return fmt.Errorf("expected accusation correct to be %t, got %t (accused %s)", *exp.Correct, out.Correct, out.SuspectID)
		}
	}

	if exp.Quit != nil && quit != *exp.Quit {
		return fmt.Errorf("expected quit to be %t, got %t", *exp.Quit, quit)
	}

	lowerResponse := strings.ToLower(responseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't: %q", expectedText, responseText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}

// fixedDraw always returns the same draw. IntN picks the first option.
type fixedDraw struct{ f float64 }

func (d fixedDraw) Float64() float64 { return d.f }
func (d fixedDraw) IntN(int) int     { return 0 }

package integration

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/mystery-engine/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var scenarioFlag = flag.String("scenario", "", "Override scenario file for all test cases")

// TestWalkthroughs plays every case under cases/.
func TestWalkthroughs(t *testing.T) {
	testFiles, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(testFiles) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	var jobs []runner.TestJob
	for _, file := range testFiles {
		expanded, err := runner.LoadTestSuiteWithExpansion(file, "cases")
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		jobs = append(jobs, expanded...)
	}
	if len(jobs) == 0 {
		t.Fatal("No valid test suites loaded")
	}

	runJobs(t, jobs)
}

// TestSingleSuite runs the cases named by -case, comma separated.
func TestSingleSuite(t *testing.T) {
	if *caseFlag == "" {
		t.Skip("Skipping single suite test (use -case flag to run)")
	}

	var jobs []runner.TestJob
	for _, name := range strings.Split(*caseFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		file := filepath.Join("cases", name)
		if filepath.Ext(file) == "" {
			file += ".yaml"
		}
		expanded, err := runner.LoadTestSuiteWithExpansion(file, "cases")
		if err != nil {
			t.Fatalf("Failed to load test suite %s: %v", file, err)
		}
		jobs = append(jobs, expanded...)
	}
	if len(jobs) == 0 {
		t.Fatalf("No valid test cases found in -case flag: %s", *caseFlag)
	}

	runJobs(t, jobs)
}

func runJobs(t *testing.T, jobs []runner.TestJob) {
	t.Helper()

	if *errFlag != string(runner.ErrorHandlingExit) && *errFlag != string(runner.ErrorHandlingContinue) {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}

	testRunner := runner.NewRunner()
	testRunner.ErrorHandlingMode = runner.ErrorHandlingMode(*errFlag)
	testRunner.ScenarioOverride = *scenarioFlag
	testRunner.Logger = t.Logf

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, job := range jobs {
		t.Run(job.Name, func(t *testing.T) {
			result, err := testRunner.RunSuite(ctx, job.Suite)
			t.Logf("Game ID: %s", result.GameID)
			for _, step := range result.Results {
				switch {
				case step.IsReset:
					t.Logf("   ↻ %s", step.StepName)
				case step.Success:
					t.Logf("   ✓ %s (%v)", step.StepName, step.Duration)
				default:
					t.Errorf("   ✗ %s: %v", step.StepName, step.Error)
				}
			}
			if err != nil {
				t.Errorf("Test suite '%s' failed: %v", job.Name, err)
			}
		})
	}
}

// discoverTestFiles lists the YAML case files in dir, sorted.
func discoverTestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

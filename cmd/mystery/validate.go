package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Check a scenario file for mistakes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		fmt.Fprintf(cmd.OutOrStdout(), "Validating %s...\n", filename)
		if err := validateFile(filename); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Scenario file is valid!")
		return nil
	},
}

func validateFile(filename string) error {
	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("scenario file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidScenarioFilename(nameWithoutExt) {
		return fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., my_case.yaml, not my-case.yaml or MyCase.yaml)", baseName)
	}

	if _, err := scenario.Load(filename); err != nil {
		if errors.Is(err, scenario.ErrInvalidScenario) {
			return fmt.Errorf("errors in %s:\n%w", filename, err)
		}
		return err
	}
	return nil
}

func isValidScenarioFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenarios
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}

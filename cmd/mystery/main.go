package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/mystery-engine/internal/config"
	"github.com/jwebster45206/mystery-engine/internal/logger"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
)

var (
	envFile      string
	scenarioPath string
	seed         uint64

	cfg     *config.Config
	appLog  *slog.Logger
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "mystery",
	Short: "Text mystery game: walk the house, question the family, name the thief",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		cfg = config.Load()
		if cmd.Flags().Changed("scenario") {
			cfg.ScenarioPath = scenarioPath
		}
		if cmd.Flags().Changed("seed") {
			cfg.GameSeed = seed
		}

		var w io.Writer = os.Stderr
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			logFile = f
			w = f
		}
		appLog = logger.Setup(cfg, w)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of environment variables to load")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: the built-in case)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed for clue reveals (0 picks one)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
}

// newSession loads the configured scenario and starts a session on it.
func newSession() (*investigation.Session, uint64, error) {
	sc, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return nil, 0, err
	}
	s := cfg.GameSeed
	if s == 0 {
		s = rand.Uint64()
	}
	session, err := investigation.New(sc,
		investigation.WithRand(investigation.NewRand(s)),
		investigation.WithLogger(appLog))
	if err != nil {
		return nil, 0, err
	}
	return session, s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

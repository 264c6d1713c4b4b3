package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/mystery-engine/internal/events"
	"github.com/jwebster45206/mystery-engine/internal/logger"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the mystery in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, s, err := newSession()
		if err != nil {
			return err
		}
		gameLog := logger.WithGameID(appLog, session.ID().String())

		opts := []state.DirectorOption{
			state.WithRand(investigation.NewRand(s + 1)),
			state.WithLogger(gameLog),
		}
		if cfg.RedisURL != "" {
			rdb, err := events.NewClient(context.Background(), cfg.RedisURL, gameLog)
			if err != nil {
				logger.WithError(gameLog, err).Warn("Playing without event publishing")
			} else {
				defer rdb.Close()
				opts = append(opts, state.WithNotifier(events.NewBroadcaster(rdb, gameLog)))
			}
		}
		director := state.NewDirector(session, opts...)
		gameLog.Info("Game started", "seed", s, "scenario", session.Scenario().Name)

		p := tea.NewProgram(NewConsoleUI(director),
			tea.WithAltScreen(),
			tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
		return nil
	},
}

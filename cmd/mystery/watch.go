package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/mystery-engine/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch <game-id>",
	Short: "Follow another player's game as it happens (needs REDIS_URL)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid game id: %w", err)
		}
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is not set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rdb, err := events.NewClient(ctx, cfg.RedisURL, appLog)
		if err != nil {
			return err
		}
		defer rdb.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching game %s. Ctrl+C to stop.\n", gameID)
		err = events.Watch(ctx, rdb, gameID, appLog, func(ev events.Event) {
			fmt.Fprintln(out, describeEvent(ev))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func describeEvent(ev events.Event) string {
	switch ev.Type {
	case events.EventTypeRoomChanged:
		return fmt.Sprintf("→ walked into %v", ev.Data["room"])
	case events.EventTypeClueCollected:
		return fmt.Sprintf("★ clue from %v in %v: %v", ev.Data["npc"], ev.Data["room"], ev.Data["text"])
	case events.EventTypeAccusationMade:
		verdict := "wrong"
		if correct, _ := ev.Data["correct"].(bool); correct {
			verdict = "correct"
		}
		return fmt.Sprintf("! accused %v (%s)", ev.Data["suspect"], verdict)
	case events.EventTypeSolutionRevealed:
		return fmt.Sprintf("? gave up: %v did it", ev.Data["culprit"])
	default:
		return fmt.Sprintf("%s %v", ev.Type, ev.Data)
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRoomChanged      EventType = "room.changed"
	EventTypeClueCollected    EventType = "clue.collected"
	EventTypeAccusationMade   EventType = "accusation.made"
	EventTypeSolutionRevealed EventType = "solution.revealed"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying a game's events.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// NewClient connects to redisURL and checks the connection.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for game events", "addr", opt.Addr)
	return rdb, nil
}

// Broadcaster publishes game milestones to Redis Pub/Sub so other processes
// can follow a game.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishRoomChanged publishes a room.changed event
func (b *Broadcaster) PublishRoomChanged(ctx context.Context, gameID uuid.UUID, room string) error {
	event := Event{
		Type:   EventTypeRoomChanged,
		GameID: gameID.String(),
		Data: map[string]any{
			"room": room,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishClueCollected publishes a clue.collected event
func (b *Broadcaster) PublishClueCollected(ctx context.Context, gameID uuid.UUID, clue investigation.ClueRecord) error {
	event := Event{
		Type:   EventTypeClueCollected,
		GameID: gameID.String(),
		Data: map[string]any{
			"npc":  clue.NPC,
			"text": clue.Text,
			"room": clue.Room,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishAccusation publishes an accusation.made event
func (b *Broadcaster) PublishAccusation(ctx context.Context, gameID uuid.UUID, outcome investigation.Outcome) error {
	event := Event{
		Type:   EventTypeAccusationMade,
		GameID: gameID.String(),
		Data: map[string]any{
			"suspect": outcome.SuspectID,
			"correct": outcome.Correct,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// PublishSolution publishes a solution.revealed event
func (b *Broadcaster) PublishSolution(ctx context.Context, gameID uuid.UUID, solution decision.Content) error {
	event := Event{
		Type:   EventTypeSolutionRevealed,
		GameID: gameID.String(),
		Data: map[string]any{
			"culprit":  solution.Label,
			"evidence": solution.Evidence,
		},
	}
	return b.publishToGame(ctx, gameID, event)
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

// Watch subscribes to a game's events and calls fn for each one until ctx
// is done. Messages that are not events are logged and skipped.
func Watch(ctx context.Context, rdb *redis.Client, gameID uuid.UUID, logger *slog.Logger, fn func(Event)) error {
	sub := rdb.Subscribe(ctx, Channel(gameID))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("Skipping malformed event", "error", err, "channel", msg.Channel)
				continue
			}
			fn(ev)
		}
	}
}

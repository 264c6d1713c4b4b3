package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/pkg/decision"
	"github.com/jwebster45206/mystery-engine/pkg/investigation"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

var _ state.Notifier = (*Broadcaster)(nil)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rdb, err := NewClient(context.Background(), "redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis client: %v", err)
	}

	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url", testLogger())
	assert.Error(t, err)
}

func TestBroadcaster_Publish(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	gameID := uuid.New()
	sub := rdb.Subscribe(ctx, Channel(gameID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(rdb, testLogger())
	require.NoError(t, b.PublishRoomChanged(ctx, gameID, "kitchen"))
	require.NoError(t, b.PublishClueCollected(ctx, gameID, investigation.ClueRecord{NPC: "MAMÁ", Text: "CLUE: chocolate", Room: "KITCHEN"}))
	require.NoError(t, b.PublishAccusation(ctx, gameID, investigation.Outcome{SuspectID: "ÁNGEL", Correct: true}))
	require.NoError(t, b.PublishSolution(ctx, gameID, decision.Content{Label: "ÁNGEL", Evidence: "Confession"}))

	want := []struct {
		typ  EventType
		key  string
		want any
	}{
		{EventTypeRoomChanged, "room", "kitchen"},
		{EventTypeClueCollected, "npc", "MAMÁ"},
		{EventTypeAccusationMade, "correct", true},
		{EventTypeSolutionRevealed, "culprit", "ÁNGEL"},
	}
	for _, w := range want {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)

		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, w.typ, ev.Type)
		assert.Equal(t, gameID.String(), ev.GameID)
		assert.Equal(t, w.want, ev.Data[w.key])
	}
}

func TestBroadcaster_PublishFailsWhenRedisIsDown(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	mr.Close()

	b := NewBroadcaster(rdb, testLogger())
	err := b.PublishRoomChanged(context.Background(), uuid.New(), "kitchen")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	gameID := uuid.New()
	got := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, rdb, gameID, testLogger(), func(ev Event) {
			select {
			case got <- ev:
			default:
			}
		})
	}()

	// Publish until the watcher has subscribed.
	b := NewBroadcaster(rdb, testLogger())
	var ev Event
	require.Eventually(t, func() bool {
		_ = rdb.Publish(ctx, Channel(gameID), "not json").Err()
		_ = b.PublishRoomChanged(ctx, gameID, "leia_room")
		select {
		case ev = <-got:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	assert.Equal(t, EventTypeRoomChanged, ev.Type)
	assert.Equal(t, "leia_room", ev.Data["room"])

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

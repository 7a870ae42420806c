// Package cache provides the Redis-backed round historian. Every game
// event is pushed onto a Redis list so an external consumer can persist
// or replay the action stream without coupling to the session.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when Redis is not configured; all
// publish helpers degrade to no-ops in that case.
var Rdb *redis.Client

// RoundRecordsKey is the list the historian consumer drains.
const RoundRecordsKey = "take6:round_records"

// Connect initializes the shared client and verifies the connection.
func Connect(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	return nil
}

// Close releases the shared client.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// RoundRecord is one historian entry: a single game event with enough
// ordering information to reconstruct the match.
type RoundRecord struct {
	GameID      uuid.UUID              `json:"gameId"`
	EventIndex  int                    `json:"eventIndex"`
	Round       int                    `json:"round"`
	Deal        int                    `json:"deal"`
	EventType   string                 `json:"eventType"`
	Actor       string                 `json:"actor,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	TimestampMs int64                  `json:"timestamp"`
}

// PublishRoundRecord appends the record to the historian list.
func PublishRoundRecord(ctx context.Context, rec RoundRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal round record: %w", err)
	}
	if err := Rdb.RPush(ctx, RoundRecordsKey, data).Err(); err != nil {
		return fmt.Errorf("rpush round record: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix = "conspiracy:room:"

	// A summary outlives its room by at most this long if a delete is lost.
	roomExpiration = 2 * time.Hour

	scanBatch = 100
)

// RoomSummary is the public face of a live room. It is informational only;
// no room is ever rebuilt from it.
type RoomSummary struct {
	Code      string `json:"code"`
	Phase     string `json:"phase"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"max_rounds"`
	Players   int    `json:"players"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// RedisStore publishes live-room summaries to Redis so several server
// instances, dashboards or a front-end can list rooms.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks the connection.
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// PublishRoom writes or refreshes a room summary.
func (rs *RedisStore) PublishRoom(ctx context.Context, summary *RoomSummary) error {
	if summary == nil {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal room summary: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+summary.Code, data, roomExpiration).Err()
}

// LoadRoom reads one summary. It returns nil, nil when the room is unknown.
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomSummary, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary RoomSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal room summary: %w", err)
	}
	return &summary, nil
}

// RemoveRoom deletes a summary.
func (rs *RedisStore) RemoveRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKeyPrefix+code).Err()
}

// ListRoomCodes returns every published room code.
func (rs *RedisStore) ListRoomCodes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// CountRooms returns how many rooms are published.
func (rs *RedisStore) CountRooms(ctx context.Context) (int, error) {
	codes, err := rs.ListRoomCodes(ctx)
	if err != nil {
		return 0, err
	}
	return len(codes), nil
}

// Close closes the underlying client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"nightfall/internal/game"
)

const (
	roomKeyPrefix = "room:"
	roomsKey      = "rooms"
)

// RedisConfig holds configuration for the Redis room repository
type RedisConfig struct {
	RedisClient *redis.Client

	// TTL expires idle rooms. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore implements Repository on Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed room repository
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: cfg.RedisClient,
		ttl:    cfg.TTL,
	}, nil
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

// SaveRoom persists a snapshot to Redis
func (r *RedisStore) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	roomJSON, err := json.Marshal(input.Room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, roomKey(input.Room.ID), roomJSON, r.ttl)
	pipe.SAdd(ctx, roomsKey, input.Room.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// GetRoom retrieves a snapshot by room id
func (r *RedisStore) GetRoom(ctx context.Context, input *GetRoomInput) (*game.RoomState, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	roomJSON, err := r.client.Get(ctx, roomKey(input.RoomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("room %s: %w", input.RoomID, ErrRoomNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room game.RoomState
	if err := json.Unmarshal(roomJSON, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// DeleteRoom removes a room and its index entry
func (r *RedisStore) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, roomKey(input.RoomID))
	pipe.SRem(ctx, roomsKey, input.RoomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

// ListRooms returns every indexed room whose snapshot has not expired
func (r *RedisStore) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	ids, err := r.client.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := r.client.Exists(ctx, roomKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check room %s: %w", id, err)
		}
		if n == 0 {
			// expired; drop the stale index entry
			if err := r.client.SRem(ctx, roomsKey, id).Err(); err != nil {
				log.Printf("⚠️ Failed to drop expired room %s from the index: %v", id, err)
			}
			continue
		}
		live = append(live, id)
	}
	sort.Strings(live)

	return &ListRoomsOutput{RoomIDs: live}, nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

// RedisStore 基于 Redis 的房间存储: 快照与结果为 JSON 字符串, 事件为按局划分的列表
type RedisStore struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		logger:      slog.Default(),
	}
}

// SaveSnapshot 保存快照
func (s *RedisStore) SaveSnapshot(ctx context.Context, roomID string, snap *core.TableSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, BuildSnapshotKey(roomID), data, RoomTTL).Err()
}

// LoadSnapshot 读取快照
func (s *RedisStore) LoadSnapshot(ctx context.Context, roomID string) (*core.TableSnapshot, error) {
	data, err := s.redisClient.Get(ctx, BuildSnapshotKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap core.TableSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// AppendEvent 追加事件到该局列表
func (s *RedisStore) AppendEvent(ctx context.Context, roomID string, e table.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := BuildEventsKey(roomID, e.Hand)
	pipe := s.redisClient.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, RoomTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// ListEvents 列出某局事件
func (s *RedisStore) ListEvents(ctx context.Context, roomID string, hand int) ([]table.Event, error) {
	items, err := s.redisClient.LRange(ctx, BuildEventsKey(roomID, hand), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]table.Event, 0, len(items))
	for _, item := range items {
		var e table.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Warn("Invalid event in list", "roomId", roomID, "hand", hand, "error", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveResult 保存比赛结果
func (s *RedisStore) SaveResult(ctx context.Context, roomID string, res table.MatchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, BuildResultKey(roomID), data, RoomTTL).Err()
}

// LoadResult 读取比赛结果
func (s *RedisStore) LoadResult(ctx context.Context, roomID string) (*table.MatchResult, error) {
	data, err := s.redisClient.Get(ctx, BuildResultKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var res table.MatchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

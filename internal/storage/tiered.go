package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

// Tiered 热数据写 Redis, 同时持久化到 PostgreSQL; 读取先查 Redis, 未命中再查 PostgreSQL
type Tiered struct {
	hot    Store
	cold   Store
	logger *slog.Logger
}

// NewTiered 组合两级存储, cold 写入失败只记录日志
func NewTiered(hot, cold Store) *Tiered {
	return &Tiered{hot: hot, cold: cold, logger: slog.Default()}
}

func (t *Tiered) persist(op, roomID string, err error) {
	if err != nil {
		t.logger.Warn("持久化失败", "op", op, "roomId", roomID, "error", err)
	}
}

// SaveSnapshot 实现 Store
func (t *Tiered) SaveSnapshot(ctx context.Context, roomID string, snap *core.TableSnapshot) error {
	if err := t.hot.SaveSnapshot(ctx, roomID, snap); err != nil {
		return err
	}
	t.persist("snapshot", roomID, t.cold.SaveSnapshot(ctx, roomID, snap))
	return nil
}

// LoadSnapshot 实现 Store
func (t *Tiered) LoadSnapshot(ctx context.Context, roomID string) (*core.TableSnapshot, error) {
	snap, err := t.hot.LoadSnapshot(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		return t.cold.LoadSnapshot(ctx, roomID)
	}
	return snap, err
}

// AppendEvent 实现 Store
func (t *Tiered) AppendEvent(ctx context.Context, roomID string, e table.Event) error {
	if err := t.hot.AppendEvent(ctx, roomID, e); err != nil {
		return err
	}
	t.persist("event", roomID, t.cold.AppendEvent(ctx, roomID, e))
	return nil
}

// ListEvents 实现 Store
func (t *Tiered) ListEvents(ctx context.Context, roomID string, hand int) ([]table.Event, error) {
	events, err := t.hot.ListEvents(ctx, roomID, hand)
	if err == nil && len(events) > 0 {
		return events, nil
	}
	return t.cold.ListEvents(ctx, roomID, hand)
}

// SaveResult 实现 Store
func (t *Tiered) SaveResult(ctx context.Context, roomID string, res table.MatchResult) error {
	if err := t.hot.SaveResult(ctx, roomID, res); err != nil {
		return err
	}
	t.persist("result", roomID, t.cold.SaveResult(ctx, roomID, res))
	return nil
}

// LoadResult 实现 Store
func (t *Tiered) LoadResult(ctx context.Context, roomID string) (*table.MatchResult, error) {
	res, err := t.hot.LoadResult(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		return t.cold.LoadResult(ctx, roomID)
	}
	return res, err
}

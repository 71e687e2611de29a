package storage

import (
	"context"
	"errors"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Store 房间快照、事件与比赛结果的存储
type Store interface {
	SaveSnapshot(ctx context.Context, roomID string, snap *core.TableSnapshot) error
	LoadSnapshot(ctx context.Context, roomID string) (*core.TableSnapshot, error)
	AppendEvent(ctx context.Context, roomID string, e table.Event) error
	ListEvents(ctx context.Context, roomID string, hand int) ([]table.Event, error)
	SaveResult(ctx context.Context, roomID string, res table.MatchResult) error
	LoadResult(ctx context.Context, roomID string) (*table.MatchResult, error)
}

// EventSink 把牌局事件写入存储; 每局结束时同时保存快照
func EventSink(store Store, roomID string, snapshot func() *core.TableSnapshot) table.EventSink {
	return table.SinkFunc(func(ctx context.Context, e table.Event) error {
		if err := store.AppendEvent(ctx, roomID, e); err != nil {
			return err
		}
		if snapshot == nil {
			return nil
		}
		switch e.Type {
		case table.EventHandEnd, table.EventStopped:
			if snap := snapshot(); snap != nil {
				return store.SaveSnapshot(ctx, roomID, snap)
			}
		}
		return nil
	})
}

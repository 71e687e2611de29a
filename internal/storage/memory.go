package storage

import (
	"context"
	"sync"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

type eventKey struct {
	room string
	hand int
}

// Memory 进程内存储, 用于单机模拟与测试
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string]*core.TableSnapshot
	events    map[eventKey][]table.Event
	results   map[string]table.MatchResult
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string]*core.TableSnapshot),
		events:    make(map[eventKey][]table.Event),
		results:   make(map[string]table.MatchResult),
	}
}

// SaveSnapshot 保存快照副本
func (m *Memory) SaveSnapshot(_ context.Context, roomID string, snap *core.TableSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[roomID] = snap.Clone()
	return nil
}

// LoadSnapshot 读取快照副本
func (m *Memory) LoadSnapshot(_ context.Context, roomID string) (*core.TableSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return snap.Clone(), nil
}

// AppendEvent 追加事件
func (m *Memory) AppendEvent(_ context.Context, roomID string, e table.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := eventKey{room: roomID, hand: e.Hand}
	m.events[k] = append(m.events[k], e)
	return nil
}

// ListEvents 按写入顺序列出某局事件
func (m *Memory) ListEvents(_ context.Context, roomID string, hand int) ([]table.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]table.Event{}, m.events[eventKey{room: roomID, hand: hand}]...), nil
}

// SaveResult 保存比赛结果
func (m *Memory) SaveResult(_ context.Context, roomID string, res table.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[roomID] = res
	return nil
}

// LoadResult 读取比赛结果
func (m *Memory) LoadResult(_ context.Context, roomID string) (*table.MatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.results[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return &res, nil
}

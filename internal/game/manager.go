package game

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// RoomManager 房间管理器
type RoomManager struct {
	rooms sync.Map // roomId -> *Room
	count atomic.Int64

	// 淘汰配置
	maxRooms     int
	evictTimeout time.Duration
	evictTicker  *time.Ticker

	stopChan chan struct{}
	stopOnce sync.Once

	logger *slog.Logger
}

// NewRoomManager 创建房间管理器, maxRooms <= 0 表示不限制
func NewRoomManager(maxRooms int, evictTimeout time.Duration) *RoomManager {
	if evictTimeout <= 0 {
		evictTimeout = 30 * time.Minute
	}
	m := &RoomManager{
		maxRooms:     maxRooms,
		evictTimeout: evictTimeout,
		evictTicker:  time.NewTicker(time.Minute),
		stopChan:     make(chan struct{}),
		logger:       slog.Default().With("component", "RoomManager"),
	}

	go m.evictLoop()

	return m
}

// Add 注册房间
func (m *RoomManager) Add(room *Room) error {
	if m.maxRooms > 0 && m.Count() >= m.maxRooms {
		return ErrTooManyRooms
	}
	if _, loaded := m.rooms.LoadOrStore(room.ID(), room); loaded {
		return ErrRoomExists
	}
	m.count.Add(1)
	m.logger.Info("Added room", "roomId", room.ID())
	return nil
}

// Get 获取房间
func (m *RoomManager) Get(roomID string) (*Room, error) {
	val, ok := m.rooms.Load(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return val.(*Room), nil
}

// Remove 移除房间
func (m *RoomManager) Remove(roomID string) {
	if _, loaded := m.rooms.LoadAndDelete(roomID); loaded {
		m.count.Add(-1)
		m.logger.Info("Removed room", "roomId", roomID)
	}
}

// Count 返回当前房间数
func (m *RoomManager) Count() int {
	return int(m.count.Load())
}

// List 按创建时间列出房间
func (m *RoomManager) List() []RoomInfo {
	var out []RoomInfo
	m.rooms.Range(func(_, value any) bool {
		out = append(out, value.(*Room).Info())
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// evictLoop 淘汰循环
func (m *RoomManager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.EvictInactive(time.Now())
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// EvictInactive 淘汰已结束且超时未访问的房间, 返回淘汰数
func (m *RoomManager) EvictInactive(now time.Time) int {
	var toEvict []string
	m.rooms.Range(func(key, value any) bool {
		room := value.(*Room)
		if room.Finished() && now.Sub(room.LastActiveTime()) > m.evictTimeout {
			toEvict = append(toEvict, key.(string))
		}
		return true
	})

	for _, roomID := range toEvict {
		m.Remove(roomID)
		m.logger.Info("Evicted inactive room", "roomId", roomID)
	}
	return len(toEvict)
}

// Shutdown 停止所有进行中的比赛, 等待其结束或 ctx 超时
func (m *RoomManager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down RoomManager")

	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.evictTicker.Stop()
	})

	var running []*Room
	m.rooms.Range(func(_, value any) bool {
		room := value.(*Room)
		if !room.Finished() {
			_ = room.Stop()
			running = append(running, room)
		}
		return true
	})

	for _, room := range running {
		select {
		case <-room.Done():
		case <-ctx.Done():
			m.logger.Warn("RoomManager shutdown timeout", "pending", len(running))
			return ctx.Err()
		}
	}

	m.logger.Info("RoomManager shutdown complete")
	return nil
}

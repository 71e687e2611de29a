package table

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// EventType 牌局事件类型
type EventType string

const (
	EventHandStart EventType = "hand_start"
	EventQue       EventType = "que"
	EventFlower    EventType = "flower"
	EventDraw      EventType = "draw"
	EventKong      EventType = "kong"
	EventRobKong   EventType = "rob_kong"
	EventDiscard   EventType = "discard"
	EventMeld      EventType = "meld"
	EventWin       EventType = "win"
	EventExhausted EventType = "exhausted"
	EventStopped   EventType = "stopped"
	EventHandEnd   EventType = "hand_end"
)

// Event 牌局事件
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Hand      int             `json:"hand"`
	Seat      int             `json:"seat"`
	Tile      *core.Tile      `json:"tile,omitempty"`
	Meld      *core.Meld      `json:"meld,omitempty"`
	From      int             `json:"from"`
	Fan       int             `json:"fan,omitempty"`
	Labels    []string        `json:"labels,omitempty"`
	Deltas    []int           `json:"deltas,omitempty"` // 各座位分数变化
	Transfers []core.Transfer `json:"transfers,omitempty"`
	Scores    []int           `json:"scores,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Source    string          `json:"source,omitempty"`
	At        time.Time       `json:"at"`
}

func newEvent(typ EventType, hand, seat int) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: typ,
		Hand: hand,
		Seat: seat,
		From: core.NoSeat,
		At:   time.Now(),
	}
}

func tilePtr(t core.Tile) *core.Tile {
	return &t
}

// EventSink 事件接收方; 牌局推进不依赖其成功与否
type EventSink interface {
	Emit(ctx context.Context, e Event) error
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, e Event) error

// Emit 实现 EventSink
func (f SinkFunc) Emit(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// MultiSink 依次投递给多个接收方, 返回第一个错误
type MultiSink []EventSink

// Emit 实现 EventSink
func (m MultiSink) Emit(ctx context.Context, e Event) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LogSink 以结构化日志输出事件
type LogSink struct {
	Logger *slog.Logger
}

// Emit 实现 EventSink
func (s LogSink) Emit(ctx context.Context, e Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"hand", e.Hand, "type", e.Type, "seat", e.Seat}
	if e.Tile != nil {
		attrs = append(attrs, "tile", e.Tile.String())
	}
	if e.Fan > 0 {
		attrs = append(attrs, "fan", e.Fan, "labels", e.Labels)
	}
	logger.DebugContext(ctx, "牌局事件", attrs...)
	return nil
}

// Recorder 在内存中记录事件
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit 实现 EventSink
func (r *Recorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events 已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType 指定类型的事件
func (r *Recorder) OfType(typ EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

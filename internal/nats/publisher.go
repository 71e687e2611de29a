package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

// SubjectRoomEventsPrefix 房间事件主题前缀
const SubjectRoomEventsPrefix = "mahjong.room."

// BuildRoomEventsSubject 房间事件主题: mahjong.room.{roomId}.events
func BuildRoomEventsSubject(roomID string) string {
	return fmt.Sprintf("%s%s.events", SubjectRoomEventsPrefix, roomID)
}

// Publisher 消息发布能力, *nats.Conn 满足该接口
type Publisher interface {
	Publish(subj string, data []byte) error
}

// EventPublisher 牌局事件发布器
type EventPublisher struct {
	nc     Publisher
	logger *slog.Logger
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(nc Publisher) *EventPublisher {
	return &EventPublisher{
		nc:     nc,
		logger: slog.Default(),
	}
}

// Publish 发布房间事件
func (p *EventPublisher) Publish(roomID string, e table.Event) error {
	subject := BuildRoomEventsSubject(roomID)
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("Failed to marshal event", "error", err)
		return err
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish event", "roomId", roomID, "error", err)
		return err
	}

	p.logger.Debug("Published room event", "roomId", roomID, "subject", subject, "type", e.Type)
	return nil
}

// Sink 把某个房间的事件发布到 NATS
func (p *EventPublisher) Sink(roomID string) table.EventSink {
	return table.SinkFunc(func(_ context.Context, e table.Event) error {
		return p.Publish(roomID, e)
	})
}

var _ Publisher = (*nats.Conn)(nil)

package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
)

// QueueGroupDecide 出牌决策服务的队列组
const QueueGroupDecide = "mahjong-decide"

// ResponderConfig Worker Pool 配置
type ResponderConfig struct {
	Subject     string // 订阅主题, 默认 decision.SubjectDecide
	WorkerCount int    // Worker 数量
	BufferSize  int    // 消息缓冲区大小
}

// DecisionResponder 以队列订阅提供出牌决策服务
type DecisionResponder struct {
	nc           *nats.Conn
	provider     decision.Provider
	logger       *slog.Logger
	subscription *nats.Subscription
	config       ResponderConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewDecisionResponder 创建出牌决策服务
func NewDecisionResponder(nc *nats.Conn, provider decision.Provider, config ResponderConfig) *DecisionResponder {
	// 设置默认值
	if config.Subject == "" {
		config.Subject = decision.SubjectDecide
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 8
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}

	return &DecisionResponder{
		nc:       nc,
		provider: provider,
		logger:   slog.Default(),
		config:   config,
	}
}

// Start 启动订阅
func (s *DecisionResponder) Start(ctx context.Context) error {
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	// 队列组实现多实例负载均衡
	sub, err := s.nc.QueueSubscribe(s.config.Subject, QueueGroupDecide, func(msg *nats.Msg) {
		select {
		case s.msgChan <- msg:
		default:
			s.logger.Warn("Decision buffer full, dropping request", "bufferSize", s.config.BufferSize)
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("Decision responder started",
		"subject", s.config.Subject,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

// worker 工作协程
func (s *DecisionResponder) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			if err := msg.Respond(s.Handle(ctx, msg.Data)); err != nil {
				s.logger.Warn("Failed to respond", "error", err)
			}
		}
	}
}

// Handle 处理一次决策请求, 返回应答报文
func (s *DecisionResponder) Handle(ctx context.Context, data []byte) []byte {
	var reply decision.Reply
	var req decision.Request
	if err := json.Unmarshal(data, &req); err != nil {
		reply.Error = err.Error()
	} else if d, err := s.provider.Decide(ctx, req); err != nil {
		reply.Error = err.Error()
	} else {
		reply.Decision = &d
	}

	out, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal reply", "error", err)
		out, _ = json.Marshal(decision.Reply{Error: err.Error()})
	}
	return out
}

// Stop 停止订阅
func (s *DecisionResponder) Stop() error {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe", "error", err)
		}
	}

	s.wg.Wait()

	s.logger.Info("Decision responder stopped")
	return nil
}


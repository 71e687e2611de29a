package decision

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectDecide 远程出牌决策的请求主题
const SubjectDecide = "mahjong.decide"

// Requester NATS 请求-应答能力, *nats.Conn 满足该接口
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// RemoteConfig 远程决策配置
type RemoteConfig struct {
	Subject string        // 请求主题
	Retries int           // 失败后重试次数
	Backoff time.Duration // 第 n 次重试前等待 n*Backoff
}

// Reply 远程应答
type Reply struct {
	Decision *Decision `json:"decision,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Remote 基于 NATS 请求-应答的出牌决策
type Remote struct {
	conn   Requester
	cfg    RemoteConfig
	logger *slog.Logger
}

// NewRemote 创建远程决策提供者
func NewRemote(conn Requester, cfg RemoteConfig) *Remote {
	if cfg.Subject == "" {
		cfg.Subject = SubjectDecide
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	return &Remote{conn: conn, cfg: cfg, logger: slog.Default()}
}

// Decide 实现 Provider
func (r *Remote) Decide(ctx context.Context, req Request) (Decision, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Decision{}, ErrRemoteDecision.WithCause(err)
	}

	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Decision{}, ErrRemoteDecision.WithCause(errors.Join(ctx.Err(), lastErr))
			case <-time.After(time.Duration(attempt) * r.cfg.Backoff):
			}
		}

		d, err := r.request(ctx, payload)
		if err == nil {
			d.Source = SourceRemote
			return d, nil
		}
		lastErr = err
		r.logger.Warn("远程决策失败", "seat", req.Seat, "attempt", attempt+1, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return Decision{}, ErrRemoteDecision.WithCause(lastErr).WithContext("attempts", r.cfg.Retries+1)
}

func (r *Remote) request(ctx context.Context, payload []byte) (Decision, error) {
	msg, err := r.conn.RequestWithContext(ctx, r.cfg.Subject, payload)
	if err != nil {
		return Decision{}, err
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return Decision{}, err
	}
	if reply.Error != "" {
		return Decision{}, errors.New(reply.Error)
	}
	if reply.Decision == nil {
		return Decision{}, errors.New("empty decision reply")
	}
	return *reply.Decision, nil
}

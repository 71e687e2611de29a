package decision

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTimeout 单次决策的默认超时
const DefaultTimeout = 20 * time.Second

// Guarded 包装任意 Provider: 超时、校验与本地兜底. 手牌非空时永不返回错误
type Guarded struct {
	inner    Provider
	fallback *Heuristic
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGuarded 创建带兜底的决策提供者; timeout <= 0 时使用 DefaultTimeout
func NewGuarded(inner Provider, fallback *Heuristic, timeout time.Duration) *Guarded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guarded{
		inner:    inner,
		fallback: fallback,
		timeout:  timeout,
		logger:   slog.Default(),
	}
}

type outcome struct {
	d   Decision
	err error
}

// Decide 实现 Provider
func (g *Guarded) Decide(ctx context.Context, req Request) (Decision, error) {
	if len(req.Hand) == 0 {
		return Decision{}, ErrEmptyHand.WithContext("seat", req.Seat)
	}
	if g.inner == nil {
		return g.fallback.Decide(ctx, req)
	}

	d, err := g.call(ctx, req)
	if err == nil {
		err = Legal(req, d.Tile)
	}
	if err == nil {
		// Remote 自行标注来源, 其他提供者默认为本地
		if d.Source == "" {
			d.Source = SourceLocal
		}
		return d, nil
	}

	g.logger.Warn("决策失败, 使用本地兜底", "seat", req.Seat, "error", err)
	fb, ferr := g.fallback.Decide(ctx, req)
	if ferr != nil {
		return Decision{}, ferr
	}
	fb.Source = SourceFallback
	fb.Reason = "fallback: " + err.Error()
	return fb, nil
}

// call 在独立协程中调用 inner, 不响应 ctx 的提供者也会在超时后被放弃
func (g *Guarded) call(ctx context.Context, req Request) (Decision, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		d, err := g.inner.Decide(cctx, req)
		ch <- outcome{d: d, err: err}
	}()

	select {
	case o := <-ch:
		return o.d, o.err
	case <-cctx.Done():
		return Decision{}, ErrDecisionTimeout.WithCause(cctx.Err()).WithContext("timeout", g.timeout.String())
	}
}

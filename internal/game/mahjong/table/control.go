package table

import (
	"context"
	"sync"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// Control 暂停 / 继续 / 停止, 只在回合边界生效
type Control struct {
	mu      sync.Mutex
	paused  bool
	stopped bool
	wake    chan struct{}
}

// NewControl 创建控制器
func NewControl() *Control {
	return &Control{}
}

// Pause 暂停
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused || c.stopped {
		return
	}
	c.paused = true
	c.wake = make(chan struct{})
}

// Resume 继续
func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
}

// Stop 停止, 暂停中的牌局也会退出
func (c *Control) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.release()
}

func (c *Control) release() {
	if c.paused {
		c.paused = false
		close(c.wake)
	}
}

// Paused 是否暂停中
func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Stopped 是否已停止
func (c *Control) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Checkpoint 回合边界: 暂停时阻塞, 停止时返回 ErrHandStopped
func (c *Control) Checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return core.ErrHandStopped
		}
		if !c.paused {
			c.mu.Unlock()
			return nil
		}
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		}
	}
}

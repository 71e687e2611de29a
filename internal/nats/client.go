package nats

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
)

// Client 比赛服务的 NATS 连接: 房间事件发布与远程决策共用
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient 按配置连接 NATS, logger 为 nil 时使用默认 logger
func NewClient(cfg config.NATSConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{logger: logger.With("component", "nats")}

	conn, err := nats.Connect(cfg.URL, c.options(cfg)...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.logger.Info("NATS 已连接", "url", conn.ConnectedUrl())
	return c, nil
}

func (c *Client) options(cfg config.NATSConfig) []nats.Option {
	return []nats.Option{
		nats.Name("mahjong-engine"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(10 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			c.logger.Warn("NATS 连接断开, 房间事件暂停投递", "url", cfg.URL, "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS 已重连", "url", nc.ConnectedUrl(), "reconnects", nc.Reconnects)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS 连接已关闭", "url", cfg.URL)
		}),
		// 决策订阅的慢消费者等异步错误
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				c.logger.Error("NATS 订阅错误", "subject", sub.Subject, "queue", sub.Queue, "error", err)
				return
			}
			c.logger.Error("NATS 异步错误", "error", err)
		}),
	}
}

// Conn 返回底层连接, 供 EventPublisher、远程决策与 DecisionResponder 使用
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// IsConnected 连接是否可用, 健康检查使用
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close 排空已发布的房间事件后关闭连接
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS 排空失败, 直接关闭", "error", err)
		c.conn.Close()
	}
}

package health

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/woshisimox/mahjong-ai-match/pkg/response"
)

// 依赖状态
const (
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
	StateDisabled     = "disabled" // 未配置该依赖
)

// Status 健康状态
type Status struct {
	NATS     string `json:"nats"`
	Redis    string `json:"redis"`
	Database string `json:"database"`
	Rooms    int    `json:"rooms"`
}

// Healthy 没有已配置但断开的依赖
func (s *Status) Healthy() bool {
	return s.NATS != StateDisconnected &&
		s.Redis != StateDisconnected &&
		s.Database != StateDisconnected
}

// Connectivity 消息连接状态, 由 nats.Client 实现
type Connectivity interface {
	IsConnected() bool
}

// RoomCounter 当前房间数
type RoomCounter interface {
	Count() int
}

// Checker 健康检查器, 各依赖均可为 nil
type Checker struct {
	nc          Connectivity
	redisClient *redis.Client
	db          *pgxpool.Pool
	rooms       RoomCounter
	timeout     time.Duration
}

// NewChecker 创建健康检查器
func NewChecker(nc Connectivity, redisClient *redis.Client, db *pgxpool.Pool, rooms RoomCounter) *Checker {
	return &Checker{
		nc:          nc,
		redisClient: redisClient,
		db:          db,
		rooms:       rooms,
		timeout:     2 * time.Second,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{NATS: StateDisabled, Redis: StateDisabled, Database: StateDisabled}

	// 检查 NATS
	if h.nc != nil {
		status.NATS = state(h.nc.IsConnected())
	}

	// 检查 Redis
	if h.redisClient != nil {
		redisCtx, redisCancel := context.WithTimeout(ctx, h.timeout)
		defer redisCancel()
		status.Redis = state(h.redisClient.Ping(redisCtx).Err() == nil)
	}

	// 检查 PostgreSQL
	if h.db != nil {
		dbCtx, dbCancel := context.WithTimeout(ctx, h.timeout)
		defer dbCancel()
		status.Database = state(h.db.Ping(dbCtx) == nil)
	}

	if h.rooms != nil {
		status.Rooms = h.rooms.Count()
	}
	return status
}

func state(ok bool) string {
	if ok {
		return StateConnected
	}
	return StateDisconnected
}

// IsHealthy 检查是否健康
func (h *Checker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx).Healthy()
}

// Health 健康检查端点
// GET /health
func (h *Checker) Health(c *gin.Context) {
	status := h.Check(c.Request.Context())
	if !status.Healthy() {
		response.ServiceUnavailable(c, status)
		return
	}
	response.Success(c, status)
}

// Ready 就绪检查端点
// GET /ready
func (h *Checker) Ready(c *gin.Context) {
	if h.IsHealthy(c.Request.Context()) {
		c.String(200, "OK")
		return
	}
	c.String(503, "Not Ready")
}

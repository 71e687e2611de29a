package mahjong

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
	"github.com/woshisimox/mahjong-ai-match/internal/game"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
	"github.com/woshisimox/mahjong-ai-match/internal/storage"
	"github.com/woshisimox/mahjong-ai-match/internal/task"
)

// 座位决策来源
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)

// RoomPublisher 按房间广播牌局事件
type RoomPublisher interface {
	Sink(roomID string) table.EventSink
}

// Deps 服务依赖, 除 Pool 和 Rooms 外均可为 nil
type Deps struct {
	Store     storage.Store      // nil 时使用内存存储
	Publisher RoomPublisher      // 事件广播
	Remote    decision.Requester // 远程出牌决策
	Pool      *task.WorkerPool
	Rooms     *game.RoomManager
	Logger    *slog.Logger
}

// Service 麻将比赛服务: 创建房间, 在工作池中运行比赛, 查询快照与事件
type Service struct {
	cfg       config.EngineConfig
	store     storage.Store
	publisher RoomPublisher
	remote    decision.Requester
	pool      *task.WorkerPool
	rooms     *game.RoomManager
	logger    *slog.Logger
}

// NewService 创建服务
func NewService(cfg config.EngineConfig, deps Deps) *Service {
	s := &Service{
		cfg:       cfg,
		store:     deps.Store,
		publisher: deps.Publisher,
		remote:    deps.Remote,
		pool:      deps.Pool,
		rooms:     deps.Rooms,
		logger:    deps.Logger,
	}
	if s.store == nil {
		s.store = storage.NewMemory()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "MahjongService")
	return s
}

// StartRequest 开始比赛的参数, 零值字段沿用配置
type StartRequest struct {
	Profile   string   `json:"profile"`
	Hands     int      `json:"hands"`
	Seed      uint64   `json:"seed"`
	FanCap    int      `json:"fanCap"`
	BaseScore int      `json:"baseScore"`
	Flowers   bool     `json:"flowers"`
	Ghosts    []string `json:"ghosts"`
	Names     []string `json:"names"`
	Providers []string `json:"providers"`
}

func (s *Service) engineConfig(req StartRequest) config.EngineConfig {
	cfg := s.cfg
	if req.Profile != "" {
		cfg.Profile = req.Profile
	}
	if req.Hands > 0 {
		cfg.Hands = req.Hands
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.FanCap > 0 {
		cfg.FanCap = req.FanCap
	}
	if req.BaseScore > 0 {
		cfg.BaseScore = req.BaseScore
	}
	if req.Flowers {
		cfg.Flowers = true
	}
	if len(req.Ghosts) > 0 {
		cfg.Ghosts = req.Ghosts
	}
	if len(req.Providers) > 0 {
		cfg.Providers = req.Providers
	}
	return cfg
}

// providers 按座位生成决策来源, 未配置的座位使用本地启发式
func (s *Service) providers(cfg config.EngineConfig, seats int) ([]decision.Provider, error) {
	if len(cfg.Providers) > seats {
		return nil, ErrSeatMismatch.WithContext("providers", len(cfg.Providers)).WithContext("seats", seats)
	}
	out := make([]decision.Provider, seats)
	var remote *decision.Remote
	for i, kind := range cfg.Providers {
		switch kind {
		case "", ProviderLocal:
		case ProviderRemote:
			if s.remote == nil {
				return nil, ErrRemoteUnavailable.WithContext("seat", i)
			}
			if remote == nil {
				remote = decision.NewRemote(s.remote, decision.RemoteConfig{
					Retries: cfg.Retries,
					Backoff: cfg.Backoff,
				})
			}
			out[i] = remote
		default:
			return nil, ErrUnknownProvider.WithContext("seat", i).WithContext("provider", kind)
		}
	}
	return out, nil
}

// Start 创建房间并提交比赛到工作池
func (s *Service) Start(ctx context.Context, req StartRequest) (game.RoomInfo, error) {
	cfg := s.engineConfig(req)
	profile, err := cfg.RuleProfile()
	if err != nil {
		return game.RoomInfo{}, err
	}
	if len(req.Names) > profile.Seats {
		return game.RoomInfo{}, ErrSeatMismatch.WithContext("names", len(req.Names)).WithContext("seats", profile.Seats)
	}
	providers, err := s.providers(cfg, profile.Seats)
	if err != nil {
		return game.RoomInfo{}, err
	}

	roomID := uuid.NewString()
	logger := s.logger.With("roomId", roomID)

	var match *table.Match
	sinks := table.MultiSink{
		table.LogSink{Logger: logger},
		storage.EventSink(s.store, roomID, func() *core.TableSnapshot { return match.Snapshot() }),
	}
	if s.publisher != nil {
		sinks = append(sinks, s.publisher.Sink(roomID))
	}

	match, err = table.NewMatch(table.MatchConfig{
		Profile: profile,
		Hands:   cfg.Hands,
		Names:   req.Names,
		Seed:    cfg.Seed,
		Options: table.Options{
			Providers: providers,
			Sink:      sinks,
			Timeout:   cfg.ProviderTimeout,
			Logger:    logger,
		},
	})
	if err != nil {
		return game.RoomInfo{}, err
	}

	room := game.NewRoom(roomID, profile.Name, match)
	if err := s.rooms.Add(room); err != nil {
		return game.RoomInfo{}, err
	}

	t := task.NewTask("", roomID, func(ctx context.Context, target string, _ map[string]any) error {
		return s.run(ctx, room)
	}).WithMetadata("profile", string(profile.Name)).WithMetadata("hands", cfg.Hands)
	if err := s.pool.Submit(ctx, t); err != nil {
		s.rooms.Remove(roomID)
		return game.RoomInfo{}, err
	}

	logger.Info("比赛已创建", "profile", profile.Name, "hands", cfg.Hands, "providers", cfg.Providers)
	return room.Info(), nil
}

// run 在工作池中打完整场比赛并保存结果
func (s *Service) run(ctx context.Context, room *game.Room) error {
	res, err := room.Match().Play(ctx)
	room.Finish(res, err)

	// 工作池关闭时 ctx 已取消, 结果仍需落库
	saveCtx := context.WithoutCancel(ctx)
	if saveErr := s.store.SaveResult(saveCtx, room.ID(), res); saveErr != nil {
		s.logger.Error("保存比赛结果失败", "roomId", room.ID(), "error", saveErr)
	}
	if err != nil {
		return err
	}
	s.logger.Info("比赛结束", "roomId", room.ID(), "scores", res.Scores, "stopped", res.Stopped)
	return nil
}

// Rooms 列出内存中的房间
func (s *Service) Rooms() []game.RoomInfo {
	return s.rooms.List()
}

// Room 房间概要
func (s *Service) Room(roomID string) (game.RoomInfo, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return game.RoomInfo{}, err
	}
	return room.Info(), nil
}

// Pause 暂停比赛
func (s *Service) Pause(roomID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.Pause()
}

// Resume 继续比赛
func (s *Service) Resume(roomID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.Resume()
}

// Stop 停止比赛
func (s *Service) Stop(roomID string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	return room.Stop()
}

// Snapshot 当前局快照; 房间已被淘汰时从存储读取最后一局的快照
func (s *Service) Snapshot(ctx context.Context, roomID string) (*core.TableSnapshot, error) {
	if room, err := s.rooms.Get(roomID); err == nil {
		// 第一局尚未发牌时为 nil
		return room.Snapshot(), nil
	}
	snap, err := s.store.LoadSnapshot(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, game.ErrRoomNotFound
	}
	return snap, err
}

// Events 某一局的事件
func (s *Service) Events(ctx context.Context, roomID string, hand int) ([]table.Event, error) {
	return s.store.ListEvents(ctx, roomID, hand)
}

// Result 比赛结果, 进行中的比赛返回 nil
func (s *Service) Result(ctx context.Context, roomID string) (*table.MatchResult, error) {
	if room, err := s.rooms.Get(roomID); err == nil {
		return room.Result()
	}
	res, err := s.store.LoadResult(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, game.ErrRoomNotFound
	}
	return res, err
}

// Wait 等待比赛结束
func (s *Service) Wait(ctx context.Context, roomID string) (*table.MatchResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}
	select {
	case <-room.Done():
		return room.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

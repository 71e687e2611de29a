package table

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// MatchConfig 多局比赛配置
type MatchConfig struct {
	Profile core.Profile
	Hands   int      // 局数, <= 0 时为 1
	Names   []string // 座位名
	Seed    uint64   // 0 表示随机
	Dealer  int      // 首局庄家
	Options Options
}

// MatchResult 比赛结果
type MatchResult struct {
	Hands   []HandResult `json:"hands"`
	Scores  []int        `json:"scores"`
	Stopped bool         `json:"stopped"`
}

// Match 多局比赛: 分数跨局累计, 庄家轮换给上一局第一个和牌者, 流局连庄
type Match struct {
	cfg     MatchConfig
	rng     *rand.Rand
	control *Control
	current atomic.Pointer[Driver]
	scores  []int
	dealer  int
}

// NewMatch 创建比赛
func NewMatch(cfg MatchConfig) (*Match, error) {
	if err := cfg.Profile.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dealer < 0 || cfg.Dealer >= cfg.Profile.Seats {
		return nil, core.ErrInvalidSeat.WithContext("dealer", cfg.Dealer)
	}
	if cfg.Hands <= 0 {
		cfg.Hands = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	control := cfg.Options.Control
	if control == nil {
		control = NewControl()
		cfg.Options.Control = control
	}
	return &Match{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		control: control,
		scores:  make([]int, cfg.Profile.Seats),
		dealer:  cfg.Dealer,
	}, nil
}

// Control 比赛控制器, 作用于当前及之后的每一局
func (m *Match) Control() *Control {
	return m.control
}

// Snapshot 当前局的快照, 尚未开局时返回 nil
func (m *Match) Snapshot() *core.TableSnapshot {
	if d := m.current.Load(); d != nil {
		return d.Snapshot()
	}
	return nil
}

// Play 依次打完所有局
func (m *Match) Play(ctx context.Context) (MatchResult, error) {
	var result MatchResult
	for hand := 1; hand <= m.cfg.Hands; hand++ {
		snap, err := NewHand(m.cfg.Profile, HandSetup{
			Dealer:     m.dealer,
			HandNumber: hand,
			Scores:     m.scores,
			Names:      m.cfg.Names,
			Rand:       m.rng,
		})
		if err != nil {
			return result, err
		}
		d, err := NewDriver(snap, m.cfg.Options)
		if err != nil {
			return result, err
		}
		m.current.Store(d)

		res, err := d.PlayHand(ctx)
		result.Hands = append(result.Hands, res)
		if res.Scores != nil {
			m.scores = res.Scores
		}
		if err != nil {
			result.Scores = append([]int(nil), m.scores...)
			if errors.Is(err, core.ErrHandStopped) {
				result.Stopped = true
				return result, nil
			}
			return result, err
		}
		if len(res.Winners) > 0 {
			m.dealer = res.Winners[0]
		}
	}
	result.Scores = append([]int(nil), m.scores...)
	return result, nil
}

package decision

import (
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// MeldPolicy 决定是否执行可选的杠、碰、吃
type MeldPolicy interface {
	// AcceptKong 暗杠或补杠 t; hand 为摸牌后的暗手
	AcceptKong(hand []core.Tile, exposedMelds int, kind core.MeldKind, t core.Tile) bool
	// AcceptClaim 以 claimed 吃碰杠他家打出的 discard; hand 为未加入 discard 的暗手
	AcceptClaim(hand []core.Tile, exposedMelds int, discard core.Tile, claimed []core.Tile) bool
}

// ShantenPolicy 副露后向听数不变差才执行
type ShantenPolicy struct {
	analyzer *analyzer.Analyzer
}

// NewShantenPolicy 创建按向听数判断的副露策略
func NewShantenPolicy(a *analyzer.Analyzer) *ShantenPolicy {
	return &ShantenPolicy{analyzer: a}
}

// AcceptKong 实现 MeldPolicy
func (p *ShantenPolicy) AcceptKong(hand []core.Tile, exposedMelds int, kind core.MeldKind, t core.Tile) bool {
	before := p.analyzer.Shanten(hand, exposedMelds)
	var (
		after []core.Tile
		ok    bool
	)
	switch kind {
	case core.MeldAnGang:
		after, ok = core.RemoveTiles(hand, core.Repeat(t, 4))
		exposedMelds++
	case core.MeldBuGang:
		// 补杠不增加副露数
		after, ok = core.RemoveTile(hand, t)
	default:
		return false
	}
	if !ok {
		return false
	}
	return p.analyzer.Shanten(after, exposedMelds) <= before
}

// AcceptClaim 实现 MeldPolicy
func (p *ShantenPolicy) AcceptClaim(hand []core.Tile, exposedMelds int, discard core.Tile, claimed []core.Tile) bool {
	before := p.analyzer.Shanten(hand, exposedMelds)
	need, ok := core.RemoveTile(claimed, discard)
	if !ok {
		return false
	}
	after, ok := core.RemoveTiles(hand, need)
	if !ok {
		return false
	}
	return p.analyzer.Shanten(after, exposedMelds+1) <= before
}

// AlwaysPolicy 总是执行, 用于测试与回放
type AlwaysPolicy struct{}

// AcceptKong 实现 MeldPolicy
func (AlwaysPolicy) AcceptKong([]core.Tile, int, core.MeldKind, core.Tile) bool { return true }

// AcceptClaim 实现 MeldPolicy
func (AlwaysPolicy) AcceptClaim([]core.Tile, int, core.Tile, []core.Tile) bool { return true }

// Package analyzer 手牌分析: 向听数、进张、和牌判定与弃牌启发式
package analyzer

import (
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// Options 分析器选项, 由规则配置派生
type Options struct {
	Honors          bool        // 牌墙含字牌
	ThirteenOrphans bool        // 允许十三幺
	QuadPairs       bool        // 七对中四张算两对
	Ghosts          []core.Tile // 癞子牌
}

// ForProfile 由规则配置派生分析器选项
func ForProfile(p core.Profile) Options {
	return Options{
		Honors:          p.Honors,
		ThirteenOrphans: p.ThirteenOrphans && p.Honors,
		QuadPairs:       p.QuadPairs,
		Ghosts:          core.CloneTiles(p.Ghosts),
	}
}

// Analyzer 手牌分析器, 无状态可并发使用
type Analyzer struct {
	opts  Options
	ghost [core.TileKinds]bool
}

// New 创建分析器
func New(opts Options) *Analyzer {
	a := &Analyzer{opts: opts}
	for _, g := range opts.Ghosts {
		if i := g.Index(); i >= 0 {
			a.ghost[i] = true
		}
	}
	return a
}

// IsGhost 是否癞子牌
func (a *Analyzer) IsGhost(t core.Tile) bool {
	i := t.Index()
	return i >= 0 && a.ghost[i]
}

// hand34 计数向量
type hand34 [core.TileKinds]int

// split 将手牌拆为非癞子计数与癞子张数
func (a *Analyzer) split(hand []core.Tile) (hand34, int) {
	var h hand34
	ghosts := 0
	for _, t := range hand {
		i := t.Index()
		if i < 0 {
			continue
		}
		if a.ghost[i] {
			ghosts++
			continue
		}
		h[i]++
	}
	return h, ghosts
}

// group 一门牌的计数, 字牌不成顺
type group struct {
	counts [9]uint8
	runs   bool
}

// groups 拆成三门数牌与字牌
func (h *hand34) groups() [4]group {
	var gs [4]group
	for s := 0; s < 3; s++ {
		gs[s].runs = true
		for v := 0; v < 9; v++ {
			gs[s].counts[v] = uint8(h[s*9+v])
		}
	}
	for v := 0; v < 7; v++ {
		gs[3].counts[v] = uint8(h[27+v])
	}
	return gs
}

func (h *hand34) total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

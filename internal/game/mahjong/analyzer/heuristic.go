package analyzer

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// KeepValue 保留价值, 越低越应打出
func (a *Analyzer) KeepValue(hand []core.Tile, t core.Tile, visible Visible) float64 {
	if a.IsGhost(t) {
		return 100
	}
	score := 0.0
	if t.Suit.IsNumbered() {
		for _, d := range []int8{-2, -1, 1, 2} {
			v := t.Value + d
			if v < 1 || v > 9 {
				continue
			}
			n := core.NewTile(t.Suit, v)
			if core.ContainsTile(hand, n) {
				if d == -1 || d == 1 {
					score += 1.0
				} else {
					score += 0.5
				}
			}
			// 相邻牌几乎绝张, 连搭潜力低
			if (d == -1 || d == 1) && visible.Remaining(n) <= 1 {
				score -= 0.4
			}
		}
	} else {
		score -= 0.3
	}

	score -= float64(max(0, 3-visible.Remaining(t))) * 0.6

	switch n := core.CountTile(hand, t); {
	case n >= 3:
		score += 1.2
	case n == 2:
		score += 0.6
	}
	return score
}

// DiscardCandidate 弃牌候选评估
type DiscardCandidate struct {
	Tile      core.Tile `json:"tile"`
	Shanten   int       `json:"shanten"`
	Ukeire    int       `json:"ukeire"`
	KeepValue float64   `json:"keepValue"`
}

// better 向听数低者优先, 其次进张多, 其次保留价值低
func (c DiscardCandidate) better(o DiscardCandidate) bool {
	if c.Shanten != o.Shanten {
		return c.Shanten < o.Shanten
	}
	if c.Ukeire != o.Ukeire {
		return c.Ukeire > o.Ukeire
	}
	return c.KeepValue < o.KeepValue
}

// EvaluateDiscards 评估每种可打出的牌; que 非 SuitNone 且手中仍有缺门牌时只考虑缺门牌
func (a *Analyzer) EvaluateDiscards(hand []core.Tile, exposedMelds int, visible Visible, que core.Suit) []DiscardCandidate {
	pool := make([]core.Tile, 0, len(hand))
	for _, t := range hand {
		if que != core.SuitNone && t.Suit == que {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = core.CloneTiles(hand)
	}
	core.SortTiles(pool)

	var out []DiscardCandidate
	for i, t := range pool {
		if i > 0 && pool[i-1].Equal(t) {
			continue
		}
		rest, _ := core.RemoveTile(hand, t)
		out = append(out, DiscardCandidate{
			Tile:      t,
			Shanten:   a.Shanten(rest, exposedMelds),
			Ukeire:    a.Ukeire(rest, exposedMelds, visible).Total,
			KeepValue: a.KeepValue(hand, t, visible),
		})
	}
	return out
}

// BestDiscard 确定性的本地弃牌选择
func (a *Analyzer) BestDiscard(hand []core.Tile, exposedMelds int, visible Visible, que core.Suit) (core.Tile, bool) {
	best, ok := Best(a.EvaluateDiscards(hand, exposedMelds, visible, que))
	return best.Tile, ok
}

// Best 从 EvaluateDiscards 的结果中选出最优候选
func Best(cands []DiscardCandidate) (DiscardCandidate, bool) {
	if len(cands) == 0 {
		return DiscardCandidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.better(best) {
			best = c
		}
	}
	return best, true
}

package analyzer

import (
	"math"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// WinShapes 手牌满足的和牌型
type WinShapes struct {
	Standard        bool `json:"standard"`        // 四面子一雀头
	SevenPairs      bool `json:"sevenPairs"`      // 七对
	ThirteenOrphans bool `json:"thirteenOrphans"` // 十三幺
	AllTriplets     bool `json:"allTriplets"`     // 四刻子一雀头
}

// Won 是否和牌
func (w WinShapes) Won() bool {
	return w.Standard || w.SevenPairs || w.ThirteenOrphans
}

type ghostKey struct {
	g    group
	pair bool
}

var ghostMemo = newMemo[ghostKey, int](1 << 14)

// minGhosts 一门牌全部组成面子 (pair 为真时另含一雀头) 最少需要的癞子数
func minGhosts(g group, pair bool) int {
	k := ghostKey{g: g, pair: pair}
	if v, ok := ghostMemo.get(k); ok {
		return v
	}
	v := searchGhosts(g, pair)
	ghostMemo.put(k, v)
	return v
}

func searchGhosts(g group, pair bool) int {
	i := 0
	for i < 9 && g.counts[i] == 0 {
		i++
	}
	if i == 9 {
		if pair {
			return 2
		}
		return 0
	}

	best := math.MaxInt32
	try := func(next group, nextPair bool, cost int) {
		if v := cost + minGhosts(next, nextPair); v < best {
			best = v
		}
	}

	c := int(g.counts[i])
	// 刻子: 用 k 张自然牌, 其余以癞子补齐
	for k := 1; k <= min(c, 3); k++ {
		next := g
		next.counts[i] -= uint8(k)
		try(next, pair, 3-k)
	}
	if pair {
		for k := 1; k <= min(c, 2); k++ {
			next := g
			next.counts[i] -= uint8(k)
			try(next, false, 2-k)
		}
	}
	if g.runs {
		// 顺子必须包含 i; i 之前的位置已无自然牌, 只能用癞子
		for s := max(0, i-2); s <= min(i, 6); s++ {
			var others []int
			for p := s; p <= s+2; p++ {
				if p != i {
					others = append(others, p)
				}
			}
			for mask := 0; mask < 1<<len(others); mask++ {
				next := g
				next.counts[i]--
				cost := 0
				ok := true
				for bit, p := range others {
					useNatural := mask&(1<<bit) != 0
					if !useNatural {
						cost++
						continue
					}
					if p < i || next.counts[p] == 0 {
						ok = false
						break
					}
					next.counts[p]--
				}
				if ok {
					try(next, pair, cost)
				}
			}
		}
	}
	return best
}

// standardNeed 四门组成面子加一雀头所需最少癞子数
func standardNeed(h hand34, runs bool) int {
	gs := h.groups()
	if !runs {
		for i := range gs {
			gs[i].runs = false
		}
	}
	var plain [4]int
	total := 0
	for i, g := range gs {
		plain[i] = minGhosts(g, false)
		total += plain[i]
	}
	best := total + 2 // 雀头全部由癞子组成
	for i, g := range gs {
		if v := total - plain[i] + minGhosts(g, true); v < best {
			best = v
		}
	}
	return best
}

func (a *Analyzer) sevenPairs(h hand34, ghosts int) bool {
	odd := 0
	for _, c := range h {
		if !a.opts.QuadPairs && c > 2 {
			return false
		}
		if c%2 == 1 {
			odd++
		}
	}
	return odd <= ghosts && (ghosts-odd)%2 == 0
}

func thirteenOrphans(h hand34, ghosts int) bool {
	natural, kinds, dup := 0, 0, 0
	for _, i := range orphanIndexes {
		switch {
		case h[i] == 0:
		case h[i] == 1:
			kinds++
		case h[i] == 2:
			kinds++
			dup++
		default:
			return false
		}
		natural += h[i]
	}
	if natural != h.total() || dup > 1 {
		return false
	}
	need := 13 - kinds
	if dup == 0 {
		need++
	}
	return need == ghosts
}

// WinDetect 判断手牌满足的和牌型, 癞子可补任意缺张
func (a *Analyzer) WinDetect(hand []core.Tile) WinShapes {
	var shapes WinShapes
	if len(hand)%3 != 2 {
		return shapes
	}
	h, ghosts := a.split(hand)
	if h.total()+ghosts != len(hand) {
		return shapes // 含花牌
	}

	need := standardNeed(h, true)
	shapes.Standard = need <= ghosts && (ghosts-need)%3 == 0
	if shapes.Standard {
		need = standardNeed(h, false)
		shapes.AllTriplets = need <= ghosts && (ghosts-need)%3 == 0
	}
	if len(hand) == 14 {
		shapes.SevenPairs = a.sevenPairs(h, ghosts)
		if a.opts.ThirteenOrphans {
			shapes.ThirteenOrphans = thirteenOrphans(h, ghosts)
		}
	}
	return shapes
}

// IsWin 是否和牌
func (a *Analyzer) IsWin(hand []core.Tile) bool {
	return a.WinDetect(hand).Won()
}

// WinningTiles 听牌列表: 加入后可和牌的牌
func (a *Analyzer) WinningTiles(hand []core.Tile) []core.Tile {
	var waits []core.Tile
	for _, t := range a.vocabulary() {
		if a.IsWin(core.AppendTile(hand, t)) {
			waits = append(waits, t)
		}
	}
	return waits
}

// vocabulary 可摸到的牌种
func (a *Analyzer) vocabulary() []core.Tile {
	n := 27
	if a.opts.Honors {
		n = core.TileKinds
	}
	tiles := make([]core.Tile, n)
	for i := range tiles {
		tiles[i] = core.TileFromIndex(i)
	}
	return tiles
}

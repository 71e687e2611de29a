package analyzer

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

const maxMelds = 4

// meldCurve 一门牌组成 m 个面子时最多的搭子数, -1 表示不可达
type meldCurve [maxMelds + 1]int8

func emptyCurve() meldCurve {
	return meldCurve{0, -1, -1, -1, -1}
}

var curveMemo = newMemo[group, meldCurve](1 << 14)

// evalGroup 记忆化搜索一门牌的 (面子, 搭子) 组合
func evalGroup(g group) meldCurve {
	if v, ok := curveMemo.get(g); ok {
		return v
	}
	v := searchGroup(g)
	curveMemo.put(g, v)
	return v
}

func searchGroup(g group) meldCurve {
	i := 0
	for i < 9 && g.counts[i] == 0 {
		i++
	}
	if i == 9 {
		return emptyCurve()
	}

	res := meldCurve{-1, -1, -1, -1, -1}
	take := func(dm, dt int8, idx ...int) {
		next := g
		for _, j := range idx {
			next.counts[j]--
		}
		sub := evalGroup(next)
		for m := 0; m <= maxMelds; m++ {
			if sub[m] < 0 {
				continue
			}
			to := min(m+int(dm), maxMelds)
			if t := sub[m] + dt; t > res[to] {
				res[to] = t
			}
		}
	}

	c := g.counts
	take(0, 0, i) // 孤张
	if c[i] >= 3 {
		take(1, 0, i, i, i)
	}
	if c[i] >= 2 {
		take(0, 1, i, i)
	}
	if g.runs {
		if i+2 < 9 && c[i+1] > 0 && c[i+2] > 0 {
			take(1, 0, i, i+1, i+2)
		}
		if i+1 < 9 && c[i+1] > 0 {
			take(0, 1, i, i+1)
		}
		if i+2 < 9 && c[i+2] > 0 {
			take(0, 1, i, i+2)
		}
	}
	return res
}

// combine 合并四门的曲线
func combine(gs [4]group) meldCurve {
	acc := emptyCurve()
	for _, g := range gs {
		curve := evalGroup(g)
		next := meldCurve{-1, -1, -1, -1, -1}
		for m1, t1 := range acc {
			if t1 < 0 {
				continue
			}
			for m2, t2 := range curve {
				if t2 < 0 {
					continue
				}
				to := min(m1+m2, maxMelds)
				if t := t1 + t2; t > next[to] {
					next[to] = t
				}
			}
		}
		acc = next
	}
	return acc
}

func shantenWithoutHead(h hand34, exposed, head int) int {
	best := 8
	for m, t := range combine(h.groups()) {
		if t < 0 {
			continue
		}
		melds := min(m+exposed, maxMelds)
		partials := min(int(t), maxMelds-melds)
		if s := 8 - 2*melds - partials - head; s < best {
			best = s
		}
	}
	return best
}

// standardShanten 一般型向听数, 逐一枚举雀头
func standardShanten(h hand34, exposed int) int {
	best := shantenWithoutHead(h, exposed, 0)
	for i := range h {
		if h[i] < 2 {
			continue
		}
		h[i] -= 2
		if s := shantenWithoutHead(h, exposed, 1); s < best {
			best = s
		}
		h[i] += 2
	}
	return best
}

// sevenPairsShanten 七对向听数
func (a *Analyzer) sevenPairsShanten(h hand34) int {
	pairs, kinds := 0, 0
	for _, c := range h {
		if c > 0 {
			kinds++
		}
		pairs += c / 2
	}
	sh := 6 - pairs
	if !a.opts.QuadPairs && kinds < 7 {
		sh += 7 - kinds
	}
	return sh
}

// orphansShanten 十三幺向听数
func orphansShanten(h hand34) int {
	kinds, pair := 0, false
	for _, i := range orphanIndexes {
		if h[i] > 0 {
			kinds++
			if h[i] >= 2 {
				pair = true
			}
		}
	}
	sh := 13 - kinds
	if pair {
		sh--
	}
	return sh
}

var orphanIndexes = []int{0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33}

func (a *Analyzer) naturalShanten(h hand34, exposed int) int {
	best := standardShanten(h, exposed)
	if exposed == 0 {
		best = min(best, a.sevenPairsShanten(h))
		if a.opts.ThirteenOrphans {
			best = min(best, orphansShanten(h))
		}
	}
	return max(best, -1)
}

// Shanten 向听数, -1 表示已和牌
func (a *Analyzer) Shanten(hand []core.Tile, exposedMelds int) int {
	h, ghosts := a.split(hand)
	if ghosts == 0 {
		return a.naturalShanten(h, exposedMelds)
	}
	if a.IsWin(hand) {
		return -1
	}
	return max(a.naturalShanten(h, exposedMelds)-ghosts, 0)
}

package analyzer

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// Visible 可见牌计数
type Visible [core.TileKinds]int

// Remaining 某张牌在场上剩余的张数 (4 减去可见数, 不小于 0)
func (v *Visible) Remaining(t core.Tile) int {
	i := t.Index()
	if i < 0 {
		return 0
	}
	return max(0, 4-v[i])
}

// Add 计入可见牌
func (v *Visible) Add(tiles ...core.Tile) {
	for _, t := range tiles {
		if i := t.Index(); i >= 0 {
			v[i]++
		}
	}
}

// VisibleCounts 座位视角的可见牌: 自己手牌 + 所有弃牌 + 所有副露, 不含他家暗手
func VisibleCounts(snap *core.TableSnapshot, seat int) Visible {
	var v Visible
	if p := snap.Player(seat); p != nil {
		v.Add(p.Hand...)
	}
	for i := range snap.Players {
		p := &snap.Players[i]
		v.Add(p.Discards...)
		v.Add(core.MeldTiles(p.Melds)...)
	}
	return v
}

// UkeireResult 进张结果
type UkeireResult struct {
	Total   int               `json:"total"`
	PerTile map[core.Tile]int `json:"perTile"`
}

// Ukeire 有效进张: 加入后向听数严格下降的牌及其剩余张数
func (a *Analyzer) Ukeire(hand []core.Tile, exposedMelds int, visible Visible) UkeireResult {
	res := UkeireResult{PerTile: make(map[core.Tile]int)}
	cur := a.Shanten(hand, exposedMelds)
	if cur < 0 {
		return res
	}
	for _, t := range a.vocabulary() {
		remain := visible.Remaining(t)
		if remain == 0 {
			continue
		}
		if a.Shanten(core.AppendTile(hand, t), exposedMelds) < cur {
			res.PerTile[t] = remain
			res.Total += remain
		}
	}
	return res
}

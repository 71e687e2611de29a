// Package rules 副露合法性、响应优先级与计分结算
package rules

import (
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// MeldOutcome 副露应用结果, Applied 为假时快照未被修改
type MeldOutcome struct {
	Applied bool      `json:"applied"`
	Reason  string    `json:"reason,omitempty"`
	Meld    core.Meld `json:"meld"`
}

func applied(m core.Meld) MeldOutcome {
	return MeldOutcome{Applied: true, Meld: m}
}

func rejected(reason string) MeldOutcome {
	return MeldOutcome{Reason: reason}
}

// Err 被拒绝时返回 ErrMeldRejected
func (o MeldOutcome) Err() error {
	if o.Applied {
		return nil
	}
	return core.ErrMeldRejected.WithContext("reason", o.Reason)
}

// CanPon 手中至少两张
func CanPon(hand []core.Tile, t core.Tile) bool {
	return core.CountTile(hand, t) >= 2
}

// CanMinkan 手中至少三张 (明杠他家打出的牌)
func CanMinkan(hand []core.Tile, t core.Tile) bool {
	return core.CountTile(hand, t) >= 3
}

// ChiCandidates 含 t 且其余两张都在手中的顺子, 最多三组, 仅数牌
func ChiCandidates(hand []core.Tile, t core.Tile) [][]core.Tile {
	if !t.Suit.IsNumbered() {
		return nil
	}
	var runs [][]core.Tile
	for start := t.Value - 2; start <= t.Value; start++ {
		if start < 1 || start+2 > 9 {
			continue
		}
		run := []core.Tile{
			core.NewTile(t.Suit, start),
			core.NewTile(t.Suit, start+1),
			core.NewTile(t.Suit, start+2),
		}
		need, _ := core.RemoveTile(run, t)
		if core.ContainsTiles(hand, need) {
			runs = append(runs, run)
		}
	}
	return runs
}

// FindConcealedKongs 手中恰有四张的牌
func FindConcealedKongs(hand []core.Tile) []core.Tile {
	var out []core.Tile
	counts := core.Counts(hand)
	for i, c := range counts {
		if c == 4 {
			out = append(out, core.TileFromIndex(i))
		}
	}
	return out
}

// FindAddOnKongs 已碰的牌且手中有第四张
func FindAddOnKongs(hand []core.Tile, melds []core.Meld) []core.Tile {
	var out []core.Tile
	for _, m := range melds {
		if m.Kind != core.MeldPeng || len(m.Tiles) == 0 {
			continue
		}
		if core.ContainsTile(hand, m.Tiles[0]) {
			out = append(out, m.Tiles[0])
		}
	}
	return out
}

// ClaimTiles 由响应类型构造副露牌组, 吃牌时 run 为选定的顺子
func ClaimTiles(action core.ActionType, t core.Tile, run []core.Tile) (core.MeldKind, []core.Tile) {
	switch action {
	case core.ActionGang:
		return core.MeldGang, core.Repeat(t, 4)
	case core.ActionPeng:
		return core.MeldPeng, core.Repeat(t, 3)
	case core.ActionChi:
		return core.MeldChi, core.CloneTiles(run)
	default:
		return "", nil
	}
}

// ApplyMeld 以 LastDiscard 完成吃碰杠: 从手中移除其余牌, 记录副露与来源,
// 把被吃碰杠的牌从出牌者弃牌中移入副露, 清空 LastDiscard, 轮到认领者
func ApplyMeld(snap *core.TableSnapshot, seat int, kind core.MeldKind, tiles []core.Tile) MeldOutcome {
	d := snap.LastDiscard
	if d == nil {
		return rejected("no discard to claim")
	}
	p := snap.Player(seat)
	if p == nil || seat == d.From {
		return rejected("invalid claiming seat")
	}
	if p.IsWinner {
		return rejected("seat already won")
	}
	switch kind {
	case core.MeldChi, core.MeldPeng, core.MeldGang:
	default:
		return rejected("unsupported meld kind " + string(kind))
	}
	if !core.CanFormMeld(tiles, kind) {
		return rejected("tiles do not form " + string(kind))
	}
	need, ok := core.RemoveTile(tiles, d.Tile)
	if !ok {
		return rejected("meld does not contain claimed tile " + d.Tile.String())
	}
	hand, ok := core.RemoveTiles(p.Hand, need)
	if !ok {
		return rejected("hand lacks " + core.TilesString(need))
	}

	from := snap.Player(d.From)
	n := len(from.Discards)
	if n == 0 || !from.Discards[n-1].Equal(d.Tile) {
		return rejected("discard history out of sync")
	}

	meld := core.Meld{Kind: kind, Tiles: core.CloneTiles(tiles), From: d.From}
	from.Discards = from.Discards[:n-1]
	p.Hand = hand
	p.Melds = append(p.Melds, meld)
	snap.LastDiscard = nil
	snap.Turn = seat
	return applied(meld)
}

// ApplyConcealedKong 暗杠
func ApplyConcealedKong(snap *core.TableSnapshot, seat int, t core.Tile) MeldOutcome {
	p := snap.Player(seat)
	if p == nil {
		return rejected("invalid seat")
	}
	hand, ok := core.RemoveTiles(p.Hand, core.Repeat(t, 4))
	if !ok {
		return rejected("hand lacks four " + t.String())
	}
	meld := core.Meld{Kind: core.MeldAnGang, Tiles: core.Repeat(t, 4), From: core.NoSeat}
	p.Hand = hand
	p.Melds = append(p.Melds, meld)
	return applied(meld)
}

// ApplyAddOnKong 补杠: 已碰的刻子加上手中第四张
func ApplyAddOnKong(snap *core.TableSnapshot, seat int, t core.Tile) MeldOutcome {
	p := snap.Player(seat)
	if p == nil {
		return rejected("invalid seat")
	}
	idx := -1
	for i, m := range p.Melds {
		if m.Kind == core.MeldPeng && len(m.Tiles) > 0 && m.Tiles[0].Equal(t) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rejected("no peng of " + t.String())
	}
	hand, ok := core.RemoveTile(p.Hand, t)
	if !ok {
		return rejected("hand lacks " + t.String())
	}
	meld := p.Melds[idx].Clone()
	meld.Kind = core.MeldBuGang
	meld.Tiles = append(meld.Tiles, t)
	p.Hand = hand
	p.Melds[idx] = meld
	return applied(meld)
}

// RobKongWinners 补杠前检查其他座位能否以该牌抢杠胡, 按座次返回
func RobKongWinners(snap *core.TableSnapshot, seat int, t core.Tile, a *analyzer.Analyzer) []int {
	var winners []int
	for _, s := range snap.SeatsFrom(seat) {
		p := snap.Player(s)
		if p.IsWinner {
			continue
		}
		if CanHu(snap.Profile, p, t, a) {
			winners = append(winners, s)
		}
	}
	return winners
}

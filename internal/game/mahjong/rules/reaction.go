package rules

import (
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// queBlocked 定缺规则下该牌属于缺门, 不能碰杠胡
func queBlocked(profile core.Profile, p *core.PlayerState, t core.Tile) bool {
	return profile.DingQue && p.Que != core.SuitNone && t.Suit == p.Que
}

// CanHu 能否以他家打出的 t 和牌; 定缺规则下手中仍有缺门牌不能和
func CanHu(profile core.Profile, p *core.PlayerState, t core.Tile, a *analyzer.Analyzer) bool {
	if queBlocked(profile, p, t) || (profile.DingQue && p.HoldsQue()) {
		return false
	}
	return a.IsWin(core.AppendTile(p.Hand, t))
}

// CanSelfWin 摸牌后能否自摸
func CanSelfWin(profile core.Profile, p *core.PlayerState, a *analyzer.Analyzer) bool {
	if profile.DingQue && p.HoldsQue() {
		return false
	}
	return a.IsWin(p.Hand)
}

// CollectReactions 收集所有未胡座位对 LastDiscard 的合法响应, 按出牌者下家起的座次排列
func CollectReactions(snap *core.TableSnapshot, a *analyzer.Analyzer) []core.Reaction {
	d := snap.LastDiscard
	if d == nil {
		return nil
	}
	downstream := (d.From + 1) % snap.SeatCount()

	var out []core.Reaction
	for _, seat := range snap.SeatsFrom(d.From) {
		p := snap.Player(seat)
		if p.IsWinner {
			continue
		}
		r := core.Reaction{Seat: seat}
		if CanHu(snap.Profile, p, d.Tile, a) {
			r.Actions = append(r.Actions, core.ActionHu)
		}
		if !queBlocked(snap.Profile, p, d.Tile) {
			// 明杠需要补牌, 牌墙空时不能杠
			if CanMinkan(p.Hand, d.Tile) && snap.Wall.Len() > 0 {
				r.Actions = append(r.Actions, core.ActionGang)
			}
			if CanPon(p.Hand, d.Tile) {
				r.Actions = append(r.Actions, core.ActionPeng)
			}
		}
		if snap.Profile.AllowChi && seat == downstream {
			if runs := ChiCandidates(p.Hand, d.Tile); len(runs) > 0 {
				r.Actions = append(r.Actions, core.ActionChi)
				r.ChiOptions = runs
			}
		}
		if len(r.Actions) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Resolve 按 胡 > 杠 > 碰 > 吃 决出生效的响应; 所有能胡的座位一起返回 (一炮多响),
// 否则只返回最高一类, 吃最多一家. 同类多家时由调用方按座次取舍
func Resolve(reactions []core.Reaction) []core.Reaction {
	var hu []core.Reaction
	for _, r := range reactions {
		if r.Has(core.ActionHu) {
			hu = append(hu, core.Reaction{Seat: r.Seat, Actions: []core.ActionType{core.ActionHu}})
		}
	}
	if len(hu) > 0 {
		return hu
	}

	for _, action := range []core.ActionType{core.ActionGang, core.ActionPeng, core.ActionChi} {
		var out []core.Reaction
		for _, r := range reactions {
			if !r.Has(action) {
				continue
			}
			won := core.Reaction{Seat: r.Seat, Actions: []core.ActionType{action}}
			if action == core.ActionChi {
				won.ChiOptions = r.ChiOptions
				return []core.Reaction{won}
			}
			out = append(out, won)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

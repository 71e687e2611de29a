package rules

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// ChooseQue 定缺: 选张数最少的数牌花色, 张数相同时按 万 饼 条 顺序取先者
func ChooseQue(hand []core.Tile) core.Suit {
	counts := make(map[core.Suit]int, len(core.NumberedSuits))
	for _, t := range hand {
		counts[t.Suit]++
	}
	best := core.NumberedSuits[0]
	for _, s := range core.NumberedSuits[1:] {
		if counts[s] < counts[best] {
			best = s
		}
	}
	return best
}

// AssignQue 为所有座位定缺, 非定缺规则不做处理
func AssignQue(snap *core.TableSnapshot) {
	if !snap.Profile.DingQue {
		return
	}
	for i := range snap.Players {
		snap.Players[i].Que = ChooseQue(snap.Players[i].Hand)
	}
}

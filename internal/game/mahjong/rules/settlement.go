package rules

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// Settle 结算一次和牌, 返回更新后的座位副本与分数转移记录, 不修改入参.
// discarder 为 NoSeat 时为自摸: 每个未胡的其他座位各付 base*fan;
// 否则只由点炮 (或被抢杠) 的座位支付
func Settle(players []core.PlayerState, winner, discarder, fan, base int) ([]core.PlayerState, []core.Transfer) {
	out := make([]core.PlayerState, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	if base <= 0 {
		base = 1
	}
	amount := base * fan

	var transfers []core.Transfer
	pay := func(from int, reason string) {
		out[from].Score -= amount
		out[winner].Score += amount
		transfers = append(transfers, core.Transfer{From: from, To: winner, Amount: amount, Reason: reason})
	}

	if discarder == core.NoSeat {
		for i := range out {
			if i == winner || out[i].IsWinner {
				continue
			}
			pay(i, LabelZiMo)
		}
		return out, transfers
	}
	pay(discarder, "点炮")
	return out, transfers
}

package decision

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// 决策相关错误
var (
	ErrEmptyHand       = core.NewGameError("EMPTY_HAND", "手牌为空, 无法出牌")
	ErrDecisionTimeout = core.NewGameError("DECISION_TIMEOUT", "出牌决策超时")
	ErrRemoteDecision  = core.NewGameError("REMOTE_DECISION_FAILED", "远程出牌决策失败")
	ErrIllegalDiscard  = core.NewGameError("ILLEGAL_DISCARD", "决策给出的牌不可打出")
)

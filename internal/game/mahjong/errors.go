package mahjong

import "github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"

// 服务层错误
var (
	ErrUnknownProvider   = core.NewGameError("UNKNOWN_PROVIDER", "未知的出牌决策来源")
	ErrRemoteUnavailable = core.NewGameError("REMOTE_UNAVAILABLE", "未连接远程决策服务")
	ErrSeatMismatch      = core.NewGameError("SEAT_MISMATCH", "座位配置数量与规则不符")
	ErrInvalidHandSize   = core.NewGameError("INVALID_HAND_SIZE", "手牌张数不符合规则")
)

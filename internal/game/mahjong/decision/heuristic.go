package decision

import (
	"context"
	"fmt"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// Heuristic 本地启发式出牌: 向听数 > 进张数 > 保留价值
type Heuristic struct {
	analyzer *analyzer.Analyzer
}

// NewHeuristic 创建本地启发式出牌
func NewHeuristic(a *analyzer.Analyzer) *Heuristic {
	return &Heuristic{analyzer: a}
}

// Decide 实现 Provider, 结果确定
func (h *Heuristic) Decide(_ context.Context, req Request) (Decision, error) {
	if len(req.Hand) == 0 {
		return Decision{}, ErrEmptyHand.WithContext("seat", req.Seat)
	}
	cands := h.analyzer.EvaluateDiscards(req.Hand, req.ExposedMelds(), req.Visible(), req.Que())
	best, ok := analyzer.Best(cands)
	if !ok {
		return Decision{}, ErrEmptyHand.WithContext("seat", req.Seat)
	}
	return Decision{
		Tile:   best.Tile,
		Reason: fmt.Sprintf("shanten=%d ukeire=%d keep=%.2f", best.Shanten, best.Ukeire, best.KeepValue),
		Source: SourceLocal,
	}, nil
}

// Legal 检查 t 能否由请求座位打出: 必须在手中, 手中仍有缺门牌时只能打缺门
func Legal(req Request, t core.Tile) error {
	if !t.Valid() || !core.ContainsTile(req.Hand, t) {
		return ErrTileNotInHandFor(req.Seat, t)
	}
	que := req.Que()
	if que == core.SuitNone || t.Suit == que {
		return nil
	}
	for _, h := range req.Hand {
		if h.Suit == que {
			return ErrIllegalDiscard.
				WithContext("seat", req.Seat).
				WithContext("tile", t.String()).
				WithContext("que", que.String())
		}
	}
	return nil
}

// ErrTileNotInHandFor 带座位与牌信息的 ErrTileNotInHand
func ErrTileNotInHandFor(seat int, t core.Tile) error {
	return core.ErrTileNotInHand.WithContext("seat", seat).WithContext("tile", t.String())
}

package decision

import (
	"context"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// 决策来源
const (
	SourceLocal    = "local"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// SeatView 他家的公开信息, 不含暗手
type SeatView struct {
	Seat     int         `json:"seat"`
	Name     string      `json:"name,omitempty"`
	HandSize int         `json:"handSize"`
	Discards []core.Tile `json:"discards"`
	Melds    []core.Meld `json:"melds"`
	Flowers  []core.Tile `json:"flowers,omitempty"`
	Score    int         `json:"score"`
	IsWinner bool        `json:"isWinner"`
	Que      core.Suit   `json:"que"`
}

// PublicView 座位视角下的牌桌
type PublicView struct {
	Profile     core.ProfileName `json:"profile"`
	Turn        int              `json:"turn"`
	Dealer      int              `json:"dealer"`
	WallCount   int              `json:"wallCount"`
	LastDiscard *core.Discard    `json:"lastDiscard,omitempty"`
	Winners     []int            `json:"winners"`
	Seats       []SeatView       `json:"seats"`
}

// NewPublicView 从快照生成公开视角
func NewPublicView(snap *core.TableSnapshot) PublicView {
	v := PublicView{
		Profile:   snap.Profile.Name,
		Turn:      snap.Turn,
		Dealer:    snap.Dealer,
		WallCount: snap.Wall.Len(),
		Winners:   append([]int(nil), snap.Winners...),
		Seats:     make([]SeatView, len(snap.Players)),
	}
	if snap.LastDiscard != nil {
		d := *snap.LastDiscard
		v.LastDiscard = &d
	}
	for i := range snap.Players {
		p := snap.Players[i].Clone()
		v.Seats[i] = SeatView{
			Seat:     p.Seat,
			Name:     p.Name,
			HandSize: len(p.Hand),
			Discards: p.Discards,
			Melds:    p.Melds,
			Flowers:  p.Flowers,
			Score:    p.Score,
			IsWinner: p.IsWinner,
			Que:      p.Que,
		}
	}
	return v
}

// Request 出牌请求
type Request struct {
	Seat int         `json:"seat"`
	Hand []core.Tile `json:"hand"`
	View PublicView  `json:"view"`
}

// NewRequest 为 seat 生成出牌请求
func NewRequest(snap *core.TableSnapshot, seat int) Request {
	req := Request{Seat: seat, View: NewPublicView(snap)}
	if p := snap.Player(seat); p != nil {
		req.Hand = core.CloneTiles(p.Hand)
	}
	return req
}

// Que 请求座位的定缺花色
func (r Request) Que() core.Suit {
	if r.Seat < 0 || r.Seat >= len(r.View.Seats) {
		return core.SuitNone
	}
	return r.View.Seats[r.Seat].Que
}

// ExposedMelds 请求座位的副露数
func (r Request) ExposedMelds() int {
	if r.Seat < 0 || r.Seat >= len(r.View.Seats) {
		return 0
	}
	return len(r.View.Seats[r.Seat].Melds)
}

// Visible 请求座位能看到的牌: 自己手牌 + 全桌弃牌与副露
func (r Request) Visible() analyzer.Visible {
	var v analyzer.Visible
	v.Add(r.Hand...)
	for _, s := range r.View.Seats {
		v.Add(s.Discards...)
		v.Add(core.MeldTiles(s.Melds)...)
	}
	return v
}

// Decision 出牌决策
type Decision struct {
	Tile   core.Tile `json:"tile"`
	Reason string    `json:"reason,omitempty"`
	Source string    `json:"source,omitempty"`
}

// Provider 出牌决策提供者
type Provider interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}

// ProviderFunc 函数适配器
type ProviderFunc func(ctx context.Context, req Request) (Decision, error)

// Decide 实现 Provider
func (f ProviderFunc) Decide(ctx context.Context, req Request) (Decision, error) {
	return f(ctx, req)
}

package mahjong

import (
	"context"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/rules"
)

// AnalyzeRequest 手牌分析请求, 牌用编码串表示, 如 "1W 2W 3W"
type AnalyzeRequest struct {
	Profile  string   `json:"profile"`
	Hand     string   `json:"hand" binding:"required"`
	Melds    []string `json:"melds"`
	Que      string   `json:"que"` // W, B, T 或空
	SelfDraw bool     `json:"selfDraw"`
	Rinshan  bool     `json:"rinshan"`
	RobKong  bool     `json:"robKong"`
	Flowers  int      `json:"flowers"`
}

// AnalyzeResult 手牌分析结果
type AnalyzeResult struct {
	Profile      core.ProfileName            `json:"profile"`
	Hand         []core.Tile                 `json:"hand"`
	Shanten      int                         `json:"shanten"`
	Win          bool                        `json:"win"`
	WinningTiles []core.Tile                 `json:"winningTiles,omitempty"`
	Ukeire       *analyzer.UkeireResult      `json:"ukeire,omitempty"`
	Discards     []analyzer.DiscardCandidate `json:"discards,omitempty"`
	Best         *core.Tile                  `json:"best,omitempty"`
	Score        *core.WinResult             `json:"score,omitempty"`
}

// Analyze 计算向听数与进张; 待打牌时评估弃牌, 已和牌时计算番数
func (s *Service) Analyze(req AnalyzeRequest) (AnalyzeResult, error) {
	name := req.Profile
	if name == "" {
		name = s.cfg.Profile
	}
	cfg := s.cfg
	cfg.Profile = name
	profile, err := cfg.RuleProfile()
	if err != nil {
		return AnalyzeResult{}, err
	}
	hand, err := core.ParseTiles(req.Hand)
	if err != nil {
		return AnalyzeResult{}, err
	}
	melds, err := parseMelds(req.Melds)
	if err != nil {
		return AnalyzeResult{}, err
	}
	que := core.SuitNone
	if req.Que != "" {
		suit, ok := core.ParseSuit(req.Que[0])
		if !ok || !suit.IsNumbered() || len(req.Que) != 1 {
			return AnalyzeResult{}, core.ErrInvalidTile.WithContext("que", req.Que)
		}
		que = suit
	}

	a := analyzer.New(analyzer.ForProfile(profile))
	var visible analyzer.Visible
	visible.Add(hand...)
	visible.Add(core.MeldTiles(melds)...)

	res := AnalyzeResult{
		Profile: profile.Name,
		Hand:    hand,
		Shanten: a.Shanten(hand, len(melds)),
	}
	switch (len(hand) + 3*len(melds)) - profile.HandSize {
	case 0:
		u := a.Ukeire(hand, len(melds), visible)
		res.Ukeire = &u
		res.WinningTiles = a.WinningTiles(hand)
	case 1:
		res.Discards = a.EvaluateDiscards(hand, len(melds), visible, que)
		if best, ok := analyzer.Best(res.Discards); ok {
			res.Best = &best.Tile
		}
		res.Win = a.IsWin(hand)
		if res.Win {
			score := rules.NewScorer(profile, a).Score(hand, melds, core.WinContext{
				SelfDraw: req.SelfDraw,
				Rinshan:  req.Rinshan,
				RobKong:  req.RobKong,
				Flowers:  req.Flowers,
			})
			res.Score = &score
		}
	default:
		return AnalyzeResult{}, ErrInvalidHandSize.
			WithContext("hand", len(hand)).
			WithContext("melds", len(melds))
	}
	return res, nil
}

// parseMelds 按牌型识别副露: 三张相同为碰, 四张相同为明杠, 顺子为吃
func parseMelds(codes []string) ([]core.Meld, error) {
	melds := make([]core.Meld, 0, len(codes))
	for _, code := range codes {
		tiles, err := core.ParseTiles(code)
		if err != nil {
			return nil, err
		}
		core.SortTiles(tiles)
		var kind core.MeldKind
		switch {
		case core.IsQuad(tiles):
			kind = core.MeldGang
		case core.IsTriplet(tiles):
			kind = core.MeldPeng
		case core.IsSequence(tiles):
			kind = core.MeldChi
		default:
			return nil, core.ErrInvalidMeld.WithContext("meld", code)
		}
		melds = append(melds, core.Meld{Kind: kind, Tiles: tiles, From: core.NoSeat})
	}
	return melds, nil
}

// Decide 本地启发式出牌, 供 HTTP 与 NATS 决策服务使用
func (s *Service) Decide(ctx context.Context, req decision.Request) (decision.Decision, error) {
	name := string(req.View.Profile)
	if name == "" {
		name = s.cfg.Profile
	}
	cfg := s.cfg
	cfg.Profile = name
	profile, err := cfg.RuleProfile()
	if err != nil {
		return decision.Decision{}, err
	}
	return decision.NewHeuristic(analyzer.New(analyzer.ForProfile(profile))).Decide(ctx, req)
}

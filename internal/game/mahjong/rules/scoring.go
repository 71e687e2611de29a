package rules

import (
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

// 番型名称
const (
	LabelPingHu       = "平胡"
	LabelDuiDuiHu     = "对对胡"
	LabelQiDui        = "七对"
	LabelShiSanYao    = "十三幺"
	LabelQingYiSe     = "清一色"
	LabelHunYiSe      = "混一色"
	LabelDuanYaoJiu   = "断幺九"
	LabelHunYaoJiu    = "混幺九"
	LabelJinGouDiao   = "金钩钓"
	LabelGen          = "根"
	LabelZiMo         = "自摸"
	LabelGangShangHua = "杠上花"
	LabelQiangGangHu  = "抢杠胡"
	LabelHuaPai       = "花牌"
)

// FanTable 番型番数, 各番型相加
var FanTable = map[string]int{
	LabelPingHu:       1,
	LabelDuiDuiHu:     2,
	LabelQiDui:        4,
	LabelShiSanYao:    13,
	LabelQingYiSe:     4,
	LabelHunYiSe:      2,
	LabelDuanYaoJiu:   2,
	LabelHunYaoJiu:    4,
	LabelJinGouDiao:   4,
	LabelGen:          1,
	LabelZiMo:         1,
	LabelGangShangHua: 1,
	LabelQiangGangHu:  1,
	LabelHuaPai:       1,
}

// Scorer 计分器
type Scorer struct {
	profile  core.Profile
	analyzer *analyzer.Analyzer
}

// NewScorer 按规则配置创建计分器
func NewScorer(profile core.Profile, a *analyzer.Analyzer) *Scorer {
	if a == nil {
		a = analyzer.New(analyzer.ForProfile(profile))
	}
	return &Scorer{profile: profile, analyzer: a}
}

// Score 按规则配置计分; 缺门前提由出牌合法性保证, 此处不再校验
func Score(hand []core.Tile, melds []core.Meld, ctx core.WinContext, profile core.Profile) core.WinResult {
	return NewScorer(profile, nil).Score(hand, melds, ctx)
}

type fanSheet struct {
	labels []string
	fan    int
}

func (s *fanSheet) add(label string, times int) {
	for i := 0; i < times; i++ {
		s.labels = append(s.labels, label)
		s.fan += FanTable[label]
	}
}

// Score 计算和牌番数; hand 为含和牌张的暗手
func (s *Scorer) Score(hand []core.Tile, melds []core.Meld, ctx core.WinContext) core.WinResult {
	shapes := s.analyzer.WinDetect(hand)
	if !shapes.Won() {
		return core.WinResult{}
	}
	if shapes.ThirteenOrphans {
		return core.WinResult{Won: true, Labels: []string{LabelShiSanYao}, Fan: FanTable[LabelShiSanYao]}
	}

	var sheet fanSheet
	allTriplets := shapes.AllTriplets && !hasChi(melds)
	switch {
	case shapes.SevenPairs && len(melds) == 0:
		sheet.add(LabelQiDui, 1)
	case shapes.Standard && allTriplets:
		sheet.add(LabelDuiDuiHu, 1)
	default:
		sheet.add(LabelPingHu, 1)
	}
	if s.profile.DingQue && len(hand) == 2 {
		sheet.add(LabelJinGouDiao, 1)
	}

	natural := s.naturalTiles(append(core.CloneTiles(hand), core.MeldTiles(melds)...))
	switch suits, honors := suitsOf(natural); {
	case len(suits) == 1 && !honors:
		sheet.add(LabelQingYiSe, 1)
	case len(suits) == 1 && honors && s.profile.Honors:
		sheet.add(LabelHunYiSe, 1)
	}
	if s.profile.AllSimples && all(natural, core.Tile.IsSimple) {
		sheet.add(LabelDuanYaoJiu, 1)
	}
	if s.profile.TerminalsHonors && all(natural, core.Tile.IsTerminalOrHonor) {
		sheet.add(LabelHunYaoJiu, 1)
	}
	sheet.add(LabelGen, roots(natural))

	if ctx.SelfDraw {
		sheet.add(LabelZiMo, 1)
	}
	if ctx.Rinshan {
		sheet.add(LabelGangShangHua, 1)
	}
	if ctx.RobKong {
		sheet.add(LabelQiangGangHu, 1)
	}
	if s.profile.Flowers {
		sheet.add(LabelHuaPai, ctx.Flowers)
	}

	fan := sheet.fan
	if s.profile.FanCap > 0 && fan > s.profile.FanCap {
		fan = s.profile.FanCap
	}
	return core.WinResult{Won: true, Labels: sheet.labels, Fan: fan}
}

// naturalTiles 去掉癞子后的牌, 癞子不参与清一色、断幺九等判断
func (s *Scorer) naturalTiles(tiles []core.Tile) []core.Tile {
	out := tiles[:0]
	for _, t := range tiles {
		if !s.analyzer.IsGhost(t) {
			out = append(out, t)
		}
	}
	return out
}

func hasChi(melds []core.Meld) bool {
	for _, m := range melds {
		if m.Kind == core.MeldChi {
			return true
		}
	}
	return false
}

func suitsOf(tiles []core.Tile) (map[core.Suit]bool, bool) {
	suits := make(map[core.Suit]bool)
	honors := false
	for _, t := range tiles {
		switch {
		case t.Suit.IsNumbered():
			suits[t.Suit] = true
		case t.IsHonor():
			honors = true
		}
	}
	return suits, honors
}

func all(tiles []core.Tile, pred func(core.Tile) bool) bool {
	for _, t := range tiles {
		if !pred(t) {
			return false
		}
	}
	return len(tiles) > 0
}

// roots 根: 手牌加副露中凑齐四张的牌种数
func roots(tiles []core.Tile) int {
	n := 0
	for _, c := range core.Counts(tiles) {
		if c == 4 {
			n++
		}
	}
	return n
}

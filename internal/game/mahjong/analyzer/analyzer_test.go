package analyzer

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

var (
	sichuan = New(ForProfile(core.SichuanProfile()))
	classic = New(ForProfile(core.ClassicProfile()))
)

func tiles(s string) []core.Tile {
	return core.MustParseTiles(s)
}

func visibleOf(hand []core.Tile) Visible {
	var v Visible
	v.Add(hand...)
	return v
}

func TestShantenTenpaiScenario(t *testing.T) {
	hand := tiles("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B")
	assert.Equal(t, 0, sichuan.Shanten(hand, 0))

	full := core.AppendTile(hand, core.MustParseTile("1B"))
	assert.True(t, sichuan.IsWin(full))
	assert.Equal(t, -1, sichuan.Shanten(full, 0))

	assert.ElementsMatch(t, tiles("1B 4B"), sichuan.WinningTiles(hand))
}

func TestShantenValues(t *testing.T) {
	cases := []struct {
		name    string
		hand    string
		exposed int
		want    int
	}{
		{"单骑", "1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 2B 3B 4T", 0, 0},
		{"两向听", "1W 2W 3W 4W 5W 6W 1B 2B 5B 6B 1T 5T 9T", 0, 2},
		{"带副露听牌", "1W 2W 3W 4W 5W 6W 1B 1B 2B 3B", 1, 0},
		{"七对一向听", "1W 1W 3W 3W 5B 5B 7B 7B 9T 9T 2T 4T 6T", 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sichuan.Shanten(tiles(tc.hand), tc.exposed))
		})
	}
}

func TestWinDetectStandard(t *testing.T) {
	shapes := sichuan.WinDetect(tiles("1W 2W 3W 5W 5W 5W 7B 8B 9B 2T 3T 4T 6T 6T"))
	assert.True(t, shapes.Standard)
	assert.False(t, shapes.AllTriplets)
	assert.False(t, shapes.SevenPairs)

	shapes = sichuan.WinDetect(tiles("1W 1W 1W 5W 5W 5W 7B 7B 7B 2T 2T 2T 6T 6T"))
	assert.True(t, shapes.AllTriplets)
}

func TestWinDetectSevenPairs(t *testing.T) {
	shapes := sichuan.WinDetect(tiles("1W 1W 3W 3W 5B 5B 7B 7B 9T 9T 2T 2T 4T 4T"))
	assert.True(t, shapes.SevenPairs)
	assert.False(t, shapes.Standard)

	same := tiles("1W 1W 2W 2W 3W 3W 4W 4W 5W 5W 6W 6W 7W 7W")
	assert.True(t, sichuan.WinDetect(same).SevenPairs)
}

func TestWinDetectQuadPairsByProfile(t *testing.T) {
	hand := tiles("1W 1W 1W 1W 3W 3W 5B 5B 7B 7B 9T 9T 2T 2T")
	assert.True(t, sichuan.WinDetect(hand).SevenPairs, "四川龙七对")
	assert.Equal(t, -1, sichuan.Shanten(hand, 0))
	assert.False(t, classic.IsWin(hand), "经典规则七对须七种不同的对子")
	assert.GreaterOrEqual(t, classic.Shanten(hand, 0), 0)
}

func TestWinDetectThirteenOrphans(t *testing.T) {
	hand := tiles("1W 9W 1B 9B 1T 9T 1Z 2Z 3Z 4Z 5Z 6Z 7Z 7Z")
	assert.True(t, classic.WinDetect(hand).ThirteenOrphans)
	assert.Equal(t, -1, classic.Shanten(hand, 0))
	assert.False(t, sichuan.IsWin(hand), "无字牌规则不能以十三幺和牌")
}

func TestHonorsNeverFormRuns(t *testing.T) {
	assert.False(t, classic.IsWin(tiles("1Z 2Z 3Z 1W 2W 3W 4W 5W 6W 7W 8W 9W 5B 5B")))
	assert.True(t, classic.IsWin(tiles("1Z 1Z 1Z 1W 2W 3W 4W 5W 6W 7W 8W 9W 5B 5B")))
}

func TestFlowerNeverWins(t *testing.T) {
	assert.False(t, classic.IsWin(tiles("1F 1W 2W 3W 4W 5W 6W 7W 8W 9W 5B 5B 5B 5T")))
}

func ghostAnalyzer() *Analyzer {
	p := core.ClassicProfile()
	p.Ghosts = tiles("5Z")
	return New(ForProfile(p))
}

func TestGhostWins(t *testing.T) {
	a := ghostAnalyzer()
	cases := []struct {
		name string
		hand string
		want bool
	}{
		{"补顺子缺张", "1W 2W 4W 5W 6W 7W 8W 9W 1B 1B 1B 3T 3T 5Z", true},
		{"补雀头", "1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 1B 9T 5Z", true},
		{"补七对", "1W 1W 2B 2B 3T 3T 4W 4W 5B 5B 7T 8T 5Z 5Z", true},
		{"补十三幺", "1W 9W 1B 9B 1T 9T 1Z 2Z 3Z 4Z 6Z 7Z 7Z 5Z", true},
		{"癞子不足", "1W 4W 7W 1B 4B 7B 1T 4T 7T 2W 5W 8W 2B 5Z", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hand := tiles(tc.hand)
			assert.Equal(t, tc.want, a.IsWin(hand))
			if tc.want {
				assert.Equal(t, -1, a.Shanten(hand, 0))
			} else {
				assert.GreaterOrEqual(t, a.Shanten(hand, 0), 0)
			}
		})
	}

	// 未配置癞子时 5Z 是普通字牌
	assert.False(t, classic.IsWin(tiles("1W 2W 4W 5W 6W 7W 8W 9W 1B 1B 1B 3T 3T 5Z")))
}

func TestGhostNeedsExhaustiveSearch(t *testing.T) {
	a := ghostAnalyzer()
	// 唯一解: 1W2W3W 4W4W 6B7B8B 2T3T4T 7T8T+癞子
	hand := tiles("1W 2W 3W 4W 4W 6B 7B 8B 2T 3T 4T 7T 8T 5Z")
	assert.True(t, a.IsWin(hand))
}

// TestShantenMatchesWinDetect 随机手牌下向听数与和牌判定一致
func TestShantenMatchesWinDetect(t *testing.T) {
	for _, tc := range []struct {
		name    string
		profile core.Profile
	}{
		{"sichuan", core.SichuanProfile()},
		{"classic", core.ClassicProfile()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := New(ForProfile(tc.profile))
			rng := rand.New(rand.NewPCG(42, uint64(len(tc.name))))
			for round := 0; round < 60; round++ {
				wall := core.BuildWall(tc.profile)
				core.Shuffle(wall, rng)
				hand := core.CloneTiles(wall[:13])

				sh := a.Shanten(hand, 0)
				require.GreaterOrEqual(t, sh, 0, "13 张手牌不可能已和: %s", core.TilesString(hand))
				if sh == 0 {
					assert.NotEmpty(t, a.WinningTiles(hand), "听牌却无和张: %s", core.TilesString(hand))
				}
				for _, tile := range a.vocabulary() {
					full := core.AppendTile(hand, tile)
					assert.Equal(t, a.IsWin(full), a.Shanten(full, 0) == -1, "%s + %s", core.TilesString(hand), tile)
				}
			}
		})
	}
}

func TestUkeire(t *testing.T) {
	hand := tiles("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B")
	res := sichuan.Ukeire(hand, 0, visibleOf(hand))
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, 2, res.PerTile[core.MustParseTile("1B")])
	assert.Equal(t, 4, res.PerTile[core.MustParseTile("4B")])

	// 别家弃掉的 4B 计入可见
	v := visibleOf(hand)
	v.Add(tiles("4B 4B 4B 4B")...)
	res = sichuan.Ukeire(hand, 0, v)
	assert.Equal(t, 2, res.Total)
	assert.NotContains(t, res.PerTile, core.MustParseTile("4B"))
}

func TestVisibleCountsExcludesOtherHands(t *testing.T) {
	snap := &core.TableSnapshot{
		Players: []core.PlayerState{
			{Seat: 0, Hand: tiles("1W 2W"), Discards: tiles("9T")},
			{Seat: 1, Hand: tiles("5B 5B 5B"), Melds: []core.Meld{{Kind: core.MeldPeng, Tiles: tiles("7W 7W 7W"), From: 0}}},
		},
	}
	v := VisibleCounts(snap, 0)
	assert.Equal(t, 1, v[core.MustParseTile("1W").Index()])
	assert.Equal(t, 1, v[core.MustParseTile("9T").Index()])
	assert.Equal(t, 3, v[core.MustParseTile("7W").Index()])
	assert.Equal(t, 0, v[core.MustParseTile("5B").Index()])
}

func TestBestDiscard(t *testing.T) {
	hand := tiles("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B 9T")
	tile, ok := sichuan.BestDiscard(hand, 0, visibleOf(hand), core.SuitNone)
	require.True(t, ok)
	assert.Equal(t, "9T", tile.String())
}

func TestBestDiscardRespectsQue(t *testing.T) {
	hand := tiles("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 5T 9T")
	tile, ok := sichuan.BestDiscard(hand, 0, visibleOf(hand), core.SuitTiao)
	require.True(t, ok)
	assert.Equal(t, core.SuitTiao, tile.Suit)
}

func TestKeepValue(t *testing.T) {
	hand := tiles("4W 5W 1Z 9T")
	v := visibleOf(hand)
	assert.Greater(t, classic.KeepValue(hand, core.MustParseTile("4W"), v), classic.KeepValue(hand, core.MustParseTile("1Z"), v))

	pair := tiles("7B 7B 1Z")
	assert.Greater(t, classic.KeepValue(pair, core.MustParseTile("7B"), visibleOf(pair)), classic.KeepValue(pair, core.MustParseTile("1Z"), visibleOf(pair)))

	assert.Equal(t, 100.0, ghostAnalyzer().KeepValue(tiles("5Z 1W"), core.MustParseTile("5Z"), Visible{}))
}

func TestBestMatchesBestDiscard(t *testing.T) {
	hand := core.MustParseTiles("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B 9T")
	cands := sichuan.EvaluateDiscards(hand, 0, visibleOf(hand), core.SuitNone)
	best, ok := Best(cands)
	require.True(t, ok)
	tile, ok := sichuan.BestDiscard(hand, 0, visibleOf(hand), core.SuitNone)
	require.True(t, ok)
	assert.Equal(t, tile, best.Tile)
	assert.Equal(t, "9T", best.Tile.String())

	_, ok = Best(nil)
	assert.False(t, ok)
}

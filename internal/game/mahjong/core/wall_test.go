package core

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWallSizes(t *testing.T) {
	assert.Len(t, BuildWall(ClassicProfile()), 136)
	assert.Len(t, BuildWall(SichuanProfile()), 108)
	assert.Len(t, BuildWall(SichuanStrictProfile()), 108)

	withFlowers := ClassicProfile()
	withFlowers.Flowers = true
	assert.Len(t, BuildWall(withFlowers), 144)
	assert.Equal(t, 144, withFlowers.WallSize())
}

func TestBuildWallNoHonorsInSichuan(t *testing.T) {
	for _, tile := range BuildWall(SichuanProfile()) {
		assert.True(t, tile.Suit.IsNumbered(), "四川牌墙不应含 %s", tile)
	}
}

func TestShufflePreservesTiles(t *testing.T) {
	wall := BuildWall(ClassicProfile())
	before := Counts(wall)
	Shuffle(wall, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, before, Counts(wall))
}

func TestShuffleSeedIsDeterministic(t *testing.T) {
	a := BuildWall(SichuanProfile())
	b := BuildWall(SichuanProfile())
	Shuffle(a, rand.New(rand.NewPCG(7, 7)))
	Shuffle(b, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestDeal(t *testing.T) {
	wall := BuildWall(SichuanProfile())
	players, err := Deal(&wall, 4, 13, 2)
	require.NoError(t, err)
	require.Len(t, players, 4)

	for i, p := range players {
		want := 13
		if i == 2 {
			want = 14
		}
		assert.Len(t, p.Hand, want, "座位 %d 手牌数", i)
		assert.Equal(t, SuitNone, p.Que)
	}
	assert.Equal(t, 108-53, wall.Len())
}

func TestDealWallTooSmall(t *testing.T) {
	wall := Wall(MustParseTiles("1W 2W 3W"))
	_, err := Deal(&wall, 4, 13, 0)
	assert.True(t, errors.Is(err, ErrWallTooSmall))
	assert.Equal(t, 3, wall.Len(), "失败时不应摸牌")
}

func TestWallDrawBothEnds(t *testing.T) {
	wall := Wall(MustParseTiles("1W 2W 3W"))
	front, ok := wall.Draw()
	require.True(t, ok)
	back, ok := wall.DrawBack()
	require.True(t, ok)
	assert.Equal(t, "1W", front.String())
	assert.Equal(t, "3W", back.String())
	assert.Equal(t, 1, wall.Len())

	wall.Draw()
	_, ok = wall.Draw()
	assert.False(t, ok)
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, ClassicProfile().Validate())
	assert.NoError(t, SichuanStrictProfile().Validate())

	_, err := ProfileByName("riichi")
	assert.True(t, errors.Is(err, ErrInvalidProfile))

	p := SichuanProfile()
	p.Ghosts = MustParseTiles("5Z")
	assert.True(t, errors.Is(p.Validate(), ErrInvalidProfile), "无字牌的规则不能以字牌为癞子")

	p = SichuanProfile()
	p.Seats = 9
	assert.Error(t, p.Validate())
}

package core

import "math/rand/v2"

// Wall 牌墙, 从前端摸牌, 杠后补牌从尾端摸
type Wall []Tile

// Len 剩余张数
func (w Wall) Len() int {
	return len(w)
}

// Draw 从前端摸一张
func (w *Wall) Draw() (Tile, bool) {
	if len(*w) == 0 {
		return Tile{}, false
	}
	t := (*w)[0]
	*w = (*w)[1:]
	return t, true
}

// DrawBack 从尾端摸一张 (杠后补牌、补花)
func (w *Wall) DrawBack() (Tile, bool) {
	n := len(*w)
	if n == 0 {
		return Tile{}, false
	}
	t := (*w)[n-1]
	*w = (*w)[:n-1]
	return t, true
}

// BuildWall 按规则生成牌墙: 三门数牌各 4 张, 可选字牌 4 张, 可选花牌各 1 张
func BuildWall(p Profile) Wall {
	wall := make(Wall, 0, p.WallSize())
	for _, suit := range NumberedSuits {
		for v := int8(1); v <= 9; v++ {
			for i := 0; i < 4; i++ {
				wall = append(wall, Tile{Suit: suit, Value: v})
			}
		}
	}
	if p.Honors {
		for v := int8(1); v <= 7; v++ {
			for i := 0; i < 4; i++ {
				wall = append(wall, Tile{Suit: SuitHonor, Value: v})
			}
		}
	}
	if p.Flowers {
		for v := int8(1); v <= 8; v++ {
			wall = append(wall, Tile{Suit: SuitFlower, Value: v})
		}
	}
	return wall
}

// Shuffle Fisher-Yates 洗牌, rng 为 nil 时使用全局随机源
func Shuffle(w Wall, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(w) - 1; i > 0; i-- {
		j := intN(i + 1)
		w[i], w[j] = w[j], w[i]
	}
}

// Deal 从牌墙前端为每个座位发 handSize 张, 庄家多发一张
func Deal(w *Wall, seats, handSize, dealer int) ([]PlayerState, error) {
	if seats <= 0 || dealer < 0 || dealer >= seats {
		return nil, ErrInvalidSeats.WithContext("seats", seats).WithContext("dealer", dealer)
	}
	need := seats*handSize + 1
	if need > w.Len() {
		return nil, ErrWallTooSmall.WithContext("need", need).WithContext("have", w.Len())
	}

	players := make([]PlayerState, seats)
	for i := range players {
		players[i] = PlayerState{
			Seat:     i,
			Hand:     make([]Tile, 0, handSize+1),
			Discards: []Tile{},
			Melds:    []Meld{},
			Que:      SuitNone,
		}
	}
	for i := 0; i < handSize; i++ {
		for s := 0; s < seats; s++ {
			t, _ := w.Draw()
			players[s].Hand = append(players[s].Hand, t)
		}
	}
	t, _ := w.Draw()
	players[dealer].Hand = append(players[dealer].Hand, t)

	for i := range players {
		SortTiles(players[i].Hand)
	}
	return players, nil
}

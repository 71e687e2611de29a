package core

import (
	"sort"
	"strings"
)

// SortTiles 对牌进行排序 (万饼条字花, 同花色按点数)
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Suit != tiles[j].Suit {
			return tiles[i].Suit < tiles[j].Suit
		}
		return tiles[i].Value < tiles[j].Value
	})
}

// CountTile 统计某张牌的数量
func CountTile(tiles []Tile, target Tile) int {
	count := 0
	for _, t := range tiles {
		if t.Equal(target) {
			count++
		}
	}
	return count
}

// RemoveTile 返回移除一张 target 后的新牌组, 不修改入参
func RemoveTile(tiles []Tile, target Tile) ([]Tile, bool) {
	for i, t := range tiles {
		if t.Equal(target) {
			result := make([]Tile, 0, len(tiles)-1)
			result = append(result, tiles[:i]...)
			return append(result, tiles[i+1:]...), true
		}
	}
	return tiles, false
}

// RemoveTiles 返回移除多张牌后的新牌组; 任一张不存在时返回 false 且不修改入参
func RemoveTiles(tiles []Tile, targets []Tile) ([]Tile, bool) {
	result := CloneTiles(tiles)
	for _, target := range targets {
		var ok bool
		if result, ok = RemoveTile(result, target); !ok {
			return tiles, false
		}
	}
	return result, true
}

// ContainsTile 检查牌组是否包含某张牌
func ContainsTile(tiles []Tile, target Tile) bool {
	return CountTile(tiles, target) > 0
}

// ContainsTiles 检查牌组是否包含多张牌 (按张数计)
func ContainsTiles(tiles []Tile, targets []Tile) bool {
	_, ok := RemoveTiles(tiles, targets)
	return ok
}

// CloneTiles 克隆牌组
func CloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	result := make([]Tile, len(tiles))
	copy(result, tiles)
	return result
}

// AppendTile 返回追加一张牌后的新牌组, 不共享底层数组
func AppendTile(tiles []Tile, t Tile) []Tile {
	result := make([]Tile, len(tiles), len(tiles)+1)
	copy(result, tiles)
	return append(result, t)
}

// Counts 统计 34 种可计数牌的数量, 花牌忽略
func Counts(tiles []Tile) [TileKinds]int {
	var counts [TileKinds]int
	for _, t := range tiles {
		if i := t.Index(); i >= 0 {
			counts[i]++
		}
	}
	return counts
}

// MeldTiles 展开所有副露中的牌
func MeldTiles(melds []Meld) []Tile {
	var tiles []Tile
	for _, m := range melds {
		tiles = append(tiles, m.Tiles...)
	}
	return tiles
}

// Repeat 生成 n 张相同的牌
func Repeat(t Tile, n int) []Tile {
	tiles := make([]Tile, n)
	for i := range tiles {
		tiles[i] = t
	}
	return tiles
}

// TilesString 以空格拼接线路编码
func TilesString(tiles []Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// IsSequence 检查是否为顺子 (3张连续的同花色数牌)
func IsSequence(tiles []Tile) bool {
	if len(tiles) != 3 {
		return false
	}
	if tiles[0].Suit != tiles[1].Suit || tiles[1].Suit != tiles[2].Suit {
		return false
	}
	// 字牌、花牌不能组成顺子
	if !tiles[0].Suit.IsNumbered() {
		return false
	}

	sorted := CloneTiles(tiles)
	SortTiles(sorted)
	return sorted[1].Value == sorted[0].Value+1 && sorted[2].Value == sorted[1].Value+1
}

// IsTriplet 检查是否为刻子 (3张相同的牌)
func IsTriplet(tiles []Tile) bool {
	if len(tiles) != 3 {
		return false
	}
	return tiles[0].Equal(tiles[1]) && tiles[1].Equal(tiles[2])
}

// IsQuad 检查是否为杠 (4张相同的牌)
func IsQuad(tiles []Tile) bool {
	if len(tiles) != 4 {
		return false
	}
	return tiles[0].Equal(tiles[1]) && tiles[1].Equal(tiles[2]) && tiles[2].Equal(tiles[3])
}

// CanFormMeld 检查牌是否符合副露类型
func CanFormMeld(tiles []Tile, kind MeldKind) bool {
	switch kind {
	case MeldPeng:
		return IsTriplet(tiles)
	case MeldGang, MeldAnGang, MeldBuGang:
		return IsQuad(tiles)
	case MeldChi:
		return IsSequence(tiles)
	default:
		return false
	}
}

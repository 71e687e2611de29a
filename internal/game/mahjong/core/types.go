package core

import (
	"fmt"
	"strings"
)

// Suit 牌的花色
type Suit int8

// SuitNone 无花色 (未定缺)
const SuitNone Suit = -1

const (
	SuitWan    Suit = iota // 万 W
	SuitBing               // 饼 B
	SuitTiao               // 条 T
	SuitHonor              // 字牌 Z (1东2南3西4北5中6发7白)
	SuitFlower             // 花牌 F
)

var suitCodes = map[Suit]byte{
	SuitWan:    'W',
	SuitBing:   'B',
	SuitTiao:   'T',
	SuitHonor:  'Z',
	SuitFlower: 'F',
}

// NumberedSuits 三门数牌
var NumberedSuits = []Suit{SuitWan, SuitBing, SuitTiao}

// Code 花色的单字符编码
func (s Suit) Code() byte {
	return suitCodes[s]
}

// String 返回花色的字符串表示
func (s Suit) String() string {
	switch s {
	case SuitWan:
		return "万"
	case SuitBing:
		return "饼"
	case SuitTiao:
		return "条"
	case SuitHonor:
		return "字"
	case SuitFlower:
		return "花"
	default:
		return "无"
	}
}

// IsNumbered 是否数牌花色
func (s Suit) IsNumbered() bool {
	return s == SuitWan || s == SuitBing || s == SuitTiao
}

// MarshalText 花色编码为单字符, 无花色编码为空串
func (s Suit) MarshalText() ([]byte, error) {
	if s == SuitNone {
		return []byte{}, nil
	}
	c, ok := suitCodes[s]
	if !ok {
		return nil, ErrInvalidTile.WithContext("suit", int(s))
	}
	return []byte{c}, nil
}

// UnmarshalText 解析花色编码
func (s *Suit) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = SuitNone
		return nil
	}
	suit, ok := ParseSuit(text[0])
	if !ok || len(text) != 1 {
		return ErrInvalidTile.WithContext("suit", string(text))
	}
	*s = suit
	return nil
}

// ParseSuit 解析单字符花色
func ParseSuit(c byte) (Suit, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for suit, code := range suitCodes {
		if code == c {
			return suit, true
		}
	}
	return SuitNone, false
}

// Tile 麻将牌, 以编码区分, 同编码的牌可互换
type Tile struct {
	Suit  Suit `json:"suit"`
	Value int8 `json:"value"`
}

// NewTile 创建牌
func NewTile(suit Suit, value int8) Tile {
	return Tile{Suit: suit, Value: value}
}

// MaxValue 每种花色的最大点数
func MaxValue(s Suit) int8 {
	switch s {
	case SuitHonor:
		return 7
	case SuitFlower:
		return 8
	case SuitWan, SuitBing, SuitTiao:
		return 9
	default:
		return 0
	}
}

// Valid 是否合法的牌编码
func (t Tile) Valid() bool {
	return t.Value >= 1 && t.Value <= MaxValue(t.Suit)
}

// String 线路编码: 点数字符 + 花色字符, 例如 "5W" "7Z"
func (t Tile) String() string {
	if !t.Valid() {
		return "??"
	}
	return string([]byte{byte('0' + t.Value), t.Suit.Code()})
}

// Equal 判断两张牌是否相同
func (t Tile) Equal(other Tile) bool {
	return t.Suit == other.Suit && t.Value == other.Value
}

// IsHonor 是否字牌
func (t Tile) IsHonor() bool {
	return t.Suit == SuitHonor
}

// IsFlower 是否花牌
func (t Tile) IsFlower() bool {
	return t.Suit == SuitFlower
}

// IsTerminal 是否幺九
func (t Tile) IsTerminal() bool {
	return t.Suit.IsNumbered() && (t.Value == 1 || t.Value == 9)
}

// IsTerminalOrHonor 是否幺九或字牌
func (t Tile) IsTerminalOrHonor() bool {
	return t.IsTerminal() || t.IsHonor()
}

// IsSimple 是否中张 (2-8 数牌)
func (t Tile) IsSimple() bool {
	return t.Suit.IsNumbered() && t.Value >= 2 && t.Value <= 8
}

// TileKinds 可计数的牌种类数 (三门数牌 + 字牌)
const TileKinds = 34

// Index 映射到 0..33 的计数下标, 花牌返回 -1
func (t Tile) Index() int {
	switch t.Suit {
	case SuitWan, SuitBing, SuitTiao:
		return int(t.Suit)*9 + int(t.Value) - 1
	case SuitHonor:
		return 27 + int(t.Value) - 1
	default:
		return -1
	}
}

// TileFromIndex 由计数下标还原牌
func TileFromIndex(i int) Tile {
	if i >= 27 {
		return Tile{Suit: SuitHonor, Value: int8(i - 27 + 1)}
	}
	return Tile{Suit: Suit(i / 9), Value: int8(i%9 + 1)}
}

// MarshalText 实现 encoding.TextMarshaler, 便于 JSON / redis / NATS 传输
func (t Tile) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidTile.WithContext("tile", fmt.Sprintf("%d/%d", t.Suit, t.Value))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (t *Tile) UnmarshalText(text []byte) error {
	tile, err := ParseTile(string(text))
	if err != nil {
		return err
	}
	*t = tile
	return nil
}

// ParseTile 解析线路编码
func ParseTile(code string) (Tile, error) {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return Tile{}, ErrInvalidTile.WithContext("code", code)
	}
	suit, ok := ParseSuit(code[1])
	if !ok || code[0] < '1' || code[0] > '9' {
		return Tile{}, ErrInvalidTile.WithContext("code", code)
	}
	t := Tile{Suit: suit, Value: int8(code[0] - '0')}
	if !t.Valid() {
		return Tile{}, ErrInvalidTile.WithContext("code", code)
	}
	return t, nil
}

// ParseTiles 解析以空白或逗号分隔的多张牌
func ParseTiles(s string) ([]Tile, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	tiles := make([]Tile, 0, len(fields))
	for _, f := range fields {
		t, err := ParseTile(f)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// MustParseTiles 解析多张牌, 失败时 panic (仅用于常量构造和测试)
func MustParseTiles(s string) []Tile {
	tiles, err := ParseTiles(s)
	if err != nil {
		panic(err)
	}
	return tiles
}

// MustParseTile 解析单张牌, 失败时 panic
func MustParseTile(s string) Tile {
	t, err := ParseTile(s)
	if err != nil {
		panic(err)
	}
	return t
}

// NoSeat 无来源座位 (暗杠、自摸)
const NoSeat = -1

// MeldKind 副露类型
type MeldKind string

const (
	MeldChi    MeldKind = "CHI"    // 吃
	MeldPeng   MeldKind = "PENG"   // 碰
	MeldGang   MeldKind = "GANG"   // 明杠
	MeldAnGang MeldKind = "ANGANG" // 暗杠
	MeldBuGang MeldKind = "BUGANG" // 补杠 (加杠)
)

// Meld 副露
type Meld struct {
	Kind  MeldKind `json:"kind"`
	Tiles []Tile   `json:"tiles"`
	From  int      `json:"from"` // 被吃碰杠的出牌座位, 暗杠为 NoSeat
}

// IsKong 是否杠
func (m Meld) IsKong() bool {
	return m.Kind == MeldGang || m.Kind == MeldAnGang || m.Kind == MeldBuGang
}

// Clone 深拷贝
func (m Meld) Clone() Meld {
	m.Tiles = CloneTiles(m.Tiles)
	return m
}

// PlayerState 座位状态
type PlayerState struct {
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Hand     []Tile `json:"hand"`
	Discards []Tile `json:"discards"`
	Melds    []Meld `json:"melds"`
	Flowers  []Tile `json:"flowers,omitempty"`
	Score    int    `json:"score"`
	IsWinner bool   `json:"isWinner"`
	Que      Suit   `json:"que"` // 定缺花色, 未定缺为 SuitNone
}

// Clone 深拷贝
func (p PlayerState) Clone() PlayerState {
	p.Hand = CloneTiles(p.Hand)
	p.Discards = CloneTiles(p.Discards)
	p.Flowers = CloneTiles(p.Flowers)
	if p.Melds != nil {
		melds := make([]Meld, len(p.Melds))
		for i, m := range p.Melds {
			melds[i] = m.Clone()
		}
		p.Melds = melds
	}
	return p
}

// MeldTileCount 副露中的牌数
func (p *PlayerState) MeldTileCount() int {
	n := 0
	for _, m := range p.Melds {
		n += len(m.Tiles)
	}
	return n
}

// HoldsQue 手中是否仍有定缺花色的牌
func (p *PlayerState) HoldsQue() bool {
	if p.Que == SuitNone {
		return false
	}
	for _, t := range p.Hand {
		if t.Suit == p.Que {
			return true
		}
	}
	return false
}

// Discard 最近一张打出的牌
type Discard struct {
	Tile Tile `json:"tile"`
	From int  `json:"from"`
}

// TableSnapshot 一局牌的唯一权威状态, 单写者
type TableSnapshot struct {
	Wall        Wall          `json:"wall"`
	Players     []PlayerState `json:"players"`
	Turn        int           `json:"turn"`
	Dealer      int           `json:"dealer"`
	LastDiscard *Discard      `json:"lastDiscard,omitempty"`
	RoundActive bool          `json:"roundActive"`
	Winners     []int         `json:"winners"`
	Profile     Profile       `json:"profile"`
	HandNumber  int           `json:"handNumber"`
}

// Clone 深拷贝快照
func (s *TableSnapshot) Clone() *TableSnapshot {
	c := *s
	c.Wall = Wall(CloneTiles(s.Wall))
	if s.Players != nil {
		c.Players = make([]PlayerState, len(s.Players))
		for i, p := range s.Players {
			c.Players[i] = p.Clone()
		}
	}
	if s.LastDiscard != nil {
		d := *s.LastDiscard
		c.LastDiscard = &d
	}
	if s.Winners != nil {
		c.Winners = append(make([]int, 0, len(s.Winners)), s.Winners...)
	}
	c.Profile = s.Profile.Clone()
	return &c
}

// SeatCount 座位数
func (s *TableSnapshot) SeatCount() int {
	return len(s.Players)
}

// Player 根据座位获取玩家
func (s *TableSnapshot) Player(seat int) *PlayerState {
	if seat < 0 || seat >= len(s.Players) {
		return nil
	}
	return &s.Players[seat]
}

// ActiveSeats 尚未胡牌的座位
func (s *TableSnapshot) ActiveSeats() []int {
	seats := make([]int, 0, len(s.Players))
	for i := range s.Players {
		if !s.Players[i].IsWinner {
			seats = append(seats, i)
		}
	}
	return seats
}

// NextActive 从 from 的下家开始找第一个未胡牌座位, 没有则返回 NoSeat
func (s *TableSnapshot) NextActive(from int) int {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		seat := (from + step) % n
		if !s.Players[seat].IsWinner {
			return seat
		}
	}
	return NoSeat
}

// SeatsFrom 从 from 的下家开始按座次排列的其他座位
func (s *TableSnapshot) SeatsFrom(from int) []int {
	n := len(s.Players)
	seats := make([]int, 0, n-1)
	for step := 1; step < n; step++ {
		seats = append(seats, (from+step)%n)
	}
	return seats
}

// TileCount 牌墙 + 手牌 + 弃牌 + 副露 + 花牌 总数
func (s *TableSnapshot) TileCount() int {
	n := len(s.Wall)
	for i := range s.Players {
		p := &s.Players[i]
		n += len(p.Hand) + len(p.Discards) + p.MeldTileCount() + len(p.Flowers)
	}
	return n
}

// ActionType 对出牌的响应类型
type ActionType string

const (
	ActionHu   ActionType = "HU"
	ActionGang ActionType = "GANG"
	ActionPeng ActionType = "PENG"
	ActionChi  ActionType = "CHI"
)

// Priority 响应优先级: 胡 > 杠 > 碰 > 吃
func (a ActionType) Priority() int {
	switch a {
	case ActionHu:
		return 100
	case ActionGang:
		return 90
	case ActionPeng:
		return 80
	case ActionChi:
		return 70
	default:
		return 0
	}
}

// Reaction 一个座位对当前出牌的合法响应集合
type Reaction struct {
	Seat       int          `json:"seat"`
	Actions    []ActionType `json:"actions"`
	ChiOptions [][]Tile     `json:"chiOptions,omitempty"`
}

// Has 是否包含某种响应
func (r Reaction) Has(a ActionType) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Best 最高优先级的响应
func (r Reaction) Best() ActionType {
	var best ActionType
	for _, a := range r.Actions {
		if a.Priority() > best.Priority() {
			best = a
		}
	}
	return best
}

// WinContext 和牌时的场况
type WinContext struct {
	SelfDraw bool `json:"selfDraw"` // 自摸
	Rinshan  bool `json:"rinshan"`  // 杠上开花
	RobKong  bool `json:"robKong"`  // 抢杠胡
	Flowers  int  `json:"flowers"`  // 花牌数
}

// WinResult 和牌结果
type WinResult struct {
	Won    bool     `json:"won"`
	Labels []string `json:"labels"`
	Fan    int      `json:"fan"`
}

// Transfer 分数转移记录
type Transfer struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

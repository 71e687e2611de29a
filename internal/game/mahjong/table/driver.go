package table

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/rules"
)

// Options 牌局驱动选项
type Options struct {
	Providers []decision.Provider // 按座位的出牌决策, nil 使用本地启发式
	Policy    decision.MeldPolicy // 杠碰吃策略, nil 使用向听数策略
	Sink      EventSink
	Control   *Control
	Timeout   time.Duration // 单次决策超时
	Logger    *slog.Logger
}

// HandSetup 开局参数
type HandSetup struct {
	Dealer     int
	HandNumber int
	Scores     []int
	Names      []string
	Rand       *rand.Rand
}

// NewHand 按规则配置洗牌发牌, 生成一局的初始快照
func NewHand(profile core.Profile, setup HandSetup) (*core.TableSnapshot, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	wall := core.BuildWall(profile)
	core.Shuffle(wall, setup.Rand)
	players, err := core.Deal(&wall, profile.Seats, profile.HandSize, setup.Dealer)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if i < len(setup.Scores) {
			players[i].Score = setup.Scores[i]
		}
		if i < len(setup.Names) {
			players[i].Name = setup.Names[i]
		}
	}
	return &core.TableSnapshot{
		Wall:        wall,
		Players:     players,
		Turn:        setup.Dealer,
		Dealer:      setup.Dealer,
		RoundActive: true,
		Winners:     []int{},
		Profile:     profile.Clone(),
		HandNumber:  setup.HandNumber,
	}, nil
}

// WinRecord 一次和牌
type WinRecord struct {
	Seat     int      `json:"seat"`
	From     int      `json:"from"` // 点炮座位, 自摸为 NoSeat
	Tile     string   `json:"tile"`
	Fan      int      `json:"fan"`
	Labels   []string `json:"labels"`
	SelfDraw bool     `json:"selfDraw"`
}

// HandResult 一局结果
type HandResult struct {
	Hand      int         `json:"hand"`
	Winners   []int       `json:"winners"`
	Wins      []WinRecord `json:"wins"`
	Scores    []int       `json:"scores"`
	Exhausted bool        `json:"exhausted"`
	Stopped   bool        `json:"stopped"`
}

// turnStart 回合开始的方式
type turnStart int

const (
	startDraw        turnStart = iota // 从牌墙前端摸牌
	startReplacement                  // 明杠后从牌墙尾部补牌
	startHolding                      // 庄家首轮, 已持有 14 张
	startClaimed                      // 吃碰后直接出牌
)

// Driver 单局状态机
type Driver struct {
	snap      *core.TableSnapshot
	profile   core.Profile
	analyzer  *analyzer.Analyzer
	scorer    *rules.Scorer
	providers []decision.Provider
	policy    decision.MeldPolicy
	sink      EventSink
	control   *Control
	logger    *slog.Logger

	published atomic.Pointer[core.TableSnapshot]
	result    HandResult
	lastDraw  *core.Tile
}

// NewDriver 接管 snap 驱动一局; snap 此后只应通过 Snapshot 读取
func NewDriver(snap *core.TableSnapshot, opts Options) (*Driver, error) {
	if snap == nil {
		return nil, core.ErrHandNotActive
	}
	profile := snap.Profile
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if len(snap.Players) != profile.Seats {
		return nil, core.ErrInvalidSeats.WithContext("players", len(snap.Players)).WithContext("seats", profile.Seats)
	}

	a := analyzer.New(analyzer.ForProfile(profile))
	heuristic := decision.NewHeuristic(a)
	providers := make([]decision.Provider, profile.Seats)
	for i := range providers {
		var inner decision.Provider
		if i < len(opts.Providers) {
			inner = opts.Providers[i]
		}
		providers[i] = decision.NewGuarded(inner, heuristic, opts.Timeout)
	}

	d := &Driver{
		snap:      snap,
		profile:   profile,
		analyzer:  a,
		scorer:    rules.NewScorer(profile, a),
		providers: providers,
		policy:    opts.Policy,
		sink:      opts.Sink,
		control:   opts.Control,
		logger:    opts.Logger,
	}
	if d.policy == nil {
		d.policy = decision.NewShantenPolicy(a)
	}
	if d.control == nil {
		d.control = NewControl()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.result = HandResult{Hand: snap.HandNumber, Winners: []int{}}
	d.publish()
	return d, nil
}

// Snapshot 最近一步之后的快照副本, 可并发调用
func (d *Driver) Snapshot() *core.TableSnapshot {
	return d.published.Load().Clone()
}

// Control 返回控制器
func (d *Driver) Control() *Control {
	return d.control
}

func (d *Driver) publish() {
	d.published.Store(d.snap.Clone())
}

func (d *Driver) emit(ctx context.Context, e Event) {
	d.publish()
	if d.sink == nil {
		return
	}
	if err := d.sink.Emit(ctx, e); err != nil {
		d.logger.Warn("事件投递失败", "type", e.Type, "hand", e.Hand, "error", err)
	}
}

func (d *Driver) event(typ EventType, seat int) Event {
	return newEvent(typ, d.snap.HandNumber, seat)
}

// PlayHand 打完一局. 被 Control 停止时返回已完成部分的结果与 ErrHandStopped
func (d *Driver) PlayHand(ctx context.Context) (HandResult, error) {
	s := d.snap
	if !s.RoundActive {
		return d.result, core.ErrHandNotActive
	}

	start := d.event(EventHandStart, s.Dealer)
	start.Scores = d.scores()
	d.emit(ctx, start)

	d.setAside()
	if d.profile.DingQue {
		rules.AssignQue(s)
		for i := range s.Players {
			e := d.event(EventQue, i)
			e.Reason = s.Players[i].Que.String()
			d.emit(ctx, e)
		}
	}

	next := startHolding
	for s.RoundActive {
		if err := d.control.Checkpoint(ctx); err != nil {
			return d.abort(ctx, err)
		}
		var err error
		next, err = d.turn(ctx, next)
		if err != nil {
			return d.abort(ctx, err)
		}
	}
	return d.finish(ctx), nil
}

// turn 一个回合: 摸牌, 杠, 自摸, 出牌, 响应
func (d *Driver) turn(ctx context.Context, start turnStart) (turnStart, error) {
	s := d.snap
	seat := s.Turn
	rinshan := false
	d.lastDraw = nil

	switch start {
	case startDraw:
		if !d.draw(ctx, seat, false) {
			d.exhaust(ctx)
			return startDraw, nil
		}
	case startReplacement:
		if !d.draw(ctx, seat, true) {
			d.exhaust(ctx)
			return startDraw, nil
		}
		rinshan = true
	}

	if start != startClaimed {
		for {
			kong, robbed := d.kong(ctx, seat)
			if robbed {
				return startDraw, nil
			}
			if !kong {
				break
			}
			if !d.draw(ctx, seat, true) {
				d.exhaust(ctx)
				return startDraw, nil
			}
			rinshan = true
		}

		if rules.CanSelfWin(d.profile, s.Player(seat), d.analyzer) {
			d.selfWin(ctx, seat, rinshan)
			return startDraw, nil
		}
	}

	if err := d.discard(ctx, seat); err != nil {
		return startDraw, err
	}
	return d.reactionWindow(ctx), nil
}

// draw 摸一张牌, 花牌放到一边并从尾部补牌; 牌墙空时返回 false
func (d *Driver) draw(ctx context.Context, seat int, back bool) bool {
	s := d.snap
	p := s.Player(seat)
	for {
		var (
			t  core.Tile
			ok bool
		)
		if back {
			t, ok = s.Wall.DrawBack()
		} else {
			t, ok = s.Wall.Draw()
		}
		if !ok {
			return false
		}
		if t.IsFlower() {
			p.Flowers = append(p.Flowers, t)
			e := d.event(EventFlower, seat)
			e.Tile = tilePtr(t)
			d.emit(ctx, e)
			back = true
			continue
		}
		p.Hand = core.AppendTile(p.Hand, t)
		core.SortTiles(p.Hand)
		d.lastDraw = tilePtr(t)
		e := d.event(EventDraw, seat)
		e.Tile = tilePtr(t)
		if back {
			e.Reason = "replacement"
		}
		d.emit(ctx, e)
		return true
	}
}

// setAside 开局把手中花牌放到一边并补牌, 从庄家开始
func (d *Driver) setAside() {
	s := d.snap
	if !d.profile.Flowers {
		return
	}
	for _, seat := range append([]int{s.Dealer}, s.SeatsFrom(s.Dealer)...) {
		p := s.Player(seat)
		for {
			var kept []core.Tile
			n := 0
			for _, t := range p.Hand {
				if t.IsFlower() {
					p.Flowers = append(p.Flowers, t)
					n++
					continue
				}
				kept = append(kept, t)
			}
			p.Hand = kept
			if n == 0 {
				break
			}
			for i := 0; i < n; i++ {
				if t, ok := s.Wall.DrawBack(); ok {
					p.Hand = append(p.Hand, t)
				}
			}
		}
		core.SortTiles(p.Hand)
	}
}

// kong 尝试暗杠, 再尝试补杠. robbed 为补杠被抢杠胡
func (d *Driver) kong(ctx context.Context, seat int) (kong, robbed bool) {
	s := d.snap
	p := s.Player(seat)
	if s.Wall.Len() == 0 {
		return false, false
	}

	for _, t := range rules.FindConcealedKongs(p.Hand) {
		if d.queSuit(p, t) || !d.policy.AcceptKong(p.Hand, len(p.Melds), core.MeldAnGang, t) {
			continue
		}
		out := rules.ApplyConcealedKong(s, seat, t)
		if !out.Applied {
			continue
		}
		d.emitKong(ctx, seat, out.Meld)
		return true, false
	}

	for _, t := range rules.FindAddOnKongs(p.Hand, p.Melds) {
		if d.queSuit(p, t) || !d.policy.AcceptKong(p.Hand, len(p.Melds), core.MeldBuGang, t) {
			continue
		}
		if winners := rules.RobKongWinners(s, seat, t, d.analyzer); len(winners) > 0 {
			e := d.event(EventRobKong, seat)
			e.Tile = tilePtr(t)
			d.emit(ctx, e)
			// 被抢的牌离开杠牌者手牌, 由 declareWins 交给第一位和牌者
			hand, _ := core.RemoveTile(p.Hand, t)
			p.Hand = hand
			d.declareWins(ctx, winners, seat, t, core.WinContext{RobKong: true})
			return false, true
		}
		out := rules.ApplyAddOnKong(s, seat, t)
		if !out.Applied {
			continue
		}
		d.emitKong(ctx, seat, out.Meld)
		return true, false
	}
	return false, false
}

func (d *Driver) queSuit(p *core.PlayerState, t core.Tile) bool {
	return d.profile.DingQue && p.Que != core.SuitNone && t.Suit == p.Que
}

func (d *Driver) emitKong(ctx context.Context, seat int, m core.Meld) {
	e := d.event(EventKong, seat)
	e.Tile = tilePtr(m.Tiles[0])
	e.Meld = &m
	e.From = m.From
	d.emit(ctx, e)
}

// discard 由决策提供者选牌并打出
func (d *Driver) discard(ctx context.Context, seat int) error {
	s := d.snap
	p := s.Player(seat)
	req := decision.NewRequest(s, seat)
	dec, err := d.providers[seat].Decide(ctx, req)
	if err != nil {
		return err
	}
	hand, ok := core.RemoveTile(p.Hand, dec.Tile)
	if !ok {
		return decision.ErrTileNotInHandFor(seat, dec.Tile)
	}
	p.Hand = hand
	p.Discards = append(p.Discards, dec.Tile)
	s.LastDiscard = &core.Discard{Tile: dec.Tile, From: seat}

	e := d.event(EventDiscard, seat)
	e.Tile = tilePtr(dec.Tile)
	e.Reason = dec.Reason
	e.Source = dec.Source
	d.emit(ctx, e)
	return nil
}

// reactionWindow 处理他家对弃牌的响应, 返回下一回合的开始方式
func (d *Driver) reactionWindow(ctx context.Context) turnStart {
	s := d.snap
	ld := *s.LastDiscard
	reactions := rules.CollectReactions(s, d.analyzer)

	if resolved := rules.Resolve(reactions); len(resolved) > 0 && resolved[0].Has(core.ActionHu) {
		seats := make([]int, len(resolved))
		for i, r := range resolved {
			seats[i] = r.Seat
		}
		from := s.Player(ld.From)
		from.Discards = from.Discards[:len(from.Discards)-1]
		s.LastDiscard = nil
		d.declareWins(ctx, seats, ld.From, ld.Tile, core.WinContext{})
		return startDraw
	}

	for _, action := range []core.ActionType{core.ActionGang, core.ActionPeng, core.ActionChi} {
		for _, r := range reactions {
			if !r.Has(action) {
				continue
			}
			if start, ok := d.claim(ctx, r, action, ld); ok {
				return start
			}
		}
	}

	s.LastDiscard = nil
	s.Turn = s.NextActive(ld.From)
	d.publish()
	return startDraw
}

// claim 按策略尝试一次吃碰杠
func (d *Driver) claim(ctx context.Context, r core.Reaction, action core.ActionType, ld core.Discard) (turnStart, bool) {
	s := d.snap
	p := s.Player(r.Seat)

	options := [][]core.Tile{nil}
	if action == core.ActionChi {
		options = r.ChiOptions
	}
	for _, run := range options {
		kind, tiles := rules.ClaimTiles(action, ld.Tile, run)
		if kind == "" || !d.policy.AcceptClaim(p.Hand, len(p.Melds), ld.Tile, tiles) {
			continue
		}
		out := rules.ApplyMeld(s, r.Seat, kind, tiles)
		if !out.Applied {
			d.logger.Warn("副露被拒绝", "seat", r.Seat, "kind", kind, "reason", out.Reason)
			continue
		}
		e := d.event(EventMeld, r.Seat)
		e.Tile = tilePtr(ld.Tile)
		e.Meld = &out.Meld
		e.From = ld.From
		d.emit(ctx, e)
		if kind == core.MeldGang {
			return startReplacement, true
		}
		return startClaimed, true
	}
	return startDraw, false
}

// selfWin 自摸
func (d *Driver) selfWin(ctx context.Context, seat int, rinshan bool) {
	p := d.snap.Player(seat)
	res := d.scorer.Score(p.Hand, p.Melds, core.WinContext{
		SelfDraw: true,
		Rinshan:  rinshan,
		Flowers:  len(p.Flowers),
	})
	winning := p.Hand[len(p.Hand)-1]
	if d.lastDraw != nil && d.snap.Turn == seat && core.ContainsTile(p.Hand, *d.lastDraw) {
		winning = *d.lastDraw
	}
	d.settle(ctx, seat, core.NoSeat, winning, res, true)
	d.finishWins(seat)
}

// declareWins 点炮或抢杠: 所有和牌座位一起结算, 和牌张归座次最前的和牌者
func (d *Driver) declareWins(ctx context.Context, seats []int, from int, t core.Tile, wc core.WinContext) {
	s := d.snap
	for i, seat := range seats {
		p := s.Player(seat)
		hand := core.AppendTile(p.Hand, t)
		wc.Flowers = len(p.Flowers)
		res := d.scorer.Score(hand, p.Melds, wc)
		if i == 0 {
			p.Hand = hand
			core.SortTiles(p.Hand)
		}
		d.settle(ctx, seat, from, t, res, false)
	}
	d.finishWins(from)
}

// settle 结算并标记和牌座位
func (d *Driver) settle(ctx context.Context, seat, from int, t core.Tile, res core.WinResult, selfDraw bool) {
	s := d.snap
	before := d.scores()
	players, transfers := rules.Settle(s.Players, seat, from, res.Fan, d.profile.BaseScore)
	s.Players = players
	p := s.Player(seat)
	p.IsWinner = true
	s.Winners = append(s.Winners, seat)

	e := d.event(EventWin, seat)
	e.Tile = tilePtr(t)
	e.From = from
	e.Fan = res.Fan
	e.Labels = res.Labels
	e.Transfers = transfers
	e.Scores = d.scores()
	e.Deltas = make([]int, len(before))
	for i := range before {
		e.Deltas[i] = e.Scores[i] - before[i]
	}
	d.emit(ctx, e)

	d.result.Winners = append(d.result.Winners, seat)
	d.result.Wins = append(d.result.Wins, WinRecord{
		Seat:     seat,
		From:     from,
		Tile:     t.String(),
		Fan:      res.Fan,
		Labels:   res.Labels,
		SelfDraw: selfDraw,
	})
}

// finishWins 和牌后的推进: 非血战或仅剩一家时结束, 否则轮到 from 下家起第一个未和座位.
// 点炮与抢杠时 from 为放炮者, 自摸时为和牌者
func (d *Driver) finishWins(from int) {
	s := d.snap
	if !d.profile.BattleToEnd || len(s.ActiveSeats()) <= 1 {
		s.RoundActive = false
	} else {
		s.Turn = s.NextActive(from)
	}
	d.publish()
}

func (d *Driver) exhaust(ctx context.Context) {
	d.snap.RoundActive = false
	d.result.Exhausted = true
	d.emit(ctx, d.event(EventExhausted, d.snap.Turn))
}

func (d *Driver) abort(ctx context.Context, err error) (HandResult, error) {
	d.snap.RoundActive = false
	if errors.Is(err, core.ErrHandStopped) {
		d.result.Stopped = true
		d.emit(ctx, d.event(EventStopped, d.snap.Turn))
	}
	d.result.Scores = d.scores()
	d.publish()
	return d.result, err
}

func (d *Driver) finish(ctx context.Context) HandResult {
	d.result.Scores = d.scores()
	e := d.event(EventHandEnd, d.snap.Dealer)
	e.Scores = d.result.Scores
	d.emit(ctx, e)
	return d.result
}

func (d *Driver) scores() []int {
	out := make([]int, len(d.snap.Players))
	for i := range d.snap.Players {
		out[i] = d.snap.Players[i].Score
	}
	return out
}

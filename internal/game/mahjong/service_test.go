package mahjong

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
	"github.com/woshisimox/mahjong-ai-match/internal/game"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/decision"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
	"github.com/woshisimox/mahjong-ai-match/internal/storage"
	"github.com/woshisimox/mahjong-ai-match/internal/task"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]table.Event
}

func (p *recordingPublisher) Sink(roomID string) table.EventSink {
	return table.SinkFunc(func(_ context.Context, e table.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.events[roomID] = append(p.events[roomID], e)
		return nil
	})
}

func (p *recordingPublisher) count(roomID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[roomID])
}

// loopbackRequester 把远程请求交给同一服务的本地决策
type loopbackRequester struct {
	svc   *Service
	calls atomic.Int32
}

func (l *loopbackRequester) RequestWithContext(ctx context.Context, _ string, data []byte) (*nats.Msg, error) {
	l.calls.Add(1)
	var req decision.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	d, err := l.svc.Decide(ctx, req)
	reply := decision.Reply{Decision: &d}
	if err != nil {
		reply = decision.Reply{Error: err.Error()}
	}
	out, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Data: out}, nil
}

func newTestService(t *testing.T, start bool) (*Service, *task.WorkerPool, *recordingPublisher, *loopbackRequester) {
	t.Helper()
	pool := task.NewWorkerPool(2)
	if start {
		pool.Start()
	}
	rooms := game.NewRoomManager(0, time.Minute)
	pub := &recordingPublisher{events: map[string][]table.Event{}}
	remote := &loopbackRequester{}
	svc := NewService(config.EngineConfig{
		Profile:         string(core.ProfileSichuan),
		Hands:           1,
		Seed:            11,
		ProviderTimeout: 5 * time.Second,
	}, Deps{
		Store:     storage.NewMemory(),
		Publisher: pub,
		Remote:    remote,
		Pool:      pool,
		Rooms:     rooms,
	})
	remote.svc = svc
	t.Cleanup(func() {
		_ = rooms.Shutdown(context.Background())
		pool.Stop()
	})
	return svc, pool, pub, remote
}

func waitResult(t *testing.T, svc *Service, roomID string) *table.MatchResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	res, err := svc.Wait(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestServiceRunsMatch(t *testing.T) {
	svc, _, pub, _ := newTestService(t, true)
	ctx := context.Background()

	info, err := svc.Start(ctx, StartRequest{Hands: 2, Names: []string{"东", "南", "西", "北"}})
	require.NoError(t, err)
	assert.Equal(t, core.ProfileSichuan, info.Profile)

	res := waitResult(t, svc, info.ID)
	assert.Len(t, res.Hands, 2)
	sum := 0
	for _, s := range res.Scores {
		sum += s
	}
	assert.Zero(t, sum)

	room, err := svc.Room(info.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, room.Status)

	events, err := svc.Events(ctx, info.ID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, table.EventHandStart, events[0].Type)
	assert.Equal(t, table.EventHandEnd, events[len(events)-1].Type)
	assert.Positive(t, pub.count(info.ID))

	snap, err := svc.Snapshot(ctx, info.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.HandNumber)
	assert.Equal(t, "东", snap.Players[0].Name)

	got, err := svc.Result(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Scores, got.Scores)
	assert.Len(t, svc.Rooms(), 1)
}

func TestServiceRemoteProvider(t *testing.T) {
	svc, _, _, remote := newTestService(t, true)

	info, err := svc.Start(context.Background(), StartRequest{Providers: []string{ProviderRemote, ProviderLocal}})
	require.NoError(t, err)
	res := waitResult(t, svc, info.ID)
	assert.Len(t, res.Hands, 1)
	assert.Positive(t, remote.calls.Load())

	events, err := svc.Events(context.Background(), info.ID, 1)
	require.NoError(t, err)
	remoteDiscards := 0
	for _, e := range events {
		if e.Type == table.EventDiscard && e.Seat == 0 {
			assert.Equal(t, decision.SourceRemote, e.Source)
			remoteDiscards++
		}
	}
	assert.Positive(t, remoteDiscards)
}

func TestServiceStartErrors(t *testing.T) {
	svc, _, _, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Start(ctx, StartRequest{Profile: "riichi"})
	assert.ErrorIs(t, err, core.ErrInvalidProfile)

	_, err = svc.Start(ctx, StartRequest{Providers: []string{"oracle"}})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = svc.Start(ctx, StartRequest{Providers: []string{"local", "local", "local", "local", "local"}})
	assert.ErrorIs(t, err, ErrSeatMismatch)

	svc.remote = nil
	_, err = svc.Start(ctx, StartRequest{Providers: []string{ProviderRemote}})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	assert.Empty(t, svc.Rooms())
	assert.ErrorIs(t, svc.Pause("missing"), game.ErrRoomNotFound)
	_, err = svc.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	_, err = svc.Result(ctx, "missing")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestServiceStopBeforeRun(t *testing.T) {
	svc, pool, _, _ := newTestService(t, false)

	info, err := svc.Start(context.Background(), StartRequest{Hands: 3})
	require.NoError(t, err)
	require.NoError(t, svc.Pause(info.ID))
	require.NoError(t, svc.Stop(info.ID))
	pool.Start()

	res := waitResult(t, svc, info.ID)
	assert.True(t, res.Stopped)
	assert.Len(t, res.Hands, 1)

	room, err := svc.Room(info.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusStopped, room.Status)
	assert.ErrorIs(t, svc.Resume(info.ID), game.ErrRoomFinished)
}

func TestAnalyze(t *testing.T) {
	svc, _, _, _ := newTestService(t, false)

	res, err := svc.Analyze(AnalyzeRequest{Hand: "1W 1W 1W 2W 3W 4W 5W 6W 7W 8W 9W 9W 9W"})
	require.NoError(t, err)
	assert.Zero(t, res.Shanten)
	assert.False(t, res.Win)
	assert.Len(t, res.WinningTiles, 9)
	require.NotNil(t, res.Ukeire)
	assert.Nil(t, res.Score)

	res, err = svc.Analyze(AnalyzeRequest{Hand: "1W 1W 1W 2W 3W 4W 5W 5W 6W 7W 8W 9W 9W 9W", SelfDraw: true})
	require.NoError(t, err)
	assert.True(t, res.Win)
	assert.Equal(t, -1, res.Shanten)
	require.NotNil(t, res.Score)
	assert.True(t, res.Score.Won)
	assert.Positive(t, res.Score.Fan)
	assert.NotEmpty(t, res.Discards)
	require.NotNil(t, res.Best)

	res, err = svc.Analyze(AnalyzeRequest{Hand: "2W 3W 4W 6B 7B 8B 1T 1T 9T 9T 3B", Melds: []string{"5T 5T 5T"}, Que: "T"})
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, core.SuitTiao, res.Best.Suit)

	_, err = svc.Analyze(AnalyzeRequest{Hand: "1W 2W"})
	assert.ErrorIs(t, err, ErrInvalidHandSize)
	_, err = svc.Analyze(AnalyzeRequest{Hand: "1W 1W 1W 2W 3W 4W 5W 6W 7W 8W", Melds: []string{"1B 5B 9B"}})
	assert.ErrorIs(t, err, core.ErrInvalidMeld)
	_, err = svc.Analyze(AnalyzeRequest{Hand: "1W 1W 1W 2W 3W 4W 5W 6W 7W 8W 9W 9W 9W", Que: "Z"})
	assert.ErrorIs(t, err, core.ErrInvalidTile)
}

func TestDecide(t *testing.T) {
	svc, _, _, _ := newTestService(t, false)
	req := decision.Request{
		Seat: 0,
		Hand: core.MustParseTiles("1W 2W 3W 4B 5B 6B 7T 8T 9T 2W 2W 5B 5B 9B"),
		View: decision.PublicView{Profile: core.ProfileSichuan},
	}
	d, err := svc.Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, decision.SourceLocal, d.Source)
	assert.True(t, core.ContainsTile(req.Hand, d.Tile))

	_, err = svc.Decide(context.Background(), decision.Request{View: decision.PublicView{Profile: core.ProfileSichuan}})
	assert.ErrorIs(t, err, decision.ErrEmptyHand)
}

package decision

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/analyzer"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

var sichuan = analyzer.New(analyzer.ForProfile(core.SichuanProfile()))

func request(hand string, que core.Suit) Request {
	snap := &core.TableSnapshot{
		Profile: core.SichuanProfile(),
		Players: make([]core.PlayerState, 4),
	}
	for i := range snap.Players {
		snap.Players[i] = core.PlayerState{Seat: i, Que: core.SuitNone}
	}
	snap.Players[0].Hand = core.MustParseTiles(hand)
	snap.Players[0].Que = que
	snap.Players[1].Hand = core.MustParseTiles("1W 1W 1W")
	return NewRequest(snap, 0)
}

func TestPublicViewHidesOtherHands(t *testing.T) {
	req := request("1W 2W 3W", core.SuitNone)
	data, err := json.Marshal(req.View)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"hand"`)
	assert.Equal(t, 3, req.View.Seats[1].HandSize)
	assert.Len(t, req.Hand, 3)
}

func TestHeuristicDecide(t *testing.T) {
	req := request("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B 9T", core.SuitNone)
	d, err := NewHeuristic(sichuan).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "9T", d.Tile.String())
	assert.Equal(t, SourceLocal, d.Source)
	assert.Contains(t, d.Reason, "shanten=0")
}

func TestHeuristicEmptyHand(t *testing.T) {
	_, err := NewHeuristic(sichuan).Decide(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyHand)
}

func TestLegal(t *testing.T) {
	req := request("1W 2W 5T", core.SuitTiao)
	assert.NoError(t, Legal(req, core.MustParseTile("5T")))
	assert.ErrorIs(t, Legal(req, core.MustParseTile("1W")), ErrIllegalDiscard)
	assert.ErrorIs(t, Legal(req, core.MustParseTile("9B")), core.ErrTileNotInHand)

	noQue := request("1W 2W", core.SuitTiao)
	assert.NoError(t, Legal(noQue, core.MustParseTile("1W")))
}

func TestGuardedFallsBackOnTileNotInHand(t *testing.T) {
	req := request("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 3B 9T", core.SuitNone)
	bad := ProviderFunc(func(context.Context, Request) (Decision, error) {
		return Decision{Tile: core.MustParseTile("7Z")}, nil
	})
	g := NewGuarded(bad, NewHeuristic(sichuan), time.Second)

	d, err := g.Decide(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, core.ContainsTile(req.Hand, d.Tile))
	assert.Equal(t, "9T", d.Tile.String())
	assert.Equal(t, SourceFallback, d.Source)
}

func TestGuardedFallsBackOnQueViolation(t *testing.T) {
	req := request("1W 2W 3W 4W 5W 6W 7W 8W 9W 1B 1B 2B 5T 9T", core.SuitTiao)
	p := ProviderFunc(func(context.Context, Request) (Decision, error) {
		return Decision{Tile: core.MustParseTile("1W")}, nil
	})
	d, err := NewGuarded(p, NewHeuristic(sichuan), time.Second).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, core.SuitTiao, d.Tile.Suit)
	assert.Equal(t, SourceFallback, d.Source)
}

func TestGuardedFallsBackOnError(t *testing.T) {
	req := request("1W 2W 3W 9T", core.SuitNone)
	p := ProviderFunc(func(context.Context, Request) (Decision, error) {
		return Decision{}, errors.New("boom")
	})
	d, err := NewGuarded(p, NewHeuristic(sichuan), time.Second).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, d.Reason, "boom")
}

func TestGuardedTimeout(t *testing.T) {
	req := request("1W 2W 3W 9T", core.SuitNone)
	block := make(chan struct{})
	defer close(block)
	p := ProviderFunc(func(context.Context, Request) (Decision, error) {
		<-block
		return Decision{Tile: core.MustParseTile("1W")}, nil
	})
	start := time.Now()
	d, err := NewGuarded(p, NewHeuristic(sichuan), 20*time.Millisecond).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, SourceFallback, d.Source)
	assert.Equal(t, "9T", d.Tile.String())
}

func TestGuardedPassesValidDecision(t *testing.T) {
	req := request("1W 2W 3W 9T", core.SuitNone)
	p := ProviderFunc(func(context.Context, Request) (Decision, error) {
		return Decision{Tile: core.MustParseTile("2W"), Reason: "mine"}, nil
	})
	d, err := NewGuarded(p, NewHeuristic(sichuan), 0).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2W", d.Tile.String())
	assert.Equal(t, "mine", d.Reason)
	assert.Equal(t, SourceLocal, d.Source)

	// 提供者自带的来源保留
	p = ProviderFunc(func(context.Context, Request) (Decision, error) {
		return Decision{Tile: core.MustParseTile("2W"), Source: SourceRemote}, nil
	})
	d, err = NewGuarded(p, NewHeuristic(sichuan), 0).Decide(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, d.Source)
}

type fakeRequester struct {
	calls atomic.Int32
	fail  int32
	reply Reply
}

func (f *fakeRequester) RequestWithContext(_ context.Context, subj string, data []byte) (*nats.Msg, error) {
	n := f.calls.Add(1)
	if n <= f.fail {
		return nil, nats.ErrTimeout
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	out, _ := json.Marshal(f.reply)
	return &nats.Msg{Subject: subj, Data: out}, nil
}

func TestRemoteRetries(t *testing.T) {
	f := &fakeRequester{fail: 2, reply: Reply{Decision: &Decision{Tile: core.MustParseTile("3W")}}}
	r := NewRemote(f, RemoteConfig{Retries: 2, Backoff: time.Millisecond})

	d, err := r.Decide(context.Background(), request("1W 2W 3W", core.SuitNone))
	require.NoError(t, err)
	assert.Equal(t, "3W", d.Tile.String())
	assert.Equal(t, SourceRemote, d.Source)
	assert.EqualValues(t, 3, f.calls.Load())
}

func TestRemoteGivesUp(t *testing.T) {
	f := &fakeRequester{fail: 10}
	r := NewRemote(f, RemoteConfig{Retries: 1, Backoff: time.Millisecond})

	_, err := r.Decide(context.Background(), request("1W", core.SuitNone))
	assert.ErrorIs(t, err, ErrRemoteDecision)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestRemoteReplyError(t *testing.T) {
	f := &fakeRequester{reply: Reply{Error: "no model"}}
	r := NewRemote(f, RemoteConfig{Backoff: time.Millisecond})

	_, err := r.Decide(context.Background(), request("1W", core.SuitNone))
	assert.ErrorIs(t, err, ErrRemoteDecision)
}

func TestShantenPolicyRejectsWorseKong(t *testing.T) {
	hand := core.MustParseTiles("2W 2W 2W 2W 3W 4W 6B 7B 9B 1T 4T 6T 8T 8T")
	require.Equal(t, 1, sichuan.Shanten(hand, 0))

	p := NewShantenPolicy(sichuan)
	assert.False(t, p.AcceptKong(hand, 0, core.MeldAnGang, core.MustParseTile("2W")))
	assert.True(t, AlwaysPolicy{}.AcceptKong(hand, 0, core.MeldAnGang, core.MustParseTile("2W")))
}

func TestShantenPolicyAcceptsIsolatedKong(t *testing.T) {
	hand := core.MustParseTiles("9T 9T 9T 9T 1W 2W 3W 4W 5W 6W 1B 2B 3B 5B")
	assert.True(t, NewShantenPolicy(sichuan).AcceptKong(hand, 0, core.MeldAnGang, core.MustParseTile("9T")))
}

func TestShantenPolicyClaim(t *testing.T) {
	p := NewShantenPolicy(sichuan)
	hand := core.MustParseTiles("1W 2W 3W 4W 5W 6W 7B 8B 9B 5T 5T 1B 9T")
	five := core.MustParseTile("5T")
	assert.True(t, p.AcceptClaim(hand, 0, five, core.Repeat(five, 3)))
	assert.False(t, p.AcceptClaim(hand, 0, five, core.MustParseTiles("3T 4T 5T")))
}

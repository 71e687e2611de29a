package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

func newTestRoom(t *testing.T, id string) *Room {
	t.Helper()
	m, err := table.NewMatch(table.MatchConfig{Profile: core.SichuanProfile(), Hands: 2, Seed: 42})
	require.NoError(t, err)
	return NewRoom(id, core.ProfileSichuan, m)
}

// play 在后台运行比赛并记录结果
func play(r *Room) {
	go func() {
		res, err := r.Match().Play(context.Background())
		r.Finish(res, err)
	}()
}

func TestRoomLifecycle(t *testing.T) {
	r := newTestRoom(t, "r1")
	assert.Equal(t, StatusRunning, r.Status())
	assert.ErrorIs(t, r.Resume(), ErrInvalidRoomState)

	require.NoError(t, r.Pause())
	assert.Equal(t, StatusPaused, r.Status())
	assert.ErrorIs(t, r.Pause(), ErrInvalidRoomState)
	require.NoError(t, r.Resume())

	play(r)
	select {
	case <-r.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("match did not finish")
	}
	assert.True(t, r.Finished())
	assert.Equal(t, StatusFinished, r.Status())

	res, err := r.Result()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Hands, 2)
	assert.ErrorIs(t, r.Stop(), ErrRoomFinished)
	assert.Equal(t, "r1", r.Info().ID)
}

func TestRoomStop(t *testing.T) {
	r := newTestRoom(t, "r2")
	require.NoError(t, r.Pause())
	require.NoError(t, r.Stop())
	play(r)
	<-r.Done()

	assert.Equal(t, StatusStopped, r.Status())
	res, err := r.Result()
	require.NoError(t, err)
	assert.True(t, res.Stopped)
}

func TestRoomFinishWithError(t *testing.T) {
	r := newTestRoom(t, "r3")
	r.Finish(table.MatchResult{}, errors.New("boom"))
	assert.Equal(t, StatusFailed, r.Status())
	assert.Equal(t, "boom", r.Info().Error)

	// 只记录第一次
	r.Finish(table.MatchResult{}, nil)
	assert.Equal(t, StatusFailed, r.Status())
}

func TestRoomManager(t *testing.T) {
	m := NewRoomManager(2, time.Minute)
	defer m.Shutdown(context.Background())

	a, b := newTestRoom(t, "a"), newTestRoom(t, "b")
	require.NoError(t, m.Add(a))
	assert.ErrorIs(t, m.Add(a), ErrRoomExists)
	require.NoError(t, m.Add(b))
	assert.ErrorIs(t, m.Add(newTestRoom(t, "c")), ErrTooManyRooms)
	assert.Equal(t, 2, m.Count())

	got, err := m.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)
	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Len(t, m.List(), 2)

	// 未结束的房间不淘汰
	assert.Zero(t, m.EvictInactive(time.Now().Add(time.Hour)))
	a.Finish(table.MatchResult{}, nil)
	assert.Equal(t, 1, m.EvictInactive(time.Now().Add(time.Hour)))
	assert.Equal(t, 1, m.Count())

	m.Remove("b")
	assert.Zero(t, m.Count())
}

func TestRoomManagerShutdownStopsRooms(t *testing.T) {
	m := NewRoomManager(0, time.Minute)
	r := newTestRoom(t, "s")
	require.NoError(t, r.Pause())
	require.NoError(t, m.Add(r))
	play(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	assert.Equal(t, StatusStopped, r.Status())
}

package game

import (
	"sync"
	"time"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

// Status 房间状态
type Status string

const (
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
	StatusStopped  Status = "stopped"
	StatusFailed   Status = "failed"
)

// Room 一场比赛的会话
// 管理比赛状态，使用 RWMutex 保证并发安全
type Room struct {
	mu sync.RWMutex

	id         string
	profile    core.ProfileName
	status     Status
	match      *table.Match
	result     *table.MatchResult
	err        error
	createdAt  time.Time
	lastActive time.Time
	done       chan struct{}
}

// RoomInfo 房间概要
type RoomInfo struct {
	ID        string           `json:"id"`
	Profile   core.ProfileName `json:"profile"`
	Status    Status           `json:"status"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewRoom 创建房间
func NewRoom(id string, profile core.ProfileName, match *table.Match) *Room {
	now := time.Now()
	return &Room{
		id:         id,
		profile:    profile,
		status:     StatusRunning,
		match:      match,
		createdAt:  now,
		lastActive: now,
		done:       make(chan struct{}),
	}
}

// ID 房间 ID
func (r *Room) ID() string {
	return r.id
}

// Match 房间内的比赛
func (r *Room) Match() *table.Match {
	return r.match
}

// Status 当前状态
func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Info 房间概要
func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := RoomInfo{ID: r.id, Profile: r.profile, Status: r.status, CreatedAt: r.createdAt}
	if r.err != nil {
		info.Error = r.err.Error()
	}
	return info
}

// Snapshot 当前局快照
func (r *Room) Snapshot() *core.TableSnapshot {
	r.touch()
	return r.match.Snapshot()
}

// Pause 暂停, 在下一个回合边界生效
func (r *Room) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRunning {
		return r.stateError()
	}
	r.match.Control().Pause()
	r.status = StatusPaused
	r.lastActive = time.Now()
	return nil
}

// Resume 继续
func (r *Room) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPaused {
		return r.stateError()
	}
	r.match.Control().Resume()
	r.status = StatusRunning
	r.lastActive = time.Now()
	return nil
}

// Stop 停止比赛
func (r *Room) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRunning && r.status != StatusPaused {
		return r.stateError()
	}
	r.match.Control().Stop()
	r.lastActive = time.Now()
	return nil
}

func (r *Room) stateError() error {
	switch r.status {
	case StatusFinished, StatusStopped, StatusFailed:
		return ErrRoomFinished
	default:
		return ErrInvalidRoomState
	}
}

// Finish 记录比赛结束
func (r *Room) Finish(res table.MatchResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result != nil || r.err != nil {
		return
	}
	switch {
	case err != nil:
		r.status = StatusFailed
		r.err = err
	case res.Stopped:
		r.status = StatusStopped
	default:
		r.status = StatusFinished
	}
	r.result = &res
	r.lastActive = time.Now()
	close(r.done)
}

// Done 比赛结束时关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Result 比赛结果, 尚未结束时返回 nil
func (r *Room) Result() (*table.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result, r.err
}

// Finished 比赛是否已结束
func (r *Room) Finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// LastActiveTime 获取最后活跃时间
func (r *Room) LastActiveTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}
